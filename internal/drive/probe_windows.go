//go:build windows

package drive

import "golang.org/x/sys/windows"

// WindowsProbe uses the Win32 drive-type query; rotational/media hints are
// not available without DeviceIoControl calls this package does not need,
// so only the removable flag is conclusive here (spec §4.4 heuristic #1).
type WindowsProbe struct{}

func (WindowsProbe) Removable(path string) (bool, bool) {
	root := driveRoot(path)
	if root == "" {
		return false, false
	}
	ptr, err := windows.UTF16PtrFromString(root)
	if err != nil {
		return false, false
	}
	switch windows.GetDriveType(ptr) {
	case windows.DRIVE_REMOVABLE:
		return true, true
	case windows.DRIVE_FIXED:
		return false, true
	default:
		return false, false
	}
}

func (WindowsProbe) Rotational(path string) (bool, bool) {
	return false, false
}

func (WindowsProbe) MediaHint(path string) string {
	return ""
}

func driveRoot(path string) string {
	if len(path) >= 2 && path[1] == ':' {
		return path[:2] + "\\"
	}
	return ""
}
