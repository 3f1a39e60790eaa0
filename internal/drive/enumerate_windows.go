//go:build windows

package drive

import (
	"fmt"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

// Enumerate probes each drive letter for existence, as spec §4.3 describes
// for platforms exposing drive letters.
func Enumerate() ([]Info, error) {
	mask, err := logicalDrives()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEnumerationFailed, err)
	}

	var out []Info
	for c := 0; c < 26; c++ {
		if mask&(1<<uint(c)) == 0 {
			continue
		}
		letter := string(rune('A'+c)) + ":"
		root := letter + "\\"
		ptr, err := windows.UTF16PtrFromString(root)
		if err != nil {
			continue
		}
		if windows.GetDriveType(ptr) != windows.DRIVE_FIXED &&
			windows.GetDriveType(ptr) != windows.DRIVE_REMOVABLE {
			continue
		}
		info := Info{Path: root, Label: letter, Device: `\\.\` + letter}
		if free, total, ok := diskSpace(root); ok {
			info.Free, info.Total, info.Used = free, total, total-free
		}
		out = append(out, info)
	}
	return out, nil
}

var (
	kernel32                = syscall.NewLazyDLL("kernel32.dll")
	procGetDiskFreeSpaceExW = kernel32.NewProc("GetDiskFreeSpaceExW")
	procGetLogicalDrives    = kernel32.NewProc("GetLogicalDrives")
)

func logicalDrives() (uint32, error) {
	ret, _, err := procGetLogicalDrives.Call()
	if ret == 0 {
		return 0, err
	}
	return uint32(ret), nil
}

func diskSpace(root string) (free, total uint64, ok bool) {
	ptr, err := syscall.UTF16PtrFromString(root)
	if err != nil {
		return 0, 0, false
	}
	var freeAvail, totalBytes, freeBytes uint64
	ret, _, _ := procGetDiskFreeSpaceExW.Call(
		uintptr(unsafe.Pointer(ptr)),
		uintptr(unsafe.Pointer(&freeAvail)),
		uintptr(unsafe.Pointer(&totalBytes)),
		uintptr(unsafe.Pointer(&freeBytes)),
	)
	if ret == 0 {
		return 0, 0, false
	}
	return freeAvail, totalBytes, true
}
