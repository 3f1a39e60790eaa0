//go:build windows

package flashwipe

import (
	"errors"

	"golang.org/x/sys/windows"
)

var syscallENOSPC = windows.ERROR_DISK_FULL

func statfsFree(path string) (uint64, error) {
	var free, total, totalFree uint64
	root, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return 0, err
	}
	if err := windows.GetDiskFreeSpaceEx(root, &free, &total, &totalFree); err != nil {
		return 0, err
	}
	return free, nil
}

func sourceDevice(mountPoint string) (string, error) {
	return "", errors.New("flashwipe: device resolution not needed on windows format path")
}
