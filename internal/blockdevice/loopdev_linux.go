//go:build linux

package blockdevice

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// SetupLoopDevice attaches file as the backing store of a free loop
// device and returns its node path, e.g. "/dev/loop7". Used by tests to
// exercise the raw device wiper against an ordinary file without real
// hardware.
func SetupLoopDevice(file string) (string, error) {
	backing, err := os.OpenFile(file, os.O_RDWR, 0)
	if err != nil {
		return "", fmt.Errorf("blockdevice: open backing file: %w", err)
	}
	defer backing.Close()

	ctl, err := os.OpenFile("/dev/loop-control", os.O_RDWR, 0)
	if err != nil {
		return "", fmt.Errorf("blockdevice: open loop-control: %w", err)
	}
	defer ctl.Close()

	devNum, _, errno := unix.Syscall(unix.SYS_IOCTL, ctl.Fd(), unix.LOOP_CTL_GET_FREE, 0)
	if errno != 0 {
		return "", fmt.Errorf("blockdevice: LOOP_CTL_GET_FREE: %v", errno)
	}

	loopPath := fmt.Sprintf("/dev/loop%d", devNum)
	loopFile, err := os.OpenFile(loopPath, os.O_RDWR, 0)
	if err != nil {
		return "", fmt.Errorf("blockdevice: open %s: %w", loopPath, err)
	}
	defer loopFile.Close()

	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, loopFile.Fd(), unix.LOOP_SET_FD, backing.Fd()); errno != 0 {
		return "", fmt.Errorf("blockdevice: LOOP_SET_FD: %v", errno)
	}
	return loopPath, nil
}

// DetachLoopDevice clears the backing file association set up by
// SetupLoopDevice.
func DetachLoopDevice(loopPath string) error {
	f, err := os.OpenFile(loopPath, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("blockdevice: open %s: %w", loopPath, err)
	}
	defer f.Close()

	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, f.Fd(), unix.LOOP_CLR_FD, 0); errno != 0 {
		return fmt.Errorf("blockdevice: LOOP_CLR_FD: %v", errno)
	}
	return nil
}
