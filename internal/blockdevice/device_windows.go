//go:build windows

package blockdevice

import (
	"fmt"
	"os"

	"golang.org/x/sys/windows"
)

type windowsDevice struct {
	f      *os.File
	handle windows.Handle
}

// Open opens a \\.\PhysicalDriveN or \\.\X: path for raw access.
func Open(path string, write bool) (Device, error) {
	access := uint32(windows.GENERIC_READ)
	if write {
		access |= windows.GENERIC_WRITE
	}
	pathPtr, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return nil, err
	}
	h, err := windows.CreateFile(
		pathPtr,
		access,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE,
		nil,
		windows.OPEN_EXISTING,
		0,
		0,
	)
	if err != nil {
		return nil, fmt.Errorf("blockdevice: open %s: %w", path, err)
	}
	return &windowsDevice{f: os.NewFile(uintptr(h), path), handle: h}, nil
}

func (d *windowsDevice) Size() (uint64, error) {
	info, err := d.f.Stat()
	if err != nil {
		return 0, err
	}
	return uint64(info.Size()), nil
}

func (d *windowsDevice) WriteAt(buf []byte, offset int64) (int, error) {
	return d.f.WriteAt(buf, offset)
}

func (d *windowsDevice) ReadAt(buf []byte, offset int64) (int, error) {
	return d.f.ReadAt(buf, offset)
}

func (d *windowsDevice) Flush() error {
	return d.f.Sync()
}

func (d *windowsDevice) Close() error {
	return d.f.Close()
}

// Discard is unavailable without DeviceIoControl(IOCTL_STORAGE_... );
// not implemented here, so it is always a best-effort no-op.
func (d *windowsDevice) Discard(offset, length int64) error {
	return nil
}
