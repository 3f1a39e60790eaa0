//go:build linux

package blockdevice

import (
	"os"
	"path/filepath"
	"testing"
)

// Loop device setup needs CAP_SYS_ADMIN and a live /dev/loop-control node,
// neither of which is guaranteed in a sandboxed build environment.
func requireLoopControl(t *testing.T) {
	t.Helper()
	if os.Geteuid() != 0 {
		t.Skip("loop device setup requires root")
	}
	if _, err := os.Stat("/dev/loop-control"); err != nil {
		t.Skip("no /dev/loop-control on this system")
	}
}

func TestSetupAndDetachLoopDevice(t *testing.T) {
	requireLoopControl(t)

	path := filepath.Join(t.TempDir(), "backing.img")
	if err := os.WriteFile(path, make([]byte, 16*1024*1024), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	loopPath, err := SetupLoopDevice(path)
	if err != nil {
		t.Fatalf("SetupLoopDevice: %v", err)
	}
	defer DetachLoopDevice(loopPath)

	dev, err := Open(loopPath, true)
	if err != nil {
		t.Fatalf("Open(%s): %v", loopPath, err)
	}
	defer dev.Close()

	size, err := dev.Size()
	if err != nil {
		t.Fatalf("Size: %v", err)
	}
	if size != 16*1024*1024 {
		t.Fatalf("Size() = %d, want %d", size, 16*1024*1024)
	}
}
