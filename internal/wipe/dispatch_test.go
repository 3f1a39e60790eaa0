package wipe

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"wipeengine/internal/drive"
	"wipeengine/internal/pattern"
	"wipeengine/internal/rawwipe"
	"wipeengine/internal/safety"
)

func newTestDispatcher() *Dispatcher {
	return &Dispatcher{
		Guard:        &safety.Guard{},
		Probe:        drive.DefaultProbe(),
		IsPrivileged: func() bool { return false },
	}
}

func TestDispatchFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secret.txt")
	if err := os.WriteFile(path, []byte("sensitive"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	d := newTestDispatcher()
	rep := d.Dispatch(&Request{Target: path, Method: pattern.MethodQuick, Verify: true})
	if rep.Status != StatusSuccess {
		t.Fatalf("Status = %v, Error = %v", rep.Status, rep.Error)
	}
	if rep.Kind != KindFile {
		t.Fatalf("Kind = %v, want KindFile", rep.Kind)
	}
	if rep.File == nil {
		t.Fatal("expected a File outcome")
	}
}

func TestDispatchDirectory(t *testing.T) {
	root := filepath.Join(t.TempDir(), "tree")
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "a.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	d := newTestDispatcher()
	rep := d.Dispatch(&Request{Target: root, Method: pattern.MethodNIST})
	if rep.Status != StatusSuccess {
		t.Fatalf("Status = %v, Error = %v", rep.Status, rep.Error)
	}
	if rep.Kind != KindDirectory {
		t.Fatalf("Kind = %v, want KindDirectory", rep.Kind)
	}
	if rep.Folder == nil || !rep.Folder.RootRemoved {
		t.Fatalf("expected the directory to be fully removed, got %+v", rep.Folder)
	}
}

func TestDispatchBlockedTargetRejected(t *testing.T) {
	d := newTestDispatcher()
	target := "/"
	if runtime.GOOS == "windows" {
		target = `C:\`
	}
	rep := d.Dispatch(&Request{Target: target, Method: pattern.MethodQuick})
	if rep.Status != StatusFailed {
		t.Fatalf("Status = %v, want StatusFailed", rep.Status)
	}
	var blocked *safety.BlockedError
	if !errors.As(rep.Error, &blocked) {
		t.Fatalf("expected a *safety.BlockedError, got %v (%T)", rep.Error, rep.Error)
	}
}

func TestDispatchPathNotFound(t *testing.T) {
	d := newTestDispatcher()
	rep := d.Dispatch(&Request{Target: filepath.Join(t.TempDir(), "ghost"), Method: pattern.MethodQuick})
	if rep.Status != StatusFailed {
		t.Fatalf("Status = %v, want StatusFailed", rep.Status)
	}
	if !errors.Is(rep.Error, ErrPathNotFound) {
		t.Fatalf("expected ErrPathNotFound, got %v", rep.Error)
	}
}

func TestDispatchBusyRejectsConcurrentRequest(t *testing.T) {
	d := newTestDispatcher()
	if !d.tryAcquire() {
		t.Fatal("expected the first acquire to succeed")
	}
	defer d.release()

	rep := d.Dispatch(&Request{Target: t.TempDir(), Method: pattern.MethodQuick})
	if rep.Status != StatusFailed || !errors.Is(rep.Error, ErrBusy) {
		t.Fatalf("expected a busy rejection, got status=%v err=%v", rep.Status, rep.Error)
	}
}

func TestDispatchCancelledRequestReportsCancelled(t *testing.T) {
	root := filepath.Join(t.TempDir(), "tree")
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(filepath.Join(root, "f"+string(rune('a'+i))), []byte("x"), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}

	d := newTestDispatcher()
	rep := d.Dispatch(&Request{Target: root, Method: pattern.MethodQuick, Cancel: func() bool { return true }})
	if rep.Status != StatusCancelled {
		t.Fatalf("Status = %v, want StatusCancelled", rep.Status)
	}
}

func TestLooksLikeRawDevicePath(t *testing.T) {
	cases := map[string]bool{
		`\\.\PhysicalDrive0`: true,
		"/dev/sda":           true,
		"/dev/sda1":          true,
		"/dev/mapper/vg-lv":  false,
		"/home/user/file":    false,
	}
	for target, want := range cases {
		if got := looksLikeRawDevicePath(target); got != want {
			t.Errorf("looksLikeRawDevicePath(%q) = %v, want %v", target, got, want)
		}
	}
}

func TestToDeviceOutcomeMapsCancellation(t *testing.T) {
	out := toDeviceOutcome(&rawwipe.Outcome{PassesCompleted: 1, Err: rawwipe.ErrCancelled})
	if out.Status != StatusCancelled {
		t.Fatalf("Status = %v, want StatusCancelled", out.Status)
	}
	if !errors.Is(out.Error, rawwipe.ErrCancelled) {
		t.Fatalf("Error = %v, want to wrap rawwipe.ErrCancelled", out.Error)
	}
	if out.PassesCompleted != 1 {
		t.Fatalf("PassesCompleted = %d, want the partial count preserved", out.PassesCompleted)
	}
}

func TestToDeviceOutcomeMapsGenericFailure(t *testing.T) {
	out := toDeviceOutcome(&rawwipe.Outcome{Err: errors.New("boom")})
	if out.Status != StatusFailed {
		t.Fatalf("Status = %v, want StatusFailed", out.Status)
	}
}

func TestDispatchFileUsesRequestChunkSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secret.txt")
	content := make([]byte, 64*1024)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	var progressCalls int
	d := newTestDispatcher()
	rep := d.Dispatch(&Request{
		Target:    path,
		Method:    pattern.MethodQuick,
		ChunkSize: 8 * 1024,
		Progress:  func(int, string) { progressCalls++ },
	})
	if rep.Status != StatusSuccess {
		t.Fatalf("Status = %v, Error = %v", rep.Status, rep.Error)
	}
	if progressCalls < len(content)/(8*1024) {
		t.Fatalf("progressCalls = %d, expected at least %d chunks worth", progressCalls, len(content)/(8*1024))
	}
}

func TestStatusFromFolder(t *testing.T) {
	cases := []struct {
		name string
		f    *FolderReport
		want Status
	}{
		{"clean", &FolderReport{FilesTotal: 3, FilesSucceeded: 3}, StatusSuccess},
		{"partial", &FolderReport{FilesTotal: 3, FilesSucceeded: 1}, StatusPartial},
		{"residual", &FolderReport{FilesTotal: 3, FilesSucceeded: 3, Residual: []string{"x"}}, StatusPartial},
		{"all failed", &FolderReport{FilesTotal: 3, FilesSucceeded: 0}, StatusFailed},
	}
	for _, c := range cases {
		if got := statusFromFolder(c.f); got != c.want {
			t.Errorf("%s: statusFromFolder = %v, want %v", c.name, got, c.want)
		}
	}
}
