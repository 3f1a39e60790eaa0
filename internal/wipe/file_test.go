package wipe

import (
	"os"
	"path/filepath"
	"testing"

	"wipeengine/internal/pattern"
)

func newFile(t *testing.T, size int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "target.bin")
	content := make([]byte, size)
	for i := range content {
		content[i] = 0x7A
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestOverwriteFileQuickRemovesFile(t *testing.T) {
	path := newFile(t, 4096)

	out := OverwriteFile(&Request{Method: pattern.MethodQuick, Verify: true}, path)
	if out.Status != StatusSuccess {
		t.Fatalf("Status = %v, Error = %v", out.Status, out.Error)
	}
	if out.PassesCompleted != 1 {
		t.Fatalf("PassesCompleted = %d, want 1", out.PassesCompleted)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected target to be removed, stat err = %v", err)
	}
	if out.Verification == nil || !out.Verification.Verified {
		t.Fatalf("expected a verified record, got %+v", out.Verification)
	}
}

func TestOverwriteFileDoDRunsThreePasses(t *testing.T) {
	path := newFile(t, 8192)

	out := OverwriteFile(&Request{Method: pattern.MethodDOD}, path)
	if out.Status != StatusSuccess {
		t.Fatalf("Status = %v, Error = %v", out.Status, out.Error)
	}
	if out.PassesCompleted != 3 {
		t.Fatalf("PassesCompleted = %d, want 3", out.PassesCompleted)
	}
}

func TestOverwriteEmptyFile(t *testing.T) {
	path := newFile(t, 0)

	out := OverwriteFile(&Request{Method: pattern.MethodDOD, Verify: true}, path)
	if out.Status != StatusSuccess {
		t.Fatalf("Status = %v, Error = %v", out.Status, out.Error)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("expected empty file to still be removed")
	}
}

func TestOverwriteMissingFileIsSuccess(t *testing.T) {
	path := filepath.Join(t.TempDir(), "already-gone")
	out := OverwriteFile(&Request{Method: pattern.MethodQuick}, path)
	if out.Status != StatusSuccess {
		t.Fatalf("a missing target should be treated as already wiped, got %v (%v)", out.Status, out.Error)
	}
}

func TestOverwriteDirectoryRejected(t *testing.T) {
	dir := t.TempDir()
	out := OverwriteFile(&Request{Method: pattern.MethodQuick}, dir)
	if out.Status != StatusFailed {
		t.Fatalf("expected failure for a directory target, got %v", out.Status)
	}
}

func TestOverwriteFileCancelledMidPass(t *testing.T) {
	path := newFile(t, 16*1024*1024)

	calls := 0
	cancel := func() bool {
		calls++
		return calls > 2
	}
	out := OverwriteFile(&Request{Method: pattern.MethodDOD, Cancel: cancel}, path)
	if out.Status != StatusCancelled {
		t.Fatalf("expected a cancelled pass to surface as Cancelled, got %v", out.Status)
	}
	if out.PassesCompleted >= 3 {
		t.Fatalf("cancellation should have interrupted before all passes completed, got %d", out.PassesCompleted)
	}
	// the file must still exist: a cancelled overwrite never reaches delete.
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected target to remain on cancellation, stat err = %v", err)
	}
}

func TestOverwriteFileProgressReported(t *testing.T) {
	path := newFile(t, 4*1024*1024)

	var lastPct int
	progress := func(pct int, msg string) { lastPct = pct }
	out := OverwriteFile(&Request{Method: pattern.MethodQuick, Progress: progress}, path)
	if out.Status != StatusSuccess {
		t.Fatalf("Status = %v, Error = %v", out.Status, out.Error)
	}
	if lastPct == 0 {
		t.Fatal("expected at least one progress callback with a nonzero percentage")
	}
}
