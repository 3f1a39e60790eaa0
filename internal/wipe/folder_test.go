package wipe

import (
	"os"
	"path/filepath"
	"testing"

	"wipeengine/internal/pattern"
)

func populateTree(t *testing.T, root string) {
	t.Helper()
	sub := filepath.Join(root, "nested")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	for i := 0; i < 5; i++ {
		if err := os.WriteFile(filepath.Join(root, "file_"+string(rune('a'+i))), []byte("top-level"), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}
	for i := 0; i < 5; i++ {
		if err := os.WriteFile(filepath.Join(sub, "file_"+string(rune('a'+i))), []byte("nested"), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}
}

func TestWipeFolderRemovesEverything(t *testing.T) {
	root := filepath.Join(t.TempDir(), "victim")
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	populateTree(t, root)

	rep := WipeFolder(&Request{Method: pattern.MethodNIST}, root)
	if rep.FilesTotal != 10 {
		t.Fatalf("FilesTotal = %d, want 10", rep.FilesTotal)
	}
	if rep.FilesSucceeded != 10 {
		t.Fatalf("FilesSucceeded = %d, want 10", rep.FilesSucceeded)
	}
	if !rep.RootRemoved {
		t.Fatal("expected the root directory to be removed")
	}
	if len(rep.Residual) != 0 {
		t.Fatalf("unexpected residual entries: %v", rep.Residual)
	}
	if _, err := os.Stat(root); !os.IsNotExist(err) {
		t.Fatalf("expected root to no longer exist, stat err = %v", err)
	}
}

func TestWipeFolderEmptyDirectory(t *testing.T) {
	root := filepath.Join(t.TempDir(), "empty")
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	rep := WipeFolder(&Request{Method: pattern.MethodQuick}, root)
	if rep.FilesTotal != 0 {
		t.Fatalf("FilesTotal = %d, want 0", rep.FilesTotal)
	}
	if !rep.RootRemoved {
		t.Fatal("expected an empty directory to be removed")
	}
}

func TestWipeFolderMissingRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "never-existed")
	rep := WipeFolder(&Request{Method: pattern.MethodQuick}, root)
	if len(rep.Residual) == 0 {
		t.Fatal("expected a missing root to be recorded as residual")
	}
}

func TestWipeFolderCancelStopsEarly(t *testing.T) {
	root := filepath.Join(t.TempDir(), "victim")
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	populateTree(t, root)

	calls := 0
	cancel := func() bool { calls++; return calls > 1 }
	rep := WipeFolder(&Request{Method: pattern.MethodQuick, Cancel: cancel}, root)
	if rep.FilesTotal >= 10 {
		t.Fatalf("expected cancellation to leave the remaining files untouched, processed %d/10", rep.FilesTotal)
	}
	if rep.RootRemoved {
		t.Fatal("a cancelled wipe must not remove the root directory")
	}
	if _, err := os.Stat(root); err != nil {
		t.Fatalf("expected root to still exist after cancellation, stat err = %v", err)
	}
}
