package safety

import (
	"errors"
	"runtime"
	"testing"
)

func TestGuardBlocksBaseline(t *testing.T) {
	g := &Guard{}
	target := "/"
	if runtime.GOOS == "windows" {
		target = `C:\`
	}
	err := g.Check(target)
	if err == nil {
		t.Fatalf("expected baseline target %q to be blocked", target)
	}
	if !errors.Is(err, ErrBlockedTarget) {
		t.Fatalf("expected ErrBlockedTarget, got %v", err)
	}
	var be *BlockedError
	if !errors.As(err, &be) {
		t.Fatalf("expected *BlockedError, got %T", err)
	}
}

func TestGuardAllowsOrdinaryPath(t *testing.T) {
	g := &Guard{}
	if err := g.Check("/var/tmp/scratch-file"); err != nil {
		t.Fatalf("unexpected block for ordinary path: %v", err)
	}
}

func TestGuardExtraDenyPaths(t *testing.T) {
	g := &Guard{ExtraDenyPaths: []string{"/srv/critical"}}
	if err := g.Check("/srv/critical"); err == nil {
		t.Fatal("expected extra deny path to be blocked")
	}
	if err := g.Check("/srv/critical/subdir"); err != nil {
		t.Fatalf("deny set is exact-match only, subdir should pass: %v", err)
	}
}

func TestGuardBaselineCannotBeRemoved(t *testing.T) {
	g := &Guard{ExtraDenyPaths: nil}
	target := "/boot"
	if runtime.GOOS == "windows" {
		t.Skip("baseline differs on windows")
	}
	if err := g.Check(target); err == nil {
		t.Fatalf("expected %q to remain blocked regardless of config", target)
	}
}
