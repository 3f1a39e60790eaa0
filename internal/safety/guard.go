// Package safety implements the wipe engine's safety guard (C5): it
// refuses to operate on protected system paths before any I/O happens.
package safety

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// ErrBlockedTarget is the sentinel backing spec §7's BlockedTarget.
var ErrBlockedTarget = errors.New("safety: blocked target")

// BlockedError names the rejected target for the caller.
type BlockedError struct {
	Target string
	Reason string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("safety: refusing to wipe %q: %s", e.Target, e.Reason)
}

func (e *BlockedError) Unwrap() error { return ErrBlockedTarget }

// Guard holds the deny set a target is checked against. The hard-coded
// baseline from spec §4.5 is always present; ExtraDenyPaths only adds to
// it, and config can never remove the baseline.
type Guard struct {
	ExtraDenyPaths []string
}

// baselineDenySet returns the hard-coded system paths spec §4.5 names.
// Windows carries the OS drive letter; POSIX carries the usual top-level
// mount points.
func baselineDenySet() []string {
	if runtime.GOOS == "windows" {
		systemDrive := os.Getenv("SystemDrive")
		if systemDrive == "" {
			systemDrive = "C:"
		}
		return []string{systemDrive, systemDrive + "\\"}
	}
	return []string{"/", "/boot", "/home"}
}

// Check rejects target if it equals any deny-set entry. Comparison is
// case-insensitive on platforms whose filesystems are case-insensitive
// (Windows), case-sensitive elsewhere. target must already be absolute
// and cleaned; Check performs no I/O and no normalization beyond that so a
// rejection is guaranteed to precede any side effect.
func (g *Guard) Check(target string) error {
	clean := filepath.Clean(target)
	fold := runtime.GOOS == "windows"

	for _, denied := range append(baselineDenySet(), g.ExtraDenyPaths...) {
		deniedClean := filepath.Clean(denied)
		if pathEqual(clean, deniedClean, fold) {
			return &BlockedError{Target: target, Reason: "target is a protected system path"}
		}
	}
	return nil
}

func pathEqual(a, b string, foldCase bool) bool {
	if foldCase {
		return strings.EqualFold(a, b)
	}
	return a == b
}
