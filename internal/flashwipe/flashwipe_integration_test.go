//go:build integration

package flashwipe

import (
	"testing"

	"wipeengine/internal/pattern"
)

// These exercise the unprivileged fallback path end to end, which fills a
// real filesystem's free space to 90-95% capacity several times over.
// Point TMPDIR at a small, disposable filesystem (a loopback tmpfs or a
// scratch partition) before running this suite.

func TestWipeUnprivilegedRunsFallbackSteps(t *testing.T) {
	dir := t.TempDir()
	out := Wipe(dir, Options{
		Method:     pattern.MethodQuick,
		Privileged: false,
	})
	if out.Device != nil {
		t.Fatal("did not expect a Device outcome in the unprivileged fallback path")
	}
	if len(out.Steps) == 0 {
		t.Fatal("expected the fallback path to record steps")
	}

	names := make(map[string]bool)
	for _, s := range out.Steps {
		names[s.Name] = true
	}
	if !names[StepFill1] || !names[StepFormat1] || !names[StepFill2] || !names[StepFormat2] || !names[StepControllerErase] {
		t.Fatalf("missing expected step names, got %+v", out.Steps)
	}
}

func TestWipeUnprivilegedFormatSkippedWithoutAllowFormat(t *testing.T) {
	dir := t.TempDir()
	out := Wipe(dir, Options{
		Method:      pattern.MethodQuick,
		Privileged:  false,
		AllowFormat: false,
	})
	for _, s := range out.Steps {
		if s.Name == StepFormat1 && s.Succeeded {
			t.Fatal("format must not succeed when AllowFormat is false")
		}
	}
}
