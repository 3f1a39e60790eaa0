// Package flashwipe implements the flash-optimized wiper (C10): when
// privileges allow, it delegates to the raw device wiper so every LBA
// is actually overwritten; otherwise it defeats wear-leveling from
// user-space via repeated fill/format cycles against the volume's free
// space, the way removable flash media is commonly sanitized without
// root.
package flashwipe

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"wipeengine/internal/pattern"
	"wipeengine/internal/rawwipe"
)

const fillChunkSize = 1 << 20 // 1 MiB

// Step names, reported verbatim in StepStatus.Name, except StepOverlay,
// which is a prefix: each overlay pass is reported as
// "<StepOverlay>_<n>_<pattern>".
const (
	StepFill1        = "fill"
	StepFormat1      = "format"
	StepOverlay      = "multi_pattern_overlay"
	StepFill2        = "second_fill"
	StepFormat2      = "final_format"
	StepControllerErase = "controller_erase"
)

// StepStatus records one best-effort step (mirrors wipe.StepStatus
// without creating an import cycle).
type StepStatus struct {
	Name      string
	Succeeded bool
	Detail    string
}

// Options configures a Wipe call.
type Options struct {
	Method       pattern.Method
	DevicePath   string // raw device node, used only when Privileged
	Privileged   bool
	AllowFormat  bool
	FSType       string
	ProgressFunc func(percent int, message string)
	Cancel       func() bool

	// MaxSpeedMBps and ChunkSize are forwarded to the raw device wiper
	// when Wipe delegates to it (Privileged with a DevicePath); they
	// have no effect on the unprivileged fill/format fallback, which
	// writes bounded-size temp files rather than a device-length pass.
	MaxSpeedMBps float64
	ChunkSize    int
}

// Outcome is the aggregate result of the flash wiper.
type Outcome struct {
	Steps  []StepStatus
	Device *rawwipe.Outcome // set only when delegated to the raw wiper
	Err    error
}

// Wipe implements C10 against mountPoint (a volume's root) or, when
// Privileged is set, against opts.DevicePath directly.
func Wipe(mountPoint string, opts Options) *Outcome {
	if opts.Privileged && opts.DevicePath != "" {
		dev := rawwipe.Wipe(opts.DevicePath, rawwipe.Options{
			Method:       opts.Method,
			Verify:       true,
			Progress:     opts.ProgressFunc,
			Cancel:       opts.Cancel,
			MaxSpeedMBps: opts.MaxSpeedMBps,
			ChunkSize:    opts.ChunkSize,
		})
		return &Outcome{Device: dev, Err: dev.Err}
	}

	out := &Outcome{}
	report := func(name string, err error) {
		out.Steps = append(out.Steps, StepStatus{Name: name, Succeeded: err == nil, Detail: detail(err)})
	}

	written, err := fill(mountPoint, []pattern.Kind{pattern.Random}, 0.95, opts.Cancel)
	report(StepFill1, err)
	if err != nil && written == 0 {
		out.Err = fmt.Errorf("flashwipe: initial fill impossible: %w", err)
		return out
	}

	report(StepFormat1, format(mountPoint, opts.FSType, opts.AllowFormat))

	overlayPatterns := []pattern.Kind{pattern.Zero, pattern.One, pattern.Random, pattern.Random, pattern.Random}
	for i, k := range overlayPatterns {
		if opts.Cancel != nil && opts.Cancel() {
			break
		}
		_, err := fill(mountPoint, []pattern.Kind{k}, 0.90, opts.Cancel)
		report(fmt.Sprintf("%s_%d_%s", StepOverlay, i+1, k), err)
	}

	_, err = fill(mountPoint, []pattern.Kind{pattern.Random}, 0.95, opts.Cancel)
	report(StepFill2, err)

	report(StepFormat2, format(mountPoint, opts.FSType, opts.AllowFormat))

	report(StepControllerErase, controllerErase(opts.DevicePath))

	return out
}

func detail(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// fill creates temporary files under mountPoint until free space drops
// below (1-fraction) of its starting value or disk-full is reached,
// writing pattern k, then deletes the files. Returns bytes written.
func fill(mountPoint string, program []pattern.Kind, fraction float64, cancel func() bool) (uint64, error) {
	tempDir := filepath.Join(mountPoint, ".wipeengine_fill")
	if err := os.MkdirAll(tempDir, 0o700); err != nil {
		return 0, fmt.Errorf("flashwipe: create fill dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	var free uint64
	if stat, err := diskFree(mountPoint); err == nil {
		free = stat
	}
	target := uint64(float64(free) * fraction)

	buf := pattern.Get(fillChunkSize)
	defer pattern.Put(buf)

	var written uint64
	idx := 0
	for target == 0 || written < target {
		if cancel != nil && cancel() {
			break
		}
		idx++
		name := filepath.Join(tempDir, fmt.Sprintf("fill_%d.bin", idx))
		f, err := os.Create(name)
		if err != nil {
			if isDiskFull(err) {
				break
			}
			if written == 0 {
				return 0, err
			}
			break
		}
		for _, k := range program {
			if err := pattern.Fill(buf, k); err != nil {
				f.Close()
				return written, err
			}
			if _, err := f.Write(buf); err != nil {
				f.Close()
				if isDiskFull(err) {
					return written, nil
				}
				return written, err
			}
			written += uint64(len(buf))
		}
		f.Sync()
		f.Close()
	}
	return written, nil
}

// isDiskFull recognizes the out-of-space condition across platforms.
// It first compares against the platform's no-space errno with
// errors.Is; since Go's os package has no portable ErrNoSpace, it then
// falls back to matching the error text.
func isDiskFull(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, syscallENOSPC) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "no space left") ||
		strings.Contains(s, "disk full") ||
		strings.Contains(s, "not enough space") ||
		strings.Contains(s, "disk is full") ||
		strings.Contains(s, "error_disk_full") ||
		strings.Contains(s, "error_handle_disk_full")
}

// diskFree returns free bytes on the filesystem containing mountPoint.
func diskFree(mountPoint string) (uint64, error) {
	return statfsFree(mountPoint)
}

// format reinitializes the filesystem at mountPoint. Only attempted
// when allow is set; otherwise the step is recorded as skipped, never
// as a hard failure (spec §4.10 step 2).
func format(mountPoint, fsType string, allow bool) error {
	if !allow {
		return fmt.Errorf("format skipped: AllowFormat not set")
	}
	if runtime.GOOS == "windows" {
		if _, err := exec.LookPath("format.com"); err != nil {
			return fmt.Errorf("format.com not present: %w", err)
		}
		drive := strings.TrimSuffix(mountPoint, `\`)
		return exec.Command("format.com", drive, "/Q", "/Y").Run()
	}
	if fsType == "" {
		return fmt.Errorf("format skipped: filesystem type unknown")
	}
	util := "mkfs." + fsType
	if _, err := exec.LookPath(util); err != nil {
		return fmt.Errorf("%s not present: %w", util, err)
	}
	dev, err := sourceDevice(mountPoint)
	if err != nil {
		return err
	}
	return exec.Command(util, dev).Run()
}

func controllerErase(devicePath string) error {
	if devicePath == "" {
		return fmt.Errorf("no device path available")
	}
	util := "hdparm"
	if runtime.GOOS == "windows" {
		util = "format.com"
	}
	if _, err := exec.LookPath(util); err != nil {
		return fmt.Errorf("controller erase utility %s not present: %w", util, err)
	}
	// Security-erase unlock/erase sequences vary per vendor; hdparm's
	// --security-erase requires a prior --security-set-pass and is
	// skipped here rather than guessed at.
	return fmt.Errorf("controller erase utility present but vendor-specific erase sequence not attempted")
}
