// Package rawwipe implements the raw device wiper (C9): it opens a
// physical device with write-through semantics and overwrites every
// sector with the selected method's pass program.
package rawwipe

import (
	"errors"
	"fmt"
	"runtime"

	"wipeengine/internal/blockdevice"
	"wipeengine/internal/pattern"
	"wipeengine/internal/verify"
)

const (
	chunkSize  = 1 << 20 // 1 MiB, spec §4.9 step 4
	sectorSize = 512
)

// ErrPrivilegesRequired backs spec §7's PrivilegesRequired.
var ErrPrivilegesRequired = errors.New("rawwipe: elevated privileges required")

// ErrCancelled backs spec §5's cooperative cancellation: partial writes
// already issued are left as-is, and PassesCompleted reflects only the
// passes that finished before the cancel was observed.
var ErrCancelled = errors.New("rawwipe: cancelled")

// Outcome mirrors wipe.DeviceWipeOutcome's fields without importing the
// wipe package, which would create an import cycle (the dispatcher in
// wipe imports rawwipe, not the reverse).
type Outcome struct {
	DevicePath      string
	TotalSize       uint64
	TotalSectors    uint64
	PassesCompleted int
	Verification    *verify.DeviceRecord
	Err             error
}

// ProgressFunc mirrors wipe.ProgressFunc.
type ProgressFunc func(percent int, message string)

// Options configures a Wipe call.
type Options struct {
	Method       pattern.Method
	Verify       bool
	IsPrivileged func() bool
	Progress     ProgressFunc
	Cancel       func() bool

	// MaxSpeedMBps caps write throughput across all passes (0 =
	// uncapped), normally set from the active profile.
	MaxSpeedMBps float64

	// ChunkSize overrides the I/O chunk size used by the pass loop (0 =
	// use the package default), normally set from the active profile.
	ChunkSize int
}

// Wipe implements C9 end to end against devicePath.
func Wipe(devicePath string, opts Options) *Outcome {
	out := &Outcome{DevicePath: devicePath}

	privileged := true
	if opts.IsPrivileged != nil {
		privileged = opts.IsPrivileged()
	}
	if !privileged {
		out.Err = ErrPrivilegesRequired
		return out
	}

	dev, err := blockdevice.Open(devicePath, true)
	if err != nil {
		out.Err = fmt.Errorf("rawwipe: device open failed (%s): %w", runtime.GOOS, err)
		return out
	}
	defer dev.Close()

	size, err := dev.Size()
	if err != nil {
		out.Err = fmt.Errorf("rawwipe: device size unknown: %w", err)
		return out
	}
	out.TotalSize = size
	out.TotalSectors = size / sectorSize

	program, err := pattern.Program(opts.Method)
	if err != nil {
		out.Err = err
		return out
	}

	chunk := chunkSize
	if opts.ChunkSize > 0 {
		chunk = opts.ChunkSize
	}
	buf := pattern.Get(chunk)
	defer pattern.Put(buf)

	limiter := &pattern.SpeedLimiter{MaxMBps: opts.MaxSpeedMBps}

	for _, k := range program {
		if opts.Cancel != nil && opts.Cancel() {
			out.Err = ErrCancelled
			return out
		}
		if err := writePass(dev, buf, size, chunk, k, opts.Progress, opts.Cancel, limiter); err != nil {
			out.Err = err
			return out
		}
		if err := dev.Flush(); err != nil {
			out.Err = fmt.Errorf("rawwipe: flush after pass failed: %w", err)
			return out
		}
		out.PassesCompleted++
	}

	_ = dev.Discard(0, int64(size)) // best-effort TRIM, spec §9

	if opts.Verify {
		out.Verification = verify.Device(dev, int64(size), lastPattern(program), len(program))
	}
	return out
}

// writePass writes one pass of k across dev, polling cancel at each
// chunk boundary (spec §5) and pacing writes through limiter.
func writePass(dev blockdevice.Device, buf []byte, size uint64, chunk int, k pattern.Kind, progress ProgressFunc, cancel func() bool, limiter *pattern.SpeedLimiter) error {
	var written uint64
	for written < size {
		if cancel != nil && cancel() {
			return ErrCancelled
		}
		n := uint64(chunk)
		if remaining := size - written; remaining < n {
			n = remaining - (remaining % sectorSize)
			if n == 0 {
				n = remaining // final, sub-sector tail
			}
		}
		if err := pattern.Fill(buf[:n], k); err != nil {
			return err
		}
		limiter.Wait(int(n))
		w, err := dev.WriteAt(buf[:n], int64(written))
		if err != nil || uint64(w) != n {
			return &WriteFailedError{Sector: written / sectorSize, Err: err}
		}
		written += n
		if progress != nil {
			progress(int(written*100/size), fmt.Sprintf("pass %s: %d/%d bytes", k, written, size))
		}
		if cancel != nil && cancel() {
			return ErrCancelled
		}
	}
	return nil
}

func lastPattern(program []pattern.Kind) pattern.Kind {
	if len(program) == 0 {
		return pattern.Random
	}
	return program[len(program)-1]
}

// WriteFailedError backs spec §7's DeviceWriteFailed{sector}.
type WriteFailedError struct {
	Sector uint64
	Err    error
}

func (e *WriteFailedError) Error() string {
	return fmt.Sprintf("rawwipe: write failed at sector %d: %v", e.Sector, e.Err)
}

func (e *WriteFailedError) Unwrap() error { return e.Err }
