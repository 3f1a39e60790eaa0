package wipe

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"wipeengine/internal/drive"
	"wipeengine/internal/flashwipe"
	"wipeengine/internal/rawwipe"
	"wipeengine/internal/safety"
)

// Dispatcher implements C11: it owns the single-flight lock required by
// §5 ("only one wipe may execute at a time per process") and routes a
// Request to the right wiper after the safety guard and classifier run.
type Dispatcher struct {
	Guard        *safety.Guard
	Probe        drive.Probe
	IsPrivileged func() bool

	mu   sync.Mutex
	busy bool
}

// NewDispatcher builds a Dispatcher with the platform-default probe and
// a guard carrying no extra deny paths beyond the hard-coded baseline.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		Guard:        &safety.Guard{},
		Probe:        drive.DefaultProbe(),
		IsPrivileged: defaultIsPrivileged,
	}
}

// Dispatch implements C11 end to end.
func (d *Dispatcher) Dispatch(req *Request) *Report {
	if !d.tryAcquire() {
		return &Report{Target: req.Target, Status: StatusFailed, Error: ErrBusy}
	}
	defer d.release()

	rep := &Report{Target: req.Target, Method: req.Method, StartedAt: now()}
	defer func() { rep.EndedAt = now() }()

	target := filepath.Clean(req.Target)
	rep.Target = target

	if err := d.Guard.Check(target); err != nil {
		rep.Status = StatusFailed
		rep.Error = err
		return rep
	}

	var kind Kind
	if looksLikeRawDevicePath(target) {
		kind = KindRawDevice
	} else {
		info, err := os.Stat(target)
		if err != nil {
			rep.Status = StatusFailed
			if os.IsNotExist(err) {
				rep.Error = targetErr(target, ErrPathNotFound, "")
			} else {
				rep.Error = targetErr(target, ErrNotAccessible, err.Error())
			}
			return rep
		}
		kind = d.classifyKind(target, info)
	}
	rep.Kind = kind

	switch kind {
	case KindFile:
		out := OverwriteFile(req, target)
		rep.File = out
		rep.Status = out.Status
		rep.Error = out.Error

	case KindDirectory:
		folder := WipeFolder(req, target)
		rep.Folder = folder
		rep.Status = statusFromFolder(folder)
		if rep.Status == StatusSuccess && !folder.RootRemoved {
			rep.Status = StatusPartial
			rep.Error = targetErr(target, ErrDirectoryNotRemoved, "")
		}

	case KindMountedVolume:
		rep.Status, rep.Device, rep.Folder = d.dispatchVolume(req, target)

	case KindRawDevice:
		out := rawwipe.Wipe(target, rawwipe.Options{
			Method:       req.Method,
			Verify:       req.Verify,
			IsPrivileged: d.IsPrivileged,
			Progress:     rawwipe.ProgressFunc(req.Progress),
			Cancel:       req.Cancel,
			MaxSpeedMBps: req.MaxSpeedMBps,
			ChunkSize:    req.ChunkSize,
		})
		dout := toDeviceOutcome(out)
		rep.Device = &DeviceReport{Device: dout, Type: drive.Classify(target, d.Probe)}
		rep.Status = dout.Status
		rep.Error = dout.Error
	}

	if req.Cancel != nil && req.Cancel() && rep.Status != StatusFailed {
		rep.Status = StatusCancelled
	}

	return rep
}

func (d *Dispatcher) dispatchVolume(req *Request, target string) (Status, *DeviceReport, *FolderReport) {
	typ := drive.Classify(target, d.Probe)

	if typ == drive.USBFlash {
		out := flashwipe.Wipe(target, flashwipe.Options{
			Method:       req.Method,
			DevicePath:   resolveDeviceNode(target),
			Privileged:   req.PreferRaw && d.IsPrivileged(),
			AllowFormat:  req.AllowFormat,
			ProgressFunc: req.Progress,
			Cancel:       req.Cancel,
			MaxSpeedMBps: req.MaxSpeedMBps,
			ChunkSize:    req.ChunkSize,
		})
		steps := make([]StepStatus, len(out.Steps))
		for i, s := range out.Steps {
			steps[i] = StepStatus{Name: s.Name, Succeeded: s.Succeeded, Detail: s.Detail}
		}
		dr := &DeviceReport{Steps: steps, Type: typ}
		status := StatusSuccess
		if out.Device != nil {
			dout := toDeviceOutcome(out.Device)
			dr.Device = dout
			status = dout.Status
		} else if out.Err != nil {
			status = StatusFailed
		}
		return status, dr, nil
	}

	if req.PreferRaw && d.IsPrivileged() {
		devPath := resolveDeviceNode(target)
		out := rawwipe.Wipe(devPath, rawwipe.Options{
			Method:       req.Method,
			Verify:       req.Verify,
			IsPrivileged: d.IsPrivileged,
			Progress:     rawwipe.ProgressFunc(req.Progress),
			Cancel:       req.Cancel,
			MaxSpeedMBps: req.MaxSpeedMBps,
			ChunkSize:    req.ChunkSize,
		})
		dout := toDeviceOutcome(out)
		dr := &DeviceReport{Device: dout, Type: typ}
		return dout.Status, dr, nil
	}

	folder := WipeVolume(req, target)
	return statusFromFolder(folder), nil, folder
}

func toDeviceOutcome(out *rawwipe.Outcome) *DeviceWipeOutcome {
	o := &DeviceWipeOutcome{
		DevicePath:      out.DevicePath,
		TotalSize:       out.TotalSize,
		TotalSectors:    out.TotalSectors,
		PassesCompleted: out.PassesCompleted,
		Verification:    out.Verification,
	}
	switch {
	case out.Err == nil:
		o.Status = StatusSuccess
	case errors.Is(out.Err, rawwipe.ErrCancelled):
		// Partial writes already issued are left as-is; PassesCompleted
		// reflects only the passes that finished before cancellation.
		o.Status = StatusCancelled
		o.Error = out.Err
	default:
		o.Status = StatusFailed
		o.Error = out.Err
	}
	return o
}

func statusFromFolder(f *FolderReport) Status {
	clean := len(f.Residual) == 0 && f.FilesSucceeded == f.FilesTotal
	if clean {
		return StatusSuccess
	}
	if f.FilesSucceeded > 0 {
		return StatusPartial
	}
	return StatusFailed
}

// classifyKind derives a Kind the way C11 requires: regular file, a
// directory that isn't itself a mount point, a mounted volume, or a
// raw device node.
func (d *Dispatcher) classifyKind(target string, info os.FileInfo) Kind {
	if info.Mode().IsRegular() {
		return KindFile
	}
	if isDeviceNode(info) {
		return KindRawDevice
	}
	if info.IsDir() {
		if isMountPoint(target) {
			return KindMountedVolume
		}
		return KindDirectory
	}
	return KindDirectory
}

func (d *Dispatcher) tryAcquire() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.busy {
		return false
	}
	d.busy = true
	return true
}

func (d *Dispatcher) release() {
	d.mu.Lock()
	d.busy = false
	d.mu.Unlock()
}

// looksLikeRawDevicePath recognizes device node paths that os.Stat
// either cannot resolve (Windows \\.\ handles) or resolves to a
// character/block special file (Linux /dev/*) before attempting Stat.
func looksLikeRawDevicePath(target string) bool {
	if strings.HasPrefix(target, `\\.\`) {
		return true
	}
	return strings.HasPrefix(target, "/dev/") && !strings.Contains(target[5:], "/")
}

func isDeviceNode(info os.FileInfo) bool {
	return info.Mode()&os.ModeDevice != 0
}

func isMountPoint(target string) bool {
	entries, err := drive.Enumerate()
	if err != nil {
		return false
	}
	for _, e := range entries {
		if filepath.Clean(e.Path) == target {
			return true
		}
	}
	return false
}

// resolveDeviceNode maps a mount path to its backing device node. On
// failure it returns target unchanged, which will fail later with a
// typed device-open error rather than silently no-op.
func resolveDeviceNode(target string) string {
	if strings.HasPrefix(target, "/dev/") || strings.HasPrefix(target, `\\.\`) {
		return target
	}
	entries, err := drive.Enumerate()
	if err != nil {
		return target
	}
	for _, e := range entries {
		if filepath.Clean(e.Path) == target && e.Device != "" {
			return e.Device
		}
	}
	return target
}

func now() time.Time {
	return time.Now()
}
