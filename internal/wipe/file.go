package wipe

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"wipeengine/internal/digest"
	"wipeengine/internal/pattern"
	"wipeengine/internal/verify"
)

const chunkSize = 1 << 20 // 1 MiB, spec §4.6 step 3

// OverwriteFile implements C6: it overwrites path in place following the
// method's pass program, then obscures and removes it. path must already
// be a regular, accessible file.
func OverwriteFile(req *Request, path string) *FileWipeOutcome {
	out := &FileWipeOutcome{Path: path, MethodUsed: req.Method, Status: StatusSuccess}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		out.Status = StatusSuccess
		return out
	}
	if err != nil {
		out.Status = StatusFailed
		out.Error = targetErr(path, ErrNotAccessible, err.Error())
		return out
	}
	if !info.Mode().IsRegular() {
		out.Status = StatusFailed
		out.Error = targetErr(path, ErrNotAFile, "")
		return out
	}
	size := info.Size()

	// Step 1: clear read-only where it exists; failure is non-fatal.
	_ = os.Chmod(path, info.Mode()|0o600)

	if req.Verify && size > 0 {
		if h, err := digest.SumFile(path); err == nil {
			out.OriginalHash = h
		}
	}

	program, err := pattern.Program(req.Method)
	if err != nil {
		out.Status = StatusFailed
		out.Error = fmt.Errorf("wipe: %w", err)
		return out
	}

	if size > 0 {
		passes, werr := overwritePasses(req, path, size, program)
		out.PassesCompleted = passes
		if werr != nil {
			if errors.Is(werr, ErrCancelled) {
				// Partial writes already issued are left as-is; the
				// target is not deleted or renamed on cancellation.
				out.Status = StatusCancelled
				out.Error = werr
				return out
			}
			_ = os.Remove(path)
			out.Status = StatusFailed
			out.Error = werr
			return out
		}
	}

	wipeSlackSpace(path, size) // best-effort, step 4

	finalPath := obscureFilename(path) // best-effort, step 5

	if err := os.Remove(finalPath); err != nil {
		if !os.IsNotExist(err) {
			out.Status = StatusFailed
			out.Error = targetErr(path, ErrDeleteFailed, err.Error())
			return out
		}
	}
	if _, err := os.Stat(finalPath); err == nil {
		out.Status = StatusFailed
		out.Error = targetErr(path, ErrDeleteFailed, "file still present after unlink")
		return out
	}

	if req.Verify {
		rec := verify.File(path, out.OriginalHash, lastPattern(program))
		out.Verification = rec
		out.VerifiedChanged = rec.Verified
	} else {
		out.VerifiedChanged = true
	}

	return out
}

func lastPattern(program []pattern.Kind) pattern.Kind {
	if len(program) == 0 {
		return pattern.Random
	}
	return program[len(program)-1]
}

// overwritePasses runs each pass of program against path, returning the
// number of passes that fully completed (write + fsync). The chunk size
// comes from req.ChunkSize (profile-driven) when set, and writes are
// paced to req.MaxSpeedMBps when it is non-zero.
func overwritePasses(req *Request, path string, size int64, program []pattern.Kind) (int, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return 0, targetErr(path, ErrOverwriteFailed, err.Error())
	}
	defer f.Close()

	chunk := chunkSize
	if req.ChunkSize > 0 {
		chunk = req.ChunkSize
	}
	buf := pattern.Get(chunk)
	defer pattern.Put(buf)

	limiter := &pattern.SpeedLimiter{MaxMBps: req.MaxSpeedMBps}

	completed := 0
	for _, k := range program {
		if req.Cancel != nil && req.Cancel() {
			return completed, ErrCancelled
		}
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return completed, targetErr(path, ErrOverwriteFailed, err.Error())
		}
		var written int64
		for written < size {
			n := int64(chunk)
			if remaining := size - written; remaining < n {
				n = remaining
			}
			if err := pattern.Fill(buf[:n], k); err != nil {
				return completed, targetErr(path, ErrOverwriteFailed, err.Error())
			}
			limiter.Wait(int(n))
			if _, err := f.Write(buf[:n]); err != nil {
				return completed, targetErr(path, ErrOverwriteFailed, err.Error())
			}
			written += n
			if req.Progress != nil {
				pct := int(float64(written) * 100 / float64(size))
				req.Progress(pct, fmt.Sprintf("pass %s: %d/%d bytes", k, written, size))
			}
			if req.Cancel != nil && req.Cancel() {
				return completed, ErrCancelled
			}
		}
		if err := f.Sync(); err != nil {
			return completed, targetErr(path, ErrOverwriteFailed, err.Error())
		}
		completed++
	}
	return completed, nil
}

// wipeSlackSpace extends the file by one block past its logical end,
// flushes, then truncates back. Best-effort per spec §4.6 step 4.
func wipeSlackSpace(path string, originalSize int64) {
	const blockSize = 4096
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return
	}
	defer f.Close()

	zeros := make([]byte, blockSize)
	if _, err := f.WriteAt(zeros, originalSize); err != nil {
		return
	}
	_ = f.Sync()
	_ = f.Truncate(originalSize)
	_ = f.Sync()
}

// obscureFilename renames path to a random 16-hex-digit name up to 3
// times, returning the final name it landed on. Best-effort per spec
// §4.6 step 5: any failure leaves path under its original name.
func obscureFilename(path string) string {
	dir := filepath.Dir(path)
	current := path
	for i := 0; i < 3; i++ {
		name, err := randomHexName()
		if err != nil {
			return current
		}
		next := filepath.Join(dir, name)
		if err := os.Rename(current, next); err != nil {
			return current
		}
		current = next
	}
	return current
}

func randomHexName() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
