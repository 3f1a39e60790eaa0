// Package verify implements the engine's post-wipe sampled checks
// (C12): file-level (C12.a) and device-level (C12.b).
package verify

import (
	"crypto/rand"
	"math/big"
	"os"

	"wipeengine/internal/digest"
	"wipeengine/internal/pattern"
)

const (
	fileSampleWindow   = 1024 // bytes, spec §4.12
	fileMaxSamples     = 10
	passRateThreshold  = 0.8
	randomUniqueFactor = 0.25
)

// FileRecord is the per-file verification detail (spec §3's
// VerificationRecord).
type FileRecord struct {
	FileExists     bool
	FileAccessible bool
	SamplesTotal   int
	SamplesPassed  int
	HashChanged    bool
	Verified       bool
}

// File implements C12.a. path is expected to have already been removed
// by the overwriter; if it still exists, File samples its content
// against last (the final pass's pattern) and compares against
// originalHash when one was captured.
func File(path string, originalHash string, last pattern.Kind) *FileRecord {
	rec := &FileRecord{}

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		rec.FileExists = false
		rec.HashChanged = true
		rec.Verified = true
		return rec
	}
	if err != nil {
		rec.FileExists = true
		rec.FileAccessible = false
		return rec
	}
	defer f.Close()

	rec.FileExists = true
	rec.FileAccessible = true

	info, err := f.Stat()
	if err != nil {
		return rec
	}
	size := info.Size()

	if originalHash != "" {
		if currentHash, err := digest.SumFile(path); err == nil {
			rec.HashChanged = currentHash != originalHash
		}
	} else {
		rec.HashChanged = true
	}

	samples := fileMaxSamples
	if int64(samples) > size {
		samples = int(size)
	}
	rec.SamplesTotal = samples

	buf := make([]byte, fileSampleWindow)
	for i := 0; i < samples; i++ {
		n := fileSampleWindow
		if int64(n) > size {
			n = int(size)
		}
		offset, err := randomOffset(size - int64(n))
		if err != nil {
			continue
		}
		read, err := f.ReadAt(buf[:n], offset)
		if err != nil && read == 0 {
			continue
		}
		if windowMatchesPattern(buf[:read], last) {
			rec.SamplesPassed++
		}
	}

	rec.Verified = rec.HashChanged && float64(rec.SamplesPassed) >= passRateThreshold*float64(rec.SamplesTotal)
	return rec
}

func windowMatchesPattern(window []byte, k pattern.Kind) bool {
	switch k {
	case pattern.Zero:
		return allBytesEqual(window, 0x00)
	case pattern.One:
		return allBytesEqual(window, 0xFF)
	default:
		return uniqueByteCount(window) > int(randomUniqueFactor*float64(len(window)))
	}
}

func allBytesEqual(buf []byte, b byte) bool {
	for _, v := range buf {
		if v != b {
			return false
		}
	}
	return true
}

func uniqueByteCount(buf []byte) int {
	var seen [256]bool
	count := 0
	for _, b := range buf {
		if !seen[b] {
			seen[b] = true
			count++
		}
	}
	return count
}

func randomOffset(max int64) (int64, error) {
	if max <= 0 {
		return 0, nil
	}
	n, err := rand.Int(rand.Reader, big.NewInt(max+1))
	if err != nil {
		return 0, err
	}
	return n.Int64(), nil
}
