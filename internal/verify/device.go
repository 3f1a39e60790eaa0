package verify

import (
	"crypto/rand"
	"math/big"

	"wipeengine/internal/pattern"
)

const (
	deviceSampleWindow = 1 << 20 // 1 MiB, capped to total/100 by Device
	deviceMaxSamples   = 10
	sectorSize         = 512
)

// DeviceRecord is the per-device verification detail (spec §3's
// DeviceVerification).
type DeviceRecord struct {
	SamplesTotal  int
	SamplesPassed int
	Verified      bool
	LastPattern   pattern.Kind
}

// ReaderAt is the minimal capability Device needs from a block device;
// satisfied by *os.File and wipeengine/internal/blockdevice.Device.
type ReaderAt interface {
	ReadAt(buf []byte, offset int64) (int, error)
}

// Device implements C12.b: it samples deviceMaxSamples sector-aligned
// random windows and checks each against last, the final pass's
// pattern. The unique-byte threshold is 12.5% when last is Random and
// the method was dod (three passes), 25% otherwise, per spec §4.12.
func Device(r ReaderAt, totalSize int64, last pattern.Kind, passes int) *DeviceRecord {
	rec := &DeviceRecord{LastPattern: last}
	if totalSize <= 0 {
		return rec
	}

	windowSize := int64(deviceSampleWindow)
	if maxWindow := totalSize / 100; maxWindow > 0 && maxWindow < windowSize {
		windowSize = maxWindow
	}
	windowSize -= windowSize % sectorSize
	if windowSize <= 0 {
		windowSize = sectorSize
	}

	threshold := randomUniqueFactor
	if last == pattern.Random && passes >= 3 {
		threshold = 0.125
	}

	buf := make([]byte, windowSize)
	rec.SamplesTotal = deviceMaxSamples
	for i := 0; i < deviceMaxSamples; i++ {
		maxOffset := totalSize - windowSize
		offset, err := randomSectorOffset(maxOffset)
		if err != nil {
			continue
		}
		n, err := r.ReadAt(buf, offset)
		if err != nil && n == 0 {
			continue
		}
		if deviceWindowMatches(buf[:n], last, threshold) {
			rec.SamplesPassed++
		}
	}

	rec.Verified = float64(rec.SamplesPassed) >= passRateThreshold*float64(rec.SamplesTotal)
	return rec
}

func deviceWindowMatches(window []byte, k pattern.Kind, uniqueThreshold float64) bool {
	switch k {
	case pattern.Zero:
		return allBytesEqual(window, 0x00)
	case pattern.One:
		return allBytesEqual(window, 0xFF)
	default:
		return uniqueByteCount(window) > int(uniqueThreshold*float64(len(window)))
	}
}

func randomSectorOffset(max int64) (int64, error) {
	if max <= 0 {
		return 0, nil
	}
	sectors := max / sectorSize
	n, err := rand.Int(rand.Reader, big.NewInt(sectors+1))
	if err != nil {
		return 0, err
	}
	return n.Int64() * sectorSize, nil
}
