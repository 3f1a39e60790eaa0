// Package drive implements drive enumeration and classification (C3, C4).
package drive

// Type classifies the storage medium backing a target.
type Type string

const (
	HDD      Type = "hdd"
	SSD      Type = "ssd"
	USBFlash Type = "usb_flash"
	Unknown  Type = "unknown"
)

// Info describes one mountable volume or physical device.
type Info struct {
	Path   string // mount point (POSIX) or drive root (Windows)
	Label  string // human-facing label; falls back to the device name
	Device string // backing device node, e.g. "/dev/sda1" or "\\.\C:"
	Total  uint64
	Free   uint64
	Used   uint64
}

// Probe isolates the OS-specific queries the classifier needs behind an
// interface, so platform code stays out of the classification logic and
// tests can inject fakes (spec §9, "Classifier heuristics").
type Probe interface {
	// Removable reports whether the OS flags the device as removable/USB.
	// ok is false when the probe could not determine an answer.
	Removable(path string) (removable bool, ok bool)
	// Rotational reports the OS rotational flag: true for spinning media,
	// false for solid-state. ok is false when undetermined.
	Rotational(path string) (rotational bool, ok bool)
	// MediaHint returns a lowercase interface/media hint such as "nvme",
	// "ssd", or "hdd" scraped from device metadata, if any.
	MediaHint(path string) string
}
