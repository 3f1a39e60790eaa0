package drive

import "strings"

// Classify applies the ordered heuristics from spec §4.4: the first
// conclusive signal wins. Classification never fails; an inconclusive
// target is Unknown.
func Classify(path string, probe Probe) Type {
	if probe != nil {
		if removable, ok := probe.Removable(path); ok && removable {
			return USBFlash
		}
		if rotational, ok := probe.Rotational(path); ok {
			if rotational {
				return HDD
			}
			return SSD
		}
		switch strings.ToLower(probe.MediaHint(path)) {
		case "nvme", "ssd":
			return SSD
		case "hdd":
			return HDD
		}
	}
	return lexicalHint(path)
}

// lexicalHint is the last-resort heuristic: scan the device name itself.
func lexicalHint(path string) Type {
	lower := strings.ToLower(path)
	switch {
	case strings.Contains(lower, "nvme"), strings.Contains(lower, "ssd"):
		return SSD
	case strings.Contains(lower, "usb"), strings.Contains(lower, "flash"):
		return USBFlash
	case strings.Contains(lower, "hdd"):
		return HDD
	default:
		return Unknown
	}
}
