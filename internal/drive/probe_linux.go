//go:build linux

package drive

import (
	"bufio"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// LinuxProbe reads removable/rotational flags from sysfs, the way the
// kernel itself exposes them to userspace tools like lsblk.
type LinuxProbe struct{}

func (LinuxProbe) Removable(path string) (bool, bool) {
	disk := diskName(resolveDevice(path))
	if disk == "" {
		return false, false
	}
	v, ok := readSysfsFlag(filepath.Join("/sys/block", disk, "removable"))
	return v, ok
}

func (LinuxProbe) Rotational(path string) (bool, bool) {
	disk := diskName(resolveDevice(path))
	if disk == "" {
		return false, false
	}
	v, ok := readSysfsFlag(filepath.Join("/sys/block", disk, "queue", "rotational"))
	return v, ok
}

func (LinuxProbe) MediaHint(path string) string {
	dev := resolveDevice(path)
	disk := diskName(dev)
	if disk == "" {
		return ""
	}
	if strings.HasPrefix(disk, "nvme") {
		return "nvme"
	}
	model, err := os.ReadFile(filepath.Join("/sys/block", disk, "device", "model"))
	if err == nil {
		return strings.ToLower(strings.TrimSpace(string(model)))
	}
	return ""
}

func readSysfsFlag(path string) (bool, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return false, false
	}
	return n != 0, true
}

// resolveDevice maps a mount point or raw path to its backing device node
// by scanning /proc/mounts for the longest matching prefix. If path is
// already a device node (e.g. /dev/sdb), it is returned unchanged.
func resolveDevice(path string) string {
	if strings.HasPrefix(path, "/dev/") {
		return path
	}

	f, err := os.Open("/proc/mounts")
	if err != nil {
		return ""
	}
	defer f.Close()

	type mount struct{ device, point string }
	var mounts []mount

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		mounts = append(mounts, mount{device: fields[0], point: fields[1]})
	}

	sort.Slice(mounts, func(i, j int) bool {
		return len(mounts[i].point) > len(mounts[j].point)
	})

	for _, m := range mounts {
		if path == m.point || strings.HasPrefix(path, strings.TrimSuffix(m.point, "/")+"/") {
			return m.device
		}
	}
	return ""
}

// diskName strips a partition suffix from a device node, e.g.
// /dev/sda1 -> sda, /dev/nvme0n1p2 -> nvme0n1.
func diskName(dev string) string {
	name := strings.TrimPrefix(dev, "/dev/")
	if name == "" {
		return ""
	}
	if strings.HasPrefix(name, "nvme") {
		if i := strings.Index(name, "p"); i > 0 {
			if _, err := strconv.Atoi(name[i+1:]); err == nil {
				return name[:i]
			}
		}
		return name
	}
	i := len(name)
	for i > 0 && name[i-1] >= '0' && name[i-1] <= '9' {
		i--
	}
	return name[:i]
}
