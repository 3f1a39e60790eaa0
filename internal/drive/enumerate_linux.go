//go:build linux

package drive

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

// pseudoFilesystems are mount table entries that never represent a
// wipeable volume; surfacing them would make "enumerate" lie about what a
// caller could target.
var pseudoFilesystems = map[string]bool{
	"proc": true, "sysfs": true, "devtmpfs": true, "devpts": true,
	"tmpfs": true, "cgroup": true, "cgroup2": true, "overlay": true,
	"squashfs": true, "autofs": true, "mqueue": true, "debugfs": true,
	"tracefs": true, "securityfs": true, "pstore": true, "bpf": true,
	"configfs": true, "fusectl": true, "hugetlbfs": true,
}

// Enumerate lists mounted volumes via /proc/mounts, per spec §4.3: real
// mount points with a real filesystem type, each annotated with usage.
// A read failure on /proc/mounts itself is reported; a single volume's
// usage query failing yields zeroed size fields rather than truncating
// the list.
func Enumerate() ([]Info, error) {
	f, err := os.Open("/proc/mounts")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEnumerationFailed, err)
	}
	defer f.Close()

	seen := make(map[string]bool)
	var out []Info

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 {
			continue
		}
		device, point, fstype := fields[0], fields[1], fields[2]
		if pseudoFilesystems[fstype] || !strings.HasPrefix(device, "/dev/") {
			continue
		}
		if seen[point] {
			continue
		}
		seen[point] = true

		info := Info{Path: point, Label: filepath.Base(device), Device: device}
		total, free, used, ok := usage(point)
		if ok {
			info.Total, info.Free, info.Used = total, free, used
		}
		out = append(out, info)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEnumerationFailed, err)
	}
	return out, nil
}

func usage(mountPoint string) (total, free, used uint64, ok bool) {
	var st unix.Statfs_t
	if err := unix.Statfs(mountPoint, &st); err != nil {
		return 0, 0, 0, false
	}
	bsize := uint64(st.Bsize)
	total = st.Blocks * bsize
	free = st.Bfree * bsize
	used = total - free
	return total, free, used, true
}
