//go:build linux

package flashwipe

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/sys/unix"
)

var syscallENOSPC = unix.ENOSPC

func statfsFree(path string) (uint64, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return 0, err
	}
	return uint64(st.Bavail) * uint64(st.Bsize), nil
}

// sourceDevice resolves mountPoint to its backing device via
// /proc/mounts, the same lookup internal/drive's Linux probe uses.
func sourceDevice(mountPoint string) (string, error) {
	f, err := os.Open("/proc/mounts")
	if err != nil {
		return "", err
	}
	defer f.Close()

	best := ""
	bestDevice := ""
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		if strings.HasPrefix(mountPoint, fields[1]) && len(fields[1]) > len(best) {
			best = fields[1]
			bestDevice = fields[0]
		}
	}
	if bestDevice == "" {
		return "", fmt.Errorf("flashwipe: could not resolve device for %s", mountPoint)
	}
	return bestDevice, nil
}
