package wipe

import (
	"os"
	"path/filepath"
)

// WipeVolume implements C8: a Folder Wiper scoped to a mounted volume's
// root, plus a residual sweep that force-unlinks anything left behind.
// The mount point itself is never removed.
func WipeVolume(req *Request, mountPoint string) *FolderReport {
	entries, err := os.ReadDir(mountPoint)
	if err != nil {
		return &FolderReport{Residual: []string{mountPoint}}
	}

	rep := &FolderReport{}
	for _, e := range entries {
		if req.Cancel != nil && req.Cancel() {
			break
		}
		child := filepath.Join(mountPoint, e.Name())
		if e.IsDir() {
			sub := WipeFolder(req, child)
			rep.Files = append(rep.Files, sub.Files...)
			rep.FilesTotal += sub.FilesTotal
			rep.FilesSucceeded += sub.FilesSucceeded
			rep.Residual = append(rep.Residual, sub.Residual...)
			continue
		}
		rep.FilesTotal++
		outcome := OverwriteFile(req, child)
		rep.Files = append(rep.Files, *outcome)
		if outcome.Status == StatusSuccess {
			rep.FilesSucceeded++
		}
	}

	residualSweep(mountPoint, rep)
	rep.RootRemoved = false // mount point is never removed, per spec §4.8
	return rep
}

// residualSweep re-walks the volume and force-unlinks any regular file
// that reappeared or was missed by the main pass.
func residualSweep(mountPoint string, rep *FolderReport) {
	_ = filepath.WalkDir(mountPoint, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil || path == mountPoint {
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if err := os.Remove(path); err != nil {
			rep.Residual = append(rep.Residual, path)
		}
		return nil
	})
}
