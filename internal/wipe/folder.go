package wipe

import (
	"os"
	"path/filepath"
)

// WipeFolder implements C7: a post-order depth-first traversal that
// overwrites every regular file via OverwriteFile, then removes
// directories bottom-up. root is removed last; if it survives, the
// report carries ErrDirectoryNotRemoved.
func WipeFolder(req *Request, root string) *FolderReport {
	rep := &FolderReport{}

	entries, dirs, err := walkPostOrder(root)
	if err != nil {
		rep.Residual = append(rep.Residual, root)
		return rep
	}

	cancelled := false
	for _, path := range entries {
		if req.Cancel != nil && req.Cancel() {
			cancelled = true
			break
		}
		rep.FilesTotal++
		outcome := OverwriteFile(req, path)
		rep.Files = append(rep.Files, *outcome)
		if outcome.Status == StatusSuccess {
			rep.FilesSucceeded++
		}
		if req.Progress != nil {
			req.Progress(0, "wiped "+path)
		}
	}

	if cancelled {
		// Further work (directory removal) is abandoned on cancellation;
		// whatever files were already overwritten stay overwritten.
		return rep
	}

	// Bottom-up directory removal: dirs is already ordered deepest-first
	// by walkPostOrder.
	for _, dir := range dirs {
		if dir == root {
			continue
		}
		if err := os.Remove(dir); err != nil {
			rep.Residual = append(rep.Residual, dir)
		}
	}

	if err := os.Remove(root); err != nil {
		rep.RootRemoved = false
		rep.Residual = append(rep.Residual, root)
	} else {
		rep.RootRemoved = true
	}

	return rep
}

// walkPostOrder returns every regular file under root and every
// directory under root (root included), with directories ordered
// deepest-first so callers can remove them bottom-up.
func walkPostOrder(root string) (files []string, dirs []string, err error) {
	var dirDepths []string

	err = filepath.WalkDir(root, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			// Permission denials on intermediate entries are recorded by
			// the caller via residual tracking; the walk continues.
			return nil
		}
		if d.IsDir() {
			dirDepths = append(dirDepths, path)
			return nil
		}
		if d.Type().IsRegular() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	// Reverse so deepest directories come first.
	for i, j := 0, len(dirDepths)-1; i < j; i, j = i+1, j-1 {
		dirDepths[i], dirDepths[j] = dirDepths[j], dirDepths[i]
	}
	return files, dirDepths, nil
}
