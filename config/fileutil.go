package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// AtomicWriteFile replaces the file at path with data through a temporary file
// and a rename, so readers never see a partial write.
//
// A symlink at path is followed and the file it points to is replaced; the link
// itself is left alone. When the file already exists its owner is kept, which
// matters when the tool runs under sudo for another user's file.
func AtomicWriteFile(path string, data []byte, perm os.FileMode) error {
	target, err := ResolveTarget(path)
	if err != nil {
		return err
	}
	previous, statErr := os.Stat(target)

	tmp, err := os.CreateTemp(filepath.Dir(target), filepath.Base(target)+".tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	defer func() {
		if err != nil {
			os.Remove(tmpPath)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// CreateTemp uses 0600 and OpenFile's mode would be narrowed by the umask.
	if err = os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("failed to set temp file permissions: %w", err)
	}
	if statErr == nil {
		if err = keepOwner(tmpPath, previous); err != nil {
			return fmt.Errorf("failed to keep file owner: %w", err)
		}
	}

	if err = os.Rename(tmpPath, target); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// ResolveTarget returns the file that writing to path should replace. Symlinks
// are followed, including one whose target does not exist yet. Any other path
// is returned unchanged.
func ResolveTarget(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err == nil {
		return resolved, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	link, err := os.Readlink(path)
	if err != nil {
		// Not a symlink, or nothing there yet.
		return path, nil
	}
	if !filepath.IsAbs(link) {
		link = filepath.Join(filepath.Dir(path), link)
	}
	return link, nil
}
