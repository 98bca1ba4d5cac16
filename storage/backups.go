package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Backup is a copy of storage.json made before a save.
type Backup struct {
	Path      string
	CreatedAt time.Time
	Size      int64
}

// Backups lists the backups of the storage file, newest first.
func (s *Store) Backups() ([]Backup, error) {
	dir, base := filepath.Dir(s.path), filepath.Base(s.path)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list backups: %w", err)
	}

	var backups []Backup
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, base+".") || !strings.HasSuffix(name, ".bak") {
			continue
		}
		stamp := strings.TrimSuffix(strings.TrimPrefix(name, base+"."), ".bak")
		secs, err := strconv.ParseInt(stamp, 10, 64)
		if err != nil {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			s.logger.Warnf("failed to stat backup %s: %v", name, err)
			continue
		}
		backups = append(backups, Backup{
			Path:      filepath.Join(dir, name),
			CreatedAt: time.Unix(secs, 0),
			Size:      info.Size(),
		})
	}

	slices.SortFunc(backups, func(a, b Backup) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return backups, nil
}
