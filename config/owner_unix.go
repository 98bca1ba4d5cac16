//go:build !windows

package config

import (
	"errors"
	"io/fs"
	"os"
	"syscall"
)

// keepOwner gives path the owner and group recorded in previous. Only root can
// hand a file to someone else; for anyone else the call is a no-op when the
// ids already match and is skipped when they don't.
func keepOwner(path string, previous os.FileInfo) error {
	st, ok := previous.Sys().(*syscall.Stat_t)
	if !ok {
		return nil
	}
	if err := os.Chown(path, int(st.Uid), int(st.Gid)); err != nil && !errors.Is(err, fs.ErrPermission) {
		return err
	}
	return nil
}
