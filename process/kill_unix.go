//go:build !windows

package process

import "golang.org/x/sys/unix"

func killProcess(pid int) error {
	return unix.Kill(pid, unix.SIGKILL)
}
