//go:build linux || darwin || freebsd || netbsd || openbsd

package prompt

import (
	"errors"

	"golang.org/x/sys/unix"
)

const (
	canPoll        = true
	pollIntervalMs = 50
)

// readable reports whether fd has input, or has hung up, within one poll interval.
func readable(fd uintptr) (bool, error) {
	fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}

	n, err := unix.Poll(fds, pollIntervalMs)
	if errors.Is(err, unix.EINTR) {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	return n > 0, nil
}
