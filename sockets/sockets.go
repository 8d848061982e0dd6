// File: sockets/sockets.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral helpers shared by the providers.

package sockets

import (
	"errors"
	"syscall"
)

// errnoOf extracts the OS error code from an error returned by the
// syscall layer. Falls back to EINVAL when no errno is attached so the
// structured errors never carry a zero code for a real failure.
func errnoOf(err error) syscall.Errno {
	var errno syscall.Errno
	if errors.As(err, &errno) && errno != 0 {
		return errno
	}
	return syscall.EINVAL
}
