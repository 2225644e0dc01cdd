//go:build darwin

package sys

import (
	"os"

	"golang.org/x/sys/unix"
)

// Darwin has no MSG_NOSIGNAL, SIGPIPE is suppressed per socket instead.
const sendFlags = 0

func setNoSigpipe(fd int) (err error) {
	if err = unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_NOSIGPIPE, 1); err != nil {
		err = os.NewSyscallError("setsockopt", err)
	}
	return
}
