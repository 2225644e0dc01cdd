//go:build freebsd || linux || netbsd || openbsd

package sys

import (
	"golang.org/x/sys/unix"
)

// sendFlags suppresses SIGPIPE per call where the OS offers a flag.
const sendFlags = unix.MSG_NOSIGNAL

func setNoSigpipe(_ int) error {
	return nil
}
