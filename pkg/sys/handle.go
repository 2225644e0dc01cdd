//go:build darwin || freebsd || linux || netbsd || openbsd

package sys

import (
	"runtime"
	"sync/atomic"

	"golang.org/x/sys/unix"
)

// Handle owns an OS socket descriptor. The descriptor is closed exactly once,
// either explicitly via Close or by the finalizer when the handle is dropped
// without one.
type Handle struct {
	fd     int
	closed atomic.Bool
}

func NewHandle(fd int) *Handle {
	h := &Handle{
		fd: fd,
	}
	runtime.SetFinalizer(h, (*Handle).Close)
	return h
}

func (h *Handle) Fd() int {
	return h.fd
}

// Close releases the descriptor. Further calls are no-ops.
func (h *Handle) Close() (err error) {
	if h.closed.CompareAndSwap(false, true) {
		runtime.SetFinalizer(h, nil)
		err = unix.Close(h.fd)
	}
	return
}
