//go:build darwin || freebsd || linux || netbsd || openbsd

package sys

import (
	"os"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

const (
	AFUnspec = unix.AF_UNSPEC
	AFInet   = unix.AF_INET
	AFInet6  = unix.AF_INET6
)

// NewTCPSocket creates a blocking close-on-exec stream socket for the given
// concrete address family.
func NewTCPSocket(family int) (fd int, err error) {
	syscall.ForkLock.RLock()
	fd, err = unix.Socket(family, unix.SOCK_STREAM, unix.IPPROTO_TCP)
	if err == nil {
		unix.CloseOnExec(fd)
	}
	syscall.ForkLock.RUnlock()
	if err != nil {
		err = os.NewSyscallError("socket", err)
	}
	return
}

// SetDefaultSocketOptions applies the options every connection carries:
// TCP_NODELAY (unless disabled), address reuse, and SIGPIPE suppression where
// the platform wants it per socket.
func SetDefaultSocketOptions(fd int, noDelay bool) (err error) {
	if noDelay {
		if err = unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_NODELAY, 1); err != nil {
			err = os.NewSyscallError("setsockopt", err)
			return
		}
	}
	if err = unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		err = os.NewSyscallError("setsockopt", err)
		return
	}
	if err = unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEPORT, 1); err != nil {
		err = os.NewSyscallError("setsockopt", err)
		return
	}
	err = setNoSigpipe(fd)
	return
}

func Bind(fd int, sa unix.Sockaddr) (err error) {
	if err = unix.Bind(fd, sa); err != nil {
		err = os.NewSyscallError("bind", err)
	}
	return
}

func Listen(fd int, backlog int) (err error) {
	if backlog < 1 {
		backlog = unix.SOMAXCONN
	}
	if err = unix.Listen(fd, backlog); err != nil {
		err = os.NewSyscallError("listen", err)
	}
	return
}

func Connect(fd int, sa unix.Sockaddr) (err error) {
	if err = unix.Connect(fd, sa); err != nil {
		err = os.NewSyscallError("connect", err)
	}
	return
}

// Accept takes the next pending connection off a listening socket. The
// accepted descriptor is blocking and close-on-exec.
func Accept(fd int) (nfd int, err error) {
	for {
		nfd, _, err = unix.Accept(fd)
		if err != unix.EINTR {
			break
		}
	}
	if err != nil {
		err = os.NewSyscallError("accept", err)
		return
	}
	unix.CloseOnExec(nfd)
	return
}

// WaitReadable polls the descriptor for readability for at most the given
// duration. Hang-ups and error conditions count as readable, the subsequent
// read reports them.
func WaitReadable(fd int, timeout time.Duration) (ready bool, err error) {
	fds := []unix.PollFd{{
		Fd:     int32(fd),
		Events: unix.POLLIN,
	}}
	n, pollErr := unix.Poll(fds, int(timeout.Milliseconds()))
	if pollErr != nil {
		if pollErr == unix.EINTR {
			return
		}
		err = os.NewSyscallError("poll", pollErr)
		return
	}
	ready = n > 0 && fds[0].Revents != 0
	return
}

// Send writes as much of p as the OS accepts in one call, with SIGPIPE
// suppressed where a flag exists.
func Send(fd int, p []byte) (n int, err error) {
	for {
		n, err = unix.SendmsgN(fd, p, nil, nil, sendFlags)
		if err != unix.EINTR {
			break
		}
	}
	if err != nil {
		n = 0
		err = os.NewSyscallError("send", err)
	}
	return
}

// Recv reads at most len(p) bytes. n is 0 on graceful peer close.
func Recv(fd int, p []byte) (n int, err error) {
	for {
		n, _, err = unix.Recvfrom(fd, p, 0)
		if err != unix.EINTR {
			break
		}
	}
	if err != nil {
		n = 0
		err = os.NewSyscallError("recv", err)
	}
	return
}
