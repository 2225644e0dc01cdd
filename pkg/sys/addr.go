//go:build darwin || freebsd || linux || netbsd || openbsd

package sys

import (
	"context"
	"net"
	"os"
	"strconv"

	"golang.org/x/sys/unix"
)

// RawAddr is the sys-level view of an endpoint: a concrete address family,
// the textual address (dotted decimal or colon-hex, no brackets) and a port.
type RawAddr struct {
	Family int
	IP     string
	Port   uint16
}

// ResolveListen builds a passive wildcard socket address for the given
// concrete family and port. Port 0 lets the OS pick an ephemeral port.
func ResolveListen(family int, port uint16) (sa unix.Sockaddr, err error) {
	switch family {
	case AFInet:
		sa = &unix.SockaddrInet4{
			Port: int(port),
		}
	case AFInet6:
		sa = &unix.SockaddrInet6{
			Port: int(port),
		}
	default:
		err = &net.AddrError{Err: "listen requires a concrete address family", Addr: strconv.Itoa(family)}
	}
	return
}

// ResolveDial resolves host to an address of the requested family. An
// unspecified family takes the first resolved address of either kind.
func ResolveDial(ctx context.Context, family int, host string, port uint16) (sa unix.Sockaddr, concreteFamily int, err error) {
	addrs, lookupErr := net.DefaultResolver.LookupIPAddr(ctx, host)
	if lookupErr != nil {
		err = lookupErr
		return
	}
	for _, addr := range addrs {
		ip4 := addr.IP.To4()
		switch family {
		case AFInet:
			if ip4 == nil {
				continue
			}
		case AFInet6:
			if ip4 != nil {
				continue
			}
		}
		if ip4 != nil {
			inet4 := &unix.SockaddrInet4{
				Port: int(port),
			}
			copy(inet4.Addr[:], ip4)
			sa = inet4
			concreteFamily = AFInet
		} else {
			inet6 := &unix.SockaddrInet6{
				Port: int(port),
			}
			copy(inet6.Addr[:], addr.IP.To16())
			sa = inet6
			concreteFamily = AFInet6
		}
		return
	}
	err = &net.AddrError{Err: "no suitable address found", Addr: host}
	return
}

// SocknameAddr reports the locally bound endpoint of the descriptor.
func SocknameAddr(fd int) (raw RawAddr, err error) {
	sa, nameErr := unix.Getsockname(fd)
	if nameErr != nil {
		err = os.NewSyscallError("getsockname", nameErr)
		return
	}
	raw = rawFromSockaddr(sa)
	return
}

// PeernameAddr reports the remote endpoint. Listening sockets have none, the
// caller decides whether the error matters.
func PeernameAddr(fd int) (raw RawAddr, err error) {
	sa, nameErr := unix.Getpeername(fd)
	if nameErr != nil {
		err = os.NewSyscallError("getpeername", nameErr)
		return
	}
	raw = rawFromSockaddr(sa)
	return
}

func rawFromSockaddr(sa unix.Sockaddr) (raw RawAddr) {
	switch a := sa.(type) {
	case *unix.SockaddrInet4:
		raw = RawAddr{
			Family: AFInet,
			IP:     net.IP(a.Addr[:]).String(),
			Port:   uint16(a.Port),
		}
	case *unix.SockaddrInet6:
		raw = RawAddr{
			Family: AFInet6,
			IP:     net.IP(a.Addr[:]).String(),
			Port:   uint16(a.Port),
		}
	default:
		raw = RawAddr{
			Family: AFUnspec,
		}
	}
	return
}
