package sockets

import (
	"github.com/brickingsoft/errors"
	"github.com/mgerhold/sockets/pkg/sys"
)

// Dial opens a TCP connection to host:port. An unspecified family lets the
// resolver pick the protocol version. The call blocks until the OS connect
// completes; on success the connection's workers are already running.
func Dial(family AddressFamily, host string, port uint16, options ...Option) (conn Connection, err error) {
	opts, optsErr := buildOptions(options)
	if optsErr != nil {
		err = errors.From(
			ErrConnect,
			errors.WithMeta(errMetaPkgKey, errMetaPkgVal),
			errors.WithWrap(optsErr),
		)
		return
	}
	ctx := background()

	sa, concreteFamily, resolveErr := sys.ResolveDial(ctx, family.sysFamily(), host, port)
	if resolveErr != nil {
		err = errors.From(
			ErrResolve,
			errors.WithMeta(errMetaPkgKey, errMetaPkgVal),
			errors.WithWrap(resolveErr),
		)
		return
	}
	fd, socketErr := sys.NewTCPSocket(concreteFamily)
	if socketErr != nil {
		err = errors.From(
			ErrConnect,
			errors.WithMeta(errMetaPkgKey, errMetaPkgVal),
			errors.WithWrap(socketErr),
		)
		return
	}
	handle := sys.NewHandle(fd)
	if optErr := sys.SetDefaultSocketOptions(fd, opts.NoDelay); optErr != nil {
		_ = handle.Close()
		err = errors.From(
			ErrConnect,
			errors.WithMeta(errMetaPkgKey, errMetaPkgVal),
			errors.WithWrap(optErr),
		)
		return
	}
	if connectErr := sys.Connect(fd, sa); connectErr != nil {
		_ = handle.Close()
		err = errors.From(
			ErrConnect,
			errors.WithMeta(errMetaPkgKey, errMetaPkgVal),
			errors.WithWrap(connectErr),
		)
		return
	}
	c, connErr := newConnection(ctx, handle, opts)
	if connErr != nil {
		err = connErr
		return
	}
	conn = c
	return
}
