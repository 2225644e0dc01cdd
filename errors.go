package sockets

import (
	"github.com/brickingsoft/errors"
)

var (
	ErrResolve        = errors.Define("sockets: resolve failed")
	ErrConnect        = errors.Define("sockets: connect failed")
	ErrBind           = errors.Define("sockets: bind failed")
	ErrListen         = errors.Define("sockets: listen failed")
	ErrSend           = errors.Define("sockets: send failed")
	ErrRead           = errors.Define("sockets: read failed")
	ErrReceiveTimeout = errors.Define("sockets: receive timed out")
	ErrSizeOutOfRange = errors.Define("sockets: size out of range")
	ErrEmptyBytes     = errors.Define("sockets: empty bytes")
	ErrZeroReceive    = errors.Define("sockets: zero byte receive")
	ErrClosed         = errors.Define("sockets: closed")
	ErrBusy           = errors.Define("sockets: system busy")
)

const (
	errMetaPkgKey  = "pkg"
	errMetaPkgVal  = "sockets"
	errMetaConnKey = "conn"
)

func IsResolveError(err error) bool {
	return errors.Is(err, ErrResolve)
}

func IsConnectError(err error) bool {
	return errors.Is(err, ErrConnect)
}

func IsSendError(err error) bool {
	return errors.Is(err, ErrSend)
}

func IsReadError(err error) bool {
	return errors.Is(err, ErrRead)
}

// IsTimeout reports whether an Exact receive failed because its deadline
// elapsed before enough bytes arrived.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrReceiveTimeout)
}

func IsClosed(err error) bool {
	return errors.Is(err, ErrClosed)
}
