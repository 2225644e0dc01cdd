package sockets

import (
	"time"

	"github.com/brickingsoft/errors"
	"github.com/brickingsoft/rxp/async"
	"github.com/mgerhold/sockets/codec"
)

// ReceiveValues awaits exactly as many bytes as the given pointers require
// and decodes them from network byte order in argument order. It blocks the
// caller; the timeout semantics are those of ReceiveExact.
func ReceiveValues(conn Connection, timeout time.Duration, dsts ...any) (err error) {
	size, sizeErr := codec.Measure(dsts...)
	if sizeErr != nil {
		err = errors.From(
			ErrRead,
			errors.WithMeta(errMetaPkgKey, errMetaPkgVal),
			errors.WithWrap(sizeErr),
		)
		return
	}
	b, awaitErr := async.AwaitableFuture(conn.ReceiveExact(size, timeout)).Await()
	if awaitErr != nil {
		err = awaitErr
		return
	}
	if extractErr := codec.FromBytes(b).Extract(dsts...); extractErr != nil {
		err = errors.From(
			ErrRead,
			errors.WithMeta(errMetaPkgKey, errMetaPkgVal),
			errors.WithWrap(extractErr),
		)
	}
	return
}

// ReceiveString awaits an at-most receive of up to max bytes and returns
// them as a string. Timeouts and peer death yield a short (possibly empty)
// string, not an error.
func ReceiveString(conn Connection, max int, timeout time.Duration) (s string, err error) {
	b, awaitErr := async.AwaitableFuture(conn.Receive(max, timeout)).Await()
	if awaitErr != nil {
		err = awaitErr
		return
	}
	s = string(b)
	return
}
