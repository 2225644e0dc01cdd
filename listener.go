package sockets

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/brickingsoft/errors"
	"github.com/brickingsoft/rxp"
	"github.com/mgerhold/sockets/pkg/sys"
)

// Server is a passive endpoint producing Connections. The handler passed to
// Listen runs on the listener loop: a long-running handler blocks further
// accepts, so handlers that outlive the accept are expected to move the
// connection onto their own goroutine.
type Server interface {
	LocalAddr() (addr Address)
	// Stop requests the listener to stop, waits for the loop to exit and
	// releases the listening socket. Idempotent, never fails.
	Stop()
}

// Listen binds a listening socket on the given port and hands every accepted
// peer to handler as a Connection. The family must be concrete. Port 0 lets
// the OS pick an ephemeral port, LocalAddr reveals the choice.
func Listen(family AddressFamily, port uint16, handler func(conn Connection), options ...Option) (srv Server, err error) {
	if handler == nil {
		err = errors.From(
			ErrListen,
			errors.WithMeta(errMetaPkgKey, errMetaPkgVal),
			errors.WithWrap(errors.New("sockets: handler must not be nil")),
		)
		return
	}
	opts, optsErr := buildOptions(options)
	if optsErr != nil {
		err = errors.From(
			ErrListen,
			errors.WithMeta(errMetaPkgKey, errMetaPkgVal),
			errors.WithWrap(optsErr),
		)
		return
	}
	ctx := background()

	sa, resolveErr := sys.ResolveListen(family.sysFamily(), port)
	if resolveErr != nil {
		err = errors.From(
			ErrListen,
			errors.WithMeta(errMetaPkgKey, errMetaPkgVal),
			errors.WithWrap(resolveErr),
		)
		return
	}
	fd, socketErr := sys.NewTCPSocket(family.sysFamily())
	if socketErr != nil {
		err = errors.From(
			ErrListen,
			errors.WithMeta(errMetaPkgKey, errMetaPkgVal),
			errors.WithWrap(socketErr),
		)
		return
	}
	handle := sys.NewHandle(fd)
	if optErr := sys.SetDefaultSocketOptions(fd, opts.NoDelay); optErr != nil {
		_ = handle.Close()
		err = errors.From(
			ErrListen,
			errors.WithMeta(errMetaPkgKey, errMetaPkgVal),
			errors.WithWrap(optErr),
		)
		return
	}
	if bindErr := sys.Bind(fd, sa); bindErr != nil {
		_ = handle.Close()
		err = errors.From(
			ErrBind,
			errors.WithMeta(errMetaPkgKey, errMetaPkgVal),
			errors.WithWrap(bindErr),
		)
		return
	}
	if listenErr := sys.Listen(fd, opts.Backlog); listenErr != nil {
		_ = handle.Close()
		err = errors.From(
			ErrListen,
			errors.WithMeta(errMetaPkgKey, errMetaPkgVal),
			errors.WithWrap(listenErr),
		)
		return
	}
	localRaw, nameErr := sys.SocknameAddr(fd)
	if nameErr != nil {
		_ = handle.Close()
		err = errors.From(
			ErrListen,
			errors.WithMeta(errMetaPkgKey, errMetaPkgVal),
			errors.WithWrap(nameErr),
		)
		return
	}

	ln := &listener{
		ctx:     ctx,
		handle:  handle,
		local:   addressFromRaw(localRaw),
		handler: handler,
		opts:    opts,
	}
	ln.loop.Add(1)
	if !rxp.TryExecute(ctx, ln) {
		ln.loop.Add(-1)
		_ = handle.Close()
		err = errors.From(
			ErrListen,
			errors.WithMeta(errMetaPkgKey, errMetaPkgVal),
			errors.WithWrap(ErrBusy),
		)
		return
	}
	srv = ln
	return
}

type listener struct {
	ctx     context.Context
	handle  *sys.Handle
	local   Address
	handler func(conn Connection)
	opts    Options
	stopped atomic.Bool
	loop    sync.WaitGroup
	stop    sync.Once
}

// Handle is the accept loop. It polls the listening socket so the stop flag
// is observed within one poll interval, accepts the next peer, applies the
// default socket options and invokes the handler on this goroutine.
func (ln *listener) Handle(ctx context.Context) {
	defer ln.loop.Done()
	fd := ln.handle.Fd()
	for !ln.stopped.Load() {
		ready, pollErr := sys.WaitReadable(fd, ln.opts.AcceptPollInterval)
		if pollErr != nil {
			if !ln.stopped.Load() {
				slog.Warn("sockets: listener poll failed", "addr", ln.local.String(), "error", pollErr)
			}
			return
		}
		if !ready {
			continue
		}
		nfd, acceptErr := sys.Accept(fd)
		if acceptErr != nil {
			if !ln.stopped.Load() {
				slog.Warn("sockets: accept failed", "addr", ln.local.String(), "error", acceptErr)
			}
			continue
		}
		if optErr := sys.SetDefaultSocketOptions(nfd, ln.opts.NoDelay); optErr != nil {
			slog.Warn("sockets: peer socket options", "addr", ln.local.String(), "error", optErr)
		}
		conn, connErr := newConnection(ctx, sys.NewHandle(nfd), ln.opts)
		if connErr != nil {
			slog.Warn("sockets: wiring accepted peer failed", "addr", ln.local.String(), "error", connErr)
			continue
		}
		ln.invokeHandler(conn)
	}
}

func (ln *listener) invokeHandler(conn Connection) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("sockets: connection handler panicked", "conn", conn.ID(), "panic", r)
			conn.Close()
		}
	}()
	ln.handler(conn)
}

func (ln *listener) LocalAddr() (addr Address) {
	addr = ln.local
	return
}

func (ln *listener) Stop() {
	ln.stop.Do(func() {
		ln.stopped.Store(true)
		ln.loop.Wait()
		_ = ln.handle.Close()
	})
}
