package sockets

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/brickingsoft/errors"
	"github.com/brickingsoft/rxp"
	"github.com/brickingsoft/rxp/async"
	"github.com/eapache/queue"
	"github.com/google/uuid"
	"github.com/mgerhold/sockets/codec"
	"github.com/mgerhold/sockets/pkg/synchronized"
	"github.com/mgerhold/sockets/pkg/sys"
)

// Connection is a full-duplex TCP stream. Sends and receives enqueue work
// for the connection's worker loops and return futures; the caller blocks
// only when awaiting a future, never when submitting.
type Connection interface {
	// Send transmits the given bytes. The future resolves to the number of
	// bytes handed to the OS, 0 when the connection died before any byte
	// went out. Empty payloads fail immediately.
	Send(b []byte) (future async.Future[int])
	// SendString transmits the raw bytes of s.
	SendString(s string) (future async.Future[int])
	// SendValues serialises the given fixed-width values in network byte
	// order and transmits them as one payload.
	SendValues(values ...any) (future async.Future[int])
	// SendBuffer transmits the current contents of the message buffer.
	SendBuffer(b *codec.Buffer) (future async.Future[int])
	// Receive resolves to at most max bytes: whatever has arrived when data
	// first becomes available, or everything accumulated when the timeout
	// elapses. Timeouts and peer death are not errors here, the result is
	// simply shorter (possibly empty). A non-positive timeout selects the
	// configured default.
	Receive(max int, timeout time.Duration) (future async.Future[[]byte])
	// ReceiveExact resolves to exactly n bytes, fails with the timeout error
	// when the deadline elapses first and with the read error when the
	// connection dies mid-read.
	ReceiveExact(n int, timeout time.Duration) (future async.Future[[]byte])
	// Close shuts the connection down: both workers stop, every pending task
	// resolves with its shutdown sentinel, and the OS handle is released.
	// Close is idempotent and never fails.
	Close()
	// IsConnected reports whether the connection is still running.
	IsConnected() bool
	// ID is a process-unique identifier, useful in logs and error metadata.
	ID() string
	LocalAddr() (addr Address)
	RemoteAddr() (addr Address)
}

type sendTask struct {
	promise async.Promise[int]
	data    []byte
}

type receiveTask struct {
	promise  async.Promise[[]byte]
	max      int
	exact    bool
	deadline time.Time
}

type taskDeque struct {
	tasks *queue.Queue
}

type synchronizedDeque = synchronized.Synchronized[taskDeque]

func newSynchronizedDeque() *synchronizedDeque {
	return synchronized.New(taskDeque{
		tasks: queue.New(),
	})
}

// connectionState is shared between the connection handle and its two
// workers. The running flag is written only inside a queue lock so worker
// wait predicates never race with shutdown.
type connectionState struct {
	running   atomic.Bool
	sendTasks *synchronizedDeque
	recvTasks *synchronizedDeque
	sendCond  *sync.Cond
	recvCond  *sync.Cond
}

func newConnectionState() (state *connectionState) {
	state = &connectionState{
		sendTasks: newSynchronizedDeque(),
		recvTasks: newSynchronizedDeque(),
	}
	state.sendCond = state.sendTasks.NewCond()
	state.recvCond = state.recvTasks.NewCond()
	state.running.Store(true)
	return
}

func (state *connectionState) isRunning() bool {
	return state.running.Load()
}

// stopRunning clears the running flag under each queue lock in turn and
// wakes both workers. Monotonic: once cleared the flag is never set again.
func (state *connectionState) stopRunning() {
	state.sendTasks.Apply(func(*taskDeque) {
		state.running.Store(false)
	})
	state.sendCond.Signal()
	state.recvTasks.Apply(func(*taskDeque) {
		state.running.Store(false)
	})
	state.recvCond.Signal()
}

// clearQueues resolves every pending task with its shutdown sentinel: sends
// resolve 0, at-most receives resolve empty, exact receives fail.
func (state *connectionState) clearQueues() {
	state.recvTasks.Apply(func(d *taskDeque) {
		for d.tasks.Length() > 0 {
			task := d.tasks.Remove().(*receiveTask)
			completeReceiveOnClosed(task)
		}
	})
	state.sendTasks.Apply(func(d *taskDeque) {
		for d.tasks.Length() > 0 {
			task := d.tasks.Remove().(*sendTask)
			task.promise.Succeed(0)
		}
	})
}

func (state *connectionState) dequeueSend() (task *sendTask) {
	state.sendTasks.Apply(func(d *taskDeque) {
		if d.tasks.Length() > 0 {
			task = d.tasks.Remove().(*sendTask)
		}
	})
	return
}

func (state *connectionState) dequeueReceive() (task *receiveTask) {
	state.recvTasks.Apply(func(d *taskDeque) {
		if d.tasks.Length() > 0 {
			task = d.tasks.Remove().(*receiveTask)
		}
	})
	return
}

func completeReceiveOnClosed(task *receiveTask) {
	if task.exact {
		task.promise.Fail(errors.From(
			ErrRead,
			errors.WithMeta(errMetaPkgKey, errMetaPkgVal),
			errors.WithWrap(ErrClosed),
		))
		return
	}
	task.promise.Succeed([]byte{})
}

type connection struct {
	ctx            context.Context
	id             string
	handle         *sys.Handle
	state          *connectionState
	local          Address
	remote         Address
	receiveTimeout time.Duration
	// workers lives outside the connection struct so the worker loops do not
	// keep the connection reachable and the close finalizer can fire
	workers   *sync.WaitGroup
	closeOnce sync.Once
}

// newConnection wires an established socket to its two worker loops. The
// handle is closed on every error path, the caller only owns it on success.
func newConnection(ctx context.Context, handle *sys.Handle, opts Options) (conn *connection, err error) {
	localRaw, localErr := sys.SocknameAddr(handle.Fd())
	if localErr != nil {
		_ = handle.Close()
		err = errors.From(
			ErrConnect,
			errors.WithMeta(errMetaPkgKey, errMetaPkgVal),
			errors.WithWrap(localErr),
		)
		return
	}
	// listening sockets aside, every connected socket has a peer; keep the
	// zero value when the query fails regardless
	remoteRaw, _ := sys.PeernameAddr(handle.Fd())

	conn = &connection{
		ctx:            ctx,
		id:             uuid.NewString(),
		handle:         handle,
		state:          newConnectionState(),
		local:          addressFromRaw(localRaw),
		remote:         addressFromRaw(remoteRaw),
		receiveTimeout: opts.ReceiveTimeout,
		workers:        new(sync.WaitGroup),
	}

	conn.workers.Add(2)
	sender := &sendWorker{
		state:  conn.state,
		handle: handle,
		conn:   conn.id,
		wg:     conn.workers,
	}
	if !rxp.TryExecute(ctx, sender) {
		conn.workers.Add(-2)
		conn.state.running.Store(false)
		_ = handle.Close()
		conn = nil
		err = errors.From(
			ErrConnect,
			errors.WithMeta(errMetaPkgKey, errMetaPkgVal),
			errors.WithWrap(ErrBusy),
		)
		return
	}
	receiver := &receiveWorker{
		state:  conn.state,
		handle: handle,
		conn:   conn.id,
		wg:     conn.workers,
	}
	if !rxp.TryExecute(ctx, receiver) {
		conn.workers.Add(-1)
		conn.state.stopRunning()
		conn.workers.Wait()
		_ = handle.Close()
		conn = nil
		err = errors.From(
			ErrConnect,
			errors.WithMeta(errMetaPkgKey, errMetaPkgVal),
			errors.WithWrap(ErrBusy),
		)
		return
	}

	runtime.SetFinalizer(conn, (*connection).Close)
	return
}

func (conn *connection) Send(b []byte) (future async.Future[int]) {
	if len(b) == 0 {
		future = async.FailedImmediately[int](conn.ctx, errors.From(
			ErrSend,
			errors.WithMeta(errMetaPkgKey, errMetaPkgVal),
			errors.WithMeta(errMetaConnKey, conn.id),
			errors.WithWrap(ErrEmptyBytes),
		))
		return
	}
	promise, promiseErr := async.Make[int](conn.ctx, async.WithWait())
	if promiseErr != nil {
		future = async.FailedImmediately[int](conn.ctx, promiseErr)
		return
	}
	task := &sendTask{
		promise: promise,
		data:    append([]byte(nil), b...),
	}
	enqueued := false
	conn.state.sendTasks.Apply(func(d *taskDeque) {
		if !conn.state.isRunning() {
			promise.Succeed(0)
			return
		}
		d.tasks.Add(task)
		enqueued = true
	})
	if enqueued {
		conn.state.sendCond.Signal()
	}
	future = promise.Future()
	return
}

func (conn *connection) SendString(s string) (future async.Future[int]) {
	future = conn.Send([]byte(s))
	return
}

func (conn *connection) SendValues(values ...any) (future async.Future[int]) {
	buffer := codec.NewBuffer()
	if err := buffer.Append(values...); err != nil {
		future = async.FailedImmediately[int](conn.ctx, errors.From(
			ErrSend,
			errors.WithMeta(errMetaPkgKey, errMetaPkgVal),
			errors.WithMeta(errMetaConnKey, conn.id),
			errors.WithWrap(err),
		))
		return
	}
	future = conn.Send(buffer.TakeBytes())
	return
}

func (conn *connection) SendBuffer(b *codec.Buffer) (future async.Future[int]) {
	future = conn.Send(b.Bytes())
	return
}

func (conn *connection) Receive(max int, timeout time.Duration) (future async.Future[[]byte]) {
	future = conn.receive(max, false, timeout)
	return
}

func (conn *connection) ReceiveExact(n int, timeout time.Duration) (future async.Future[[]byte]) {
	future = conn.receive(n, true, timeout)
	return
}

func (conn *connection) receive(max int, exact bool, timeout time.Duration) (future async.Future[[]byte]) {
	if max < 1 {
		future = async.FailedImmediately[[]byte](conn.ctx, errors.From(
			ErrRead,
			errors.WithMeta(errMetaPkgKey, errMetaPkgVal),
			errors.WithMeta(errMetaConnKey, conn.id),
			errors.WithWrap(ErrZeroReceive),
		))
		return
	}
	if timeout < 1 {
		timeout = conn.receiveTimeout
	}
	promise, promiseErr := async.Make[[]byte](conn.ctx, async.WithWait())
	if promiseErr != nil {
		future = async.FailedImmediately[[]byte](conn.ctx, promiseErr)
		return
	}
	task := &receiveTask{
		promise:  promise,
		max:      max,
		exact:    exact,
		deadline: time.Now().Add(timeout),
	}
	enqueued := false
	conn.state.recvTasks.Apply(func(d *taskDeque) {
		if !conn.state.isRunning() {
			completeReceiveOnClosed(task)
			return
		}
		d.tasks.Add(task)
		enqueued = true
	})
	if enqueued {
		conn.state.recvCond.Signal()
	}
	future = promise.Future()
	return
}

func (conn *connection) Close() {
	conn.closeOnce.Do(func() {
		runtime.SetFinalizer(conn, nil)
		conn.state.stopRunning()
		conn.state.clearQueues()
		conn.workers.Wait()
		_ = conn.handle.Close()
	})
}

func (conn *connection) IsConnected() bool {
	return conn.state.isRunning()
}

func (conn *connection) ID() string {
	return conn.id
}

func (conn *connection) LocalAddr() (addr Address) {
	addr = conn.local
	return
}

func (conn *connection) RemoteAddr() (addr Address) {
	addr = conn.remote
	return
}
