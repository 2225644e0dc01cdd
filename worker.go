package sockets

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/brickingsoft/errors"
	"github.com/mgerhold/sockets/pkg/sys"
)

const (
	// maxTransferSize bounds a single task's payload to what the OS
	// send/recv size type can express.
	maxTransferSize = math.MaxInt32
	// readinessPollInterval is how long the receive worker waits per
	// readiness poll before re-checking the task deadline.
	readinessPollInterval = 10 * time.Millisecond
)

// sendWorker drains the send queue, one task at a time, until the connection
// stops running. A dead peer stops the whole connection.
type sendWorker struct {
	state  *connectionState
	handle *sys.Handle
	conn   string
	wg     *sync.WaitGroup
}

func (w *sendWorker) Handle(_ context.Context) {
	defer w.wg.Done()
	state := w.state
	for state.isRunning() {
		if task := state.dequeueSend(); task != nil {
			if !w.processTask(task) {
				state.stopRunning()
				break
			}
			continue
		}
		state.sendTasks.Wait(state.sendCond, func(d *taskDeque) bool {
			return !state.isRunning() || d.tasks.Length() > 0
		})
	}
	state.clearQueues()
}

// processTask pushes one payload through the socket. It reports false when
// the peer is dead; the task itself is always resolved before returning.
func (w *sendWorker) processTask(task *sendTask) (alive bool) {
	alive = true
	if len(task.data) > maxTransferSize {
		task.promise.Fail(errors.From(
			ErrSizeOutOfRange,
			errors.WithMeta(errMetaPkgKey, errMetaPkgVal),
			errors.WithMeta(errMetaConnKey, w.conn),
			errors.WithWrap(ErrSend),
		))
		return
	}
	sent := 0
	for sent < len(task.data) {
		n, err := sys.Send(w.handle.Fd(), task.data[sent:])
		if err != nil {
			// any send-side error means the connection is no longer usable;
			// the task resolves with whatever went out before
			task.promise.Succeed(sent)
			alive = false
			return
		}
		sent += n
	}
	task.promise.Succeed(sent)
	return
}

// receiveWorker mirrors the send worker for the inbound direction.
type receiveWorker struct {
	state  *connectionState
	handle *sys.Handle
	conn   string
	wg     *sync.WaitGroup
}

func (w *receiveWorker) Handle(_ context.Context) {
	defer w.wg.Done()
	state := w.state
	for state.isRunning() {
		if task := state.dequeueReceive(); task != nil {
			if !w.processTask(task) {
				state.stopRunning()
				break
			}
			continue
		}
		state.recvTasks.Wait(state.recvCond, func(d *taskDeque) bool {
			return !state.isRunning() || d.tasks.Length() > 0
		})
	}
	state.clearQueues()
}

func (w *receiveWorker) processTask(task *receiveTask) (alive bool) {
	alive = true
	if task.max > maxTransferSize {
		task.promise.Fail(errors.From(
			ErrSizeOutOfRange,
			errors.WithMeta(errMetaPkgKey, errMetaPkgVal),
			errors.WithMeta(errMetaConnKey, w.conn),
			errors.WithWrap(ErrRead),
		))
		return
	}
	buffer := make([]byte, 0, task.max)
	for {
		if !w.state.isRunning() {
			// shutdown raced the in-flight task; resolve it like a drained
			// one so Close stays bounded by the poll interval
			w.completeBroken(task, buffer, nil)
			alive = false
			return
		}
		if !time.Now().Before(task.deadline) {
			if task.exact {
				task.promise.Fail(errors.From(
					ErrReceiveTimeout,
					errors.WithMeta(errMetaPkgKey, errMetaPkgVal),
					errors.WithMeta(errMetaConnKey, w.conn),
				))
				return
			}
			task.promise.Succeed(buffer)
			return
		}

		ready, pollErr := sys.WaitReadable(w.handle.Fd(), readinessPollInterval)
		if pollErr != nil {
			w.completeBroken(task, buffer, pollErr)
			alive = false
			return
		}
		if !ready {
			continue
		}

		chunk := make([]byte, task.max-len(buffer))
		n, recvErr := sys.Recv(w.handle.Fd(), chunk)
		if recvErr != nil || n == 0 {
			// graceful close or reset, either way the stream is finished
			w.completeBroken(task, buffer, recvErr)
			alive = false
			return
		}
		buffer = append(buffer, chunk[:n]...)

		if !task.exact || len(buffer) >= task.max {
			task.promise.Succeed(buffer)
			return
		}
	}
}

// completeBroken resolves a task whose connection died mid-read: at-most
// tasks keep their partial result, exact tasks fail.
func (w *receiveWorker) completeBroken(task *receiveTask, partial []byte, cause error) {
	if !task.exact {
		task.promise.Succeed(partial)
		return
	}
	if cause == nil {
		cause = ErrClosed
	}
	task.promise.Fail(errors.From(
		ErrRead,
		errors.WithMeta(errMetaPkgKey, errMetaPkgVal),
		errors.WithMeta(errMetaConnKey, w.conn),
		errors.WithWrap(cause),
	))
}
