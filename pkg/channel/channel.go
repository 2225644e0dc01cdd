// Package channel provides a capacity-one rendezvous channel with explicit
// open and closed state. A sender blocks while the slot is occupied, a
// receiver blocks while the slot is empty and the channel is open. Closing
// either endpoint closes the channel and wakes the counterpart.
package channel

import (
	"sync"

	"github.com/brickingsoft/errors"
)

var (
	ErrClosed = errors.Define("channel: closed")
)

type state[T any] struct {
	mutex sync.Mutex
	cond  *sync.Cond
	open  bool
	value *T
}

// New creates a connected sender and receiver pair sharing one slot.
func New[T any]() (*Sender[T], *Receiver[T]) {
	shared := &state[T]{
		open: true,
	}
	shared.cond = sync.NewCond(&shared.mutex)
	return &Sender[T]{state: shared}, &Receiver[T]{state: shared}
}

type Sender[T any] struct {
	state *state[T]
}

// Send blocks until the slot is empty, then places the value. It fails with
// ErrClosed when the channel has been closed, including while blocking.
func (s *Sender[T]) Send(value T) (err error) {
	shared := s.state
	shared.mutex.Lock()
	defer shared.mutex.Unlock()
	for shared.open && shared.value != nil {
		shared.cond.Wait()
	}
	if !shared.open {
		err = errors.From(ErrClosed)
		return
	}
	shared.value = &value
	shared.cond.Broadcast()
	return
}

// TrySend places the value without blocking. It reports false when the
// channel is closed or the slot is occupied.
func (s *Sender[T]) TrySend(value T) (ok bool) {
	shared := s.state
	shared.mutex.Lock()
	defer shared.mutex.Unlock()
	if !shared.open || shared.value != nil {
		return
	}
	shared.value = &value
	shared.cond.Broadcast()
	ok = true
	return
}

func (s *Sender[T]) IsOpen() bool {
	return s.state.isOpen()
}

// Close closes the channel and wakes the receiver. Closing twice is harmless.
func (s *Sender[T]) Close() {
	s.state.close()
}

type Receiver[T any] struct {
	state *state[T]
}

// Receive blocks until the slot is occupied or the channel is closed. A value
// already in flight is delivered even after close; a closed and empty channel
// fails with ErrClosed.
func (r *Receiver[T]) Receive() (value T, err error) {
	shared := r.state
	shared.mutex.Lock()
	defer shared.mutex.Unlock()
	for shared.open && shared.value == nil {
		shared.cond.Wait()
	}
	if shared.value == nil {
		err = errors.From(ErrClosed)
		return
	}
	value = *shared.value
	shared.value = nil
	shared.cond.Broadcast()
	return
}

// TryReceive takes the in-flight value if one is present, regardless of the
// open state. It never fails.
func (r *Receiver[T]) TryReceive() (value T, ok bool) {
	shared := r.state
	shared.mutex.Lock()
	defer shared.mutex.Unlock()
	if shared.value == nil {
		return
	}
	value = *shared.value
	shared.value = nil
	shared.cond.Broadcast()
	ok = true
	return
}

func (r *Receiver[T]) IsOpen() bool {
	return r.state.isOpen()
}

// Close closes the channel and wakes a blocked sender.
func (r *Receiver[T]) Close() {
	r.state.close()
}

func (s *state[T]) isOpen() (open bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	open = s.open
	return
}

func (s *state[T]) close() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.open = false
	s.cond.Broadcast()
}
