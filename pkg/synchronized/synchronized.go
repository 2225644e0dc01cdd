package synchronized

import (
	"sync"
)

// Synchronized wraps a datum with a mutex so that every access flows through
// Apply, Wait or WaitApply. Condition variables used with Wait must be
// created via NewCond so they share the wrapper's lock.
type Synchronized[T any] struct {
	mutex sync.Mutex
	data  T
}

func New[T any](data T) *Synchronized[T] {
	return &Synchronized[T]{
		data: data,
	}
}

// NewCond creates a condition variable bound to the wrapper's lock.
func (s *Synchronized[T]) NewCond() *sync.Cond {
	return sync.NewCond(&s.mutex)
}

// Apply runs fn as a critical section with exclusive access to the datum.
func (s *Synchronized[T]) Apply(fn func(data *T)) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	fn(&s.data)
}

// Wait blocks on the condition variable until the predicate holds. The
// predicate is always evaluated under the lock.
func (s *Synchronized[T]) Wait(cond *sync.Cond, predicate func(data *T) bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	for !predicate(&s.data) {
		cond.Wait()
	}
}

// WaitApply blocks until the predicate holds, then runs fn under the same
// lock acquisition.
func (s *Synchronized[T]) WaitApply(cond *sync.Cond, predicate func(data *T) bool, fn func(data *T)) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	for !predicate(&s.data) {
		cond.Wait()
	}
	fn(&s.data)
}
