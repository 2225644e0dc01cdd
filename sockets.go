// Package sockets is an ergonomic, thread-safe TCP layer over the operating
// system's stream sockets. Listen accepts peers and hands each one to a user
// callback as a Connection; Dial opens a client Connection. Sends and
// receives never block the caller, they enqueue work for a pair of
// per-connection workers and return futures to await.
package sockets

import (
	"context"
	stderrors "errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/brickingsoft/rxp"
)

var (
	executors     rxp.Executors = nil
	executorsOnce sync.Once
)

// Startup replaces the executor pool that carries all worker and listener
// loops. Listen and Dial calls made after it use the new pool; a pool that
// was in use before is not closed.
func Startup(options ...rxp.Option) (err error) {
	defer func() {
		if r := recover(); r != nil {
			switch e := r.(type) {
			case error:
				err = e
			case string:
				err = stderrors.New(e)
			default:
				err = stderrors.New(fmt.Sprintf("%+v", r))
			}
		}
	}()
	executors, err = rxp.New(options...)
	return
}

// Shutdown closes the executor pool. It calls the pool's Close exactly as
// ShutdownGracefully does; there is no separate non-waiting close.
func Shutdown() error {
	exec := Executors()
	runtime.SetFinalizer(exec, nil)
	return exec.Close()
}

// ShutdownGracefully closes the executor pool after all loops have finished.
func ShutdownGracefully() error {
	exec := Executors()
	runtime.SetFinalizer(exec, nil)
	return exec.Close()
}

// Executors returns the process-wide pool, creating it lazily. Every factory
// in this package goes through it, so mere use forces initialization.
func Executors() rxp.Executors {
	executorsOnce.Do(func() {
		if executors == nil {
			exec, err := rxp.New()
			if err != nil {
				panic(err)
			}
			executors = exec
			runtime.SetFinalizer(executors, rxp.Executors.Close)
		}
	})
	return executors
}

func background() context.Context {
	ctx := context.Background()
	if _, has := rxp.TryFrom(ctx); !has {
		ctx = rxp.With(ctx, Executors())
	}
	return ctx
}
