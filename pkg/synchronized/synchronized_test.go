package synchronized_test

import (
	"sync"
	"testing"

	"github.com/mgerhold/sockets/pkg/synchronized"
	"github.com/stretchr/testify/require"
)

func TestApplySerialisesConcurrentIncrements(t *testing.T) {
	const (
		goroutines = 32
		increments = 1000
	)
	counter := synchronized.New(0)

	wg := new(sync.WaitGroup)
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < increments; j++ {
				counter.Apply(func(value *int) {
					*value++
				})
			}
		}()
	}
	wg.Wait()

	var terminal int
	counter.Apply(func(value *int) {
		terminal = *value
	})
	require.Equal(t, goroutines*increments, terminal)
}

func TestApplyReturnsThroughCapture(t *testing.T) {
	words := synchronized.New([]string{"hello"})
	var length int
	words.Apply(func(data *[]string) {
		*data = append(*data, "world")
		length = len(*data)
	})
	require.Equal(t, 2, length)
}

func TestWaitBlocksUntilPredicateHolds(t *testing.T) {
	box := synchronized.New(0)
	cond := box.NewCond()

	done := make(chan int, 1)
	go func() {
		var observed int
		box.WaitApply(cond,
			func(value *int) bool { return *value == 3 },
			func(value *int) { observed = *value },
		)
		done <- observed
	}()

	for i := 0; i < 3; i++ {
		box.Apply(func(value *int) {
			*value++
		})
		cond.Broadcast()
	}

	require.Equal(t, 3, <-done)
}
