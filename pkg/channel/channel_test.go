package channel_test

import (
	"sync"
	"testing"
	"time"

	"github.com/brickingsoft/errors"
	"github.com/mgerhold/sockets/pkg/channel"
	"github.com/stretchr/testify/require"
)

func TestSendAndReceive(t *testing.T) {
	sender, receiver := channel.New[int]()
	go func() {
		_ = sender.Send(42)
	}()
	value, err := receiver.Receive()
	require.NoError(t, err)
	require.Equal(t, 42, value)
}

func TestValuesArriveInOrderExactlyOnce(t *testing.T) {
	const count = 100
	sender, receiver := channel.New[int]()

	go func() {
		for i := 0; i < count; i++ {
			if err := sender.Send(i); err != nil {
				t.Errorf("send %d: %v", i, err)
				return
			}
		}
		sender.Close()
	}()

	for i := 0; i < count; i++ {
		value, err := receiver.Receive()
		require.NoError(t, err)
		require.Equal(t, i, value)
	}
	_, err := receiver.Receive()
	require.True(t, errors.Is(err, channel.ErrClosed))
}

func TestTrySendOnOccupiedSlot(t *testing.T) {
	sender, receiver := channel.New[string]()
	require.True(t, sender.TrySend("first"))
	require.False(t, sender.TrySend("second"))

	value, ok := receiver.TryReceive()
	require.True(t, ok)
	require.Equal(t, "first", value)

	_, ok = receiver.TryReceive()
	require.False(t, ok)
}

func TestSendOnClosedChannelFails(t *testing.T) {
	sender, receiver := channel.New[int]()
	receiver.Close()
	err := sender.Send(1)
	require.True(t, errors.Is(err, channel.ErrClosed))
	require.False(t, sender.IsOpen())
}

func TestCloseWakesBlockedSender(t *testing.T) {
	sender, receiver := channel.New[int]()
	require.True(t, sender.TrySend(1))

	result := make(chan error, 1)
	go func() {
		result <- sender.Send(2)
	}()

	time.Sleep(10 * time.Millisecond)
	receiver.Close()

	select {
	case err := <-result:
		require.True(t, errors.Is(err, channel.ErrClosed))
	case <-time.After(time.Second):
		t.Fatal("sender was not woken by close")
	}
}

func TestInFlightValueSurvivesClose(t *testing.T) {
	sender, receiver := channel.New[int]()
	require.True(t, sender.TrySend(7))
	sender.Close()

	value, err := receiver.Receive()
	require.NoError(t, err)
	require.Equal(t, 7, value)

	_, err = receiver.Receive()
	require.True(t, errors.Is(err, channel.ErrClosed))
}

func TestTryReceiveDeliversAfterClose(t *testing.T) {
	sender, receiver := channel.New[int]()
	require.True(t, sender.TrySend(9))
	sender.Close()

	value, ok := receiver.TryReceive()
	require.True(t, ok)
	require.Equal(t, 9, value)
}

func TestManySendersNoValueDroppedOrDuplicated(t *testing.T) {
	const (
		senders        = 8
		valuesPerSend  = 50
		expectedValues = senders * valuesPerSend
	)
	sender, receiver := channel.New[int]()

	wg := new(sync.WaitGroup)
	wg.Add(senders)
	for i := 0; i < senders; i++ {
		go func(base int) {
			defer wg.Done()
			for j := 0; j < valuesPerSend; j++ {
				if err := sender.Send(base*valuesPerSend + j); err != nil {
					t.Errorf("send: %v", err)
					return
				}
			}
		}(i)
	}

	seen := make(map[int]bool, expectedValues)
	for i := 0; i < expectedValues; i++ {
		value, err := receiver.Receive()
		require.NoError(t, err)
		require.False(t, seen[value], "value %d delivered twice", value)
		seen[value] = true
	}
	wg.Wait()
	require.Len(t, seen, expectedValues)
}

func TestPairRoundTrip(t *testing.T) {
	left, right := channel.NewPair[string]()
	go func() {
		_ = left.Send("ping")
	}()
	value, err := right.Receive()
	require.NoError(t, err)
	require.Equal(t, "ping", value)

	go func() {
		_ = right.Send("pong")
	}()
	value, err = left.Receive()
	require.NoError(t, err)
	require.Equal(t, "pong", value)

	require.True(t, left.IsOpen())
	right.Close()
	require.False(t, left.IsOpen())
}
