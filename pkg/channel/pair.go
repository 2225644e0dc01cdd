package channel

// Pair is a bidirectional endpoint composed of a sender into one channel and
// a receiver from another. NewPair yields two connected endpoints, values
// sent on one side arrive on the other.
type Pair[T any] struct {
	sender   *Sender[T]
	receiver *Receiver[T]
}

func NewPair[T any]() (*Pair[T], *Pair[T]) {
	senderA, receiverA := New[T]()
	senderB, receiverB := New[T]()
	left := &Pair[T]{sender: senderA, receiver: receiverB}
	right := &Pair[T]{sender: senderB, receiver: receiverA}
	return left, right
}

func (p *Pair[T]) Send(value T) error {
	return p.sender.Send(value)
}

func (p *Pair[T]) TrySend(value T) bool {
	return p.sender.TrySend(value)
}

func (p *Pair[T]) Receive() (T, error) {
	return p.receiver.Receive()
}

func (p *Pair[T]) TryReceive() (T, bool) {
	return p.receiver.TryReceive()
}

// IsOpen reports whether both underlying channels are still open.
func (p *Pair[T]) IsOpen() bool {
	return p.sender.IsOpen() && p.receiver.IsOpen()
}

func (p *Pair[T]) Close() {
	p.sender.Close()
	p.receiver.Close()
}
