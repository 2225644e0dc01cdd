package sockets

import (
	"time"

	"github.com/brickingsoft/errors"
)

const (
	// DefaultReceiveTimeout bounds Receive and ReceiveExact calls that pass a
	// non-positive timeout.
	DefaultReceiveTimeout = 1 * time.Second
	// DefaultAcceptPollInterval is how long the listener waits per readiness
	// poll before re-checking its stop flag.
	DefaultAcceptPollInterval = 100 * time.Millisecond
)

type Options struct {
	ReceiveTimeout     time.Duration
	AcceptPollInterval time.Duration
	Backlog            int
	NoDelay            bool
}

type Option func(options *Options) error

func defaultOptions() Options {
	return Options{
		ReceiveTimeout:     DefaultReceiveTimeout,
		AcceptPollInterval: DefaultAcceptPollInterval,
		Backlog:            0,
		NoDelay:            true,
	}
}

// WithReceiveTimeout sets the default deadline applied to receives that do
// not carry an explicit timeout.
func WithReceiveTimeout(timeout time.Duration) Option {
	return func(options *Options) error {
		if timeout < 1 {
			return errors.New("sockets: receive timeout must be positive")
		}
		options.ReceiveTimeout = timeout
		return nil
	}
}

// WithBacklog overrides the listen backlog, 0 keeps the OS maximum.
func WithBacklog(backlog int) Option {
	return func(options *Options) error {
		if backlog < 0 {
			return errors.New("sockets: backlog must not be negative")
		}
		options.Backlog = backlog
		return nil
	}
}

// WithAcceptPollInterval tunes how quickly Stop is observed by the listener.
func WithAcceptPollInterval(interval time.Duration) Option {
	return func(options *Options) error {
		if interval < 1 {
			return errors.New("sockets: accept poll interval must be positive")
		}
		options.AcceptPollInterval = interval
		return nil
	}
}

// WithNoDelay toggles TCP_NODELAY, which is enabled by default.
func WithNoDelay(noDelay bool) Option {
	return func(options *Options) error {
		options.NoDelay = noDelay
		return nil
	}
}

func buildOptions(options []Option) (opts Options, err error) {
	opts = defaultOptions()
	for _, option := range options {
		if err = option(&opts); err != nil {
			return
		}
	}
	return
}
