// Package eventloop runs all client state mutation on a single goroutine.
// Network calls run as tasks on their own goroutines; their continuations
// are posted back to the loop, so handlers never need locks.
package eventloop

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

const queueSize = 1024

type Loop struct {
	queue    chan func()
	inflight atomic.Int64
	timeout  time.Duration
	base     context.Context
	cancel   context.CancelFunc
	onIdle   func()
	logger   *zap.Logger
}

// New creates a loop whose tasks are bounded by timeout. A zero timeout
// leaves tasks unbounded.
func New(timeout time.Duration, logger *zap.Logger) *Loop {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Loop{
		queue:   make(chan func(), queueSize),
		timeout: timeout,
		base:    ctx,
		cancel:  cancel,
		logger:  logger.Named("loop"),
	}
}

// OnIdle registers fn to run whenever the queue empties during Run
func (l *Loop) OnIdle(fn func()) {
	l.onIdle = fn
}

// Post queues fn for execution on the loop goroutine
func (l *Loop) Post(fn func()) {
	l.queue <- fn
}

// Go runs task on its own goroutine under the loop's timeout, then posts
// then(err) back to the loop
func (l *Loop) Go(task func(ctx context.Context) error, then func(err error)) {
	l.inflight.Add(1)
	go func() {
		ctx := l.base
		var cancel context.CancelFunc
		if l.timeout > 0 {
			ctx, cancel = context.WithTimeout(ctx, l.timeout)
		} else {
			ctx, cancel = context.WithCancel(ctx)
		}
		err := task(ctx)
		cancel()

		l.Post(func() {
			l.inflight.Add(-1)
			then(err)
		})
	}()
}

// Run executes posted functions until ctx is done
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-l.queue:
			l.exec(fn)
			if len(l.queue) == 0 && l.onIdle != nil {
				l.onIdle()
			}
		}
	}
}

// RunPending executes queued functions without waiting for tasks in flight
func (l *Loop) RunPending() {
	for {
		select {
		case fn := <-l.queue:
			l.exec(fn)
		default:
			return
		}
	}
}

// Drain executes queued functions and waits for every task in flight to
// post its continuation, until the loop is quiescent
func (l *Loop) Drain() {
	for {
		l.RunPending()
		if l.inflight.Load() == 0 && len(l.queue) == 0 {
			return
		}
		l.exec(<-l.queue)
	}
}

// InFlight reports the number of tasks whose continuation has not run yet
func (l *Loop) InFlight() int {
	return int(l.inflight.Load())
}

// Stop cancels the context of every task in flight
func (l *Loop) Stop() {
	l.cancel()
}

func (l *Loop) exec(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("event handler panicked", zap.Any("panic", r))
		}
	}()
	fn()
}
