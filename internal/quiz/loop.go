package quiz

import (
	"context"
	"sync"
)

// Executor runs functions on the controller's coordination context.
type Executor interface {
	Post(fn func())
}

// Loop is a FIFO task queue drained by a single goroutine.
type Loop struct {
	tasks chan func()
	done  chan struct{}
	once  sync.Once
}

// NewLoop returns a loop with the given queue capacity.
func NewLoop(size int) *Loop {
	if size < 1 {
		size = 1
	}
	return &Loop{
		tasks: make(chan func(), size),
		done:  make(chan struct{}),
	}
}

// Post queues fn. It blocks while the queue is full and drops fn once the
// loop is closed.
func (l *Loop) Post(fn func()) {
	select {
	case <-l.done:
	case l.tasks <- fn:
	}
}

// Tasks exposes the queue for callers that drain it themselves, such as a
// Bubble Tea update loop.
func (l *Loop) Tasks() <-chan func() {
	return l.tasks
}

// Done is closed by Close.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Run executes queued tasks until ctx is cancelled or the loop is closed.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.done:
			return nil
		case fn := <-l.tasks:
			fn()
		}
	}
}

// Close stops the loop and releases blocked posters.
func (l *Loop) Close() {
	l.once.Do(func() { close(l.done) })
}
