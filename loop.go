package seq

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/webriots/seq/internal/coro"
)

// ErrClosed is returned when work is handed to a closed Loop.
var ErrClosed = errors.New("seq: loop closed")

// A Loop is a single-threaded task runner.
//
// Tasks posted to a Loop are run one at a time, in the order they were
// posted, by a goroutine the Loop owns. Running one task is one
// scheduling turn. Runs, steps and handlers keep their state on the
// loop, which is what lets them go without locks: timers, channel
// receives and future settlements that happen on other goroutines post
// their effect back to the loop instead of acting directly.
type Loop struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []func()
	closed bool
	done   chan struct{}
	log    *zap.Logger
}

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithLoopLogger sets the logger for tasks that panic. The default is
// zap.L().
func WithLoopLogger(log *zap.Logger) LoopOption {
	return func(l *Loop) {
		if log != nil {
			l.log = log
		}
	}
}

// NewLoop creates a Loop and starts its goroutine. Call Close to stop it.
func NewLoop(opts ...LoopOption) *Loop {
	l := &Loop{done: make(chan struct{}), log: zap.L()}
	for _, opt := range opts {
		opt(l)
	}
	l.cond = sync.NewCond(&l.mu)
	go l.run()
	return l
}

func (l *Loop) run() {
	defer close(l.done)

	l.mu.Lock()
	for {
		for len(l.queue) == 0 && !l.closed {
			l.cond.Wait()
		}
		if l.closed {
			clear(l.queue)
			l.queue = nil
			l.mu.Unlock()
			return
		}
		f := l.queue[0]
		l.queue[0] = nil
		l.queue = l.queue[1:]
		l.mu.Unlock()

		l.exec(f)

		l.mu.Lock()
	}
}

func (l *Loop) exec(f func()) {
	if err := coro.Catch(f); err != nil {
		l.log.Error("loop task panicked", zap.Error(err), zap.ByteString("stack", stackOf(err)))
	}
}

func stackOf(err error) []byte {
	var perr *coro.PanicError
	if errors.As(err, &perr) {
		return perr.Stack()
	}
	return nil
}

// Post queues f to run on a later turn. It never runs f synchronously.
// Post is safe for concurrent use; it reports false when the loop is
// closed and f was dropped.
func (l *Loop) Post(f func()) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return false
	}
	l.queue = append(l.queue, f)
	l.cond.Signal()
	return true
}

// Do runs f on the loop and waits for it to return.
//
// Do is how code outside the loop starts, controls and inspects runs.
// It must not be called from a loop task, which would deadlock.
func (l *Loop) Do(f func()) error {
	ran := make(chan struct{})
	if !l.Post(func() {
		defer close(ran)
		f()
	}) {
		return ErrClosed
	}
	select {
	case <-ran:
		return nil
	case <-l.done:
		select {
		case <-ran:
			return nil
		default:
			return ErrClosed
		}
	}
}

// Wait blocks until the queue has drained, meaning a turn found nothing
// left to run after it, or until ctx is done. Work that has not been
// posted yet, such as a pending timer, does not count.
func (l *Loop) Wait(ctx context.Context) error {
	for {
		idle := make(chan bool, 1)
		if !l.Post(func() {
			l.mu.Lock()
			idle <- len(l.queue) == 0
			l.mu.Unlock()
		}) {
			return ErrClosed
		}
		select {
		case ok := <-idle:
			if ok {
				return nil
			}
		case <-l.done:
			return ErrClosed
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close stops the loop, dropping tasks that have not run yet, and waits
// for the current task to finish. Close is idempotent and must not be
// called from a loop task.
func (l *Loop) Close() {
	l.mu.Lock()
	l.closed = true
	l.cond.Signal()
	l.mu.Unlock()
	<-l.done
}

// Closed returns a channel that is closed once the loop has stopped.
func (l *Loop) Closed() <-chan struct{} { return l.done }
