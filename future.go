package seq

import (
	"context"
	"sync"
)

// Thenable is a future-like value: something that settles once, with a
// value or an error, and lets callers register a continuation for it.
// Yielding a Thenable waits for its settlement.
type Thenable interface {
	Then(fn func(v any, err error))
}

// A Future is a single-assignment value bound to a Loop.
//
// Continuations registered with Then always run on the loop, on a turn
// after the one that settled the future, even when the future was
// already settled at registration. Settling and observing a Future are
// safe from any goroutine.
type Future struct {
	loop    *Loop
	mu      sync.Mutex
	settled bool
	value   any
	err     error
	subs    []func(any, error)
	done    chan struct{}
}

// NewFuture returns an unsettled future together with the functions that
// settle it. Only the first call to either function has an effect.
func (l *Loop) NewFuture() (f *Future, resolve func(v any), reject func(err error)) {
	f = &Future{loop: l, done: make(chan struct{})}
	return f, func(v any) { f.settle(v, nil) }, func(err error) { f.settle(nil, err) }
}

// Resolved returns a future already settled with v.
func (l *Loop) Resolved(v any) *Future {
	f, resolve, _ := l.NewFuture()
	resolve(v)
	return f
}

// Rejected returns a future already settled with err.
func (l *Loop) Rejected(err error) *Future {
	f, _, reject := l.NewFuture()
	reject(err)
	return f
}

func (f *Future) settle(v any, err error) {
	f.mu.Lock()
	if f.settled {
		f.mu.Unlock()
		return
	}
	f.settled = true
	f.value, f.err = v, err
	subs := f.subs
	f.subs = nil
	close(f.done)
	f.mu.Unlock()

	for _, fn := range subs {
		f.post(fn)
	}
}

func (f *Future) post(fn func(any, error)) {
	v, err := f.value, f.err
	f.loop.Post(func() { fn(v, err) })
}

// Then registers fn to run on the loop once the future settles.
func (f *Future) Then(fn func(v any, err error)) {
	f.mu.Lock()
	if !f.settled {
		f.subs = append(f.subs, fn)
		f.mu.Unlock()
		return
	}
	f.mu.Unlock()
	f.post(fn)
}

// Settled reports whether the future has a value or an error.
func (f *Future) Settled() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Done returns a channel that is closed when the future settles.
func (f *Future) Done() <-chan struct{} { return f.done }

// Result blocks until the future settles and returns its value and error.
func (f *Future) Result() (any, error) {
	<-f.done
	return f.value, f.err
}

// Wait blocks until the future settles or ctx is done.
func (f *Future) Wait(ctx context.Context) (any, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// FutureHandler handles yielded Thenables. The step resolves with the
// settled value and fails with the settled error. Canceling the step
// does not stop the work behind the future; its settlement is ignored,
// failures included.
func FutureHandler() Handler {
	return Handler{
		Name: "future",
		Test: func(v any) bool {
			_, ok := v.(Thenable)
			return ok
		},
		Handle: handleFuture,
	}
}

func handleFuture(d *Dispatcher, v any) *Step {
	if f, ok := v.(*Future); ok && f.loop == d.Loop() {
		return FutureStep(f, nil)
	}
	t, loop := v.(Thenable), d.Loop()
	return FutureStep(thenableFunc(func(fn func(any, error)) {
		t.Then(func(v any, err error) {
			loop.Post(func() { fn(v, err) })
		})
	}), nil)
}

// thenableFunc adapts a registration function to Thenable.
type thenableFunc func(fn func(any, error))

func (t thenableFunc) Then(fn func(v any, err error)) { t(fn) }
