package coro

import (
	"errors"
	"unsafe"
)

var (
	// ErrCanceled is the panic value raised by yield inside a canceled
	// coroutine, and by yield called after the coroutine has finished.
	ErrCanceled = errors.New("coro: coroutine canceled")

	// ErrRunning is returned by Resume when called from inside the
	// coroutine it would resume.
	ErrRunning = errors.New("coro: coroutine is running")

	_ unsafe.Pointer
)

// coroutine represents a native Go coroutine instance. It's an opaque
// struct used by the runtime functions.
type coroutine struct{}

//go:linkname newcoro runtime.newcoro
func newcoro(func(*coroutine)) *coroutine

//go:linkname coroswitch runtime.coroswitch
func coroswitch(*coroutine)

// Coroutine is a stackful coroutine that receives In values when resumed
// and hands Out values back when it yields or returns.
//
// A Coroutine is not safe for concurrent use. Resume and Cancel must not
// be called while another Resume or Cancel on the same coroutine is in
// progress.
type Coroutine[In, Out any] struct {
	c        *coroutine
	in       In
	out      Out
	inside   bool
	done     bool
	canceled bool
	err      error
}

// New creates a suspended coroutine running fn. The body does not start
// until the first Resume; the value passed to that first Resume is
// discarded.
//
// Within fn, yield hands a value to the caller of Resume and suspends
// until the next Resume, whose argument it returns. When the coroutine is
// canceled, the pending yield panics with ErrCanceled so that deferred
// calls in fn run before it ends.
func New[In, Out any](fn func(yield func(Out) In) Out) *Coroutine[In, Out] {
	co := &Coroutine[In, Out]{}
	co.c = newcoro(func(*coroutine) {
		defer func() {
			if p := recover(); p != nil && !co.isCancel(p) {
				co.err = newPanicError(p)
			}
			co.done = true
		}()

		if !co.canceled {
			co.out = fn(co.yield)
		}
	})
	return co
}

func (co *Coroutine[In, Out]) yield(val Out) In {
	if co.done || co.canceled || !co.inside {
		panic(ErrCanceled)
	}
	co.out = val
	co.inside = false
	coroswitch(co.c)
	co.inside = true
	if co.canceled {
		panic(ErrCanceled)
	}
	return co.in
}

func (co *Coroutine[In, Out]) isCancel(p any) bool {
	err, ok := p.(error)
	return ok && co.canceled && errors.Is(err, ErrCanceled)
}

// Resume passes val into the coroutine and runs it until it yields or
// returns.
//
// It returns the yielded value and true while the coroutine is suspended,
// or the returned value and false once it has finished. A panic in the
// body ends the coroutine and is returned as a *PanicError. Resuming a
// finished coroutine returns the zero value, false, and the panic error
// that ended it, if any.
func (co *Coroutine[In, Out]) Resume(val In) (Out, bool, error) {
	var zero Out
	if co.inside {
		return zero, true, ErrRunning
	}
	if co.done {
		return zero, false, co.err
	}
	co.in = val
	co.inside = true
	coroswitch(co.c)
	co.inside = false
	if co.err != nil {
		return zero, false, co.err
	}
	if co.done {
		out := co.out
		co.out = zero
		return out, false, nil
	}
	return co.out, true, nil
}

// Cancel ends the coroutine. A suspended coroutine is resumed with its
// pending yield panicking with ErrCanceled, which unwinds the body and
// runs its deferred calls; a coroutine that never started does not run
// at all. Cancel returns a panic raised while unwinding other than the
// cancellation itself.
//
// Cancel called from inside the body marks the coroutine canceled and
// returns immediately; the body unwinds at its next yield.
func (co *Coroutine[In, Out]) Cancel() error {
	if co.done || co.canceled {
		return nil
	}
	co.canceled = true
	if co.inside {
		return nil
	}
	coroswitch(co.c)
	co.inside = false
	return co.err
}

// Done reports whether the coroutine has finished, by returning,
// panicking, or being canceled.
func (co *Coroutine[In, Out]) Done() bool { return co.done }

// Running reports whether the body is currently executing.
func (co *Coroutine[In, Out]) Running() bool { return co.inside }

// Err returns the panic that ended the coroutine, if any.
func (co *Coroutine[In, Out]) Err() error { return co.err }
