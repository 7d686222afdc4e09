package seq

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/webriots/seq/internal/coro"
)

var (
	// ErrStopped is the error a Run completes with when it is stopped
	// before its coroutine returns.
	ErrStopped = errors.New("seq: run stopped")

	// ErrCanceled is the panic value a Yield raises inside a coroutine
	// whose Run has been stopped. Recovering it is allowed but the
	// coroutine cannot yield again.
	ErrCanceled = coro.ErrCanceled
)

// Yield hands an effect to the scheduler and returns its resolved value.
type Yield func(v any) any

// A Coroutine is the body of a sequence. It yields effects and returns
// the sequence's final result.
type Coroutine func(yield Yield) any

// A Run is one execution of a Coroutine.
//
// A Run advances its coroutine one effect at a time: it resumes the
// coroutine, dispatches the yielded value, waits on the resulting step
// and resumes the coroutine with the resolved value. It holds at most
// one outstanding step.
//
// Apart from IsPaused, IsComplete, ID, Done, Wait and Finished, a Run's
// methods must be called on its loop. Its methods never panic.
type Run struct {
	id       uuid.UUID
	d        *Dispatcher
	log      *zap.Logger
	co       *coro.Coroutine[any, any]
	step     *Step
	paused   atomic.Bool
	complete atomic.Bool
	stopping bool
	deferred bool
	resume   any
	subs     []func(any, error)
	result   any
	err      error
	finished *Future
	settle   func(any, error)
}

func newRun(d *Dispatcher, body Coroutine) *Run {
	r := &Run{id: uuid.New(), d: d}
	r.log = d.Logger().With(zap.Stringer("run_id", r.id))
	f, resolve, reject := d.Loop().NewFuture()
	r.finished = f
	r.settle = func(v any, err error) {
		if err != nil {
			reject(err)
			return
		}
		resolve(v)
	}
	r.co = coro.New(func(yield func(any) any) any {
		return body(yield)
	})
	r.log.Debug("run started")
	r.advance(nil)
	return r
}

// completedRun returns a Run that has already completed with v. Its
// controls do nothing.
func completedRun(d *Dispatcher, v any) *Run {
	r := &Run{id: uuid.New(), d: d, log: d.Logger(), result: v}
	r.complete.Store(true)
	r.finished = d.Loop().Resolved(v)
	return r
}

// advance drives the coroutine from resume value v until it suspends on
// a step that has not completed yet, the run is paused, or the run ends.
// Steps that complete synchronously are handled in the loop rather than
// by recursion.
func (r *Run) advance(v any) {
	for !r.IsComplete() {
		if r.paused.Load() {
			r.deferred, r.resume = true, v
			return
		}

		out, running, err := r.co.Resume(v)
		if r.stopping {
			r.halt()
			return
		}
		if err != nil {
			r.fail(err)
			return
		}
		if !running {
			r.finish(out, nil)
			return
		}

		var (
			inline   = true
			resolved bool
			next     any
			step     *Step
		)
		if err := coro.Catch(func() {
			step = r.d.Await(out, func(val any, err error) {
				if err != nil {
					r.fail(err)
					return
				}
				if inline {
					resolved, next = true, val
					return
				}
				r.step = nil
				r.advance(val)
			})
		}); err != nil {
			step.Cancel()
			r.fail(err)
			return
		}
		inline = false

		if r.IsComplete() {
			// Stopped or failed while the step was being dispatched.
			step.Cancel()
			return
		}
		if !resolved {
			r.step = step
			return
		}
		v = next
	}
}

// Pause defers the run's next resume until Play. A step that is already
// outstanding keeps running; when it completes, its value is held.
func (r *Run) Pause() {
	if r.IsComplete() {
		return
	}
	r.paused.Store(true)
}

// Play clears the pause and, if a resume was held while paused, resumes
// the coroutine with the held value.
func (r *Run) Play() {
	if r.IsComplete() {
		return
	}
	r.paused.Store(false)
	if r.deferred {
		v := r.resume
		r.deferred, r.resume = false, nil
		r.advance(v)
	}
}

// Stop ends the run. The outstanding step is canceled, the coroutine is
// unwound so its deferred calls run, a resume held by Pause is dropped,
// and the run completes with ErrStopped. Called from inside the
// coroutine, Stop takes effect when the coroutine next yields or
// returns.
func (r *Run) Stop() {
	if r.IsComplete() {
		return
	}
	r.step.Cancel()
	r.step = nil
	r.deferred, r.resume = false, nil
	if r.co.Running() {
		r.stopping = true
		return
	}
	r.halt()
}

func (r *Run) halt() {
	if err := r.co.Cancel(); err != nil {
		r.log.Warn("coroutine panicked while stopping", zap.Error(err))
	}
	r.log.Debug("run stopped")
	r.finish(nil, ErrStopped)
}

func (r *Run) fail(err error) {
	if r.IsComplete() {
		return
	}
	r.step.Cancel()
	r.step = nil
	if !r.co.Running() {
		if cerr := r.co.Cancel(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}
	r.log.Warn("run failed", zap.Error(err))
	r.finish(nil, err)
}

// finish completes the run: subscribers are called in registration
// order, then the completion future settles.
func (r *Run) finish(v any, err error) {
	if r.complete.Swap(true) {
		return
	}
	r.step = nil
	r.deferred, r.resume = false, nil
	r.result, r.err = v, err
	if err == nil {
		r.log.Debug("run completed")
	}

	subs := r.subs
	r.subs = nil
	for _, fn := range subs {
		r.notify(fn)
	}
	r.settle(v, err)
}

func (r *Run) notify(fn func(any, error)) {
	if err := coro.Catch(func() { fn(r.result, r.err) }); err != nil {
		r.log.Error("completion callback panicked", zap.Error(err))
	}
}

// OnComplete registers fn to be called once with the run's result or
// error. On a run that has already completed, fn is called on a later
// turn.
func (r *Run) OnComplete(fn func(v any, err error)) {
	if fn == nil {
		return
	}
	if r.IsComplete() {
		r.d.Loop().Post(func() { r.notify(fn) })
		return
	}
	r.subs = append(r.subs, fn)
}

// ID identifies the run in logs.
func (r *Run) ID() uuid.UUID { return r.id }

// IsPaused reports whether the run is paused. A completed run is never
// paused.
func (r *Run) IsPaused() bool { return r.paused.Load() && !r.IsComplete() }

// IsComplete reports whether the run has completed, stopped or failed.
func (r *Run) IsComplete() bool { return r.complete.Load() }

// Finished returns the run's completion future. Being a Thenable, it can
// be yielded by another sequence to wait for this one.
func (r *Run) Finished() *Future { return r.finished }

// Done returns a channel that is closed when the run completes.
func (r *Run) Done() <-chan struct{} { return r.finished.Done() }

// Wait blocks until the run completes or ctx is done, and returns the
// coroutine's result or the error the run ended with.
func (r *Run) Wait(ctx context.Context) (any, error) {
	return r.finished.Wait(ctx)
}
