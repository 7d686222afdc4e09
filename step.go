package seq

// Next receives the outcome of a step: its resolved value, or the error
// that failed it.
type Next func(v any, err error)

// A Step is the scheduler's handle on one outstanding effect.
//
// A step completes in one of two ways, chosen by the handler that built
// it: through a wait function that is handed a continuation and calls it
// when the effect is done (NewStep), or through a future (FutureStep). A
// step with neither resolves immediately with the value it was built
// for.
//
// Whatever the variant, a step delivers its outcome at most once and
// never after Cancel. Steps live on the loop: wait functions are called
// there, and continuations must be invoked there too.
type Step struct {
	wait     func(next Next)
	future   Thenable
	cancel   func()
	started  bool
	canceled bool
	finished bool
}

// NewStep returns a step completed by wait. The scheduler calls wait
// once, when it starts waiting on the step; wait arranges for next to be
// called when the effect finishes. cancel, which may be nil, releases the
// underlying resource.
func NewStep(wait func(next Next), cancel func()) *Step {
	return &Step{wait: wait, cancel: cancel}
}

// FutureStep returns a step completed by the settlement of f. cancel may
// be nil.
func FutureStep(f Thenable, cancel func()) *Step {
	return &Step{future: f, cancel: cancel}
}

// Cancel stops the effect and silences the step. It is idempotent, a
// no-op on a nil step, and has no effect on a step that has already
// completed.
func (s *Step) Cancel() {
	if s == nil || s.canceled || s.finished {
		return
	}
	s.canceled = true
	if s.cancel != nil {
		s.cancel()
	}
}

// Canceled reports whether Cancel stopped the step before it completed.
func (s *Step) Canceled() bool { return s.canceled }

// Completed reports whether the step has delivered its outcome.
func (s *Step) Completed() bool { return s.finished }

// await starts waiting on the step. next is called once with the step's
// outcome, or with fallback when the step has no completion of its own.
// Nothing is delivered after Cancel, and a step is only awaited once.
func (s *Step) await(fallback any, next Next) {
	if s.started || s.canceled {
		return
	}
	s.started = true

	once := func(v any, err error) {
		if s.canceled || s.finished {
			return
		}
		s.finished = true
		next(v, err)
	}

	switch {
	case s.wait != nil:
		s.wait(once)
	case s.future != nil:
		s.future.Then(once)
	default:
		once(fallback, nil)
	}
}
