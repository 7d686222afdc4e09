package seq

// A Sequencer is a restartable entry point for one coroutine body.
//
// Each Start stops the run started by the previous Start, if it is still
// going, before beginning a new one, so the latest call always wins.
// This is the shape a UI wants when a sequence has to restart whenever
// its inputs change.
type Sequencer[A any] struct {
	s    *Scheduler
	body func(yield Yield, arg A) any
	prev *Run
}

// NewSequencer binds body to s.
func NewSequencer[A any](s *Scheduler, body func(yield Yield, arg A) any) *Sequencer[A] {
	return &Sequencer[A]{s: s, body: body}
}

// Start stops the previous run and starts body with arg. It must be
// called on the loop.
func (q *Sequencer[A]) Start(arg A) *Run {
	q.Stop()
	if q.body == nil {
		q.prev = q.s.Start(nil)
		return q.prev
	}
	body := q.body
	q.prev = q.s.Start(func(yield Yield) any {
		return body(yield, arg)
	})
	return q.prev
}

// Current returns the run started by the last Start, or nil.
func (q *Sequencer[A]) Current() *Run { return q.prev }

// Stop stops the run started by the last Start.
func (q *Sequencer[A]) Stop() {
	if q.prev != nil {
		q.prev.Stop()
	}
}
