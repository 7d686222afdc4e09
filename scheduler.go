package seq

import "go.uber.org/zap"

// Option configures a Scheduler.
type Option func(*options)

type options struct {
	handlers Handlers
	log      *zap.Logger
}

// WithHandlers replaces the default handler set. Handlers are tried in
// the order given.
func WithHandlers(handlers ...Handler) Option {
	return func(o *options) {
		o.handlers = handlers
	}
}

// WithLogger sets the logger for dispatch misses and run lifecycle
// events. The default is zap.L().
func WithLogger(log *zap.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

// A Scheduler starts runs against a fixed handler set on one loop.
type Scheduler struct {
	d *Dispatcher
}

// NewScheduler returns a Scheduler running on loop. Without WithHandlers
// it uses DefaultHandlers.
func NewScheduler(loop *Loop, opts ...Option) *Scheduler {
	o := options{handlers: DefaultHandlers(), log: zap.L()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Scheduler{d: NewDispatcher(loop, o.handlers, o.log)}
}

// Dispatcher returns the scheduler's dispatcher.
func (s *Scheduler) Dispatcher() *Dispatcher { return s.d }

// Loop returns the loop the scheduler's runs live on.
func (s *Scheduler) Loop() *Loop { return s.d.Loop() }

// Start runs co and returns its Run. The coroutine runs up to its first
// yield before Start returns; a coroutine that returns without yielding
// yields a Run that is already complete. A nil co gives a Run completed
// with nil. Start must be called on the loop.
func (s *Scheduler) Start(co Coroutine) *Run {
	if co == nil {
		return completedRun(s.d, nil)
	}
	return newRun(s.d, co)
}

// StartValue starts v if it is a coroutine body, a Coroutine or a
// func(Yield) any. Any other value gives a Run that has already
// completed with v as its result.
func (s *Scheduler) StartValue(v any) *Run {
	switch co := v.(type) {
	case Coroutine:
		return s.Start(co)
	case func(Yield) any:
		return s.Start(co)
	case func(func(any) any) any:
		return s.Start(func(yield Yield) any { return co(yield) })
	}
	return completedRun(s.d, v)
}
