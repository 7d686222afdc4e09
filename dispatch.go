package seq

import (
	"fmt"

	"go.uber.org/zap"
)

// A Handler interprets one class of yielded value.
//
// Test reports whether the handler accepts a value. Handle turns an
// accepted value into a Step; it may return nil when the value needs no
// waiting, in which case the value resolves to itself. Handle receives
// the Dispatcher so that composite handlers can dispatch nested values
// through the same handler set.
type Handler struct {
	Name   string
	Test   func(v any) bool
	Handle func(d *Dispatcher, v any) *Step
}

// Handlers is an ordered handler set. The first handler whose Test
// accepts a value handles it, so a handler placed earlier overrides or
// narrows the ones after it.
type Handlers []Handler

// Match returns the first handler that accepts v.
func (hs Handlers) Match(v any) (Handler, bool) {
	for _, h := range hs {
		if h.Test != nil && h.Test(v) {
			return h, true
		}
	}
	return Handler{}, false
}

// DefaultHandlers returns the handler set used when none is configured:
// futures, delays, parallel slices, callbacks and channels, in that
// order.
func DefaultHandlers() Handlers {
	return Handlers{
		FutureHandler(),
		DelayHandler(),
		ParallelHandler(),
		CallbackHandler(),
		ChanHandler(),
	}
}

// A Dispatcher binds a handler set to the loop its steps run on.
type Dispatcher struct {
	loop     *Loop
	handlers Handlers
	log      *zap.Logger
}

// NewDispatcher returns a dispatcher for handlers on loop. A nil logger
// means zap.L().
func NewDispatcher(loop *Loop, handlers Handlers, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.L()
	}
	return &Dispatcher{loop: loop, handlers: handlers, log: log}
}

// Loop returns the loop the dispatcher's steps run on.
func (d *Dispatcher) Loop() *Loop { return d.loop }

// Handlers returns the dispatcher's handler set.
func (d *Dispatcher) Handlers() Handlers { return d.handlers }

// Logger returns the dispatcher's logger.
func (d *Dispatcher) Logger() *zap.Logger { return d.log }

// Dispatch hands v to the first handler that accepts it and returns the
// resulting step. When no handler accepts v, Dispatch logs a warning and
// returns nil: the value passes through as its own result.
func (d *Dispatcher) Dispatch(v any) *Step {
	h, ok := d.handlers.Match(v)
	if !ok {
		d.log.Warn("no handler for value",
			zap.String("type", fmt.Sprintf("%T", v)),
			zap.String("value", fmt.Sprintf("%v", v)))
		return nil
	}
	return h.Handle(d, v)
}

// Await dispatches v and calls next with the outcome: the step's
// resolved value, or v itself when there is no step or the step has no
// value of its own. Without a step next runs synchronously. The step, if
// any, is returned so the caller can cancel it.
func (d *Dispatcher) Await(v any, next Next) *Step {
	s := d.Dispatch(v)
	if s == nil {
		next(v, nil)
		return nil
	}
	s.await(v, next)
	return s
}
