package seq

import "sync/atomic"

// Callback is a unit of external work that reports completion by calling
// done. It is the generic escape hatch for asynchronous primitives that
// have no dedicated handler.
type Callback func(done func(v any))

// CallbackHandler handles yielded Callbacks, and plain func(func(any))
// values. The function is called once when the step is awaited; the
// first call to done resolves the step with its argument and later calls
// are ignored. done is safe to call from any goroutine. After the step
// is canceled, calling done does nothing.
func CallbackHandler() Handler {
	return Handler{
		Name: "callback",
		Test: func(v any) bool {
			_, ok := callbackOf(v)
			return ok
		},
		Handle: handleCallback,
	}
}

func callbackOf(v any) (Callback, bool) {
	switch fn := v.(type) {
	case Callback:
		return fn, fn != nil
	case func(func(any)):
		return fn, fn != nil
	}
	return nil, false
}

func handleCallback(d *Dispatcher, v any) *Step {
	fn, _ := callbackOf(v)
	return NewStep(func(next Next) {
		var called atomic.Bool
		loop := d.Loop()
		fn(func(v any) {
			if !called.CompareAndSwap(false, true) {
				return
			}
			loop.Post(func() { next(v, nil) })
		})
	}, nil)
}
