package seq

// ChanHandler handles yielded chan any and <-chan any values. The step
// resolves with the next value received, or nil once the channel is
// closed. A value received after the step was canceled is dropped.
func ChanHandler() Handler {
	return Handler{
		Name: "chan",
		Test: func(v any) bool {
			_, ok := chanOf(v)
			return ok
		},
		Handle: handleChan,
	}
}

func chanOf(v any) (<-chan any, bool) {
	switch ch := v.(type) {
	case chan any:
		return ch, ch != nil
	case <-chan any:
		return ch, ch != nil
	}
	return nil, false
}

func handleChan(d *Dispatcher, v any) *Step {
	ch, _ := chanOf(v)
	var stop chan struct{}
	return NewStep(func(next Next) {
		done := make(chan struct{})
		stop = done
		loop := d.Loop()
		go func() {
			select {
			case v := <-ch:
				loop.Post(func() { next(v, nil) })
			case <-done:
			}
		}()
	}, func() {
		if stop != nil {
			close(stop)
		}
	})
}
