package seq

import "time"

// Frame is the type of NextFrame.
type Frame struct{}

// NextFrame, when yielded to a sequence that has a FrameHandler, waits for
// the next frame boundary and returns its time.
var NextFrame = Frame{}

// FrameHandler handles NextFrame. Frames fall on multiples of interval
// counted from the zero time, so sequences running on the same interval
// wake up together. The step resolves with the frame's time.Time.
func FrameHandler(interval time.Duration) Handler {
	if interval <= 0 {
		interval = time.Second / 60
	}
	return Handler{
		Name: "frame",
		Test: func(v any) bool {
			_, ok := v.(Frame)
			return ok
		},
		Handle: func(d *Dispatcher, _ any) *Step {
			return handleFrame(d, interval)
		},
	}
}

func handleFrame(d *Dispatcher, interval time.Duration) *Step {
	var (
		timer    *time.Timer
		canceled bool
	)
	return NewStep(func(next Next) {
		if canceled {
			return
		}
		now := time.Now()
		at := now.Truncate(interval).Add(interval)
		loop := d.Loop()
		timer = time.AfterFunc(at.Sub(now), func() {
			loop.Post(func() { next(at, nil) })
		})
	}, func() {
		canceled = true
		if timer != nil {
			timer.Stop()
		}
	})
}
