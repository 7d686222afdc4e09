package seq

import (
	"math"
	"reflect"
	"time"
)

// DelayHandler handles yielded durations. A time.Duration waits that
// long; any other integer or float is a number of milliseconds. The step
// resolves with the value that was yielded, so yield(300) returns 300
// once 300ms have passed.
func DelayHandler() Handler {
	return Handler{
		Name: "delay",
		Test: func(v any) bool {
			_, ok := delayOf(v)
			return ok
		},
		Handle: handleDelay,
	}
}

// Delays beyond what a time.Duration holds are clamped to its range.
const (
	maxDelay = time.Duration(math.MaxInt64)
	minDelay = time.Duration(math.MinInt64)
	maxMs    = int64(maxDelay / time.Millisecond)
	minMs    = int64(minDelay / time.Millisecond)
)

func delayOf(v any) (time.Duration, bool) {
	if d, ok := v.(time.Duration); ok {
		return d, true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		switch ms := rv.Int(); {
		case ms > maxMs:
			return maxDelay, true
		case ms < minMs:
			return minDelay, true
		default:
			return time.Duration(ms) * time.Millisecond, true
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		ms := rv.Uint()
		if ms > uint64(maxMs) {
			return maxDelay, true
		}
		return time.Duration(ms) * time.Millisecond, true
	case reflect.Float32, reflect.Float64:
		ns := rv.Float() * float64(time.Millisecond)
		switch {
		case math.IsNaN(ns):
			return 0, true
		case ns >= math.MaxInt64:
			return maxDelay, true
		case ns <= math.MinInt64:
			return minDelay, true
		default:
			return time.Duration(ns), true
		}
	}
	return 0, false
}

func handleDelay(d *Dispatcher, v any) *Step {
	delay, _ := delayOf(v)
	var (
		timer    *time.Timer
		canceled bool
	)
	return NewStep(func(next Next) {
		if canceled {
			return
		}
		loop := d.Loop()
		timer = time.AfterFunc(delay, func() {
			loop.Post(func() { next(v, nil) })
		})
	}, func() {
		canceled = true
		if timer != nil {
			timer.Stop()
		}
	})
}
