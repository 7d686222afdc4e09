package lifecycle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/webriots/seq"
)

func newTestBinding(t *testing.T) (*seq.Loop, *Binding[string]) {
	t.Helper()
	loop := seq.NewLoop()
	t.Cleanup(loop.Close)
	s := seq.NewScheduler(loop)
	b := New(s, func(key string) seq.Coroutine {
		return func(yield seq.Yield) any {
			yield(5)
			return "hello " + key
		}
	})
	return loop, b
}

func waitRun(t *testing.T, run *seq.Run) (any, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return run.Wait(ctx)
}

func TestBindingRecordsResult(t *testing.T) {
	r := require.New(t)
	loop, b := newTestBinding(t)

	var run *seq.Run
	r.NoError(loop.Do(func() { run = b.Update("a") }))

	var ok bool
	r.NoError(loop.Do(func() { _, ok = b.Result() }))
	r.False(ok)

	_, err := waitRun(t, run)
	r.NoError(err)
	r.NoError(loop.Wait(context.Background()))

	var v any
	r.NoError(loop.Do(func() { v, ok = b.Result() }))
	r.True(ok)
	r.Equal("hello a", v)
	r.NoError(b.Err())
}

func TestBindingSameKeyKeepsRun(t *testing.T) {
	r := require.New(t)
	loop, b := newTestBinding(t)

	var first, second *seq.Run
	r.NoError(loop.Do(func() {
		first = b.Update("a")
		second = b.Update("a")
	}))
	r.Same(first, second)
	r.False(first.IsComplete())
}

func TestBindingKeyChangeRestarts(t *testing.T) {
	r := require.New(t)
	loop, b := newTestBinding(t)

	var first, second, current *seq.Run
	r.NoError(loop.Do(func() {
		first = b.Update("a")
		second = b.Update("b")
		current = b.Run()
	}))
	r.Same(second, current)

	_, err := waitRun(t, first)
	r.ErrorIs(err, seq.ErrStopped)

	v, err := waitRun(t, second)
	r.NoError(err)
	r.Equal("hello b", v)

	r.NoError(loop.Wait(context.Background()))
	var ok bool
	r.NoError(loop.Do(func() { v, ok = b.Result() }))
	r.True(ok)
	r.Equal("hello b", v)
}

func TestBindingClose(t *testing.T) {
	r := require.New(t)
	loop, b := newTestBinding(t)

	var first, again *seq.Run
	r.NoError(loop.Do(func() {
		first = b.Update("a")
		b.Close()
		again = b.Update("a")
	}))
	r.NotSame(first, again)

	_, err := waitRun(t, first)
	r.ErrorIs(err, seq.ErrStopped)

	_, err = waitRun(t, again)
	r.NoError(err)
}
