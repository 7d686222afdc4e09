package seq

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFutureThenRunsOnLaterTurn(t *testing.T) {
	r := require.New(t)
	l := newTestLoop(t)

	var (
		inline bool
		got    any
	)
	r.NoError(l.Do(func() {
		f := l.Resolved(7)
		called := false
		f.Then(func(v any, err error) {
			called = true
			got = v
		})
		inline = called
	}))
	r.False(inline)

	r.NoError(l.Wait(testContext(t)))
	var v any
	r.NoError(l.Do(func() { v = got }))
	r.Equal(7, v)
}

func TestFutureSettlesOnce(t *testing.T) {
	r := require.New(t)
	l := newTestLoop(t)

	f, resolve, reject := l.NewFuture()
	r.False(f.Settled())

	go resolve("first")
	v, err := f.Wait(testContext(t))
	r.NoError(err)
	r.Equal("first", v)

	resolve("second")
	reject(errors.New("late"))
	v, err = f.Result()
	r.NoError(err)
	r.Equal("first", v)
	r.True(f.Settled())
}

func TestFutureRejected(t *testing.T) {
	r := require.New(t)
	l := newTestLoop(t)

	boom := errors.New("boom")
	f := l.Rejected(boom)

	v, err := f.Result()
	r.Nil(v)
	r.ErrorIs(err, boom)

	select {
	case <-f.Done():
	default:
		t.Fatal("expected Done channel to be closed")
	}
}
