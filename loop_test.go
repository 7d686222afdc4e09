package seq

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestLoop(t *testing.T) *Loop {
	t.Helper()
	l := NewLoop()
	t.Cleanup(l.Close)
	return l
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestLoopRunsTasksInOrder(t *testing.T) {
	r := require.New(t)
	l := newTestLoop(t)

	var got []int
	for i := range 5 {
		r.True(l.Post(func() { got = append(got, i) }))
	}

	var snapshot []int
	r.NoError(l.Do(func() { snapshot = append(snapshot, got...) }))
	r.Equal([]int{0, 1, 2, 3, 4}, snapshot)
}

func TestLoopPostNeverRunsSynchronously(t *testing.T) {
	r := require.New(t)
	l := newTestLoop(t)

	var ranInline bool
	r.NoError(l.Do(func() {
		ran := false
		l.Post(func() { ran = true })
		ranInline = ran
	}))
	r.False(ranInline)
}

func TestLoopSurvivesPanickingTask(t *testing.T) {
	r := require.New(t)
	l := newTestLoop(t)

	l.Post(func() { panic("boom") })

	ran := false
	r.NoError(l.Do(func() { ran = true }))
	r.True(ran)
}

func TestLoopLogsTaskPanicToConfiguredLogger(t *testing.T) {
	r := require.New(t)
	core, logs := observer.New(zapcore.ErrorLevel)
	l := NewLoop(WithLoopLogger(zap.New(core)))
	t.Cleanup(l.Close)

	l.Post(func() { panic("boom") })
	r.NoError(l.Wait(testContext(t)))

	entries := logs.FilterMessage("loop task panicked").All()
	r.Len(entries, 1)
	r.Equal("boom", entries[0].ContextMap()["error"])
}

func TestLoopWait(t *testing.T) {
	r := require.New(t)
	l := newTestLoop(t)

	count := 0
	var chain func(n int)
	chain = func(n int) {
		count++
		if n > 0 {
			l.Post(func() { chain(n - 1) })
		}
	}
	l.Post(func() { chain(10) })

	r.NoError(l.Wait(testContext(t)))

	var got int
	r.NoError(l.Do(func() { got = count }))
	r.Equal(11, got)
}

func TestLoopClose(t *testing.T) {
	r := require.New(t)
	l := NewLoop()
	l.Close()
	l.Close()

	r.False(l.Post(func() {}))
	r.ErrorIs(l.Do(func() {}), ErrClosed)
	r.ErrorIs(l.Wait(context.Background()), ErrClosed)

	select {
	case <-l.Closed():
	default:
		t.Fatal("expected Closed channel to be closed")
	}
}
