// Package lifecycle ties sequence runs to a host's lifecycle: a run is
// started when a dependency key changes and stopped when it changes
// again or the host is torn down.
package lifecycle

import "github.com/webriots/seq"

// A Binding keeps one run alive per dependency key.
//
// Update starts a run for a new key after stopping the previous one, and
// Result exposes the latest run's outcome once it is known. Like the
// runs it manages, a Binding must be used on the scheduler's loop.
type Binding[K comparable] struct {
	s       *seq.Scheduler
	factory func(key K) seq.Coroutine
	key     K
	started bool
	run     *seq.Run
	result  any
	err     error
	ok      bool
}

// New returns a Binding that builds each run's coroutine with factory.
func New[K comparable](s *seq.Scheduler, factory func(key K) seq.Coroutine) *Binding[K] {
	return &Binding[K]{s: s, factory: factory}
}

// Update starts a run for key unless the current run was started for the
// same key. The previous run is stopped and the recorded result cleared
// before the new run starts. It returns the current run.
func (b *Binding[K]) Update(key K) *seq.Run {
	if b.started && b.key == key {
		return b.run
	}
	b.stop()
	b.key, b.started = key, true
	b.result, b.err, b.ok = nil, nil, false

	run := b.s.Start(b.factory(key))
	b.run = run
	run.OnComplete(func(v any, err error) {
		if b.run != run {
			return
		}
		b.result, b.err, b.ok = v, err, true
	})
	return run
}

// Run returns the current run, or nil before the first Update.
func (b *Binding[K]) Run() *seq.Run { return b.run }

// Result returns the current run's result; ok is false until the run
// has completed.
func (b *Binding[K]) Result() (v any, ok bool) {
	return b.result, b.ok
}

// Err returns the error the current run ended with, if any.
func (b *Binding[K]) Err() error { return b.err }

// Close stops the current run. A later Update starts afresh, even for
// the key that was current.
func (b *Binding[K]) Close() {
	b.stop()
	b.started = false
}

func (b *Binding[K]) stop() {
	if b.run != nil {
		b.run.Stop()
	}
}
