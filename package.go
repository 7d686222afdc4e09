// Package seq runs coroutines as sequences of effects.
//
// A sequence is a Coroutine: a function that yields values and finally
// returns a result. Each yielded value is an effect description. The
// scheduler hands it to the first Handler whose test accepts it, waits
// on the Step the handler builds, and resumes the coroutine with the
// step's resolved value:
//
//	run := sched.Start(func(yield seq.Yield) any {
//		yield(300)                               // wait 300ms
//		v := yield([]any{16, loop.Resolved(true)}) // both at once
//		return v                                 // []any{16, true}
//	})
//
// Values no handler accepts resolve to themselves, after a warning is
// logged.
//
// The built-in handlers cover delays (DelayHandler), futures
// (FutureHandler), callbacks (CallbackHandler), channels (ChanHandler),
// frame ticks (FrameHandler) and slices of effects run in parallel
// (ParallelHandler). Custom handlers are plain Handler values; putting
// one before the built-ins overrides them.
//
// Everything runs on a Loop, a single-threaded task queue. Runs, steps
// and handlers keep their state on the loop, and work finishing on other
// goroutines posts back to it, so completions are never observed on the
// turn that started the effect. A Run can be paused, played and stopped;
// stopping cancels the outstanding step and unwinds the coroutine, which
// runs its deferred calls. A Sequencer restarts a sequence with new
// arguments, stopping the previous run first.
package seq
