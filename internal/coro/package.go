// Package coro provides stackful coroutines with bidirectional value
// passing, built on the runtime's coroutine switch.
//
// A coroutine is created with New and driven by Resume: each Resume
// passes a value in and runs the body until it yields a value out or
// returns. Cancel unwinds a suspended body so that its deferred calls
// run, which is how a scheduler stops a sequence early without leaking
// the goroutine that backs it.
//
// Panics in the body never cross Resume or Cancel. They are recovered,
// wrapped with the stack at the point of recovery, and returned as a
// *PanicError.
package coro
