package coro

import (
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
)

// PanicError carries a recovered panic value together with the stack of
// the goroutine that panicked.
type PanicError struct {
	value any
	stack []byte
}

func (p *PanicError) Error() string {
	return fmt.Sprintf("%v", p.value)
}

// Value returns the recovered panic value.
func (p *PanicError) Value() any { return p.value }

// Stack returns the stack captured when the panic was recovered.
func (p *PanicError) Stack() []byte { return p.stack }

func (p *PanicError) ErrorWithStack() string {
	return fmt.Sprintf("%v\n\n%s", p.value, p.stack)
}

func (p *PanicError) Unwrap() error {
	err, ok := p.value.(error)
	if !ok {
		return nil
	}
	return err
}

// DebugString renders the whole error chain, including the stack of every
// PanicError found in it.
func (p *PanicError) DebugString() string {
	var sb strings.Builder
	seen := make(map[error]bool)

	var unwrap func(error)
	unwrap = func(e error) {
		if e == nil || seen[e] {
			return
		}
		seen[e] = true

		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		if p, ok := e.(*PanicError); ok {
			sb.WriteString(p.ErrorWithStack())
		} else {
			sb.WriteString(e.Error())
		}

		if unwrapper, ok := e.(interface{ Unwrap() []error }); ok {
			for _, ue := range unwrapper.Unwrap() {
				unwrap(ue)
			}
		} else if ue := errors.Unwrap(e); ue != nil {
			unwrap(ue)
		}
	}

	unwrap(p)
	return sb.String()
}

func newPanicError(v any) error {
	return &PanicError{
		value: v,
		stack: debug.Stack(),
	}
}

// Catch calls f and converts a panic raised by it into a *PanicError.
func Catch(f func()) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = newPanicError(p)
		}
	}()
	f()
	return nil
}
