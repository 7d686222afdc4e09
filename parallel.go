package seq

import "reflect"

// ParallelHandler handles yielded slices by running every element's
// effect at once and waiting for all of them. Any slice type is
// accepted except byte slices, which are data rather than effects.
//
// Elements are dispatched through the same handler set, in index order
// and on the same turn, so nested slices fan out recursively. The step
// resolves with a new []any of the same length in which position i holds
// element i's resolved value, whatever order the effects finished in.
// Elements that no handler accepts resolve to themselves, and an empty
// slice resolves immediately to an empty slice.
//
// The first element to fail fails the whole step and cancels the ones
// still outstanding. Canceling the step cancels every outstanding
// element; elements that already finished are left alone.
func ParallelHandler() Handler {
	return Handler{
		Name:   "parallel",
		Test:   isEffectSlice,
		Handle: handleParallel,
	}
}

func isEffectSlice(v any) bool {
	if _, ok := v.([]any); ok {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() != reflect.Uint8
}

func effectsOf(v any) []any {
	if items, ok := v.([]any); ok {
		return items
	}
	rv := reflect.ValueOf(v)
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items
}

type parallel struct {
	results     []any
	outstanding map[int]*Step
	remaining   int
	over        bool
}

func handleParallel(d *Dispatcher, v any) *Step {
	items := effectsOf(v)
	p := &parallel{
		results:     make([]any, len(items)),
		outstanding: make(map[int]*Step, len(items)),
		remaining:   len(items),
	}
	return NewStep(func(next Next) {
		p.start(d, items, next)
	}, p.cancel)
}

func (p *parallel) start(d *Dispatcher, items []any, next Next) {
	finish := func(v any, err error) {
		if p.over {
			return
		}
		p.over = true
		next(v, err)
	}

	for i, item := range items {
		if p.over {
			return
		}
		s := d.Dispatch(item)
		if s == nil {
			p.results[i] = item
			p.remaining--
			continue
		}
		p.outstanding[i] = s
		s.await(item, func(v any, err error) {
			if !p.settle(i, v) {
				return
			}
			if err != nil {
				p.cancelOutstanding()
				finish(nil, err)
				return
			}
			if p.remaining == 0 {
				finish(p.results, nil)
			}
		})
	}

	if p.remaining == 0 {
		finish(p.results, nil)
	}
}

// settle records element i's result and removes it from the outstanding
// set in one step. It reports false for an element that is no longer
// outstanding.
func (p *parallel) settle(i int, v any) bool {
	if p.over {
		return false
	}
	if _, ok := p.outstanding[i]; !ok {
		return false
	}
	delete(p.outstanding, i)
	p.results[i] = v
	p.remaining--
	return true
}

func (p *parallel) cancel() {
	p.over = true
	p.cancelOutstanding()
}

func (p *parallel) cancelOutstanding() {
	for i, s := range p.outstanding {
		delete(p.outstanding, i)
		s.Cancel()
	}
}
