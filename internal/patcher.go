package internal

import "slices"

// PatchSource is implemented by nodes that can describe their change at a
// tick as a patch. ok is false when the node did not change incrementally at
// that tick (it was recomputed or restored), so consumers must recalculate.
type PatchSource[D any] interface {
	PatchAt(tick Tick) (patch D, ok bool)
}

// Patcher is an incremental node. It recalculates from scratch on its first
// update after activation and whenever delta cannot describe the change of
// its inputs, and applies the delta to its previous value otherwise. It is
// itself a PatchSource of the deltas it applied.
type Patcher[T, D any] struct {
	Base[T]

	calculate func(args []Node) T
	delta     func(e *Engine, args []Node) (D, bool)
	apply     func(prev T, patch D) T

	patch   D
	patched bool
	at      Tick
}

func NewPatcher[T, D any](
	label string,
	equal func(a, b T) bool,
	calculate func(args []Node) T,
	delta func(e *Engine, args []Node) (D, bool),
	apply func(prev T, patch D) T,
) *Patcher[T, D] {
	var zero T
	return &Patcher[T, D]{
		Base:      NewBaseFunc(label, zero, equal),
		calculate: calculate,
		delta:     delta,
		apply:     apply,
	}
}

func (p *Patcher[T, D]) Update(e *Engine, _ NodeID, initialized bool, args []Node) UpdateStatus {
	if initialized {
		if d, ok := p.delta(e, args); ok {
			p.patch, p.patched, p.at = d, true, e.Tick()
			return p.Value.Update(p.apply(p.Get(), d), true)
		}
	}

	p.patched = false
	return p.Value.Update(p.calculate(args), initialized)
}

func (p *Patcher[T, D]) PatchAt(tick Tick) (D, bool) {
	if !p.patched || p.at != tick {
		var zero D
		return zero, false
	}
	return p.patch, true
}

func (p *Patcher[T, D]) Deactivate(*Engine, NodeID) {
	var zero D
	p.patch, p.patched = zero, false
	p.Reset()
}

// ListVar is an append-only list input. Appends reach consumers as patches
// of the appended items, Replace swaps the whole list.
type ListVar[E any] struct {
	Base[[]E]

	items    []E
	appended []E
	restored bool

	patch []E
	at    Tick
}

func NewListVar[E any](label string, items []E) *ListVar[E] {
	return &ListVar[E]{
		Base:     NewBaseFunc[[]E](label, nil, SameList[E]),
		items:    slices.Clone(items),
		restored: true,
	}
}

// SameList reports whether a and b are the same view of a list. Lists only
// grow by appending, so views of one backing array with equal lengths are
// equal.
func SameList[E any](a, b []E) bool {
	return len(a) == len(b) && (len(a) == 0 || &a[0] == &b[0])
}

func (l *ListVar[E]) Append(items ...E) {
	l.items = append(l.items, items...)
	l.appended = append(l.appended, items...)
}

func (l *ListVar[E]) Replace(items []E) {
	l.items = slices.Clone(items)
	l.appended = nil
	l.restored = true
}

func (l *ListVar[E]) Items() []E { return l.items }

func (l *ListVar[E]) Update(e *Engine, _ NodeID, initialized bool, _ []Node) UpdateStatus {
	l.patch = nil

	if !initialized || l.restored {
		l.restored = false
		l.appended = nil
		return l.Value.Update(l.items, initialized)
	}

	if len(l.appended) == 0 {
		return UpdateNothing
	}

	l.patch, l.at = l.appended, e.Tick()
	l.appended = nil

	return l.Value.Update(l.items, true)
}

func (l *ListVar[E]) PatchAt(tick Tick) ([]E, bool) {
	if l.patch == nil || l.at != tick {
		return nil, false
	}
	return l.patch, true
}

func (l *ListVar[E]) Deactivate(*Engine, NodeID) {
	l.patch = nil
	l.appended = nil
	l.restored = true
	l.Value.Reset()
}
