package internal

// Prev holds the value its dependency had at the end of the previous tick,
// initial on the tick it was activated.
type Prev[T any] struct {
	Base[T]

	initial T

	// last value of the dependency, and the tick it was read on
	seen T
	at   Tick
}

func NewPrev[T comparable](label string, initial T) *Prev[T] {
	var zero T
	return &Prev[T]{Base: NewBase(label, zero), initial: initial}
}

func (p *Prev[T]) Update(e *Engine, id NodeID, initialized bool, args []Node) UpdateStatus {
	x := Arg[T](args, 0)
	tick := e.Tick()

	var status UpdateStatus
	switch {
	case !initialized:
		status = p.Value.Update(p.initial, false)
	case p.at != tick:
		// first update of this tick, what was seen last belongs to the previous one
		status = p.Value.Update(p.seen, true)
	}
	p.seen, p.at = x, tick

	if !p.Equal(p.seen, p.Get()) {
		e.MarkNext(id)
	}
	return status
}

func (p *Prev[T]) Deactivate(*Engine, NodeID) {
	var zero T
	p.seen, p.at = zero, 0
	p.Reset()
}

// StatePrev is the recursive half of a state: it holds the state of the
// previous tick. It takes its first value from its only dependency, then
// unlinks it and only changes through Feed.
type StatePrev[T any] struct {
	Base[T]

	pending T
	fed     bool
}

func NewStatePrev[T comparable](label string) *StatePrev[T] {
	var zero T
	return &StatePrev[T]{Base: NewBase(label, zero)}
}

// Feed sets the value adopted on the next update.
func (s *StatePrev[T]) Feed(x T) {
	s.pending = x
	s.fed = true
}

func (s *StatePrev[T]) Update(e *Engine, id NodeID, initialized bool, args []Node) UpdateStatus {
	if !initialized {
		x := Arg[T](args, 0)
		e.DisableEdge(id, 0)
		return s.Value.Update(x, false)
	}

	if !s.fed {
		return UpdateNothing
	}

	s.fed = false
	return s.Value.Update(s.pending, true)
}

func (s *StatePrev[T]) Deactivate(*Engine, NodeID) {
	var zero T
	s.pending = zero
	s.fed = false
	s.Reset()
}

// State mirrors the body of a recursion and feeds its value back into its
// StatePrev, which adopts it on the next tick. A state therefore takes one
// step per tick: s(t) = body(s(t-1), inputs(t)).
type State[T any] struct {
	Base[T]

	prev NodeID
}

func NewState[T comparable](label string, prev NodeID) *State[T] {
	var zero T
	return &State[T]{Base: NewBase(label, zero), prev: prev}
}

func (s *State[T]) Update(e *Engine, _ NodeID, initialized bool, args []Node) UpdateStatus {
	ensure(len(args) == 2, CodeWrongArity, "%s takes 2 arguments, got %d", s.Label(), len(args))

	x := Arg[T](args, 0)

	prev, ok := args[1].(*StatePrev[T])
	ensure(ok, CodeWrongType, "%s is not fed by a state of the same type", s.Label())

	// the last value of the tick wins, even if an earlier round differed
	prev.Feed(x)
	if !s.Equal(x, prev.Get()) {
		e.MarkNext(s.prev)
	}

	return s.Value.Update(x, initialized)
}
