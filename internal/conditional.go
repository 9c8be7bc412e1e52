package internal

// Conditional mirrors the value of whichever branch its selector enabled.
// Its arguments are the selector and the enabled branch.
type Conditional[T any] struct {
	Base[T]
}

func NewConditional[T comparable](label string) *Conditional[T] {
	var zero T
	return &Conditional[T]{NewBase(label, zero)}
}

func NewConditionalFunc[T any](label string, equal func(a, b T) bool) *Conditional[T] {
	var zero T
	return &Conditional[T]{NewBaseFunc(label, zero, equal)}
}

func (c *Conditional[T]) Update(_ *Engine, _ NodeID, initialized bool, args []Node) UpdateStatus {
	ensure(len(args) == 2, CodeBadBranch, "%s has %d enabled links, want 2", c.Label(), len(args))

	return c.Value.Update(Arg[T](args, 1), initialized)
}

// Selector computes a branch index from its inputs and switches the
// conditional it is bound to whenever the index changes.
type Selector struct {
	Base[int]

	target NodeID
	choose func(args []Node) int
}

func NewSelector(label string, choose func(args []Node) int) *Selector {
	return &Selector{Base: NewBase(label, 0), choose: choose}
}

func (s *Selector) Bind(target NodeID) { s.target = target }

func (s *Selector) Update(e *Engine, _ NodeID, initialized bool, args []Node) UpdateStatus {
	status := s.Value.Update(s.choose(args), initialized)
	if status&Updated != 0 {
		e.SelectBranch(s.target, s.Get())
	}
	return status
}

// Snapshot samples its second branch while its selector picks it and holds
// the last sample otherwise. Its first branch is the engine's unit constant.
type Snapshot[T any] struct {
	Base[T]
}

func NewSnapshot[T comparable](label string) *Snapshot[T] {
	var zero T
	return &Snapshot[T]{NewBase(label, zero)}
}

func (s *Snapshot[T]) Update(_ *Engine, _ NodeID, initialized bool, args []Node) UpdateStatus {
	ensure(len(args) == 2, CodeBadBranch, "%s has %d enabled links, want 2", s.Label(), len(args))

	if Arg[int](args, 0) == 1 {
		return s.Value.Update(Arg[T](args, 1), initialized)
	}
	return s.Value.Update(s.Get(), initialized)
}

// SinceActivator keeps the single branch of its conditional enabled and
// relinks it each time its trigger fires, which resets every node only that
// branch keeps live. The relink waits for the rest of the tick to settle.
// Its value counts the resets.
type SinceActivator struct {
	Base[int]

	target NodeID
	relink bool
}

func NewSinceActivator(label string) *SinceActivator {
	return &SinceActivator{Base: NewBase(label, 0)}
}

func (s *SinceActivator) Bind(target NodeID) { s.target = target }

func (s *SinceActivator) Update(e *Engine, _ NodeID, initialized bool, args []Node) UpdateStatus {
	if !initialized {
		e.SelectBranch(s.target, 0)
		return s.Value.Update(0, false)
	}

	if s.relink {
		s.relink = false
		e.Relink(s.target, 0)
		return s.Value.Update(s.Get()+1, true)
	}

	if !Arg[bool](args, 0) {
		return UpdateNothing
	}

	s.relink = true
	return UpdatedNext
}

func (s *SinceActivator) Deactivate(*Engine, NodeID) {
	s.relink = false
	s.Reset()
}
