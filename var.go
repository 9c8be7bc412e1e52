package dataflow

import "github.com/AnatoleLucet/dataflow/internal"

// Const creates a node that always holds v.
func Const[T comparable](v T) *Ref[T] {
	return &Ref[T]{must(internal.Current().AddConstant(internal.NewConstant("const", v)))}
}

// Var is an input node.
type Var[T any] struct {
	*Ref[T]

	node *internal.Var[T]
}

// NewVar creates an input holding initial.
func NewVar[T comparable](initial T) *Var[T] {
	node := internal.NewVar("var", initial)
	return &Var[T]{add[T](node, internal.FlagNone), node}
}

// NewVarFunc creates an input compared with equal instead of ==.
func NewVarFunc[T any](initial T, equal func(a, b T) bool) *Var[T] {
	node := internal.NewVarFunc("var", initial, equal)
	return &Var[T]{add[T](node, internal.FlagNone), node}
}

// Set assigns the var and propagates, unless a batch is running. It cannot
// be called while the engine is pumping.
func (v *Var[T]) Set(x T) {
	v.node.SetNext(x)
	v.ref.Engine().Touch(v.ID())
}

// Peek returns the last assigned value, whether or not it was propagated.
func (v *Var[T]) Peek() T { return v.node.Next() }

// Signal is an input that is true for exactly one tick each time it fires.
type Signal struct {
	*Ref[bool]

	node *internal.Trigger
}

func NewSignal() *Signal {
	node := internal.NewTrigger("signal")
	return &Signal{add[bool](node, internal.FlagNone), node}
}

// Fire makes the signal true for the tick it propagates on. It resets on
// the following tick. Firing a signal nothing observes does nothing.
func (s *Signal) Fire() {
	e := s.ref.Engine()
	if e.Active(s.ID()) {
		s.node.Arm()
	}
	e.Touch(s.ID())
}
