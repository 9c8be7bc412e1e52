package dataflow

import "github.com/AnatoleLucet/dataflow/internal"

// Prev holds the value x had at the end of the previous tick, initial on the
// tick it becomes live.
func Prev[T comparable](initial T, x *Ref[T]) *Ref[T] {
	return add[T](internal.NewPrev("prev", initial), internal.FlagNone, x.ID())
}

// Recursion defines a value in terms of its own previous value. body
// receives the state of the previous tick, initial on the first one, and
// returns the next state: the recursion takes one step per tick. The ref
// passed to body is only valid while it runs, and Recursion takes ownership
// of the ref body returns.
func Recursion[T comparable](initial *Ref[T], body func(prev *Ref[T]) *Ref[T]) *Ref[T] {
	prev := add[T](internal.NewStatePrev[T]("state.prev"), internal.FlagNone, initial.ID())
	defer prev.Release()

	next := body(prev)
	defer next.Release()

	return add[T](internal.NewState[T]("state", prev.ID()), internal.FlagNone, next.ID(), prev.ID())
}

// StateMachine is a Recursion starting at a constant.
func StateMachine[T comparable](initial T, body func(state *Ref[T]) *Ref[T]) *Ref[T] {
	start := Const(initial)
	defer start.Release()

	return Recursion(start, body)
}

// Rule is a transition of a state machine.
type Rule[T any] struct {
	when *Ref[bool]
	to   T
}

// On moves a state machine to `to` while when is true.
func On[T any](when *Ref[bool], to T) Rule[T] {
	return Rule[T]{when, to}
}

// Transitions holds the target of the first rule that applies, or state if
// none does.
func Transitions[T comparable](state *Ref[T], rules ...Rule[T]) *Ref[T] {
	deps := make([]NodeID, 0, len(rules)+1)
	deps = append(deps, state.ID())
	for _, r := range rules {
		deps = append(deps, r.when.ID())
	}

	node := internal.NewLift("transitions", len(deps), func(args []internal.Node) T {
		for i, r := range rules {
			if internal.Arg[bool](args, i+1) {
				return r.to
			}
		}
		return internal.Arg[T](args, 0)
	})

	return add[T](node, internal.FlagNone, deps...)
}

// Since holds x's value and resets x, along with every state only it
// keeps live, each time trigger fires.
func Since[T comparable](trigger *Ref[bool], x *Ref[T]) *Ref[T] {
	act := internal.NewSinceActivator("since")
	return conditional[T](act, []NodeID{trigger.ID()}, internal.NewConditional[T]("since"), x.ID())
}
