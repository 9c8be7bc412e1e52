package dataflow

import "github.com/AnatoleLucet/dataflow/internal"

// If holds then's value while cond is true and otherwise's value while it
// is false. Only the selected branch is live.
func If[T comparable](cond *Ref[bool], then, otherwise *Ref[T]) *Ref[T] {
	sel := internal.NewSelector("if", func(args []internal.Node) int {
		if internal.Arg[bool](args, 0) {
			return 0
		}
		return 1
	})

	return conditional[T](sel, []NodeID{cond.ID()}, internal.NewConditional[T]("if"), then.ID(), otherwise.ID())
}

// Select holds the value of branches[index]. An index out of range is a
// contract violation.
func Select[T comparable](index *Ref[int], branches ...*Ref[T]) *Ref[T] {
	sel := internal.NewSelector("select", func(args []internal.Node) int {
		return internal.Arg[int](args, 0)
	})

	return conditional[T](sel, []NodeID{index.ID()}, internal.NewConditional[T]("select"), ids(branches)...)
}

// Case is a branch of a Switch.
type Case[K comparable, T any] struct {
	key   K
	value *Ref[T]
}

func When[K comparable, T any](key K, value *Ref[T]) Case[K, T] {
	return Case[K, T]{key, value}
}

// Switch holds the value of the first case matching key, or otherwise's
// value if none does.
func Switch[K, T comparable](key *Ref[K], otherwise *Ref[T], cases ...Case[K, T]) *Ref[T] {
	sel := internal.NewSelector("switch", func(args []internal.Node) int {
		k := internal.Arg[K](args, 0)
		for i, c := range cases {
			if c.key == k {
				return i
			}
		}
		return len(cases)
	})

	branches := make([]NodeID, 0, len(cases)+1)
	for _, c := range cases {
		branches = append(branches, c.value.ID())
	}
	branches = append(branches, otherwise.ID())

	return conditional[T](sel, []NodeID{key.ID()}, internal.NewConditional[T]("switch"), branches...)
}

// Snapshot samples x while trigger is true and holds the last sample while
// it is false. x is only live while sampled.
func Snapshot[T comparable](trigger *Ref[bool], x *Ref[T]) *Ref[T] {
	sel := internal.NewSelector("snapshot", func(args []internal.Node) int {
		if internal.Arg[bool](args, 0) {
			return 1
		}
		return 0
	})

	e := internal.Current()
	return conditional[T](sel, []NodeID{trigger.ID()}, internal.NewSnapshot[T]("snapshot"), e.Unit(), x.ID())
}
