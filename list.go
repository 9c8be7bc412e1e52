package dataflow

import "github.com/AnatoleLucet/dataflow/internal"

// List is an append-only list input. Nodes built on it with MapList and
// SumList are updated from the appended items instead of the whole list.
type List[E any] struct {
	*Ref[[]E]

	node *internal.ListVar[E]
}

func NewList[E any](items ...E) *List[E] {
	node := internal.NewListVar("list", items)
	return &List[E]{add[[]E](node, internal.FlagNone), node}
}

func (l *List[E]) Append(items ...E) {
	l.node.Append(items...)
	l.ref.Engine().Touch(l.ID())
}

// Replace swaps the whole list. Consumers recalculate from scratch.
func (l *List[E]) Replace(items ...E) {
	l.node.Replace(items)
	l.ref.Engine().Touch(l.ID())
}

// Number is the constraint of SumList.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// MapList holds fn applied to each item of list. Appends to list are mapped
// one by one.
func MapList[E, R any](list *Ref[[]E], fn func(E) R) *Ref[[]R] {
	mapAll := func(items []E) []R {
		out := make([]R, len(items))
		for i, item := range items {
			out[i] = fn(item)
		}
		return out
	}

	node := internal.NewPatcher(
		"map",
		internal.SameList[R],
		func(args []internal.Node) []R {
			return mapAll(internal.Arg[[]E](args, 0))
		},
		func(e *internal.Engine, args []internal.Node) ([]R, bool) {
			patch, ok := appended[E](e, args[0])
			if !ok {
				return nil, false
			}
			return mapAll(patch), true
		},
		func(prev, patch []R) []R {
			return append(prev, patch...)
		},
	)

	return add[[]R](node, internal.FlagNone, list.ID())
}

// SumList holds the sum of the items of list. Appends are added to the
// previous sum.
func SumList[E Number](list *Ref[[]E]) *Ref[E] {
	sum := func(items []E) E {
		var total E
		for _, item := range items {
			total += item
		}
		return total
	}

	node := internal.NewPatcher(
		"sum",
		func(a, b E) bool { return a == b },
		func(args []internal.Node) E {
			return sum(internal.Arg[[]E](args, 0))
		},
		func(e *internal.Engine, args []internal.Node) ([]E, bool) {
			return appended[E](e, args[0])
		},
		func(prev E, patch []E) E {
			return prev + sum(patch)
		},
	)

	return add[E](node, internal.FlagNone, list.ID())
}

// appended returns the items src appended on the current tick, if that is
// how it changed.
func appended[E any](e *internal.Engine, src internal.Node) ([]E, bool) {
	ps, ok := src.(internal.PatchSource[[]E])
	if !ok {
		return nil, false
	}
	return ps.PatchAt(e.Tick())
}
