package dataflow

import (
	"fmt"

	"github.com/AnatoleLucet/dataflow/internal"
)

// Ref is a counted reference to a node holding a T. A node lives while a
// Ref, a consumer or a scope holds it.
type Ref[T any] struct {
	ref *internal.Ref
}

// Get returns the node's current value, or the zero value while the node
// is not live.
func (r *Ref[T]) Get() T {
	return r.ref.Node().(internal.Valuer[T]).Get()
}

// GetAt returns the node's value at tick. Values are not kept across ticks:
// tick must be the engine's current tick, use Prev to read the previous one.
func (r *Ref[T]) GetAt(tick Tick) T {
	return r.ref.NodeAt(tick).(internal.Valuer[T]).Get()
}

func (r *Ref[T]) ID() NodeID { return r.ref.ID() }

// Active reports whether the node is part of the live graph.
func (r *Ref[T]) Active() bool { return r.ref.Engine().Active(r.ref.ID()) }

// Clone returns another reference to the same node.
func (r *Ref[T]) Clone() *Ref[T] { return &Ref[T]{r.ref.Clone()} }

// Release drops the reference. The last one frees the node and everything
// it alone kept alive.
func (r *Ref[T]) Release() { r.ref.Release() }

func (r *Ref[T]) String() string {
	return fmt.Sprintf("%s = %s", r.ref.Node().Label(), r.ref.Node().String())
}

func must(r *internal.Ref, err error) *internal.Ref {
	if err != nil {
		panic(err)
	}
	return r
}

func add[T any](node internal.Node, flags internal.Flags, deps ...NodeID) *Ref[T] {
	return &Ref[T]{must(internal.Current().Add(node, deps, flags))}
}

func conditional[T any](act internal.Activator, inputs []NodeID, cond internal.Node, branches ...NodeID) *Ref[T] {
	return &Ref[T]{must(internal.Current().AddConditional(act, inputs, cond, branches, internal.FlagNone))}
}

func ids[T any](refs []*Ref[T]) []NodeID {
	out := make([]NodeID, len(refs))
	for i, r := range refs {
		out[i] = r.ID()
	}
	return out
}
