package internal

import "iter"

// NodeID identifies a node in the engine's arena. The zero value is never
// allocated.
type NodeID int32

const NoNode NodeID = 0

// Flags describe the structural role of a vertex.
type Flags uint8

const (
	// FlagEager keeps a node live once activated, whether or not anything consumes it.
	FlagEager Flags = 1 << iota

	// FlagConditional marks nodes whose first dependency is their activator
	// and whose remaining dependencies are mutually exclusive branches.
	FlagConditional

	// FlagPersistent marks constants and the clock: always live, never updated by consumers.
	FlagPersistent
)

const FlagNone Flags = 0

// link is an edge from sub to dep. Data links are created with their
// consumer and live as long as it does; they join the dependency's consumer
// list while enabled. The logical link points an active vertex at its
// activator.
type link struct {
	dep *vertex
	sub *vertex

	// index among sub.deps, -1 for the logical link
	index   int
	enabled bool

	prevSub *link
	nextSub *link
}

func (l *link) logical() bool { return l.index < 0 }

type vertex struct {
	id    NodeID
	node  Node
	flags Flags
	refs  int

	// nil while inactive
	pos *Position[*vertex]

	initialized bool

	deps   []*link
	anchor *link

	subsHead *link
	subsLen  int

	footprint uintptr
}

func (v *vertex) active() bool { return v.pos != nil }

func (v *vertex) is(f Flags) bool { return v.flags&f != 0 }

// activator is the vertex v's liveness is anchored to, nil for roots.
func (v *vertex) activator() *vertex {
	if v.anchor == nil {
		return nil
	}
	return v.anchor.dep
}

// primary is the first dependency of a conditional vertex.
func (v *vertex) primary() *vertex {
	return v.deps[0].dep
}

func (v *vertex) addSub(l *link) {
	if v.subsHead == nil {
		v.subsHead = l
		l.prevSub = l // loop to self
		l.nextSub = nil
	} else {
		tail := v.subsHead.prevSub
		tail.nextSub = l
		l.prevSub = tail
		l.nextSub = nil
		v.subsHead.prevSub = l
	}
	v.subsLen++
}

func (v *vertex) removeSub(l *link) {
	if l.prevSub == l {
		v.subsHead = nil
	} else {
		if l == v.subsHead {
			v.subsHead = l.nextSub
		} else {
			l.prevSub.nextSub = l.nextSub
		}

		next := l.nextSub
		if next == nil {
			next = v.subsHead
		}
		next.prevSub = l.prevSub
	}

	l.prevSub = nil
	l.nextSub = nil
	v.subsLen--
}

// subs iterates the enabled links pointing at v.
func (v *vertex) subs() iter.Seq[*link] {
	return func(yield func(*link) bool) {
		for l := v.subsHead; l != nil; l = l.nextSub {
			if !yield(l) {
				return
			}
		}
	}
}
