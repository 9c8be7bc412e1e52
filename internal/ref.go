package internal

import "fmt"

// Ref is a counted reference to a node. The node lives as long as a Ref,
// a consumer or an anchor holds it.
type Ref struct {
	e        *Engine
	id       NodeID
	released bool
}

func (e *Engine) newRef(id NodeID) *Ref {
	r := &Ref{e: e, id: id}
	if s := e.tracker.Current(); s != nil {
		s.Adopt(r)
	}
	return r
}

func (r *Ref) ID() NodeID { return r.id }

func (r *Ref) Engine() *Engine { return r.e }

func (r *Ref) Node() Node {
	ensure(!r.released, CodeDeadNode, "node %d used after release", r.id)
	return r.e.Node(r.id)
}

// NodeAt returns the node as it is at tick. No history is kept, so tick must
// be the current one.
func (r *Ref) NodeAt(tick Tick) Node {
	ensure(tick == r.e.tick, CodeStaleTick, "node %d read at tick %d, the engine is at tick %d", r.id, tick, r.e.tick)
	return r.Node()
}

func (r *Ref) Released() bool { return r.released }

// Clone returns a new reference to the same node.
func (r *Ref) Clone() *Ref {
	ensure(!r.released, CodeDeadNode, "node %d cloned after release", r.id)

	r.e.Retain(r.id)
	return r.e.newRef(r.id)
}

// Release drops the reference. Releasing twice is a contract violation.
func (r *Ref) Release() {
	ensure(!r.released, CodeDoubleRelease, "node %d released twice through the same ref", r.id)

	r.released = true
	r.e.Release(r.id)
}

func (r *Ref) String() string {
	return fmt.Sprintf("ref(%d)", r.id)
}

// Retained returns a new reference to an existing node.
func (e *Engine) Retained(id NodeID) *Ref {
	e.checkOwner()
	e.Retain(id)
	return e.newRef(id)
}
