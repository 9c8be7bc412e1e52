package internal

import (
	"errors"
	"fmt"
	"iter"
)

// VertexInfo describes a node as the engine sees it.
type VertexInfo struct {
	ID          NodeID
	Label       string
	Value       string
	Active      bool
	Conditional bool
	Eager       bool
	Persistent  bool
	Initialized bool
	Refs        int
	Consumers   int
	Activator   NodeID
}

// EdgeInfo describes a link from a node to one of its dependencies. The
// logical link to the activator comes last.
type EdgeInfo struct {
	Target    NodeID
	Active    bool
	Logical   bool
	Primary   bool
	Secondary bool
}

// Vertices iterates the allocated nodes in id order.
func (e *Engine) Vertices() iter.Seq[NodeID] {
	return e.arena.ids()
}

func (e *Engine) Info(id NodeID) VertexInfo {
	v := e.vertex(id)

	info := VertexInfo{
		ID:          v.id,
		Label:       v.node.Label(),
		Value:       v.node.String(),
		Active:      v.active(),
		Conditional: v.is(FlagConditional),
		Eager:       v.is(FlagEager),
		Persistent:  v.is(FlagPersistent),
		Initialized: v.initialized,
		Refs:        v.refs,
		Consumers:   v.subsLen,
	}
	if a := v.activator(); a != nil {
		info.Activator = a.id
	}

	return info
}

func (e *Engine) Edges(id NodeID) []EdgeInfo {
	v := e.vertex(id)

	edges := make([]EdgeInfo, 0, len(v.deps)+1)
	for i, l := range v.deps {
		conditional := v.is(FlagConditional)
		edges = append(edges, EdgeInfo{
			Target:    l.dep.id,
			Active:    l.enabled,
			Primary:   conditional && i == 0,
			Secondary: conditional && i > 0,
		})
	}

	if l := v.anchor; l != nil {
		edges = append(edges, EdgeInfo{Target: l.dep.id, Active: true, Logical: true})
	}

	return edges
}

// Order iterates the active nodes in topological order.
func (e *Engine) Order() iter.Seq[NodeID] {
	return func(yield func(NodeID) bool) {
		for p := range e.order.All() {
			if !yield(p.Value.id) {
				return
			}
		}
	}
}

// UpdateOrder compares the positions of two active nodes: negative if u is
// updated before v, positive if after, 0 if they are the same node.
func (e *Engine) UpdateOrder(u, v NodeID) int {
	a, b := e.vertex(u), e.vertex(v)
	ensure(a.active() && b.active(), CodeDeadNode, "update order of inactive nodes %d and %d", u, v)

	return e.order.Compare(a.pos, b.pos)
}

func (e *Engine) Stats() Stats {
	s := e.stats
	s.Live = e.arena.count
	s.Active = e.order.Len()
	s.Bytes = e.arena.bytes
	s.Tick = e.tick
	return s
}

// Verify checks the structural invariants of the live graph. It is meant
// for tests and debugging and returns every violation it finds.
func (e *Engine) Verify() error {
	var errs []error

	for id := range e.arena.ids() {
		v := e.slot(id)

		enabled := 0
		for _, l := range v.deps {
			if !l.enabled {
				continue
			}
			enabled++

			if !v.active() || !l.dep.active() {
				errs = append(errs, fmt.Errorf("link %d -> %d enabled between inactive nodes", v.id, l.dep.id))
				continue
			}
			if e.order.Compare(l.dep.pos, v.pos) >= 0 {
				errs = append(errs, fmt.Errorf("node %d is not ordered before its consumer %d", l.dep.id, v.id))
			}
		}

		subs := 0
		for l := range v.subs() {
			subs++
			if l.dep != v || !l.enabled {
				errs = append(errs, fmt.Errorf("node %d lists a foreign or disabled consumer link from %d", v.id, l.sub.id))
			}
		}
		if subs != v.subsLen {
			errs = append(errs, fmt.Errorf("node %d counts %d consumers, lists %d", v.id, v.subsLen, subs))
		}

		if !v.active() {
			if v.anchor != nil {
				errs = append(errs, fmt.Errorf("inactive node %d holds an activator", v.id))
			}
			if subs > 0 {
				errs = append(errs, fmt.Errorf("inactive node %d has %d consumers", v.id, subs))
			}
			continue
		}

		if !v.is(FlagEager|FlagPersistent) {
			if subs == 0 {
				errs = append(errs, fmt.Errorf("active node %d has no consumer", v.id))
			}
			if a := v.activator(); a == nil || !a.active() {
				errs = append(errs, fmt.Errorf("active node %d is not anchored to a live activator", v.id))
			}
		}

		// branches switch during the pump, the rule holds once it is done
		if v.is(FlagConditional) && v.initialized && !e.pumping {
			branches := enabled
			if v.deps[0].enabled {
				branches--
			}
			if branches != 1 {
				errs = append(errs, fmt.Errorf("conditional %d has %d enabled branches", v.id, branches))
			}
		}
	}

	if n := e.order.MarkedLen(); n > 0 && !e.pumping && !e.batcher.IsBatching() {
		errs = append(errs, fmt.Errorf("%d nodes left marked after the pump", n))
	}

	return errors.Join(errs...)
}

func (e *Engine) slot(id NodeID) *vertex {
	v, _ := e.arena.get(id)
	return v
}
