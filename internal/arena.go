package internal

import (
	"fmt"
	"iter"
	"unsafe"

	"github.com/willf/bitset"
)

// arena owns every vertex. Vertices are addressed by NodeID, freed slots are
// reused, and the live set is kept in a bitset for enumeration.
type arena struct {
	slots []*vertex
	free  []NodeID
	live  *bitset.BitSet

	// 0 means unlimited
	limit int
	count int
	bytes uintptr
}

func newArena(limit int) *arena {
	return &arena{
		slots: make([]*vertex, 1, 64), // slot 0 is NoNode
		live:  bitset.New(64),
		limit: limit,
	}
}

func (a *arena) alloc(node Node) (*vertex, error) {
	if a.limit > 0 && a.count >= a.limit {
		return nil, fmt.Errorf("%w: %d nodes allocated (limit %d)", ErrArenaExhausted, a.count, a.limit)
	}

	var id NodeID
	if n := len(a.free); n > 0 {
		id = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		id = NodeID(len(a.slots))
		a.slots = append(a.slots, nil)
	}

	v := &vertex{id: id, node: node}
	v.footprint = node.Footprint() + unsafe.Sizeof(*v)

	a.slots[id] = v
	a.live.Set(uint(id))
	a.count++
	a.bytes += v.footprint

	return v, nil
}

func (a *arena) release(v *vertex) {
	a.slots[v.id] = nil
	a.free = append(a.free, v.id)
	a.live.Clear(uint(v.id))
	a.count--
	a.bytes -= v.footprint

	v.node = nil
	v.deps = nil
}

func (a *arena) get(id NodeID) (*vertex, bool) {
	if id <= NoNode || int(id) >= len(a.slots) {
		return nil, false
	}

	v := a.slots[id]
	return v, v != nil
}

// ids iterates the allocated node ids in increasing order.
func (a *arena) ids() iter.Seq[NodeID] {
	return func(yield func(NodeID) bool) {
		for i, ok := a.live.NextSet(0); ok; i, ok = a.live.NextSet(i + 1) {
			if !yield(NodeID(i)) {
				return
			}
		}
	}
}
