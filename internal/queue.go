package internal

import (
	"iter"
	"sync"
)

// NodeQueue holds vertices waiting to be marked, either for another round
// of the current pump or for the next one.
type NodeQueue struct {
	vertices []*vertex
	queued   map[*vertex]struct{}
}

func NewNodeQueue() *NodeQueue {
	return &NodeQueue{
		vertices: make([]*vertex, 0),
		queued:   make(map[*vertex]struct{}),
	}
}

// Enqueue adds v once, however many times it is queued before a drain.
func (q *NodeQueue) Enqueue(v *vertex) {
	if _, ok := q.queued[v]; ok {
		return
	}
	q.queued[v] = struct{}{}
	q.vertices = append(q.vertices, v)
}

func (q *NodeQueue) Len() int { return len(q.vertices) }

// Drain yields the queued vertices and empties the queue.
func (q *NodeQueue) Drain() iter.Seq[*vertex] {
	vertices := q.vertices
	q.vertices = make([]*vertex, 0, len(vertices))
	clear(q.queued)

	return func(yield func(*vertex) bool) {
		for _, v := range vertices {
			if !yield(v) {
				return
			}
		}
	}
}

func (q *NodeQueue) Clear() {
	q.vertices = q.vertices[:0]
	clear(q.queued)
}

// EffectQueue holds callbacks that run once a pump is done, outside of it,
// where they are free to assign variables.
type EffectQueue struct {
	effects []func()
}

func NewEffectQueue() *EffectQueue {
	return &EffectQueue{
		effects: make([]func(), 0),
	}
}

func (q *EffectQueue) Enqueue(fn func()) {
	q.effects = append(q.effects, fn)
}

func (q *EffectQueue) Len() int { return len(q.effects) }

// Run calls the queued effects in order and reports whether there were any.
// Effects queued while running wait for the next call.
func (q *EffectQueue) Run() bool {
	effects := q.effects
	if len(effects) == 0 {
		return false
	}
	q.effects = make([]func(), 0)

	for _, effect := range effects {
		effect()
	}
	return true
}

// Inbox receives functions from other goroutines. They run on the engine's
// goroutine the next time it settles.
type Inbox struct {
	mu  sync.Mutex
	fns []func()
}

func NewInbox() *Inbox {
	return &Inbox{}
}

func (b *Inbox) Push(fn func()) {
	b.mu.Lock()
	b.fns = append(b.fns, fn)
	b.mu.Unlock()
}

func (b *Inbox) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.fns)
}

// Drain runs every function received so far.
func (b *Inbox) Drain() {
	b.mu.Lock()
	fns := b.fns
	b.fns = nil
	b.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
