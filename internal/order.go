package internal

import (
	"iter"

	"github.com/biogo/store/llrb"
)

// labels live in [0, maxLabel); the head sentinel owns label 0
const maxLabel = uint64(1) << 62

// Position is a handle into an Order. Comparing two positions answers which
// one comes first.
type Position[T any] struct {
	Value T

	label  uint64
	marked bool

	prev *Position[T]
	next *Position[T]
}

// Compare orders positions by label, used by the marked tree.
func (p *Position[T]) Compare(c llrb.Comparable) int {
	q := c.(*Position[T])
	switch {
	case p.label < q.label:
		return -1
	case p.label > q.label:
		return 1
	}
	return 0
}

// Marked reports whether the position is in the dirty overlay.
func (p *Position[T]) Marked() bool { return p.marked }

// Order is an order-maintenance list: O(1) comparisons between positions and
// amortized O(log n) insertion, with relabeling that never changes the
// relative order of existing positions.
//
// The marked overlay is kept in a tree sorted by label. Relabeling preserves
// order so the tree stays valid across relabels.
type Order[T any] struct {
	head Position[T] // sentinel
	tail *Position[T]
	len  int

	marked llrb.Tree
}

func NewOrder[T any]() *Order[T] {
	o := &Order[T]{}
	o.tail = &o.head
	return o
}

func (o *Order[T]) Len() int { return o.len }

// PushFront inserts v before every other position.
func (o *Order[T]) PushFront(v T) *Position[T] {
	return o.link(&o.head, &Position[T]{Value: v})
}

// PushBack inserts v after every other position.
func (o *Order[T]) PushBack(v T) *Position[T] {
	return o.link(o.tail, &Position[T]{Value: v})
}

// InsertAfter inserts v immediately after p.
func (o *Order[T]) InsertAfter(p *Position[T], v T) *Position[T] {
	return o.link(p, &Position[T]{Value: v})
}

// InsertBefore inserts v immediately before p.
func (o *Order[T]) InsertBefore(p *Position[T], v T) *Position[T] {
	return o.link(p.prev, &Position[T]{Value: v})
}

// Erase removes p from the order (and from the marked overlay).
func (o *Order[T]) Erase(p *Position[T]) {
	o.Unmark(p)
	o.unlink(p)
}

// MoveBefore relocates p immediately before q, keeping its marked state.
func (o *Order[T]) MoveBefore(p, q *Position[T]) {
	if p == q || q.prev == p {
		return
	}

	wasMarked := p.marked
	o.Unmark(p)
	o.unlink(p)
	o.link(q.prev, p)
	if wasMarked {
		o.Mark(p)
	}
}

// Compare returns -1 if a comes before b, 1 if after, 0 if they are the same.
func (o *Order[T]) Compare(a, b *Position[T]) int {
	return a.Compare(b)
}

// Mark adds p to the dirty overlay. Marking twice is a no-op.
func (o *Order[T]) Mark(p *Position[T]) {
	if p.marked {
		return
	}
	p.marked = true
	o.marked.Insert(p)
}

// Unmark removes p from the dirty overlay.
func (o *Order[T]) Unmark(p *Position[T]) {
	if !p.marked {
		return
	}
	o.marked.Delete(p)
	p.marked = false
}

// PopMarked removes and returns the lowest marked position.
func (o *Order[T]) PopMarked() (*Position[T], bool) {
	if o.marked.Len() == 0 {
		return nil, false
	}

	p := o.marked.Min().(*Position[T])
	o.marked.DeleteMin()
	p.marked = false

	return p, true
}

func (o *Order[T]) MarkedLen() int { return o.marked.Len() }

// Marked iterates the marked positions in order.
func (o *Order[T]) Marked() iter.Seq[*Position[T]] {
	return func(yield func(*Position[T]) bool) {
		o.marked.Do(func(c llrb.Comparable) bool {
			return !yield(c.(*Position[T]))
		})
	}
}

// ClearMarks empties the dirty overlay.
func (o *Order[T]) ClearMarks() {
	o.marked.Do(func(c llrb.Comparable) bool {
		c.(*Position[T]).marked = false
		return false
	})
	o.marked = llrb.Tree{}
}

// All iterates every position in order.
func (o *Order[T]) All() iter.Seq[*Position[T]] {
	return func(yield func(*Position[T]) bool) {
		for p := o.head.next; p != nil; p = p.next {
			if !yield(p) {
				return
			}
		}
	}
}

func (o *Order[T]) link(p, n *Position[T]) *Position[T] {
	if o.upper(p)-p.label < 2 {
		o.relabel(p)
	}

	n.label = p.label + (o.upper(p)-p.label)/2
	n.prev = p
	n.next = p.next
	if p.next != nil {
		p.next.prev = n
	}
	p.next = n

	if p == o.tail {
		o.tail = n
	}
	o.len++

	return n
}

func (o *Order[T]) unlink(p *Position[T]) {
	p.prev.next = p.next
	if p.next != nil {
		p.next.prev = p.prev
	}
	if p == o.tail {
		o.tail = p.prev
	}

	p.prev = nil
	p.next = nil
	o.len--
}

func (o *Order[T]) upper(p *Position[T]) uint64 {
	if p.next != nil {
		return p.next.label
	}
	return maxLabel
}

// relabel spreads the positions following p until the label range they
// cover is sparse enough (j elements over more than j*j labels), which
// leaves room for an insertion right after p.
func (o *Order[T]) relabel(p *Position[T]) {
	j := uint64(1)
	q := p.next
	for q != nil && q.label-p.label <= j*j {
		q = q.next
		j++
	}

	span := maxLabel - p.label
	if q != nil {
		span = q.label - p.label
	}

	step := span / j
	if step < 2 {
		o.relabelAll()
		return
	}

	label := p.label
	for r := p.next; r != q; r = r.next {
		label += step
		r.label = label
	}
}

func (o *Order[T]) relabelAll() {
	step := maxLabel / uint64(o.len+2)

	label := uint64(0)
	for p := o.head.next; p != nil; p = p.next {
		label += step
		p.label = label
	}
}
