package internal

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func values[T any](o *Order[T]) []T {
	out := []T{}
	for p := range o.All() {
		out = append(out, p.Value)
	}
	return out
}

func TestOrder(t *testing.T) {
	t.Run("insertions", func(t *testing.T) {
		o := NewOrder[string]()

		b := o.PushBack("b")
		o.PushFront("a")
		d := o.PushBack("d")
		o.InsertAfter(b, "c")
		o.InsertBefore(d, "c2")

		assert.Equal(t, []string{"a", "b", "c", "c2", "d"}, values(o))
		assert.Equal(t, 5, o.Len())
		assert.Equal(t, -1, o.Compare(b, d))
		assert.Equal(t, 1, o.Compare(d, b))
		assert.Equal(t, 0, o.Compare(b, b))
	})

	t.Run("erase and move", func(t *testing.T) {
		o := NewOrder[int]()

		ps := make([]*Position[int], 5)
		for i := range ps {
			ps[i] = o.PushBack(i)
		}

		o.Erase(ps[2])
		assert.Equal(t, []int{0, 1, 3, 4}, values(o))

		o.MoveBefore(ps[4], ps[0])
		assert.Equal(t, []int{4, 0, 1, 3}, values(o))

		// already right before
		o.MoveBefore(ps[4], ps[0])
		assert.Equal(t, []int{4, 0, 1, 3}, values(o))

		o.Erase(ps[3])
		o.PushBack(5)
		assert.Equal(t, []int{4, 0, 1, 5}, values(o))
	})

	t.Run("marked positions pop in order", func(t *testing.T) {
		o := NewOrder[int]()

		ps := make([]*Position[int], 6)
		for i := range ps {
			ps[i] = o.PushBack(i)
		}

		o.Mark(ps[4])
		o.Mark(ps[1])
		o.Mark(ps[3])
		o.Mark(ps[1])
		o.Unmark(ps[3])
		assert.Equal(t, 2, o.MarkedLen())

		// moving a marked position keeps it marked at its new place
		o.MoveBefore(ps[4], ps[0])
		assert.True(t, ps[4].Marked())

		p, ok := o.PopMarked()
		require.True(t, ok)
		assert.Equal(t, 4, p.Value)

		p, ok = o.PopMarked()
		require.True(t, ok)
		assert.Equal(t, 1, p.Value)

		_, ok = o.PopMarked()
		assert.False(t, ok)
	})

	t.Run("erase unmarks", func(t *testing.T) {
		o := NewOrder[int]()
		p := o.PushBack(1)
		o.Mark(p)
		o.Erase(p)

		assert.Equal(t, 0, o.MarkedLen())
		assert.False(t, p.Marked())
	})

	t.Run("clear marks", func(t *testing.T) {
		o := NewOrder[int]()
		a, b := o.PushBack(1), o.PushBack(2)
		o.Mark(a)
		o.Mark(b)
		o.ClearMarks()

		assert.Equal(t, 0, o.MarkedLen())
		assert.False(t, a.Marked())
		assert.False(t, b.Marked())
	})

	t.Run("dense insertions relabel without reordering", func(t *testing.T) {
		o := NewOrder[int]()
		first := o.PushBack(0)
		last := o.PushBack(1 << 20)

		// always inserting right after the same position exhausts the gap quickly
		want := []int{0}
		marked := []*Position[int]{}
		for i := 1; i <= 2000; i++ {
			p := o.InsertAfter(first, -i)
			want = slices.Insert(want, 1, -i)
			if i%7 == 0 {
				o.Mark(p)
				marked = append(marked, p)
			}
		}
		want = append(want, 1<<20)

		if diff := cmp.Diff(want, values(o)); diff != "" {
			t.Fatalf("order mismatch (-want +got):\n%s", diff)
		}
		assert.Equal(t, -1, o.Compare(first, last))

		// the marked tree survived the relabels
		prev := (*Position[int])(nil)
		for range marked {
			p, ok := o.PopMarked()
			require.True(t, ok)
			if prev != nil {
				assert.Equal(t, -1, o.Compare(prev, p))
			}
			prev = p
		}
	})

	t.Run("random operations match a reference list", func(t *testing.T) {
		rng := rand.New(rand.NewPCG(1, 2))

		o := NewOrder[int]()
		ref := []*Position[int]{}
		next := 0

		for step := 0; step < 5000; step++ {
			switch op := rng.IntN(5); {
			case op == 0 || len(ref) == 0:
				ref = append(ref, o.PushBack(next))
			case op == 1:
				ref = append([]*Position[int]{o.PushFront(next)}, ref...)
			case op == 2:
				i := rng.IntN(len(ref))
				p := o.InsertBefore(ref[i], next)
				ref = slices.Insert(ref, i, p)
			case op == 3:
				i := rng.IntN(len(ref))
				o.Erase(ref[i])
				ref = slices.Delete(ref, i, i+1)
			default:
				i, j := rng.IntN(len(ref)), rng.IntN(len(ref))
				if i == j {
					continue
				}
				p, q := ref[i], ref[j]
				o.MoveBefore(p, q)
				ref = slices.Delete(ref, i, i+1)
				ref = slices.Insert(ref, slices.Index(ref, q), p)
			}
			next++

			require.Equal(t, len(ref), o.Len())
			for k := 1; k < len(ref); k++ {
				require.Equal(t, -1, o.Compare(ref[k-1], ref[k]), "step %d", step)
			}
		}
	})
}
