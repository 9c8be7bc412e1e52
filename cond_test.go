package dataflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// counted wraps fn and counts its calls.
func counted[A, R any](calls *int, fn func(A) R) func(A) R {
	return func(a A) R {
		*calls++
		return fn(a)
	}
}

func TestIf(t *testing.T) {
	t.Run("only the selected branch is live", func(t *testing.T) {
		within(t, func(e *Engine) {
			x := NewVar(2)

			thenCalls, elseCalls := 0, 0
			then := Lift1(counted(&thenCalls, func(v int) int { return v * 10 }), x.Ref)
			otherwise := Lift1(counted(&elseCalls, func(v int) int { return -v }), x.Ref)

			cond := NewVar(true)
			out := Main(If(cond.Ref, then, otherwise))
			assert.Equal(t, 20, out.Get())
			assert.False(t, otherwise.Active())

			x.Set(3)
			assert.Equal(t, 30, out.Get())
			assert.Equal(t, 0, elseCalls)

			cond.Set(false)
			assert.Equal(t, -3, out.Get())
			assert.False(t, then.Active())
			assert.Equal(t, 2, thenCalls)
			assert.Equal(t, 1, elseCalls)

			x.Set(4)
			assert.Equal(t, -4, out.Get())
			assert.Equal(t, 2, thenCalls)
		})
	})

	t.Run("shared dependencies stay live across switches", func(t *testing.T) {
		within(t, func(e *Engine) {
			x := NewVar(1)
			shared := Lift1(func(v int) int { return v + 1 }, x.Ref)
			a := Lift1(func(v int) int { return v * 2 }, shared)
			b := Lift1(func(v int) int { return v * 3 }, shared)

			cond := NewVar(true)
			out := Main(If(cond.Ref, a, b))

			for i, c := range []bool{false, true, false} {
				cond.Set(c)
				assert.True(t, shared.Active())
				require.NoError(t, e.Verify(), "switch %d", i)
			}
			assert.Equal(t, 6, out.Get())
		})
	})

	t.Run("nested", func(t *testing.T) {
		within(t, func(e *Engine) {
			outer := NewVar(true)
			inner := NewVar(true)

			a, b, c := Const("a"), Const("b"), Const("c")
			out := Main(If(outer.Ref, If(inner.Ref, a, b), c))
			assert.Equal(t, "a", out.Get())

			inner.Set(false)
			assert.Equal(t, "b", out.Get())

			active := e.ActiveCount()
			outer.Set(false)
			assert.Equal(t, "c", out.Get())
			assert.False(t, inner.Active())
			assert.Less(t, e.ActiveCount(), active)

			inner.Set(true)
			outer.Set(true)
			assert.Equal(t, "a", out.Get())
		})
	})
}

func TestSelect(t *testing.T) {
	within(t, func(e *Engine) {
		idx := NewVar(0)
		branches := []*Ref[string]{Const("zero"), Const("one"), Const("two")}
		out := Main(Select(idx.Ref, branches...))

		for i, want := range []string{"zero", "one", "two"} {
			idx.Set(i)
			assert.Equal(t, want, out.Get())
		}
	})

	t.Run("out of range", func(t *testing.T) {
		e, _ := Start()
		defer e.Stop()

		idx := NewVar(3)
		r := recovered(func() { Main(Select(idx.Ref, Const(1), Const(2))) })
		assert.True(t, IsContractError(r, CodeBadBranch))
	})
}

func TestSwitch(t *testing.T) {
	within(t, func(e *Engine) {
		lang := NewVar("go")
		greeting := Main(Switch(lang.Ref, Const("hello"),
			When("fr", Const("bonjour")),
			When("es", Const("hola")),
		))
		assert.Equal(t, "hello", greeting.Get())

		lang.Set("fr")
		assert.Equal(t, "bonjour", greeting.Get())

		lang.Set("es")
		assert.Equal(t, "hola", greeting.Get())

		lang.Set("de")
		assert.Equal(t, "hello", greeting.Get())
	})
}

func TestSnapshot(t *testing.T) {
	within(t, func(e *Engine) {
		x := NewVar(1)
		take := NewVar(false)

		calls := 0
		sampled := Lift1(counted(&calls, func(v int) int { return v * 100 }), x.Ref)
		snap := Main(Snapshot(take.Ref, sampled))

		assert.Equal(t, 0, snap.Get())
		assert.False(t, sampled.Active())

		x.Set(2)
		assert.Equal(t, 0, calls)

		take.Set(true)
		assert.Equal(t, 200, snap.Get())

		x.Set(3)
		assert.Equal(t, 300, snap.Get())

		take.Set(false)
		x.Set(4)
		assert.Equal(t, 300, snap.Get())
		assert.False(t, sampled.Active())
		assert.Equal(t, 2, calls)
	})
}
