package dataflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScope(t *testing.T) {
	t.Run("dispose releases everything created inside", func(t *testing.T) {
		e, err := Start()
		require.NoError(t, err)
		defer e.Stop()

		s := NewScope()
		s.Run(func() {
			x := NewVar(1)
			Main(If(Lift1(func(v int) bool { return v > 0 }, x.Ref), Const("pos"), Const("neg")))
		})
		assert.Greater(t, e.Stats().Live, 2)

		cleaned := false
		s.OnCleanup(func() { cleaned = true })
		s.Dispose()

		assert.True(t, cleaned)
		assert.Equal(t, 2, e.Stats().Live)
		assert.Equal(t, 2, e.ActiveCount())
	})

	t.Run("nested scopes go with their parent", func(t *testing.T) {
		e, err := Start()
		require.NoError(t, err)
		defer e.Stop()

		var inner *Var[int]
		outer := NewScope()
		outer.Run(func() {
			NewScope().Run(func() {
				inner = NewVar(1)
			})
		})

		outer.Dispose()
		assert.True(t, IsContractError(recovered(func() { inner.Get() }), CodeDeadNode))
		assert.Equal(t, 2, e.Stats().Live)
	})

	t.Run("errors are handed to handlers", func(t *testing.T) {
		e, err := Start()
		require.NoError(t, err)
		defer e.Stop()

		var caught any
		s := NewScope()
		s.OnError(func(r any) { caught = r })
		s.Run(func() {
			Main(Select(NewVar(5).Ref, Const(0)))
		})

		assert.True(t, IsContractError(caught, CodeBadBranch))
	})

	t.Run("untracked refs outlive the scope", func(t *testing.T) {
		within(t, func(e *Engine) {
			var kept *Var[int]

			s := NewScope()
			s.Run(func() {
				kept = Untrack(func() *Var[int] { return NewVar(1) })
			})
			s.Dispose()

			m := Main(kept.Ref)
			assert.Equal(t, 1, m.Get())
			m.Release()
			kept.Release()
		})
	})
}

func TestPost(t *testing.T) {
	within(t, func(e *Engine) {
		x := NewVar(0)
		sum := Main(x.Ref)

		done := make(chan struct{})
		go func() {
			defer close(done)
			for i := 1; i <= 10; i++ {
				e.Post(func() { x.Set(x.Peek() + i) })
			}
		}()
		<-done

		assert.Equal(t, 0, sum.Get())
		e.Poll()
		assert.Equal(t, 55, sum.Get())
	})
}

func TestAfter(t *testing.T) {
	within(t, func(e *Engine) {
		fired := 0
		Observe(After(10*time.Millisecond).Ref, func(v bool) {
			if v {
				fired++
			}
		})

		deadline := time.Now().Add(2 * time.Second)
		for fired == 0 && time.Now().Before(deadline) {
			time.Sleep(5 * time.Millisecond)
			e.Poll()
		}
		assert.Equal(t, 1, fired)

		time.Sleep(20 * time.Millisecond)
		e.Poll()
		assert.Equal(t, 1, fired, "fires once")
	})

	t.Run("disposing the scope stops the timer", func(t *testing.T) {
		e, err := Start()
		require.NoError(t, err)
		defer e.Stop()

		s := NewScope()
		s.Run(func() { After(time.Hour) })
		s.Dispose()

		assert.NotPanics(t, e.Poll)
		assert.Equal(t, 2, e.Stats().Live)
	})
}
