package dataflow

import "github.com/AnatoleLucet/dataflow/internal"

// Lift1 creates a node holding fn of a's value.
func Lift1[A any, R comparable](fn func(A) R, a *Ref[A]) *Ref[R] {
	node := internal.NewLift("lift", 1, func(args []internal.Node) R {
		return fn(internal.Arg[A](args, 0))
	})
	return add[R](node, internal.FlagNone, a.ID())
}

func Lift2[A, B any, R comparable](fn func(A, B) R, a *Ref[A], b *Ref[B]) *Ref[R] {
	node := internal.NewLift("lift", 2, func(args []internal.Node) R {
		return fn(internal.Arg[A](args, 0), internal.Arg[B](args, 1))
	})
	return add[R](node, internal.FlagNone, a.ID(), b.ID())
}

func Lift3[A, B, C any, R comparable](fn func(A, B, C) R, a *Ref[A], b *Ref[B], c *Ref[C]) *Ref[R] {
	node := internal.NewLift("lift", 3, func(args []internal.Node) R {
		return fn(internal.Arg[A](args, 0), internal.Arg[B](args, 1), internal.Arg[C](args, 2))
	})
	return add[R](node, internal.FlagNone, a.ID(), b.ID(), c.ID())
}

// LiftN creates a node holding fn of the values of refs, in order.
func LiftN[T any, R comparable](fn func([]T) R, refs ...*Ref[T]) *Ref[R] {
	values := make([]T, len(refs))
	node := internal.NewLift("lift", len(refs), func(args []internal.Node) R {
		for i := range args {
			values[i] = internal.Arg[T](args, i)
		}
		return fn(values)
	})
	return add[R](node, internal.FlagNone, ids(refs)...)
}

func Not(a *Ref[bool]) *Ref[bool] {
	return Lift1(func(a bool) bool { return !a }, a)
}

func And(a, b *Ref[bool]) *Ref[bool] {
	return Lift2(func(a, b bool) bool { return a && b }, a, b)
}

func Or(a, b *Ref[bool]) *Ref[bool] {
	return Lift2(func(a, b bool) bool { return a || b }, a, b)
}

// Main keeps x live and up to date for as long as the returned ref is held.
func Main[T comparable](x *Ref[T]) *Ref[T] {
	return MainFunc(x, func(a, b T) bool { return a == b })
}

// MainFunc is Main for values compared with equal instead of ==, such as
// the slices held by lists.
func MainFunc[T any](x *Ref[T], equal func(a, b T) bool) *Ref[T] {
	node := internal.NewLiftFunc("main", 1, func(args []internal.Node) T {
		return internal.Arg[T](args, 0)
	}, equal)
	return add[T](node, internal.FlagEager, x.ID())
}

// Observe keeps x live and calls fn with each of its new values, once the
// engine is done propagating. fn may assign vars. Release the returned ref
// to stop observing.
func Observe[T comparable](x *Ref[T], fn func(T)) *Ref[T] {
	return add[T](internal.NewEffect("observe", fn), internal.FlagEager, x.ID())
}

// ObserveFunc is Observe for values compared with equal instead of ==.
func ObserveFunc[T any](x *Ref[T], fn func(T), equal func(a, b T) bool) *Ref[T] {
	return add[T](internal.NewEffectFunc("observe", fn, equal), internal.FlagEager, x.ID())
}

// Time returns the engine's clock, which advances by one on every tick.
func Time() *Ref[Tick] {
	e := internal.Current()
	return &Ref[Tick]{e.Retained(e.Clock())}
}
