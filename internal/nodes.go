package internal

import "fmt"

// clockNode is the root of the live graph. Its value is the current tick.
type clockNode struct {
	Base[Tick]
}

func (c *clockNode) Update(e *Engine, _ NodeID, initialized bool, _ []Node) UpdateStatus {
	return c.Value.Update(e.tick, initialized)
}

// Constant holds a value that never changes. Constants are live from
// creation and ordered before everything else.
type Constant[T any] struct {
	Base[T]
}

func NewConstant[T comparable](label string, value T) *Constant[T] {
	return &Constant[T]{NewBase(label, value)}
}

func (c *Constant[T]) Update(*Engine, NodeID, bool, []Node) UpdateStatus {
	return UpdateNothing
}

// Var is an input. Assignments set the next value, which the var adopts on
// its next update. Deactivation resets the held value but keeps the next one.
type Var[T any] struct {
	Base[T]

	next T
}

func NewVar[T comparable](label string, initial T) *Var[T] {
	var zero T
	return &Var[T]{Base: NewBase(label, zero), next: initial}
}

func NewVarFunc[T any](label string, initial T, equal func(a, b T) bool) *Var[T] {
	var zero T
	return &Var[T]{Base: NewBaseFunc(label, zero, equal), next: initial}
}

func (v *Var[T]) SetNext(x T) { v.next = x }

func (v *Var[T]) Next() T { return v.next }

func (v *Var[T]) Update(_ *Engine, _ NodeID, initialized bool, _ []Node) UpdateStatus {
	return v.Value.Update(v.next, initialized)
}

// Trigger is true for exactly the tick it fired on and resets on the next one.
type Trigger struct {
	Base[bool]

	armed bool
}

func NewTrigger(label string) *Trigger {
	return &Trigger{Base: NewBase(label, false)}
}

// Arm makes the next update fire.
func (t *Trigger) Arm() { t.armed = true }

func (t *Trigger) Update(e *Engine, id NodeID, initialized bool, _ []Node) UpdateStatus {
	if !t.armed {
		return t.Value.Update(false, initialized)
	}

	t.armed = false
	t.Value.Update(true, initialized)
	e.MarkNext(id)

	// firing on consecutive ticks is a new event each time
	return Updated
}

func (t *Trigger) Deactivate(*Engine, NodeID) {
	t.armed = false
	t.Reset()
}

// Variadic is the arity of lifts that accept any number of arguments.
const Variadic = -1

// Lift applies fn to the values of its dependencies.
type Lift[T any] struct {
	Base[T]

	arity int
	fn    func(args []Node) T
}

func NewLift[T comparable](label string, arity int, fn func(args []Node) T) *Lift[T] {
	var zero T
	return &Lift[T]{Base: NewBase(label, zero), arity: arity, fn: fn}
}

func NewLiftFunc[T any](label string, arity int, fn func(args []Node) T, equal func(a, b T) bool) *Lift[T] {
	var zero T
	return &Lift[T]{Base: NewBaseFunc(label, zero, equal), arity: arity, fn: fn}
}

func (l *Lift[T]) Update(_ *Engine, _ NodeID, initialized bool, args []Node) UpdateStatus {
	ensure(l.arity == Variadic || len(args) == l.arity, CodeWrongArity,
		"%s takes %d arguments, got %d", l.Label(), l.arity, len(args))

	return l.Value.Update(l.fn(args), initialized)
}

// Effect hands the value of its dependency to fn once the pump is done,
// each time the dependency reports an update.
type Effect[T any] struct {
	Base[T]

	fn func(T)
}

func NewEffect[T comparable](label string, fn func(T)) *Effect[T] {
	var zero T
	return &Effect[T]{Base: NewBase(label, zero), fn: fn}
}

func NewEffectFunc[T any](label string, fn func(T), equal func(a, b T) bool) *Effect[T] {
	var zero T
	return &Effect[T]{Base: NewBaseFunc(label, zero, equal), fn: fn}
}

func (o *Effect[T]) Update(e *Engine, _ NodeID, initialized bool, args []Node) UpdateStatus {
	x := Arg[T](args, 0)
	o.Value.Update(x, initialized)
	e.Defer(func() { o.fn(x) })

	// nothing consumes effects
	return UpdateNothing
}

func (o *Effect[T]) String() string {
	return fmt.Sprintf("effect(%v)", o.Get())
}
