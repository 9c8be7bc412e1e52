package internal

import (
	"fmt"
	"unsafe"
)

// Tick is the engine's logical clock.
type Tick uint64

// UpdateStatus is what a node reports after an update.
type UpdateStatus uint8

const UpdateNothing UpdateStatus = 0

const (
	// Updated means the value changed and consumers must be updated.
	Updated UpdateStatus = 1 << iota

	// UpdatedNext asks the engine to update the node again within the same
	// tick, once every other update of the tick has settled.
	UpdatedNext
)

// Node is a unit of computation held by the engine.
type Node interface {
	// Activate is called once when the node enters the live part of the graph.
	Activate(e *Engine, id NodeID, tick Tick)

	// Update recomputes the node from the current values of its enabled
	// dependencies, in dependency order. args is only valid during the call.
	Update(e *Engine, id NodeID, initialized bool, args []Node) UpdateStatus

	// Deactivate is called once when the node leaves the live part of the
	// graph. It must reset the held value to its zero value.
	Deactivate(e *Engine, id NodeID)

	Label() string
	String() string
	Footprint() uintptr
}

// Valuer is implemented by nodes holding a value of type T.
type Valuer[T any] interface {
	Get() T
}

// Arg reads the value of the i-th enabled dependency.
func Arg[T any](args []Node, i int) T {
	ensure(i < len(args), CodeWrongArity, "argument %d requested, %d available", i, len(args))

	v, ok := args[i].(Valuer[T])
	if !ok {
		ensure(false, CodeWrongType, "argument %d (%s) does not hold a %T", i, args[i].Label(), *new(T))
	}

	return v.Get()
}

// Value is a typed cell with an equality used to suppress redundant propagation.
type Value[T any] struct {
	value T
	equal func(a, b T) bool
}

func NewValue[T comparable](initial T) Value[T] {
	return Value[T]{value: initial, equal: func(a, b T) bool { return a == b }}
}

func NewValueFunc[T any](initial T, equal func(a, b T) bool) Value[T] {
	return Value[T]{value: initial, equal: equal}
}

func (v *Value[T]) Get() T { return v.value }

// Update stores x. A node that was not initialized always reports Updated,
// otherwise Updated is reported only if x differs from the held value.
func (v *Value[T]) Update(x T, initialized bool) UpdateStatus {
	if initialized && v.equal(v.value, x) {
		return UpdateNothing
	}

	v.value = x
	return Updated
}

func (v *Value[T]) Equal(a, b T) bool { return v.equal(a, b) }

func (v *Value[T]) Reset() {
	var zero T
	v.value = zero
}

func (v *Value[T]) IsZero() bool {
	var zero T
	return v.equal(v.value, zero)
}

func (v *Value[T]) String() string { return fmt.Sprint(v.value) }

// Base carries the parts every built-in node shares.
type Base[T any] struct {
	Value[T]

	label string
}

func NewBase[T comparable](label string, initial T) Base[T] {
	return Base[T]{Value: NewValue(initial), label: label}
}

func NewBaseFunc[T any](label string, initial T, equal func(a, b T) bool) Base[T] {
	return Base[T]{Value: NewValueFunc(initial, equal), label: label}
}

func (b *Base[T]) Label() string { return b.label }

func (b *Base[T]) Activate(*Engine, NodeID, Tick) {}

func (b *Base[T]) Deactivate(*Engine, NodeID) { b.Reset() }

func (b *Base[T]) Footprint() uintptr { return unsafe.Sizeof(*b) }
