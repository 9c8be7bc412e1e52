package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/AnatoleLucet/dataflow"
)

// Scenario is a small reactive program that prints the values it goes through.
type Scenario struct {
	Name        string
	Description string
	Run         func(e *dataflow.Engine, w io.Writer)
}

var Scenarios = []Scenario{
	{"square", "y = x*x - x + 5 over three assignments of x", square},
	{"toggle", "a light switched by a signal through a state machine", toggle},
	{"branch", "an If over two subgraphs, only the selected one live", branch},
	{"abcd", "a recursion advancing on the characters a, b, c, d in order", abcd},
}

func FindScenario(name string) (Scenario, bool) {
	for _, s := range Scenarios {
		if s.Name == name {
			return s, true
		}
	}
	return Scenario{}, false
}

func square(e *dataflow.Engine, w io.Writer) {
	mul := func(a, b int) int { return a * b }
	sub := func(a, b int) int { return a - b }
	add := func(a, b int) int { return a + b }

	x := dataflow.NewVar(1)
	y := dataflow.Lift2(add, dataflow.Lift2(sub, dataflow.Lift2(mul, x.Ref, x.Ref), x.Ref), dataflow.Const(5))
	dataflow.Main(y)

	for _, v := range []int{1, 0, 10} {
		x.Set(v)
		fmt.Fprintf(w, "x=%d y=%d active=%d\n", v, y.Get(), e.ActiveCount())
	}
}

func toggle(e *dataflow.Engine, w io.Writer) {
	flip := dataflow.NewSignal()
	light := dataflow.StateMachine(false, func(on *dataflow.Ref[bool]) *dataflow.Ref[bool] {
		return dataflow.Transitions(on,
			dataflow.On(dataflow.And(on, flip.Ref), false),
			dataflow.On(dataflow.And(dataflow.Not(on), flip.Ref), true),
		)
	})
	dataflow.Main(light)

	fmt.Fprintf(w, "light=%t\n", light.Get())
	for range 2 {
		flip.Fire()
		fmt.Fprintf(w, "toggle -> light=%t\n", light.Get())
	}
}

func branch(e *dataflow.Engine, w io.Writer) {
	x := dataflow.NewVar(2)

	a := dataflow.Lift1(func(v int) int { return v * 3 }, x.Ref)
	a = dataflow.Lift1(func(v int) int { return v * 2 }, a)
	a = dataflow.Lift1(func(v int) int { return v + 1 }, a)

	b := dataflow.Lift1(func(v int) int { return v - 1 }, x.Ref)
	b = dataflow.Lift1(func(v int) int { return v * v }, b)
	b = dataflow.Lift1(func(v int) int { return v + 100 }, b)

	cond := dataflow.NewVar(true)
	out := dataflow.If(cond.Ref, a, b)
	dataflow.Main(out)

	for _, c := range []bool{true, false, true} {
		cond.Set(c)
		fmt.Fprintf(w, "cond=%t value=%d active=%d\n", c, out.Get(), e.ActiveCount())
	}
}

func abcd(e *dataflow.Engine, w io.Writer) {
	const word = "abcd"

	input := dataflow.NewVar("")
	state := dataflow.StateMachine(0, func(s *dataflow.Ref[int]) *dataflow.Ref[int] {
		return dataflow.Lift2(func(s int, in string) int {
			if s < len(word) && in == word[s:s+1] {
				return s + 1
			}
			return s
		}, s, input.Ref)
	})
	dataflow.Main(state)

	for _, in := range strings.Split(",a,c,b,c,d", ",") {
		input.Set(in)
		fmt.Fprintf(w, "input=%q state=%d\n", in, state.Get())
	}
}
