package internal

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
)

// model is a random graph of vars, lifts and selects over int values, with
// a reference evaluator to check the engine against.
type model struct {
	t   *testing.T
	e   *Engine
	rng *rand.Rand

	nodes []*modelNode
	roots map[int]*Ref // node index -> eager root over it
}

type modelNode struct {
	ref  *Ref
	kind string // var, lift, select
	v    *Var[int]
	deps []int // lift: inputs, select: selector input then branches
}

func newModel(t *testing.T, e *Engine, seed uint64) *model {
	return &model{t: t, e: e, rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b9)), roots: map[int]*Ref{}}
}

func (m *model) pick() int { return m.rng.IntN(len(m.nodes)) }

func (m *model) addVar() {
	v := NewVar("var", m.rng.IntN(10))
	ref, err := m.e.Add(v, nil, FlagNone)
	require.NoError(m.t, err)
	m.nodes = append(m.nodes, &modelNode{ref: ref, kind: "var", v: v})
}

func (m *model) addLift() {
	deps := make([]int, 1+m.rng.IntN(3))
	ids := make([]NodeID, len(deps))
	for i := range deps {
		deps[i] = m.pick()
		ids[i] = m.nodes[deps[i]].ref.ID()
	}

	ref, err := m.e.Add(NewLift("lift", len(deps), func(args []Node) int { return (sum(args) + 1) % 1000 }), ids, FlagNone)
	require.NoError(m.t, err)
	m.nodes = append(m.nodes, &modelNode{ref: ref, kind: "lift", deps: deps})
}

func (m *model) addSelect() {
	n := 2 + m.rng.IntN(2)
	deps := make([]int, 1+n)
	branches := make([]NodeID, n)
	for i := range deps {
		deps[i] = m.pick()
		if i > 0 {
			branches[i-1] = m.nodes[deps[i]].ref.ID()
		}
	}

	sel := NewSelector("select", func(args []Node) int { return Arg[int](args, 0) % n })
	ref, err := m.e.AddConditional(sel, []NodeID{m.nodes[deps[0]].ref.ID()}, NewConditional[int]("select"), branches, FlagNone)
	require.NoError(m.t, err)
	m.nodes = append(m.nodes, &modelNode{ref: ref, kind: "select", deps: deps})
}

func (m *model) toggleRoot(i int) {
	if r, ok := m.roots[i]; ok {
		r.Release()
		delete(m.roots, i)
		return
	}

	ref, err := m.e.Add(NewLift("root", 1, func(args []Node) int { return Arg[int](args, 0) }), []NodeID{m.nodes[i].ref.ID()}, FlagEager)
	require.NoError(m.t, err)
	m.roots[i] = ref
}

func (m *model) eval(i int) int {
	n := m.nodes[i]
	switch n.kind {
	case "var":
		return n.v.Next()
	case "lift":
		total := 0
		for _, d := range n.deps {
			total += m.eval(d)
		}
		return (total + 1) % 1000
	default:
		branch := m.eval(n.deps[0]) % (len(n.deps) - 1)
		return m.eval(n.deps[1+branch])
	}
}

// live collects the nodes reachable from the roots through the selected branches.
func (m *model) live() map[int]bool {
	live := map[int]bool{}

	var visit func(i int)
	visit = func(i int) {
		if live[i] {
			return
		}
		live[i] = true

		n := m.nodes[i]
		switch n.kind {
		case "lift":
			for _, d := range n.deps {
				visit(d)
			}
		case "select":
			visit(n.deps[0])
			visit(n.deps[1+m.eval(n.deps[0])%(len(n.deps)-1)])
		}
	}

	for i := range m.roots {
		visit(i)
	}
	return live
}

func (m *model) check(step int) {
	m.t.Helper()

	require.NoError(m.t, m.e.Verify(), "step %d", step)

	for i, r := range m.roots {
		require.Equal(m.t, m.eval(i), get[int](r), "step %d: root over node %d", step, i)
	}

	live := m.live()
	for i, n := range m.nodes {
		require.Equal(m.t, live[i], m.e.Active(n.ref.ID()), "step %d: liveness of %s node %d", step, n.kind, i)
	}
}

func (m *model) release() {
	for _, r := range m.roots {
		r.Release()
	}
	for i := len(m.nodes) - 1; i >= 0; i-- {
		m.nodes[i].ref.Release()
	}
}

func runModel(t *testing.T, seed uint64, opts ...Option) []int {
	e := start(t, opts...)
	defer e.Stop()

	baseline := e.Stats()
	m := newModel(t, e, seed)

	for range 4 {
		m.addVar()
	}
	for range 40 {
		switch m.rng.IntN(3) {
		case 0:
			m.addLift()
		case 1:
			m.addSelect()
		default:
			m.addVar()
		}
	}

	trace := []int{}
	for step := range 300 {
		switch op := m.rng.IntN(10); {
		case op < 6:
			var vars []*modelNode
			for _, n := range m.nodes {
				if n.kind == "var" {
					vars = append(vars, n)
				}
			}
			n := vars[m.rng.IntN(len(vars))]
			n.v.SetNext(m.rng.IntN(10))
			e.Touch(n.ref.ID())
		case op < 9:
			m.toggleRoot(m.pick())
		default:
			e.Batch(func() {
				for range 3 {
					n := m.nodes[m.rng.IntN(4)]
					n.v.SetNext(m.rng.IntN(10))
					e.Touch(n.ref.ID())
				}
			})
		}

		m.check(step)

		for i := range m.nodes {
			if r, ok := m.roots[i]; ok {
				trace = append(trace, get[int](r))
			}
		}
	}

	m.release()

	stats := e.Stats()
	require.Equal(t, baseline.Live, stats.Live)
	require.Equal(t, baseline.Active, stats.Active)
	require.Equal(t, baseline.Bytes, stats.Bytes)

	return trace
}

func TestActivationModel(t *testing.T) {
	for seed := range uint64(8) {
		t.Run(fmt.Sprintf("seed %d", seed), func(t *testing.T) {
			runModel(t, seed)
		})
	}
}

func TestStraightLineEquivalence(t *testing.T) {
	for seed := range uint64(4) {
		t.Run(fmt.Sprintf("seed %d", seed), func(t *testing.T) {
			plain := runModel(t, seed)
			inline := runModel(t, seed, WithStraightLine(true))
			require.Equal(t, plain, inline)
		})
	}
}
