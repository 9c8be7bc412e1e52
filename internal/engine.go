package internal

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

var engines sync.Map // goroutine id -> *Engine

// Engine owns the dependency graph, the topological order and the arena.
// It is single threaded: every call must come from the goroutine that
// started it, except Post.
type Engine struct {
	id  uuid.UUID
	gid int64
	cfg Config
	log *slog.Logger

	arena *arena
	order *Order[*vertex]

	// root of the live graph, its value is the tick
	clock *vertex

	// placeholder dependency for branches that hold their value
	unit *vertex

	tick     Tick
	pumping  bool
	flushing bool
	stopped  bool

	batcher *Batcher
	next    *NodeQueue // another round of the current tick
	later   *NodeQueue // the next tick
	effects *EffectQueue
	inbox   *Inbox
	tracker *Tracker

	// vertices waiting to be freed, see release
	dead    []*vertex
	freeing bool

	args  []Node
	stats Stats
}

// Stats are counters maintained by the engine.
type Stats struct {
	Live          int
	Active        int
	Bytes         uintptr
	Tick          Tick
	Pumps         int
	Updates       int
	Activations   int
	Deactivations int
	Repositions   int
	Rebases       int
	Frees         int
}

// Start creates an engine owned by the calling goroutine.
func Start(opts ...Option) (*Engine, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	gid := currentGID()
	if _, ok := engines.Load(gid); ok {
		return nil, ErrEngineRunning
	}

	e := newEngine(gid, cfg)
	engines.Store(gid, e)

	e.log.Debug("engine started", "straight_line", cfg.StraightLine, "max_nodes", cfg.MaxNodes)

	return e, nil
}

// Current returns the engine owned by the calling goroutine.
func Current() *Engine {
	v, ok := engines.Load(currentGID())
	if !ok {
		panic(violation(CodeNoEngine, "no engine started on this goroutine"))
	}
	return v.(*Engine)
}

func newEngine(gid int64, cfg Config) *Engine {
	e := &Engine{
		id:  uuid.New(),
		gid: gid,
		cfg: cfg,

		order: NewOrder[*vertex](),

		batcher: NewBatcher(),
		next:    NewNodeQueue(),
		later:   NewNodeQueue(),
		effects: NewEffectQueue(),
		inbox:   NewInbox(),
		tracker: NewTracker(),
	}

	label := cfg.Label
	if label == "" {
		label = "dataflow"
	}
	e.log = cfg.logger().With("engine", label, "id", e.id.String())

	// the clock and the unit constant do not count against MaxNodes
	e.arena = newArena(0)

	e.clock = e.mustAlloc(&clockNode{NewBase[Tick]("time", 0)}, FlagEager|FlagPersistent)
	e.clock.pos = e.order.PushBack(e.clock)
	e.stats.Activations++

	e.unit = e.mustAlloc(&Constant[struct{}]{NewBase("unit", struct{}{})}, FlagPersistent)
	e.unit.pos = e.order.PushFront(e.unit)
	e.unit.initialized = true

	e.arena.limit = cfg.MaxNodes
	if cfg.MaxNodes > 0 {
		e.arena.limit = cfg.MaxNodes + 2
	}

	return e
}

func (e *Engine) mustAlloc(node Node, flags Flags) *vertex {
	v, err := e.arena.alloc(node)
	if err != nil {
		panic(err)
	}
	v.flags = flags
	v.refs = 1
	return v
}

// Stop tears the engine down and releases the goroutine's slot.
func (e *Engine) Stop() {
	e.checkOwner()
	ensure(!e.pumping, CodeReentrantPump, "stop called while pumping")

	if leaked := e.arena.count - 2; leaked > 0 {
		e.log.Warn("engine stopped with live nodes", "live", leaked, "active", e.order.Len()-2)
	}

	e.stopped = true
	engines.CompareAndDelete(e.gid, e)

	e.log.Debug("engine stopped", "tick", e.tick, "pumps", e.stats.Pumps)
}

func (e *Engine) Tick() Tick { return e.tick }

func (e *Engine) Config() Config { return e.cfg }

func (e *Engine) Logger() *slog.Logger { return e.log }

// Pumping reports whether the engine is inside a pump.
func (e *Engine) Pumping() bool { return e.pumping }

func (e *Engine) Clock() NodeID { return e.clock.id }

func (e *Engine) Unit() NodeID { return e.unit.id }

func (e *Engine) checkOwner() {
	ensure(!e.stopped, CodeNoEngine, "engine %s is stopped", e.id)
	ensure(currentGID() == e.gid, CodeForeignGoroutine, "engine %s used outside its goroutine", e.id)
}

func (e *Engine) vertex(id NodeID) *vertex {
	v, ok := e.arena.get(id)
	ensure(ok, CodeDeadNode, "node %d is not allocated", id)
	return v
}

// Node returns the node object behind id.
func (e *Engine) Node(id NodeID) Node {
	return e.vertex(id).node
}

// Active reports whether id is in the live part of the graph.
func (e *Engine) Active(id NodeID) bool {
	v, ok := e.arena.get(id)
	return ok && v.active()
}

// Add creates a node over deps and returns a reference to it. Eager nodes
// are activated immediately and the engine settles before Add returns.
func (e *Engine) Add(node Node, deps []NodeID, flags Flags) (*Ref, error) {
	e.checkOwner()
	ensure(flags&^FlagEager == 0, CodeBadFlags, "only FlagEager can be requested, got %b", flags)

	v, err := e.add(node, deps, flags)
	if err != nil {
		return nil, err
	}

	if v.is(FlagEager) {
		e.activateRoot(v)
		e.settle()
	}

	return e.newRef(v.id), nil
}

// AddConstant creates a persistent node that is live from creation and never updated.
func (e *Engine) AddConstant(node Node) (*Ref, error) {
	e.checkOwner()

	v, err := e.arena.alloc(node)
	if err != nil {
		return nil, err
	}
	v.flags = FlagPersistent
	v.refs = 1
	v.pos = e.order.PushFront(v)
	v.initialized = true

	return e.newRef(v.id), nil
}

// Activator is the selector half of a conditional: it is created before the
// conditional it drives and bound to it afterwards.
type Activator interface {
	Node
	Bind(target NodeID)
}

// AddConditional creates a conditional node. act is added over inputs and
// becomes the conditional's primary dependency; branches follow it. Branch i
// is the conditional's dependency i+1.
func (e *Engine) AddConditional(act Activator, inputs []NodeID, cond Node, branches []NodeID, flags Flags) (*Ref, error) {
	e.checkOwner()
	ensure(flags&^FlagEager == 0, CodeBadFlags, "only FlagEager can be requested, got %b", flags)
	ensure(len(branches) > 0, CodeBadBranch, "conditional %s has no branch", cond.Label())

	a, err := e.add(act, inputs, FlagNone)
	if err != nil {
		return nil, err
	}

	deps := make([]NodeID, 0, len(branches)+1)
	deps = append(deps, a.id)
	deps = append(deps, branches...)

	c, err := e.add(cond, deps, (flags&FlagEager)|FlagConditional)
	if err != nil {
		e.release(a)
		return nil, err
	}

	act.Bind(c.id)

	// the conditional's link now holds the activator
	e.release(a)

	if c.is(FlagEager) {
		e.activateRoot(c)
		e.settle()
	}

	return e.newRef(c.id), nil
}

// add allocates a vertex and its data links. Nothing is linked into the
// graph if allocation fails.
func (e *Engine) add(node Node, deps []NodeID, flags Flags) (*vertex, error) {
	targets := make([]*vertex, len(deps))
	for i, id := range deps {
		targets[i] = e.vertex(id)
	}

	v, err := e.arena.alloc(node)
	if err != nil {
		e.log.Warn("node allocation failed", "label", node.Label(), "err", err)
		return nil, err
	}

	v.flags = flags
	v.refs = 1
	v.deps = make([]*link, len(targets))
	for i, t := range targets {
		t.refs++
		v.deps[i] = &link{dep: t, sub: v, index: i}
	}

	return v, nil
}

// Retain adds a reference to id.
func (e *Engine) Retain(id NodeID) {
	e.vertex(id).refs++
}

// Release drops a reference to id. The last release deactivates the node if
// needed and frees it, cascading to everything it alone kept alive.
func (e *Engine) Release(id NodeID) {
	e.checkOwner()
	e.release(e.vertex(id))
}

// release drops a reference held on v. Vertices left without references are
// freed from a single work stack: releases that happen while it is being
// worked off, such as deactivated vertices dropping their anchors, only
// push onto it.
func (e *Engine) release(v *vertex) {
	ensure(v.refs > 0, CodeDoubleRelease, "node %d (%s) released with no reference", v.id, v.node.Label())

	v.refs--
	if v.refs > 0 {
		return
	}

	e.dead = append(e.dead, v)
	if e.freeing {
		return
	}

	e.freeing = true
	defer func() {
		e.freeing = false
		e.dead = e.dead[:0]
	}()

	for len(e.dead) > 0 {
		n := e.dead[len(e.dead)-1]
		e.dead = e.dead[:len(e.dead)-1]

		if n.active() {
			e.deactivateVertex(n)
			for _, l := range n.deps {
				if l.enabled {
					e.disable(l)
				}
			}
		}

		for _, l := range n.deps {
			d := l.dep
			d.refs--
			if d.refs == 0 {
				e.dead = append(e.dead, d)
			}
		}

		e.free(n)
	}
}

func (e *Engine) free(v *vertex) {
	ensure(v.subsHead == nil, CodeDeadNode, "node %d (%s) freed while consumed", v.id, v.node.Label())
	if z, ok := v.node.(interface{ IsZero() bool }); ok && !v.is(FlagPersistent) {
		ensure(z.IsZero(), CodeNotReset, "node %d (%s) freed without resetting its value", v.id, v.node.Label())
	}

	e.arena.release(v)
	e.stats.Frees++
}

func (e *Engine) String() string {
	return fmt.Sprintf("engine(%s, tick %d, %d nodes)", e.id, e.tick, e.arena.count)
}
