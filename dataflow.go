// Package dataflow is an incremental reactive engine. Programs build a graph
// of time-varying values from inputs (vars, signals, lists) and the engine
// keeps every live value consistent as the inputs change, updating only
// what changed, in dependency order, and only the branches currently
// selected by conditionals.
//
// An engine belongs to the goroutine that started it. Every function of this
// package works on the calling goroutine's engine.
package dataflow

import (
	"iter"
	"log/slog"

	"github.com/AnatoleLucet/dataflow/internal"
)

type (
	NodeID = internal.NodeID
	Tick   = internal.Tick

	Config = internal.Config
	Option = internal.Option
	Stats  = internal.Stats

	VertexInfo = internal.VertexInfo
	EdgeInfo   = internal.EdgeInfo

	ContractError = internal.ContractError
	ContractCode  = internal.ContractCode
)

var (
	ErrArenaExhausted = internal.ErrArenaExhausted
	ErrEngineRunning  = internal.ErrEngineRunning
)

const (
	CodeNoEngine           = internal.CodeNoEngine
	CodeForeignGoroutine   = internal.CodeForeignGoroutine
	CodeReentrantPump      = internal.CodeReentrantPump
	CodeAssignWhilePumping = internal.CodeAssignWhilePumping
	CodeRunawayPump        = internal.CodeRunawayPump
	CodeWrongArity         = internal.CodeWrongArity
	CodeWrongType          = internal.CodeWrongType
	CodeBadBranch          = internal.CodeBadBranch
	CodeDeadNode           = internal.CodeDeadNode
	CodeDoubleRelease      = internal.CodeDoubleRelease
	CodeStaleTick          = internal.CodeStaleTick
)

// IsContractError reports whether v, typically recovered from a panic, is a
// contract violation with the given code.
func IsContractError(v any, code ContractCode) bool {
	return internal.IsContractError(v, code)
}

func DefaultConfig() Config { return internal.DefaultConfig() }

// LoadConfig reads an engine config from a YAML file.
func LoadConfig(path string) (Config, error) { return internal.LoadConfig(path) }

func ParseConfig(data []byte) (Config, error) { return internal.ParseConfig(data) }

func WithConfig(cfg Config) Option { return internal.WithConfig(cfg) }

func WithLogger(logger *slog.Logger) Option { return internal.WithLogger(logger) }

func WithLabel(label string) Option { return internal.WithLabel(label) }

// WithStraightLine updates single-dependency nodes inline. Results are the
// same, with fewer trips through the marked set.
func WithStraightLine(enabled bool) Option { return internal.WithStraightLine(enabled) }

// WithMaxNodes caps the number of nodes. Creating more panics with an error
// wrapping ErrArenaExhausted.
func WithMaxNodes(n int) Option { return internal.WithMaxNodes(n) }

// WithMaxRoundsPerPump caps the rounds of deferred updates a single tick
// may take to settle.
func WithMaxRoundsPerPump(n int) Option { return internal.WithMaxRoundsPerPump(n) }

type Engine struct {
	engine *internal.Engine
}

// Start creates an engine owned by the calling goroutine. It fails with
// ErrEngineRunning if the goroutine already owns one.
func Start(opts ...Option) (*Engine, error) {
	e, err := internal.Start(opts...)
	if err != nil {
		return nil, err
	}
	return &Engine{e}, nil
}

// Current returns the calling goroutine's engine. It panics if there is none.
func Current() *Engine {
	return &Engine{internal.Current()}
}

// Stop tears the engine down. Nodes still referenced are logged as leaks.
func (e *Engine) Stop() { e.engine.Stop() }

// Batch runs fn and propagates its assignments once, when the outermost batch returns.
func (e *Engine) Batch(fn func()) { e.engine.Batch(fn) }

// Pump advances the clock by one tick and propagates.
func (e *Engine) Pump() { e.engine.Pump() }

// Post hands fn to the engine's goroutine. Unlike every other method it can
// be called from any goroutine; fn runs on the next Poll.
func (e *Engine) Post(fn func()) { e.engine.Post(fn) }

// Poll runs the posted functions and propagates their assignments.
func (e *Engine) Poll() { e.engine.Poll() }

func (e *Engine) Tick() Tick { return e.engine.Tick() }

func (e *Engine) Config() Config { return e.engine.Config() }

func (e *Engine) Stats() Stats { return e.engine.Stats() }

// Verify checks the structural invariants of the graph.
func (e *Engine) Verify() error { return e.engine.Verify() }

// Vertices iterates every allocated node.
func (e *Engine) Vertices() iter.Seq[NodeID] { return e.engine.Vertices() }

// Order iterates the live nodes in the order they are updated.
func (e *Engine) Order() iter.Seq[NodeID] { return e.engine.Order() }

func (e *Engine) Info(id NodeID) VertexInfo { return e.engine.Info(id) }

func (e *Engine) Edges(id NodeID) []EdgeInfo { return e.engine.Edges(id) }

// UpdateOrder is negative if u is updated before v, positive if after.
func (e *Engine) UpdateOrder(u, v NodeID) int { return e.engine.UpdateOrder(u, v) }

// ActiveCount is the number of live nodes, the clock and the unit constant included.
func (e *Engine) ActiveCount() int { return e.engine.Stats().Active }

// Batch runs fn on the current engine and propagates its assignments once.
func Batch(fn func()) {
	internal.Current().Batch(fn)
}

// Untrack runs fn outside of the current scope: the refs it creates are not
// released with the scope.
func Untrack[T any](fn func() T) T {
	var result T
	internal.Current().Untrack(func() { result = fn() })
	return result
}

type Scope struct {
	scope *internal.Scope
}

// NewScope creates a scope. Every ref created while it runs is released
// when it is disposed. Scopes created inside a running scope are disposed
// with it.
func NewScope() *Scope {
	return &Scope{internal.Current().NewScope()}
}

// Run calls fn within the scope.
func (s *Scope) Run(fn func()) { s.scope.Run(fn) }

// Dispose releases the scope's children, then its refs, then runs its cleanups.
func (s *Scope) Dispose() { s.scope.Dispose() }

// OnCleanup registers a function to be called once the scope is disposed.
func (s *Scope) OnCleanup(fn func()) { s.scope.OnCleanup(fn) }

// OnError registers a function to be called when Run panics. If none is
// registered, the panic propagates as usual.
func (s *Scope) OnError(fn func(any)) { s.scope.OnError(fn) }
