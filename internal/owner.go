package internal

import (
	"iter"
	"slices"
)

// Scope owns the refs created while it runs and releases them together.
// Scopes created inside a running scope become its children and are
// disposed with it.
type Scope struct {
	engine *Engine

	refs []*Ref

	// cleanup functions to be called when the scope is disposed
	cleanups []func()

	// panic handlers
	catchers []func(any)

	disposed bool

	parent       *Scope
	prevSibling  *Scope
	nextSibling  *Scope
	childrenHead *Scope
}

func (e *Engine) NewScope() *Scope {
	s := &Scope{
		engine:   e,
		refs:     make([]*Ref, 0),
		cleanups: make([]func(), 0),
	}

	if parent := e.tracker.Current(); parent != nil {
		parent.AddChild(s)
	}

	return s
}

// Run calls fn with s as the current scope. A panic is handed to the
// scope's handlers if it has any.
func (s *Scope) Run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			if len(s.catchers) == 0 {
				panic(r)
			}

			for _, catcher := range s.catchers {
				catcher(r)
			}
		}
	}()

	s.engine.tracker.RunWithScope(s, fn)
}

func (s *Scope) Adopt(r *Ref) {
	s.refs = append(s.refs, r)
}

func (parent *Scope) AddChild(child *Scope) {
	child.parent = parent
	child.prevSibling = nil
	child.nextSibling = parent.childrenHead

	if parent.childrenHead != nil {
		parent.childrenHead.prevSibling = child
	}

	parent.childrenHead = child
}

func (s *Scope) Children() iter.Seq[*Scope] {
	return func(yield func(*Scope) bool) {
		child := s.childrenHead

		for child != nil {
			if !yield(child) {
				return
			}

			child = child.nextSibling
		}
	}
}

// Dispose releases the children first, then the refs in reverse creation
// order, skipping those already released by hand, then runs the cleanups.
func (s *Scope) Dispose() {
	if s.disposed {
		return
	}
	s.disposed = true

	s.DisposeChildren()

	for _, r := range slices.Backward(s.refs) {
		if !r.Released() {
			r.Release()
		}
	}
	s.refs = nil

	for i := 0; i < len(s.cleanups); i++ {
		s.cleanups[i]()
	}
	s.cleanups = nil
}

func (s *Scope) DisposeChildren() {
	for child := range s.Children() {
		child.Dispose()
	}
	s.childrenHead = nil
}

func (s *Scope) OnCleanup(fn func()) {
	s.cleanups = append(s.cleanups, fn)
}

func (s *Scope) OnError(fn func(any)) {
	s.catchers = append(s.catchers, fn)
}

// Len is the number of refs the scope holds.
func (s *Scope) Len() int { return len(s.refs) }
