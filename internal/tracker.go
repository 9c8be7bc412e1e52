package internal

// Tracker knows which scope adopts the refs being created.
type Tracker struct {
	current *Scope
}

func NewTracker() *Tracker {
	return &Tracker{}
}

func (t *Tracker) RunWithScope(s *Scope, fn func()) {
	prev := t.current
	t.current = s
	defer func() { t.current = prev }()

	fn()
}

// RunUntracked runs fn without a current scope: the refs it creates are
// owned by the caller alone.
func (t *Tracker) RunUntracked(fn func()) {
	prev := t.current
	t.current = nil
	defer func() { t.current = prev }()

	fn()
}

func (t *Tracker) Current() *Scope {
	return t.current
}

// Untrack runs fn without a current scope.
func (e *Engine) Untrack(fn func()) {
	e.tracker.RunUntracked(fn)
}

// CurrentScope returns the running scope, nil if there is none.
func (e *Engine) CurrentScope() *Scope {
	return e.tracker.Current()
}
