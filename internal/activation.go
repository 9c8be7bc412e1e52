package internal

// Activation keeps two things consistent while conditional branches switch
// at runtime: the set of enabled links, and the topological order
// (every enabled link's dependency is ordered before its consumer). The
// order is patched locally, never re-sorted.
//
// Every active vertex other than the roots is anchored to an activator: the
// earliest implied activator among its consumers. The implied activator of
// a link u->v is u's primary dependency when u is conditional and v is one
// of its branches, and u's own activator otherwise, so nested branches stay
// anchored to the nearest enclosing live activator.

// implied returns the activator a link from u to v implies for v.
func (e *Engine) implied(u, v *vertex) *vertex {
	if u.is(FlagConditional) && u.primary() != v {
		return u.primary()
	}
	return u.activator()
}

// activateRoot makes an eager vertex live, last in the order and anchored to the clock.
func (e *Engine) activateRoot(v *vertex) {
	e.activateVertex(v, nil, e.clock)
	e.enableAll(e.pendingLinks(nil, v))
}

// activateVertex gives v a position immediately before its consumer (or
// last when it has none), anchors it and marks it for its first update.
func (e *Engine) activateVertex(v, consumer, anchor *vertex) {
	ensure(!v.active(), CodeDoubleActivation, "node %d (%s) is already active", v.id, v.node.Label())

	if consumer == nil {
		v.pos = e.order.PushBack(v)
	} else {
		v.pos = e.order.InsertBefore(consumer.pos, v)
	}
	v.initialized = false

	e.setAnchor(v, anchor)
	v.node.Activate(e, v.id, e.tick)
	e.order.Mark(v.pos)

	e.stats.Activations++
}

func (e *Engine) deactivateVertex(v *vertex) {
	ensure(v.active(), CodeDoubleDeactivation, "node %d (%s) is not active", v.id, v.node.Label())

	e.order.Erase(v.pos)
	v.pos = nil
	v.initialized = false
	v.node.Deactivate(e, v.id)

	if a := v.anchor; a != nil {
		v.anchor = nil
		e.release(a.dep)
	}

	e.stats.Deactivations++
}

// setAnchor points v's logical link at a, moving the reference it holds.
func (e *Engine) setAnchor(v, a *vertex) {
	if a == nil || v.activator() == a {
		return
	}

	a.refs++
	old := v.anchor
	v.anchor = &link{dep: a, sub: v, index: -1, enabled: true}

	if old != nil {
		e.release(old.dep)
	}
}

// pendingLinks appends the links a freshly activated vertex enables on its
// own: only the primary one for conditionals, every data link otherwise.
func (e *Engine) pendingLinks(stack []*link, v *vertex) []*link {
	if v.is(FlagConditional) {
		return append(stack, v.deps[0])
	}
	for i := len(v.deps) - 1; i >= 0; i-- {
		stack = append(stack, v.deps[i])
	}
	return stack
}

// enable activates the subgraph behind l.
func (e *Engine) enable(l *link) {
	e.enableAll([]*link{l})
}

func (e *Engine) enableAll(stack []*link) {
	for len(stack) > 0 {
		l := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		u, v := l.sub, l.dep
		if l.enabled || !u.active() {
			continue
		}

		l.enabled = true
		v.addSub(l)

		if !v.active() {
			e.activateVertex(v, u, e.implied(u, v))
			stack = e.pendingLinks(stack, v)
			continue
		}

		// shared with other consumers
		e.reposition(v, u)
		e.rebase(v)
	}
}

// disable deactivates whatever only l kept live.
func (e *Engine) disable(l *link) {
	stack := []*link{l}
	for len(stack) > 0 {
		l := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !l.enabled {
			continue
		}
		l.enabled = false

		v := l.dep
		v.removeSub(l)

		if v.subsHead == nil && !v.is(FlagEager|FlagPersistent) {
			if !v.active() {
				continue
			}

			e.deactivateVertex(v)
			for _, dl := range v.deps {
				if dl.enabled {
					stack = append(stack, dl)
				}
			}
			continue
		}

		e.rebase(v)
	}
}

// reposition moves v immediately before its consumer u if it is ordered
// after it, then pulls every enabled dependency that ends up after its
// consumer the same way. Moving a vertex earlier never breaks its consumers,
// only its dependencies, so the pass only walks down.
func (e *Engine) reposition(v, u *vertex) {
	if e.order.Compare(v.pos, u.pos) < 0 {
		return
	}

	e.order.MoveBefore(v.pos, u.pos)
	e.stats.Repositions++

	stack := []*vertex{v}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, l := range n.deps {
			if !l.enabled || e.order.Compare(l.dep.pos, n.pos) < 0 {
				continue
			}

			e.order.MoveBefore(l.dep.pos, n.pos)
			e.stats.Repositions++
			stack = append(stack, l.dep)
		}
	}
}

// rebase re-anchors v to the earliest implied activator among its consumers
// and walks the change down to the dependencies anchored through it.
func (e *Engine) rebase(v *vertex) {
	stack := []*vertex{v}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !n.active() || n.is(FlagEager|FlagPersistent) {
			continue
		}

		a := e.earliestAnchor(n)
		if a == nil || a == n.activator() {
			continue
		}

		e.setAnchor(n, a)
		e.stats.Rebases++

		for _, l := range n.deps {
			if l.enabled {
				stack = append(stack, l.dep)
			}
		}
	}
}

func (e *Engine) earliestAnchor(v *vertex) *vertex {
	var best *vertex
	for l := range v.subs() {
		a := e.implied(l.sub, v)
		if a == nil || !a.active() {
			continue
		}
		if best == nil || e.order.Compare(a.pos, best.pos) < 0 {
			best = a
		}
	}
	return best
}

// SelectBranch enables branch of the conditional id and disables the
// others. The new branch is enabled first so nodes shared by both branches
// stay live.
func (e *Engine) SelectBranch(id NodeID, branch int) {
	c := e.conditional(id, branch)
	if !c.active() {
		return
	}

	if l := c.deps[branch+1]; !l.enabled {
		e.enable(l)
	}

	for i, l := range c.deps[1:] {
		if i != branch && l.enabled {
			e.disable(l)
		}
	}
}

// Relink disables then re-enables branch of the conditional id, which
// deactivates and reactivates every node only that branch kept live and so
// resets their state.
func (e *Engine) Relink(id NodeID, branch int) {
	c := e.conditional(id, branch)
	if !c.active() {
		return
	}

	l := c.deps[branch+1]
	if l.enabled {
		e.disable(l)
	}
	e.enable(l)

	for i, l := range c.deps[1:] {
		if i != branch && l.enabled {
			e.disable(l)
		}
	}
}

// DisableEdge disables the i-th data link of id.
func (e *Engine) DisableEdge(id NodeID, i int) {
	v := e.vertex(id)
	ensure(i >= 0 && i < len(v.deps), CodeWrongArity, "node %d (%s) has no link %d", id, v.node.Label(), i)

	if l := v.deps[i]; l.enabled {
		e.disable(l)
	}
}

func (e *Engine) conditional(id NodeID, branch int) *vertex {
	c := e.vertex(id)
	ensure(c.is(FlagConditional), CodeBadBranch, "node %d (%s) is not conditional", id, c.node.Label())
	ensure(branch >= 0 && branch+1 < len(c.deps), CodeBadBranch,
		"node %d (%s) has no branch %d (%d branches)", id, c.node.Label(), branch, len(c.deps)-1)
	return c
}
