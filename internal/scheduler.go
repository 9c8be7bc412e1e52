package internal

// Pump advances the clock and propagates every pending change until the
// graph is consistent again. It cannot be called from inside a node.
func (e *Engine) Pump() {
	e.checkOwner()
	e.pump()
	e.settle()
}

// Poll runs the functions posted from other goroutines and settles the
// engine. It is the bridge for timers and other external events.
func (e *Engine) Poll() {
	e.checkOwner()
	e.settle()
}

// Touch schedules id for an update, typically after its next value was
// assigned. The engine settles unless a batch or an effect is running.
func (e *Engine) Touch(id NodeID) {
	e.checkOwner()
	ensure(!e.pumping, CodeAssignWhilePumping, "node %d assigned while pumping", id)

	if v := e.vertex(id); v.active() {
		e.order.Mark(v.pos)
	}
	e.settle()
}

// MarkNext queues id for an update on the next tick. It does not start a
// pump: the update happens whenever the next pump does.
func (e *Engine) MarkNext(id NodeID) {
	e.later.Enqueue(e.vertex(id))
}

// Batch runs fn and settles once, after the outermost batch returns.
func (e *Engine) Batch(fn func()) {
	e.checkOwner()
	e.batcher.Batch(fn, e.settle)
}

// settle pumps until nothing is marked, then runs the queued effects. Effects
// and posted functions that assign only mark, the loop picks their changes up.
func (e *Engine) settle() {
	if e.pumping || e.flushing || e.batcher.IsBatching() {
		return
	}

	e.flushing = true
	defer func() { e.flushing = false }()

	for {
		e.inbox.Drain()

		if e.order.MarkedLen() > 0 || e.next.Len() > 0 {
			e.pump()
		}

		ran := e.effects.Run()
		if !ran && e.order.MarkedLen() == 0 && e.inbox.Len() == 0 {
			return
		}
	}
}

func (e *Engine) pump() {
	ensure(!e.pumping, CodeReentrantPump, "pump called while pumping at tick %d", e.tick)

	e.pumping = true
	defer func() {
		e.pumping = false
		if r := recover(); r != nil {
			e.order.ClearMarks()
			e.next.Clear()
			e.log.Error("pump aborted", "tick", e.tick, "panic", r)
			panic(r)
		}
	}()

	e.stats.Pumps++

	e.tick++
	e.order.Mark(e.clock.pos)
	e.remark(e.later)

	// rounds of deferred updates all belong to this tick
	for rounds := 1; ; rounds++ {
		if limit := e.cfg.MaxRoundsPerPump; limit > 0 && rounds > limit {
			panic(violation(CodeRunawayPump, "no fixed point after %d rounds at tick %d", limit, e.tick))
		}

		e.drain()

		if e.next.Len() == 0 {
			break
		}
		e.remark(e.next)
	}

	e.log.Debug("pump done", "tick", e.tick, "updates", e.stats.Updates)
}

// remark marks the queued vertices that are still live.
func (e *Engine) remark(q *NodeQueue) {
	for v := range q.Drain() {
		if v.active() {
			e.order.Mark(v.pos)
		}
	}
}

func (e *Engine) drain() {
	for {
		p, ok := e.order.PopMarked()
		if !ok {
			return
		}

		for v := p.Value; v != nil; {
			v = e.propagate(v, e.update(v))
		}
	}
}

func (e *Engine) update(v *vertex) UpdateStatus {
	args := e.args[:0]
	for _, l := range v.deps {
		if l.enabled {
			args = append(args, l.dep.node)
		}
	}
	e.args = args

	status := v.node.Update(e, v.id, v.initialized, args)

	clear(args)
	v.initialized = true
	e.stats.Updates++

	return status
}

// propagate marks the consumers of an updated vertex and queues it for
// another round if it asked for it. With straight-line updates on, it returns a
// consumer that can be updated inline instead of being marked.
func (e *Engine) propagate(v *vertex, status UpdateStatus) *vertex {
	if status&UpdatedNext != 0 {
		e.next.Enqueue(v)
	}
	if status&Updated == 0 {
		return nil
	}

	var inline *vertex
	for l := range v.subs() {
		u := l.sub
		if !u.active() {
			continue
		}

		if inline == nil && e.straightLine(v, u) {
			e.order.Unmark(u.pos)
			inline = u
			continue
		}

		e.order.Mark(u.pos)
	}

	return inline
}

// straightLine reports whether u only depends on v and lives and dies with it.
func (e *Engine) straightLine(v, u *vertex) bool {
	return e.cfg.StraightLine &&
		len(u.deps) == 1 &&
		!u.is(FlagConditional) &&
		u.activator() == v.activator()
}

// Post hands fn to the engine's goroutine, where it runs on the next Poll or
// settle. It is the only method that can be called from any goroutine.
func (e *Engine) Post(fn func()) {
	e.inbox.Push(fn)
}

// Defer queues fn to run after the current pump, outside of it.
func (e *Engine) Defer(fn func()) {
	e.effects.Enqueue(fn)
}
