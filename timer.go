package dataflow

import "time"

// After returns a signal that fires once, the first time the engine polls
// after d has elapsed. The engine never waits: the timer hands the firing
// to the engine's goroutine through Post. The timer is stopped when the
// current scope, if any, is disposed.
func After(d time.Duration) *Signal {
	e := Current()
	s := NewSignal()

	timer := time.AfterFunc(d, func() {
		e.Post(func() {
			if !s.ref.Released() {
				s.Fire()
			}
		})
	})

	if scope := e.engine.CurrentScope(); scope != nil {
		scope.OnCleanup(func() { timer.Stop() })
	}

	return s
}
