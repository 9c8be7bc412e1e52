package internal

type Batcher struct {
	// each nested batch increases the depth by 1
	// if depth > 0, the engine does not settle until the outermost batch is complete
	depth int
}

func NewBatcher() *Batcher {
	return &Batcher{
		depth: 0,
	}
}

func (b *Batcher) IsBatching() bool {
	return b.depth > 0
}

// Batch runs fn, then onComplete if fn returned normally and closed the
// outermost batch.
func (b *Batcher) Batch(fn, onComplete func()) {
	b.depth++
	func() {
		defer func() { b.depth-- }()
		fn()
	}()

	if b.depth == 0 && onComplete != nil {
		onComplete()
	}
}
