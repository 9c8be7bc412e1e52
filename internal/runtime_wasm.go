//go:build wasm

package internal

// wasm runs a single goroutine that matters, so there is a single global engine slot
func currentGID() int64 {
	return 0
}
