//go:build !wasm

package internal

import (
	"github.com/petermattis/goid"
)

// engines are owned by the goroutine that started them
func currentGID() int64 {
	return goid.Get()
}
