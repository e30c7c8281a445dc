//go:build !tinygo

package core

import "runtime"

// delayYield lets the goroutine raising the tick run on regular Go.
func delayYield() {
	runtime.Gosched()
}
