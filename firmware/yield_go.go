//go:build !tinygo

package firmware

import "runtime"

func yield() {
	runtime.Gosched()
}
