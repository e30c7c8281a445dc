//go:build tinygo

package firmware

import "time"

// yield gives the scheduler a chance to run other goroutines.
func yield() {
	time.Sleep(10 * time.Microsecond)
}
