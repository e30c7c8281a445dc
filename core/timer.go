package core

import "sync/atomic"

// TickHz is the rate of the system tick interrupt.
const TickHz = 1000

var (
	systemTicks uint32 // milliseconds, advanced by TickISR
	delayTicks  uint32 // countdown consumed by DelayMS
)

// TickISR is the 1 ms system tick handler. It advances Millis and the
// DelayMS countdown.
func TickISR() {
	atomic.AddUint32(&systemTicks, 1)
	for {
		left := atomic.LoadUint32(&delayTicks)
		if left == 0 || atomic.CompareAndSwapUint32(&delayTicks, left, left-1) {
			return
		}
	}
}

// Millis returns the current system time in milliseconds. It wraps after
// about 49 days; compare with Since.
func Millis() uint32 {
	return atomic.LoadUint32(&systemTicks)
}

// SetMillis sets the current system time (for testing/hardware integration)
func SetMillis(ms uint32) {
	atomic.StoreUint32(&systemTicks, ms)
}

// Since returns the milliseconds elapsed since start.
func Since(start uint32) uint32 {
	return Millis() - start
}

// DelayMS busy-waits for n system ticks. The tick interrupt must be running
// and unmasked, so never call it while holding a Mask token.
func DelayMS(n uint32) {
	atomic.StoreUint32(&delayTicks, n)
	for atomic.LoadUint32(&delayTicks) != 0 {
		delayYield()
	}
}

// ProcessTimers runs every scheduled timer that is due.
func ProcessTimers() {
	TimerDispatch(Millis())
}
