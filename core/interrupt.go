package core

import "sync/atomic"

// IRQ identifies an interrupt source.
type IRQ uint8

// Interrupt sources serviced by the firmware.
const (
	IRQTick   IRQ = iota // 1 ms system tick (timer 0)
	IRQClock             // 1 ms RTC tick (timer 1)
	IRQSerial            // UART receive
	numIRQ
)

// Token is the scoped handle returned by Mask. Restore must be called on
// every exit path, usually with defer.
type Token struct {
	state State
}

// InterruptCounts reports how often the global mask was taken and released.
type InterruptCounts struct {
	Masks    uint32
	Restores uint32
}

var (
	maskCount    uint32
	restoreCount uint32
)

// Mask disables the global interrupt enable and returns a token holding
// the previous state. Nested masks are allowed; only the outermost
// Restore re-enables interrupts.
func Mask() Token {
	atomic.AddUint32(&maskCount, 1)
	return Token{state: disableInterrupts()}
}

// Restore puts the interrupt enable back to the state saved by Mask.
func (t Token) Restore() {
	restoreInterrupts(t.state)
	atomic.AddUint32(&restoreCount, 1)
}

// InterruptStats returns the mask/restore counters.
func InterruptStats() InterruptCounts {
	return InterruptCounts{
		Masks:    atomic.LoadUint32(&maskCount),
		Restores: atomic.LoadUint32(&restoreCount),
	}
}

// ResetInterruptStats zeroes the mask/restore counters.
func ResetInterruptStats() {
	atomic.StoreUint32(&maskCount, 0)
	atomic.StoreUint32(&restoreCount, 0)
}
