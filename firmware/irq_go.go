//go:build !tinygo

package firmware

import "dgusos/core"

// attachInterrupts installs the tick, clock and serial handlers on the
// emulated interrupt controller.
func (a *App) attachInterrupts() {
	core.RegisterISR(core.IRQTick, core.TickISR)
	core.RegisterISR(core.IRQClock, a.clock.TickISR)
	core.RegisterISR(core.IRQSerial, a.console.serialISR)
}
