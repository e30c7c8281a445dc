//go:build tinygo

package firmware

// attachInterrupts is a no-op on hardware. The target binds its timer 0
// interrupt to core.TickISR, timer 1 to App.Clock().TickISR and the UART
// receive interrupt to Console.RxISR.
func (a *App) attachInterrupts() {}
