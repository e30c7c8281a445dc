//go:build tinygo

package firmware

// rxQueue is empty on hardware: the target's UART interrupt calls
// Console.RxISR with the received data register.
type rxQueue struct{}
