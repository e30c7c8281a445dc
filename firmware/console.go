package firmware

import (
	"dgusos/core"
	"dgusos/protocol"
)

// Console is the user UART. Received bytes are queued by the receive
// interrupt and taken one per main loop pass; output is written through
// a DebugWriter, usually the UART transmit routine.
type Console struct {
	rx  *protocol.FifoBuffer
	tx  core.DebugWriter
	rxq rxQueue
}

// NewConsole returns a console buffering up to rxSize-1 received bytes.
func NewConsole(rxSize int, tx core.DebugWriter) *Console {
	if tx == nil {
		tx = func(string) {}
	}
	return &Console{
		rx: protocol.NewFifoBuffer(rxSize),
		tx: tx,
	}
}

// RxISR stores one received byte. It runs in interrupt context; bytes
// arriving while the buffer is full are dropped.
func (c *Console) RxISR(b byte) {
	c.rx.Push(b)
}

// Next takes the oldest received byte.
func (c *Console) Next() (byte, bool) {
	tok := core.Mask()
	defer tok.Restore()
	return c.rx.Next()
}

// Overruns returns how many received bytes were dropped.
func (c *Console) Overruns() uint32 {
	tok := core.Mask()
	defer tok.Restore()
	return c.rx.Overruns()
}

// Print writes s to the UART.
func (c *Console) Print(s string) {
	c.tx(s)
}
