//go:build !tinygo

package firmware

import (
	"sync"

	"dgusos/core"
)

// rxQueue stands in for the UART receive register on regular Go: bytes
// written by the host side wait here until the serial interrupt runs.
type rxQueue struct {
	mu   sync.Mutex
	data []byte
}

// Receive delivers bytes to the UART and raises the serial interrupt.
// Safe to call from any goroutine.
func (c *Console) Receive(data []byte) {
	c.rxq.mu.Lock()
	c.rxq.data = append(c.rxq.data, data...)
	c.rxq.mu.Unlock()
	core.Raise(core.IRQSerial)
}

// serialISR drains everything received since the last interrupt. Raises
// collapse while masked, so one run may see several bytes.
func (c *Console) serialISR() {
	c.rxq.mu.Lock()
	data := c.rxq.data
	c.rxq.data = nil
	c.rxq.mu.Unlock()

	for _, b := range data {
		c.RxISR(b)
	}
}
