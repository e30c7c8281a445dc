//go:build !tinygo

package core

import (
	"math/bits"
	"sync"
)

// State is the saved global interrupt enable on regular Go.
type State uintptr

const (
	stateMasked  State = 0
	stateEnabled State = 1
)

// intController emulates a CPU with one global enable bit and a latched
// pending flag per source. A handler runs on whichever goroutine raises or
// unmasks it, never while the mask is held and never concurrently with
// another handler. Handlers must not call Mask.
type intController struct {
	mu       sync.Mutex
	idle     *sync.Cond
	enabled  bool
	running  bool
	pending  uint32
	handlers [numIRQ]func()
	serviced [numIRQ]uint32
}

var irqs = newIntController()

func newIntController() *intController {
	c := &intController{enabled: true}
	c.idle = sync.NewCond(&c.mu)
	return c
}

// disableInterrupts waits for a running handler to return, then clears the
// global enable.
func disableInterrupts() State {
	irqs.mu.Lock()
	defer irqs.mu.Unlock()
	for irqs.running {
		irqs.idle.Wait()
	}
	if !irqs.enabled {
		return stateMasked
	}
	irqs.enabled = false
	return stateEnabled
}

// restoreInterrupts re-enables interrupts if state says they were enabled
// and services anything that latched while masked.
func restoreInterrupts(state State) {
	if state != stateEnabled {
		return
	}
	irqs.mu.Lock()
	irqs.enabled = true
	irqs.mu.Unlock()
	irqs.dispatch()
}

// RegisterISR installs the handler for an interrupt source.
func RegisterISR(n IRQ, handler func()) {
	irqs.mu.Lock()
	irqs.handlers[n] = handler
	irqs.mu.Unlock()
}

// Raise latches an interrupt request. The handler runs immediately if
// interrupts are enabled, otherwise when the outermost mask is restored.
// Raising a source that is already pending has no further effect.
func Raise(n IRQ) {
	irqs.mu.Lock()
	irqs.pending |= 1 << n
	irqs.mu.Unlock()
	irqs.dispatch()
}

// InterruptsEnabled reports the global enable bit.
func InterruptsEnabled() bool {
	irqs.mu.Lock()
	defer irqs.mu.Unlock()
	return irqs.enabled
}

// Serviced returns how many times the handler for n has run.
func Serviced(n IRQ) uint32 {
	irqs.mu.Lock()
	defer irqs.mu.Unlock()
	return irqs.serviced[n]
}

// ResetInterrupts drops all handlers and pending requests and re-enables
// interrupts. Used by tests and simulator start-up.
func ResetInterrupts() {
	irqs.mu.Lock()
	for irqs.running {
		irqs.idle.Wait()
	}
	irqs.enabled = true
	irqs.pending = 0
	irqs.handlers = [numIRQ]func(){}
	irqs.serviced = [numIRQ]uint32{}
	irqs.mu.Unlock()
	ResetInterruptStats()
}

func (c *intController) dispatch() {
	for {
		c.mu.Lock()
		if !c.enabled || c.running || c.pending == 0 {
			c.mu.Unlock()
			return
		}
		n := IRQ(bits.TrailingZeros32(c.pending))
		c.pending &^= 1 << n
		handler := c.handlers[n]
		c.serviced[n]++
		c.running = true
		c.mu.Unlock()

		if handler != nil {
			handler()
		}

		c.mu.Lock()
		c.running = false
		c.mu.Unlock()
		c.idle.Broadcast()
	}
}
