package vp

import (
	"errors"

	"dgusos/core"
)

// ErrNoAck is returned by the bounded entry points when the hardware does
// not complete a transaction within the configured poll limit.
var ErrNoAck = errors.New("vp: handshake not acknowledged")

// Lane order in which caller bytes are placed for each phase of a transfer.
var (
	headLanes = [2]Lane{Lane1, Lane0}
	fullLanes = [4]Lane{Lane3, Lane2, Lane1, Lane0}
	tailLanes = [3]Lane{Lane3, Lane2, Lane1}
)

// Engine translates byte-range requests on VP memory into handshake
// transactions. It is the only user of its Registers and is meant to be
// created once per device.
type Engine struct {
	regs  Registers
	polls int
}

// Option configures an Engine.
type Option func(*Engine)

// WithPollLimit bounds every completion poll of TryWrite/TryRead to polls
// status reads when the registers implement BoundedRegisters. Write and
// Read always wait forever.
func WithPollLimit(polls int) Option {
	return func(e *Engine) {
		e.polls = polls
	}
}

// New returns an engine that owns regs.
func New(regs Registers, opts ...Option) *Engine {
	e := &Engine{regs: regs}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Phases splits a transfer of n bytes at addr into a partial head
// transaction carrying head bytes (odd start only), full four-lane
// transactions and a tail transaction carrying tail bytes.
func Phases(addr uint16, n int) (head, full, tail int) {
	if n <= 0 {
		return 0, 0, 0
	}
	if addr&1 != 0 {
		head = n
		if head > len(headLanes) {
			head = len(headLanes)
		}
		n -= head
	}
	return head, n / 4, n % 4
}

// Transactions returns how many handshakes a transfer of n bytes at addr
// issues.
func Transactions(addr uint16, n int) int {
	head, full, tail := Phases(addr, n)
	count := full
	if head > 0 {
		count++
	}
	if tail > 0 {
		count++
	}
	return count
}

// Write copies buf into VP memory starting at addr. Interrupts are masked
// for the whole call. A stuck device hangs the caller.
func (e *Engine) Write(addr uint16, buf []byte) {
	e.call(Write, addr, buf, 0)
}

// Read fills buf from VP memory starting at addr. Interrupts are masked
// for the whole call. A stuck device hangs the caller.
func (e *Engine) Read(addr uint16, buf []byte) {
	e.call(Read, addr, buf, 0)
}

// TryWrite is Write with the engine's poll limit applied. On ErrNoAck the
// bus is released and the remaining bytes are not written.
func (e *Engine) TryWrite(addr uint16, buf []byte) error {
	return e.call(Write, addr, buf, e.polls)
}

// TryRead is Read with the engine's poll limit applied. On ErrNoAck the
// bus is released and buf is only partially filled.
func (e *Engine) TryRead(addr uint16, buf []byte) error {
	return e.call(Read, addr, buf, e.polls)
}

// WriteVP implements dgus.Memory. It is TryWrite.
func (e *Engine) WriteVP(addr uint16, buf []byte) error {
	return e.TryWrite(addr, buf)
}

// ReadVP implements dgus.Memory. It is TryRead.
func (e *Engine) ReadVP(addr uint16, buf []byte) error {
	return e.TryRead(addr, buf)
}

func (e *Engine) call(dir Direction, addr uint16, buf []byte, polls int) error {
	tok := core.Mask()
	defer tok.Restore()

	evt := uint8(core.EvtVPWrite)
	if dir == Read {
		evt = core.EvtVPRead
	}
	core.RecordEvent(evt, 0, core.Millis(), uint32(addr), uint32(len(buf)))
	return e.transfer(dir, addr, buf, polls)
}

// transfer runs head, bulk and tail phases. Must be called masked.
func (e *Engine) transfer(dir Direction, addr uint16, buf []byte, polls int) error {
	head, full, tail := Phases(addr, len(buf))
	if head+full+tail == 0 {
		return nil
	}
	defer e.regs.Release()

	slot := uint32(addr) >> 1
	e.regs.SetTarget(slot)
	e.regs.SetAutoIncrement(true)

	var err error
	if head > 0 {
		// The odd word lives in the low half of the slot. Hold the address
		// for this partial access and step to the next slot by hand.
		e.regs.SetAutoIncrement(false)
		if buf, err = e.cycle(dir, headLanes[:head], buf, slot, polls); err != nil {
			return err
		}
		slot++
		e.regs.SetTarget(slot)
		e.regs.SetAutoIncrement(true)
	}

	for i := 0; i < full; i++ {
		if buf, err = e.cycle(dir, fullLanes[:], buf, slot, polls); err != nil {
			return err
		}
		slot++
	}

	if tail > 0 {
		// Leftover bytes start at the even word of the next slot.
		if _, err = e.cycle(dir, tailLanes[:tail], buf, slot, polls); err != nil {
			return err
		}
	}
	return nil
}

// cycle performs one handshake moving len(lanes) bytes between buf and the
// lanes, and returns the unconsumed part of buf. Reads always fetch all
// four lanes because the hardware has no masked read.
func (e *Engine) cycle(dir Direction, lanes []Lane, buf []byte, slot uint32, polls int) ([]byte, error) {
	mask := AllLanes
	if dir == Write {
		mask = 0
		for i, lane := range lanes {
			e.regs.LoadLane(lane, buf[i])
			mask |= lane.Bit()
		}
	}

	if !e.execute(dir, mask, polls) {
		return buf, ErrNoAck
	}
	core.RecordEvent(core.EvtTransaction, modeFor(dir, mask), core.Millis(), slot, uint32(len(lanes)))

	if dir == Read {
		for i, lane := range lanes {
			buf[i] = e.regs.ReadLane(lane)
		}
	}
	return buf[len(lanes):], nil
}

func (e *Engine) execute(dir Direction, mask uint8, polls int) bool {
	if polls > 0 {
		if b, ok := e.regs.(BoundedRegisters); ok {
			return b.ExecuteWithin(dir, mask, polls)
		}
	}
	e.regs.Execute(dir, mask)
	return true
}
