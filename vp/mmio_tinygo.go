//go:build tinygo

package vp

import (
	"runtime/volatile"
	"unsafe"
)

// HandshakeBase is the address of ADR_H in the T5L special function
// register space. The block below mirrors the SFR layout from there.
const HandshakeBase uintptr = 0xF1

// handshakeBlock is the register layout starting at ADR_H (0xF1).
type handshakeBlock struct {
	ADR_H   volatile.Register8 // 0xF1
	ADR_M   volatile.Register8 // 0xF2
	ADR_L   volatile.Register8 // 0xF3
	ADR_INC volatile.Register8 // 0xF4
	_       [3]byte
	RAMMODE volatile.Register8 // 0xF8
	_       byte
	DATA    [4]volatile.Register8 // 0xFA..0xFD: DATA3, DATA2, DATA1, DATA0
}

// MMIO drives memory-mapped handshake registers.
type MMIO struct {
	regs *handshakeBlock
}

// NewMMIO maps the handshake register block at base.
func NewMMIO(base uintptr) *MMIO {
	return &MMIO{regs: (*handshakeBlock)(unsafe.Pointer(base))}
}

func (m *MMIO) data(lane Lane) *volatile.Register8 {
	return &m.regs.DATA[3-lane&3]
}

// SetTarget implements Registers.
func (m *MMIO) SetTarget(slot uint32) {
	m.regs.ADR_H.Set(uint8(slot >> 16))
	m.regs.ADR_M.Set(uint8(slot >> 8))
	m.regs.ADR_L.Set(uint8(slot))
}

// SetAutoIncrement implements Registers.
func (m *MMIO) SetAutoIncrement(enabled bool) {
	if enabled {
		m.regs.ADR_INC.Set(1)
	} else {
		m.regs.ADR_INC.Set(0)
	}
}

// LoadLane implements Registers.
func (m *MMIO) LoadLane(lane Lane, value uint8) {
	m.data(lane).Set(value)
}

// ReadLane implements Registers.
func (m *MMIO) ReadLane(lane Lane) uint8 {
	return m.data(lane).Get()
}

// Execute implements Registers.
func (m *MMIO) Execute(dir Direction, mask uint8) {
	m.regs.RAMMODE.Set(modeFor(dir, mask))
	m.regs.RAMMODE.SetBits(ModeStart)
	for m.regs.RAMMODE.HasBits(ModeStart) {
	}
}

// ExecuteWithin implements BoundedRegisters.
func (m *MMIO) ExecuteWithin(dir Direction, mask uint8, polls int) bool {
	m.regs.RAMMODE.Set(modeFor(dir, mask))
	m.regs.RAMMODE.SetBits(ModeStart)
	for i := 0; i < polls; i++ {
		if !m.regs.RAMMODE.HasBits(ModeStart) {
			return true
		}
	}
	return false
}

// Release implements Registers.
func (m *MMIO) Release() {
	m.regs.RAMMODE.Set(0)
}
