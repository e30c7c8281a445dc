// Package vp drives the display controller's Variable Pointer memory
// through the four-lane handshake register interface.
//
// A VP address is a 16-bit word index. Two consecutive words share one
// 32-bit storage slot (slot = address >> 1): the even word sits in lanes
// 3-2 and the odd word in lanes 1-0, most significant byte first.
package vp

// Lane selects one of the four 8-bit data registers of a slot.
// Lane 3 is the MSB of the even word, lane 0 the LSB of the odd word.
type Lane uint8

const (
	Lane0 Lane = iota
	Lane1
	Lane2
	Lane3
)

// Bit returns the lane's bit in a lane-enable mask.
func (l Lane) Bit() uint8 {
	return 1 << l
}

// Direction of a handshake transaction.
type Direction uint8

const (
	Write Direction = iota
	Read
)

func (d Direction) String() string {
	if d == Read {
		return "read"
	}
	return "write"
}

// Mode/control register bits (RAMMODE on the T5L).
const (
	ModeRequest  = 0x80 // claim the bus for the transaction
	ModeStart    = 0x40 // start; hardware clears it on completion
	ModeRead     = 0x20 // 1 = read, 0 = write
	ModeAck      = 0x10 // bus granted
	ModeLaneMask = 0x0F // lane enables, bit n = lane n

	AllLanes uint8 = 0x0F
)

// MaxSlot is the largest slot address the 24-bit target register holds.
const MaxSlot = 0xFFFFFF

// Registers is the handshake register interface. It models the hardware
// one to one; only the Engine may use it.
type Registers interface {
	// SetTarget writes the three 8-bit fields of the 24-bit slot address.
	SetTarget(slot uint32)

	// SetAutoIncrement makes the hardware advance the slot address by one
	// after each completed transaction.
	SetAutoIncrement(enabled bool)

	// LoadLane stages one byte for a write.
	LoadLane(lane Lane, value uint8)

	// ReadLane returns a byte latched by the last read.
	ReadLane(lane Lane) uint8

	// Execute writes request, direction and lane mask to the mode register,
	// starts the transaction and spins until the hardware reports
	// completion. There is no timeout.
	Execute(dir Direction, mask uint8)

	// Release clears the mode register and gives the bus back.
	Release()
}

// BoundedRegisters is implemented by register sets that can give up on a
// transaction after a number of completion polls.
type BoundedRegisters interface {
	Registers

	// ExecuteWithin behaves like Execute but returns false if the hardware
	// has not completed after polls status reads.
	ExecuteWithin(dir Direction, mask uint8, polls int) bool
}

// modeFor builds the mode register value for a transaction.
func modeFor(dir Direction, mask uint8) uint8 {
	mode := uint8(ModeRequest) | mask&ModeLaneMask
	if dir == Read {
		mode |= ModeRead
	}
	return mode
}
