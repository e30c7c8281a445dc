package vp

import "sync"

// Transaction is one completed handshake as seen by the simulated device.
type Transaction struct {
	Slot  uint32
	Dir   Direction
	Mask  uint8
	Lanes [4]uint8 // lane values after the transaction, index = Lane
}

// Sim is an in-memory handshake device. It backs host builds of the
// firmware and the tests. Slot memory may be poked concurrently, as the
// display's GUI core would; the registers themselves belong to the engine.
type Sim struct {
	mu   sync.Mutex
	mem  map[uint32]uint32
	log  []Transaction
	keep bool

	target  uint32
	autoInc bool
	lanes   [4]uint8
	mode    uint8
	busy    int

	// Latency is the number of status polls before a transaction completes.
	Latency int

	// Stuck makes the device never acknowledge.
	Stuck bool

	// OnExecute runs after every completed transaction, still inside the
	// engine's masked window.
	OnExecute func(Transaction)

	releases int
	polls    int
}

// NewSim returns a simulated device with zeroed memory that records every
// transaction.
func NewSim() *Sim {
	return &Sim{
		mem:  make(map[uint32]uint32),
		keep: true,
	}
}

// SetLogging turns the transaction log on or off. Long-running simulations
// switch it off.
func (s *Sim) SetLogging(on bool) {
	s.mu.Lock()
	s.keep = on
	s.log = nil
	s.mu.Unlock()
}

// SetTarget implements Registers.
func (s *Sim) SetTarget(slot uint32) {
	s.target = slot & MaxSlot
}

// SetAutoIncrement implements Registers.
func (s *Sim) SetAutoIncrement(enabled bool) {
	s.autoInc = enabled
}

// LoadLane implements Registers.
func (s *Sim) LoadLane(lane Lane, value uint8) {
	s.lanes[lane&3] = value
}

// ReadLane implements Registers.
func (s *Sim) ReadLane(lane Lane) uint8 {
	return s.lanes[lane&3]
}

// Execute implements Registers.
func (s *Sim) Execute(dir Direction, mask uint8) {
	s.start(dir, mask)
	for s.pollBusy() {
	}
	s.complete()
}

// ExecuteWithin implements BoundedRegisters.
func (s *Sim) ExecuteWithin(dir Direction, mask uint8, polls int) bool {
	s.start(dir, mask)
	for i := 0; i < polls; i++ {
		if !s.pollBusy() {
			s.complete()
			return true
		}
	}
	return false
}

// Release implements Registers.
func (s *Sim) Release() {
	s.mode = 0
	s.busy = 0
	s.releases++
}

func (s *Sim) start(dir Direction, mask uint8) {
	s.mode = modeFor(dir, mask) | ModeAck | ModeStart
	s.busy = s.Latency
}

// pollBusy reads the start bit once.
func (s *Sim) pollBusy() bool {
	s.polls++
	if s.Stuck {
		return true
	}
	if s.busy > 0 {
		s.busy--
		return true
	}
	return false
}

func (s *Sim) complete() {
	mask := s.mode & ModeLaneMask
	read := s.mode&ModeRead != 0

	s.mu.Lock()
	word := s.mem[s.target]
	if read {
		// no masked reads: every lane is latched
		for l := Lane0; l <= Lane3; l++ {
			s.lanes[l] = uint8(word >> (8 * l))
		}
	} else {
		for l := Lane0; l <= Lane3; l++ {
			if mask&l.Bit() != 0 {
				word &^= 0xFF << (8 * l)
				word |= uint32(s.lanes[l]) << (8 * l)
			}
		}
		s.mem[s.target] = word
	}

	tx := Transaction{Slot: s.target, Dir: Write, Mask: mask, Lanes: s.lanes}
	if read {
		tx.Dir = Read
	}
	if s.keep {
		s.log = append(s.log, tx)
	}
	s.mu.Unlock()

	s.mode &^= ModeStart
	if s.autoInc {
		s.target = (s.target + 1) & MaxSlot
	}
	if s.OnExecute != nil {
		s.OnExecute(tx)
	}
}

// Transactions returns the recorded transactions.
func (s *Sim) Transactions() []Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Transaction, len(s.log))
	copy(out, s.log)
	return out
}

// ClearLog drops the recorded transactions and counters.
func (s *Sim) ClearLog() {
	s.mu.Lock()
	s.log = nil
	s.mu.Unlock()
	s.releases = 0
	s.polls = 0
}

// Releases returns how many times the bus was released.
func (s *Sim) Releases() int {
	return s.releases
}

// Polls returns how many status polls were made.
func (s *Sim) Polls() int {
	return s.polls
}

// Target returns the current slot address register.
func (s *Sim) Target() uint32 {
	return s.target
}

// Mode returns the mode register.
func (s *Sim) Mode() uint8 {
	return s.mode
}

// PeekSlot returns a slot's 32-bit value, lane 3 in the top byte.
func (s *Sim) PeekSlot(slot uint32) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mem[slot&MaxSlot]
}

// PokeSlot stores a slot's 32-bit value without a transaction.
func (s *Sim) PokeSlot(slot, value uint32) {
	s.mu.Lock()
	s.mem[slot&MaxSlot] = value
	s.mu.Unlock()
}

// PeekWord returns the 16-bit VP word at addr.
func (s *Sim) PeekWord(addr uint16) uint16 {
	word := s.PeekSlot(uint32(addr) >> 1)
	if addr&1 == 0 {
		return uint16(word >> 16)
	}
	return uint16(word)
}

// PokeWord stores the 16-bit VP word at addr, the way the GUI core updates
// a variable behind the firmware's back.
func (s *Sim) PokeWord(addr uint16, value uint16) {
	slot := uint32(addr) >> 1
	s.mu.Lock()
	word := s.mem[slot]
	if addr&1 == 0 {
		word = word&0x0000FFFF | uint32(value)<<16
	} else {
		word = word&0xFFFF0000 | uint32(value)
	}
	s.mem[slot] = word
	s.mu.Unlock()
}
