package vp

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dgusos/core"
)

func newTestEngine(t *testing.T) (*Engine, *Sim) {
	t.Helper()
	core.ResetInterrupts()
	sim := NewSim()
	return New(sim), sim
}

func pattern(n int, seed byte) []byte {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = seed + byte(i)*17
	}
	return buf
}

func TestWriteReadRoundTrip(t *testing.T) {
	lengths := []int{0, 1, 2, 3, 4, 5, 7, 8, 9}
	addrs := []uint16{0x1000, 0x1001, 0x0092, 0x0093}

	for _, addr := range addrs {
		for _, n := range lengths {
			t.Run(fmt.Sprintf("addr=%#04x/len=%d", addr, n), func(t *testing.T) {
				e, _ := newTestEngine(t)
				in := pattern(n, byte(addr))
				e.Write(addr, in)

				out := make([]byte, n)
				e.Read(addr, out)
				assert.Equal(t, in, out)
			})
		}
	}
}

func TestTransactionCountMatchesPhases(t *testing.T) {
	for _, addr := range []uint16{0x20, 0x21} {
		for n := 0; n <= 13; n++ {
			e, sim := newTestEngine(t)
			e.Write(addr, pattern(n, 1))
			assert.Len(t, sim.Transactions(), Transactions(addr, n), "addr=%#x n=%d", addr, n)
		}
	}
}

func TestPhases(t *testing.T) {
	testCases := []struct {
		addr             uint16
		n                int
		head, full, tail int
	}{
		{0x10, 0, 0, 0, 0},
		{0x11, 0, 0, 0, 0},
		{0x10, 3, 0, 0, 3},
		{0x10, 8, 0, 2, 0},
		{0x11, 1, 1, 0, 0},
		{0x11, 2, 2, 0, 0},
		{0x11, 9, 2, 1, 3},
		{0x11, 6, 2, 1, 0},
	}
	for _, tc := range testCases {
		head, full, tail := Phases(tc.addr, tc.n)
		assert.Equal(t, [3]int{tc.head, tc.full, tc.tail}, [3]int{head, full, tail},
			"Phases(%#x, %d)", tc.addr, tc.n)
	}
}

func TestZeroLengthIssuesNothing(t *testing.T) {
	e, sim := newTestEngine(t)

	e.Write(0x1001, nil)
	e.Read(0x1000, []byte{})

	assert.Empty(t, sim.Transactions())
	assert.Zero(t, sim.Releases())
	assert.True(t, core.InterruptsEnabled())

	stats := core.InterruptStats()
	assert.Equal(t, uint32(2), stats.Masks)
	assert.Equal(t, uint32(2), stats.Restores)
}

func TestZeroLengthInsideMaskedScopeStaysMasked(t *testing.T) {
	e, _ := newTestEngine(t)

	tok := core.Mask()
	e.Write(0x1000, nil)
	assert.False(t, core.InterruptsEnabled())
	tok.Restore()
	assert.True(t, core.InterruptsEnabled())
}

func TestMaskingIsOnePairPerCall(t *testing.T) {
	for _, n := range []int{0, 1, 4, 9, 32} {
		e, _ := newTestEngine(t)
		buf := pattern(n, 3)

		e.Write(0x2001, buf)
		stats := core.InterruptStats()
		assert.Equal(t, core.InterruptCounts{Masks: 1, Restores: 1}, stats, "write len=%d", n)

		core.ResetInterruptStats()
		e.Read(0x2001, buf)
		stats = core.InterruptStats()
		assert.Equal(t, core.InterruptCounts{Masks: 1, Restores: 1}, stats, "read len=%d", n)
	}
}

func TestInterruptsMaskedDuringEveryTransaction(t *testing.T) {
	e, sim := newTestEngine(t)

	sim.OnExecute = func(Transaction) {
		assert.False(t, core.InterruptsEnabled(), "transaction ran with interrupts enabled")
	}
	e.Write(0x3001, pattern(11, 9))
	e.Read(0x3001, make([]byte, 11))
	assert.True(t, core.InterruptsEnabled())
}

func TestOddWriteSingleByteUsesLaneOne(t *testing.T) {
	e, sim := newTestEngine(t)
	sim.PokeSlot(0x0800, 0xAABBCCDD)

	e.Write(0x1001, []byte{0x5A})

	txs := sim.Transactions()
	require.Len(t, txs, 1)
	assert.Equal(t, Write, txs[0].Dir)
	assert.Equal(t, Lane1.Bit(), txs[0].Mask)
	assert.Equal(t, uint32(0x0800), txs[0].Slot)

	// lanes 3, 2 and 0 keep their previous contents
	assert.Equal(t, uint32(0xAABB5ADD), sim.PeekSlot(0x0800))
}

func TestOddWriteNineBytes(t *testing.T) {
	e, sim := newTestEngine(t)
	buf := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9}

	e.Write(0x1001, buf)

	txs := sim.Transactions()
	require.Len(t, txs, 3)

	assert.Equal(t, uint32(0x800), txs[0].Slot)
	assert.Equal(t, uint8(0x03), txs[0].Mask)

	assert.Equal(t, uint32(0x801), txs[1].Slot)
	assert.Equal(t, AllLanes, txs[1].Mask)

	assert.Equal(t, uint32(0x802), txs[2].Slot)
	assert.Equal(t, uint8(0x0E), txs[2].Mask)

	assert.Equal(t, uint32(0x00000102), sim.PeekSlot(0x800))
	assert.Equal(t, uint32(0x03040506), sim.PeekSlot(0x801))
	assert.Equal(t, uint32(0x07080900), sim.PeekSlot(0x802))
}

func TestTailLeavesUnusedLanesAlone(t *testing.T) {
	e, sim := newTestEngine(t)
	sim.PokeSlot(0x10, 0x11223344)

	e.Write(0x0020, []byte{0xA0, 0xB0})

	assert.Equal(t, uint32(0xA0B03344), sim.PeekSlot(0x10))
	txs := sim.Transactions()
	require.Len(t, txs, 1)
	assert.Equal(t, uint8(0x0C), txs[0].Mask)
}

func TestReadAlwaysFetchesAllLanes(t *testing.T) {
	e, sim := newTestEngine(t)
	sim.PokeSlot(0x10, 0x11223344)
	sim.PokeSlot(0x11, 0x55667788)

	out := make([]byte, 3)
	e.Read(0x0021, out)

	assert.Equal(t, []byte{0x33, 0x44, 0x55}, out)
	for _, tx := range sim.Transactions() {
		assert.Equal(t, Read, tx.Dir)
		assert.Equal(t, AllLanes, tx.Mask)
	}
}

func TestReadStaysInsideCallerBuffer(t *testing.T) {
	e, sim := newTestEngine(t)
	sim.PokeSlot(0x10, 0xFFFFFFFF)
	sim.PokeSlot(0x11, 0xFFFFFFFF)

	backing := make([]byte, 8)
	e.Read(0x0020, backing[:5])
	assert.Equal(t, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0, 0, 0}, backing)
}

func TestEveryCallResetsTheAddress(t *testing.T) {
	e, sim := newTestEngine(t)

	e.Write(0x4000, pattern(8, 1))
	e.Write(0x0092, []byte{0x12, 0x34})

	txs := sim.Transactions()
	require.Len(t, txs, 3)
	assert.Equal(t, uint32(0x49), txs[2].Slot)
}

func TestWriteWordScenario(t *testing.T) {
	e, sim := newTestEngine(t)

	e.Write(0x0092, []byte{0x12, 0x34})

	txs := sim.Transactions()
	require.Len(t, txs, 1)
	assert.Equal(t, uint8(0x0C), txs[0].Mask)
	assert.Equal(t, uint8(0x12), txs[0].Lanes[Lane3])
	assert.Equal(t, uint8(0x34), txs[0].Lanes[Lane2])
	assert.Equal(t, uint16(0x1234), sim.PeekWord(0x0092))

	out := make([]byte, 2)
	e.Read(0x0092, out)
	assert.Equal(t, []byte{0x12, 0x34}, out)
}

func TestBusReleasedAfterTransfer(t *testing.T) {
	e, sim := newTestEngine(t)

	e.Write(0x0100, pattern(6, 2))
	assert.Equal(t, 1, sim.Releases())
	assert.Zero(t, sim.Mode())
}

func TestInterruptDuringWriteIsDeferred(t *testing.T) {
	e, sim := newTestEngine(t)

	ticks := 0
	core.RegisterISR(core.IRQTick, func() { ticks++ })

	observed := make([]int, 0)
	sim.OnExecute = func(Transaction) {
		// the tick timer keeps firing in hardware while we are masked
		core.Raise(core.IRQTick)
		observed = append(observed, ticks)
	}

	before := ticks
	e.Write(0x5000, pattern(12, 4))

	for _, v := range observed {
		assert.Equal(t, before, v, "tick handler ran in the middle of the transfer")
	}
	assert.Equal(t, before+1, ticks, "latched tick should be serviced exactly once")
}

func TestLatencyIsWaitedOut(t *testing.T) {
	e, sim := newTestEngine(t)
	sim.Latency = 5

	e.Write(0x0100, pattern(4, 1))
	assert.Equal(t, 6, sim.Polls())
}

func TestTryWriteGivesUpOnStuckDevice(t *testing.T) {
	core.ResetInterrupts()
	sim := NewSim()
	sim.Stuck = true
	e := New(sim, WithPollLimit(100))

	err := e.TryWrite(0x0100, pattern(8, 1))
	require.ErrorIs(t, err, ErrNoAck)
	assert.Equal(t, 100, sim.Polls())
	assert.Equal(t, 1, sim.Releases())
	assert.True(t, core.InterruptsEnabled())

	err = e.TryRead(0x0100, make([]byte, 2))
	assert.ErrorIs(t, err, ErrNoAck)
}

func TestTryWriteWithoutLimitBehavesLikeWrite(t *testing.T) {
	e, sim := newTestEngine(t)

	require.NoError(t, e.TryWrite(0x0101, []byte{1, 2, 3}))
	out := make([]byte, 3)
	require.NoError(t, e.TryRead(0x0101, out))
	assert.Equal(t, []byte{1, 2, 3}, out)
	assert.Len(t, sim.Transactions(), 4)
}

func TestTransferRunsPastLastVPWord(t *testing.T) {
	e, sim := newTestEngine(t)

	e.Write(0xFFFE, pattern(8, 1))
	txs := sim.Transactions()
	require.Len(t, txs, 2)
	assert.Equal(t, uint32(0x7FFF), txs[0].Slot)
	assert.Equal(t, uint32(0x8000), txs[1].Slot)
}

func TestMemoryInterfaceUsesPollLimit(t *testing.T) {
	core.ResetInterrupts()
	sim := NewSim()
	sim.Stuck = true
	e := New(sim, WithPollLimit(10))

	assert.ErrorIs(t, e.WriteVP(0x10, []byte{1, 2}), ErrNoAck)
	assert.ErrorIs(t, e.ReadVP(0x10, make([]byte, 2)), ErrNoAck)

	sim.Stuck = false
	assert.NoError(t, e.WriteVP(0x10, []byte{1, 2}))
}

func TestCallsAreRecordedInEventRing(t *testing.T) {
	e, _ := newTestEngine(t)
	core.ClearEventRing()

	e.Write(0x0101, []byte{1, 2, 3})

	events := core.Events()
	require.Len(t, events, 3)
	assert.Equal(t, uint8(core.EvtVPWrite), events[0].Type)
	assert.Equal(t, uint32(0x0101), events[0].Value1)
	assert.Equal(t, uint32(3), events[0].Value2)

	assert.Equal(t, uint8(core.EvtTransaction), events[1].Type)
	assert.Equal(t, uint32(0x80), events[1].Value1)
	assert.Equal(t, uint8(0x83), events[1].Arg)

	assert.Equal(t, uint32(0x81), events[2].Value1)
	assert.Equal(t, uint8(0x88), events[2].Arg)
}
