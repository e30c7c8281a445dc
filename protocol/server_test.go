package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wordMemory is a flat VP store, two bytes per address.
type wordMemory struct {
	bytes []byte
	err   error
}

func newWordMemory() *wordMemory {
	return &wordMemory{bytes: make([]byte, 2*0x10000)}
}

func (m *wordMemory) WriteVP(addr uint16, buf []byte) error {
	if m.err != nil {
		return m.err
	}
	copy(m.bytes[2*int(addr):], buf)
	return nil
}

func (m *wordMemory) ReadVP(addr uint16, buf []byte) error {
	if m.err != nil {
		return m.err
	}
	copy(buf, m.bytes[2*int(addr):])
	return nil
}

func TestServerWriteThenRead(t *testing.T) {
	mem := newWordMemory()
	replies := NewScratchOutput()
	srv := NewServer(mem, replies, true)

	req := NewScratchOutput()
	require.NoError(t, EncodeWriteVP(req, 0x1000, []byte{0x12, 0x34, 0x56, 0x78}, true))
	require.NoError(t, EncodeReadVP(req, 0x1001, 1, true))

	require.NoError(t, srv.Receive(NewSliceInputBuffer(req.Result())))

	dec := Decoder{CRC: true}
	frames, err := dec.Feed(NewSliceInputBuffer(replies.Result()))
	require.NoError(t, err)
	require.Len(t, frames, 2)
	assert.True(t, frames[0].Ack)
	assert.Equal(t, uint16(0x1001), frames[1].Addr)
	assert.Equal(t, []byte{0x56, 0x78}, frames[1].Data)

	handled, failed := srv.Stats()
	assert.Equal(t, uint32(2), handled)
	assert.Zero(t, failed)
}

func TestServerIgnoresReplies(t *testing.T) {
	replies := NewScratchOutput()
	srv := NewServer(newWordMemory(), replies, false)

	in := NewScratchOutput()
	EncodeWriteAck(in, false)
	require.NoError(t, srv.Receive(NewSliceInputBuffer(in.Result())))
	assert.Zero(t, replies.CurPosition())
}

func TestServerSilentOnMemoryError(t *testing.T) {
	mem := newWordMemory()
	mem.err = assert.AnError
	replies := NewScratchOutput()
	srv := NewServer(mem, replies, false)

	req := NewScratchOutput()
	require.NoError(t, EncodeReadVP(req, 0x10, 2, false))
	require.NoError(t, srv.Receive(NewSliceInputBuffer(req.Result())))

	assert.Zero(t, replies.CurPosition())
	_, failed := srv.Stats()
	assert.Equal(t, uint32(1), failed)
}

func TestServerZeroWordReadFails(t *testing.T) {
	replies := NewScratchOutput()
	srv := NewServer(newWordMemory(), replies, false)

	srv.handle(Frame{Cmd: CmdReadVP, Addr: 0x10})

	assert.Zero(t, replies.CurPosition())
	handled, failed := srv.Stats()
	assert.Zero(t, handled)
	assert.Equal(t, uint32(1), failed)
}
