package serial

import (
	"io"
	"sync"

	"dgusos/protocol"
)

// SimPort is an in-memory display on the other end of a serial line. Bytes
// written to it are decoded and answered by a protocol.Server over mem;
// replies are returned by Read.
type SimPort struct {
	mu     sync.Mutex
	srv    *protocol.Server
	in     *protocol.FifoBuffer
	out    *protocol.ScratchOutput
	reply  []byte
	closed bool

	// Drop, when set, is called with every complete reply; returning true
	// loses it on the wire.
	Drop func(reply []byte) bool

	// Corrupt, when set, may alter a reply before it is sent.
	Corrupt func(reply []byte)
}

// NewSimPort returns a port talking to a display backed by mem.
func NewSimPort(mem protocol.Memory, crc bool) *SimPort {
	p := &SimPort{
		in:  protocol.NewFifoBuffer(protocol.MessageMax),
		out: protocol.NewScratchOutput(),
	}
	p.srv = protocol.NewServer(mem, p.out, crc)
	return p
}

// Write feeds request bytes to the display.
func (p *SimPort) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return 0, io.ErrClosedPipe
	}

	n := p.in.Write(b)
	_ = p.srv.Receive(p.in)

	if res := p.out.Result(); len(res) > 0 {
		reply := append([]byte(nil), res...)
		p.out.Reset()
		if p.Corrupt != nil {
			p.Corrupt(reply)
		}
		if p.Drop == nil || !p.Drop(reply) {
			p.reply = append(p.reply, reply...)
		}
	}
	return n, nil
}

// Read returns pending reply bytes. With nothing pending it returns 0 and
// no error, like a port whose read timeout expired.
func (p *SimPort) Read(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return 0, io.EOF
	}
	n := copy(b, p.reply)
	p.reply = p.reply[n:]
	return n, nil
}

// Flush drops pending replies.
func (p *SimPort) Flush() error {
	p.mu.Lock()
	p.reply = nil
	p.mu.Unlock()
	return nil
}

// Close closes the port.
func (p *SimPort) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	return nil
}

// Stats returns how many requests the display answered and refused.
func (p *SimPort) Stats() (handled, failed uint32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.srv.Stats()
}
