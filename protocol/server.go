package protocol

// Memory is the VP store a Server answers from.
type Memory interface {
	WriteVP(addr uint16, buf []byte) error
	ReadVP(addr uint16, buf []byte) error
}

// Server answers VP requests the way the display's GUI core does on its
// configuration UART: writes are stored and acknowledged with "OK", reads
// are answered with the requested words. Requests the memory rejects get
// no answer.
type Server struct {
	mem    Memory
	output OutputBuffer
	dec    Decoder
	buf    [2 * MaxReadWords]byte

	handled uint32
	failed  uint32
}

// NewServer returns a server reading and writing mem and replying to output.
func NewServer(mem Memory, output OutputBuffer, crc bool) *Server {
	return &Server{
		mem:    mem,
		output: output,
		dec:    Decoder{CRC: crc},
	}
}

// Receive handles every complete request in input. It returns the last
// framing error.
func (s *Server) Receive(input InputBuffer) error {
	frames, err := s.dec.Feed(input)
	for _, f := range frames {
		s.handle(f)
	}
	return err
}

// Stats returns how many requests were answered and how many the memory
// rejected.
func (s *Server) Stats() (handled, failed uint32) {
	return s.handled, s.failed
}

func (s *Server) handle(f Frame) {
	switch {
	case f.IsWriteRequest():
		if err := s.mem.WriteVP(f.Addr, f.Data); err != nil {
			s.failed++
			return
		}
		EncodeWriteAck(s.output, s.dec.CRC)

	case f.IsReadRequest():
		words := int(f.Words)
		if words > MaxReadWords {
			s.failed++
			return
		}
		buf := s.buf[:2*words]
		if err := s.mem.ReadVP(f.Addr, buf); err != nil {
			s.failed++
			return
		}
		if err := EncodeReadReply(s.output, f.Addr, buf, s.dec.CRC); err != nil {
			s.failed++
			return
		}

	default:
		// replies and other commands are not ours to answer
		return
	}
	s.handled++
}
