package protocol

// Decoder splits a byte stream into frames. It drops bytes until it sees
// a header, and skips one byte past a frame whose length or CRC is bad so
// that a header inside the garbage is still found.
type Decoder struct {
	// CRC enables the two byte trailer. Both ends must agree.
	CRC bool

	errors uint32
}

// Errors returns how many malformed frames were dropped.
func (d *Decoder) Errors() uint32 {
	return d.errors
}

// Feed decodes every complete frame in input and pops the bytes it has
// consumed. An incomplete frame stays in input for the next call. The
// returned error is the last framing error seen, if any; frames decoded
// around it are still returned.
func (d *Decoder) Feed(input InputBuffer) ([]Frame, error) {
	data := input.Data()
	var frames []Frame
	var lastErr error

	trailer := 0
	if d.CRC {
		trailer = TrailerSize
	}

	for len(data) > 0 {
		// Look for the header
		if data[0] != Header1 {
			data = data[1:]
			continue
		}
		if len(data) < 2 {
			break
		}
		if data[1] != Header2 {
			data = data[1:]
			continue
		}
		if len(data) < HeaderSize {
			break
		}

		n := int(data[2])
		if n < 1+trailer {
			d.errors++
			lastErr = ErrShortFrame
			data = data[1:]
			continue
		}

		// Wait for full message
		if len(data) < HeaderSize+n {
			break
		}

		body := data[HeaderSize : HeaderSize+n]
		if d.CRC {
			got := uint16(body[n-2]) | uint16(body[n-1])<<8
			if CRC16(body[:n-2]) != got {
				d.errors++
				lastErr = ErrBadCRC
				data = data[1:]
				continue
			}
			body = body[:n-2]
		}
		data = data[HeaderSize+n:]

		f, err := parseFrame(body)
		if err != nil {
			d.errors++
			lastErr = err
			continue
		}
		frames = append(frames, f)
	}

	// Remove consumed bytes from input
	consumed := input.Available() - len(data)
	if consumed > 0 {
		input.Pop(consumed)
	}
	return frames, lastErr
}

// parseFrame decodes command and payload. Data is copied out of body.
func parseFrame(body []byte) (Frame, error) {
	f := Frame{Cmd: body[0]}
	p := body[1:]

	switch f.Cmd {
	case CmdWriteVP:
		if len(p) == len(ackPayload) && p[0] == ackPayload[0] && p[1] == ackPayload[1] {
			f.Ack = true
			return f, nil
		}
		if len(p) < 3 {
			return f, ErrShortFrame
		}
		f.Addr = uint16(p[0])<<8 | uint16(p[1])
		f.Data = append([]byte(nil), p[2:]...)

	case CmdReadVP:
		if len(p) < 3 {
			return f, ErrShortFrame
		}
		f.Addr = uint16(p[0])<<8 | uint16(p[1])
		f.Words = p[2]
		rest := p[3:]
		if len(rest) == 0 {
			if f.Words == 0 {
				return f, ErrShortFrame
			}
			return f, nil
		}
		if len(rest) != 2*int(f.Words) {
			return f, ErrShortFrame
		}
		f.Data = append([]byte(nil), rest...)

	default:
		f.Data = append([]byte(nil), p...)
	}
	return f, nil
}
