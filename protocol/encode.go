package protocol

// encodeFrame writes header, command and body, then patches LEN and
// appends the CRC.
func encodeFrame(out OutputBuffer, cmd byte, crc bool, body func(out OutputBuffer)) {
	cursor := out.CurPosition()
	out.Output([]byte{Header1, Header2, 0, cmd})
	body(out)

	if crc {
		sum := CRC16(out.DataSince(cursor + HeaderSize))
		out.Output([]byte{byte(sum), byte(sum >> 8)})
	}
	out.Update(cursor+2, uint8(len(out.DataSince(cursor+HeaderSize))))
}

func putAddr(out OutputBuffer, addr uint16) {
	out.Output([]byte{byte(addr >> 8), byte(addr)})
}

// EncodeWriteVP encodes a request storing data at VP address addr.
func EncodeWriteVP(out OutputBuffer, addr uint16, data []byte, crc bool) error {
	if len(data) == 0 || len(data) > MaxWriteBytes {
		return ErrLength
	}
	encodeFrame(out, CmdWriteVP, crc, func(out OutputBuffer) {
		putAddr(out, addr)
		out.Output(data)
	})
	return nil
}

// EncodeReadVP encodes a request for words VP words starting at addr.
func EncodeReadVP(out OutputBuffer, addr uint16, words int, crc bool) error {
	if words < 1 || words > MaxReadWords {
		return ErrLength
	}
	encodeFrame(out, CmdReadVP, crc, func(out OutputBuffer) {
		putAddr(out, addr)
		out.Output([]byte{uint8(words)})
	})
	return nil
}

// EncodeWriteAck encodes the display's answer to a write.
func EncodeWriteAck(out OutputBuffer, crc bool) {
	encodeFrame(out, CmdWriteVP, crc, func(out OutputBuffer) {
		out.Output(ackPayload[:])
	})
}

// EncodeReadReply encodes the display's answer to a read; data holds
// whole words.
func EncodeReadReply(out OutputBuffer, addr uint16, data []byte, crc bool) error {
	if len(data) == 0 || len(data)%2 != 0 || len(data)/2 > MaxReadWords {
		return ErrLength
	}
	encodeFrame(out, CmdReadVP, crc, func(out OutputBuffer) {
		putAddr(out, addr)
		out.Output([]byte{uint8(len(data) / 2)})
		out.Output(data)
	})
	return nil
}
