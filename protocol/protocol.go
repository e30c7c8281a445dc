// Package protocol implements the DGUS serial protocol spoken by DWIN
// displays on their configuration UART: framed 0x82 VP writes and 0x83 VP
// reads with an optional CRC-16/MODBUS trailer.
package protocol

import "errors"

// Frame layout: 5A A5 LEN CMD payload [CRC lo, CRC hi]. LEN counts every
// byte after itself.
const (
	Header1 = 0x5A
	Header2 = 0xA5

	HeaderSize  = 3 // 5A A5 LEN
	TrailerSize = 2 // CRC, when enabled

	// MessageMax is the scratch output size; it holds a few frames.
	MessageMax = 512
)

// Commands.
const (
	CmdWriteVP = 0x82
	CmdReadVP  = 0x83
)

// Payload limits, in line with what the display firmware accepts.
const (
	MaxWriteBytes = 0xF8
	MaxReadWords  = 0x7C
)

// Write acknowledgement payload, "OK".
var ackPayload = [2]byte{0x4F, 0x4B}

var (
	// ErrBadCRC marks a frame whose trailer does not match its contents.
	ErrBadCRC = errors.New("protocol: bad crc")

	// ErrShortFrame marks a frame too short for its command.
	ErrShortFrame = errors.New("protocol: short frame")

	// ErrLength is returned by the encoders for a payload that does not
	// fit one frame.
	ErrLength = errors.New("protocol: invalid length")
)

// Frame is one decoded message. For CmdReadVP, Data is nil in a request
// and holds Words*2 bytes in a reply.
type Frame struct {
	Cmd   byte
	Addr  uint16
	Words uint8
	Data  []byte
	Ack   bool
}

// IsReadRequest reports whether f asks for VP data.
func (f Frame) IsReadRequest() bool {
	return f.Cmd == CmdReadVP && f.Data == nil
}

// IsWriteRequest reports whether f carries VP data to store.
func (f Frame) IsWriteRequest() bool {
	return f.Cmd == CmdWriteVP && !f.Ack
}
