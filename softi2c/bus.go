// Package softi2c is a bit-banged I2C master for boards whose application
// core has no I2C block. Both lines are open drain: driving a line high
// releases it to the pull-up.
package softi2c

import "errors"

// ErrNack is returned when the addressed device or a written byte is not
// acknowledged.
var ErrNack = errors.New("i2c: no acknowledge")

// Lines drives and samples the two bus lines.
type Lines interface {
	SetSCL(high bool)
	SetSDA(high bool)
	SDA() bool
}

// Bus implements drivers.I2C over Lines.
type Bus struct {
	lines Lines
	delay func()
}

// New returns a bus on lines. delay waits half a clock period; nil runs
// the bus as fast as the lines can be toggled.
func New(lines Lines, delay func()) *Bus {
	if delay == nil {
		delay = func() {}
	}
	b := &Bus{lines: lines, delay: delay}
	lines.SetSDA(true)
	lines.SetSCL(true)
	return b
}

// Tx writes w to the device at addr, then reads len(r) bytes after a
// repeated start.
func (b *Bus) Tx(addr uint16, w, r []byte) error {
	if len(w) > 0 {
		b.start()
		if !b.writeByte(uint8(addr << 1)) {
			b.stop()
			return ErrNack
		}
		for _, c := range w {
			if !b.writeByte(c) {
				b.stop()
				return ErrNack
			}
		}
	}

	if len(r) > 0 {
		b.start()
		if !b.writeByte(uint8(addr<<1) | 1) {
			b.stop()
			return ErrNack
		}
		for i := range r {
			r[i] = b.readByte(i < len(r)-1)
		}
	}

	b.stop()
	return nil
}

// start issues a start or repeated start and leaves SCL low.
func (b *Bus) start() {
	b.lines.SetSDA(true)
	b.lines.SetSCL(true)
	b.delay()
	b.lines.SetSDA(false)
	b.delay()
	b.lines.SetSCL(false)
}

func (b *Bus) stop() {
	b.lines.SetSDA(false)
	b.delay()
	b.lines.SetSCL(true)
	b.delay()
	b.lines.SetSDA(true)
	b.delay()
}

// writeByte shifts c out MSB first and reports the device's acknowledge.
func (b *Bus) writeByte(c byte) bool {
	for bit := 7; bit >= 0; bit-- {
		b.lines.SetSDA(c&(1<<bit) != 0)
		b.delay()
		b.lines.SetSCL(true)
		b.delay()
		b.lines.SetSCL(false)
	}

	b.lines.SetSDA(true)
	b.delay()
	b.lines.SetSCL(true)
	b.delay()
	ack := !b.lines.SDA()
	b.lines.SetSCL(false)
	return ack
}

// readByte shifts a byte in and acknowledges it when more are wanted.
func (b *Bus) readByte(ack bool) byte {
	var c byte
	b.lines.SetSDA(true)
	for bit := 0; bit < 8; bit++ {
		b.delay()
		b.lines.SetSCL(true)
		b.delay()
		c <<= 1
		if b.lines.SDA() {
			c |= 1
		}
		b.lines.SetSCL(false)
	}

	b.lines.SetSDA(!ack)
	b.delay()
	b.lines.SetSCL(true)
	b.delay()
	b.lines.SetSCL(false)
	b.lines.SetSDA(true)
	return c
}
