package dgus

import (
	"errors"

	"dgusos/rtc"
)

var (
	// ErrInvalidChannel is returned for a PWM or ADC channel the display
	// does not have.
	ErrInvalidChannel = errors.New("dgus: invalid channel")

	// ErrInvalidValue is returned when an argument is outside the range the
	// display accepts.
	ErrInvalidValue = errors.New("dgus: invalid value")
)

// Memory is byte-addressed access to VP memory. addr is a word address;
// odd addresses start at the low word of a slot.
type Memory interface {
	WriteVP(addr uint16, buf []byte) error
	ReadVP(addr uint16, buf []byte) error
}

// Device drives the display's system variables. It keeps a small scratch
// buffer and is not safe for concurrent use.
type Device struct {
	mem     Memory
	scratch [12]byte
}

// NewDevice returns a device backed by mem.
func NewDevice(mem Memory) *Device {
	return &Device{mem: mem}
}

// Memory returns the underlying VP memory.
func (d *Device) Memory() Memory {
	return d.mem
}

// WriteWord stores a big-endian word at addr.
func (d *Device) WriteWord(addr, value uint16) error {
	buf := d.scratch[:2]
	buf[0] = byte(value >> 8)
	buf[1] = byte(value)
	return d.mem.WriteVP(addr, buf)
}

// ReadWord loads the big-endian word at addr.
func (d *Device) ReadWord(addr uint16) (uint16, error) {
	buf := d.scratch[:2]
	if err := d.mem.ReadVP(addr, buf); err != nil {
		return 0, err
	}
	return uint16(buf[0])<<8 | uint16(buf[1]), nil
}

// SetPWMConfig sets the clock divider and counter precision of PWM
// channel 0 or 1. The output frequency is PWMBaseClock/(div*precision).
func (d *Device) SetPWMConfig(ch int, div uint8, precision uint16) error {
	var addr uint16
	switch ch {
	case 0:
		addr = PWM0Set
	case 1:
		addr = PWM1Set
	default:
		return ErrInvalidChannel
	}
	buf := d.scratch[:4]
	buf[0] = cmdEnable
	buf[1] = div
	buf[2] = byte(precision >> 8)
	buf[3] = byte(precision)
	return d.mem.WriteVP(addr, buf)
}

// SetPWMDuty sets the high time of PWM channel 0 or 1 in counter ticks.
func (d *Device) SetPWMDuty(ch int, duty uint16) error {
	switch ch {
	case 0:
		return d.WriteWord(PWM0Out, duty)
	case 1:
		return d.WriteWord(PWM1Out, duty)
	}
	return ErrInvalidChannel
}

// ReadADC returns the raw instantaneous value of channel 0..7. Channel n
// is the word at ADCInstant+n.
func (d *Device) ReadADC(ch int) (uint16, error) {
	if ch < 0 || ch >= ADCChannels {
		return 0, ErrInvalidChannel
	}
	return d.ReadWord(ADCInstant + uint16(ch))
}

// ADCMillivolts converts a raw ADC reading to millivolts for a 3.3 V
// reference.
func ADCMillivolts(raw uint16) uint32 {
	return uint32(raw) * 3300 / 65535
}

// SetBrightness sets the current backlight level, 0..100.
func (d *Device) SetBrightness(percent uint8) error {
	if percent > MaxBrightness {
		return ErrInvalidValue
	}
	buf := d.scratch[:1]
	buf[0] = percent
	return d.mem.WriteVP(LEDConfig, buf)
}

// Brightness reads the backlight level currently applied.
func (d *Device) Brightness() (uint8, error) {
	w, err := d.ReadWord(LEDNow)
	return uint8(w), err
}

// SetRTC writes date and time into the display RTC.
func (d *Device) SetRTC(t rtc.Time) error {
	b := t.Bytes()
	return d.mem.WriteVP(RTC, b[:])
}

// ReadRTC reads date and time from the display RTC.
func (d *Device) ReadRTC() (rtc.Time, error) {
	var b [8]byte
	if err := d.mem.ReadVP(RTC, b[:]); err != nil {
		return rtc.Time{}, err
	}
	return rtc.FromBytes(b), nil
}

// SwitchPage shows page id.
func (d *Device) SwitchPage(id uint16) error {
	buf := d.scratch[:4]
	buf[0] = cmdEnable
	buf[1] = cmdPageMode
	buf[2] = byte(id >> 8)
	buf[3] = byte(id)
	return d.mem.WriteVP(PicSet, buf)
}

// CurrentPage returns the page on screen.
func (d *Device) CurrentPage() (uint16, error) {
	return d.ReadWord(PicNow)
}

// Versions returns the GUI and OS firmware versions.
func (d *Device) Versions() (gui, os uint8, err error) {
	w, err := d.ReadWord(Version)
	return uint8(w >> 8), uint8(w), err
}

// Resolution returns the panel size in pixels.
func (d *Device) Resolution() (width, height uint16, err error) {
	if width, err = d.ReadWord(LCDHorRes); err != nil {
		return 0, 0, err
	}
	height, err = d.ReadWord(LCDVerRes)
	return width, height, err
}

// Reset restarts both the GUI and OS cores.
func (d *Device) Reset() error {
	buf := d.scratch[:4]
	copy(buf, resetCommand[:])
	return d.mem.WriteVP(SysReset, buf)
}

// UpdateOS replaces the 64 KB user code block with the contents of VP
// memory starting at src. The display must be reset afterwards.
func (d *Device) UpdateOS(src uint16) error {
	buf := d.scratch[:4]
	buf[0] = cmdEnable
	buf[1] = cmdOSUpdate
	buf[2] = byte(src >> 8)
	buf[3] = byte(src)
	return d.mem.WriteVP(OSUpdate, buf)
}

// WriteFlashBlock copies 32 KB of VP memory starting at src into NOR
// flash block. waitMS tells the GUI core how long to pause after the
// write; the caller must not issue another flash command before then.
func (d *Device) WriteFlashBlock(block, src, waitMS uint16) error {
	buf := d.scratch[:12]
	buf[0] = cmdEnable
	buf[1] = cmdFlashMode
	buf[2] = byte(block >> 8)
	buf[3] = byte(block)
	buf[4] = byte(src >> 8)
	buf[5] = byte(src)
	buf[6] = byte(waitMS >> 8)
	buf[7] = byte(waitMS)
	for i := 8; i < 12; i++ {
		buf[i] = 0
	}
	return d.mem.WriteVP(FlashBlock, buf)
}

// FlashBlocksPerID is the number of 32 KB blocks in one 256 KB font/ICL
// storage ID.
const FlashBlocksPerID = 8

// FlashBlockForID returns the first 32 KB block of storage ID id.
func FlashBlockForID(id uint16) uint16 {
	return id * FlashBlocksPerID
}
