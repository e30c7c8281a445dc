//go:build tinygo

package main

import "runtime/volatile"

// initTimers starts timer 0 (system tick) and timer 1 (RTC tick) as
// 16-bit timers reloaded every millisecond.
func initTimers() {
	TMOD.SetBits(TMOD_T0_16BIT | TMOD_T1_16BIT)
	reloadTimer(TH0, TL0)
	reloadTimer(TH1, TL1)
	IEN0.SetBits(IEN0_ET0 | IEN0_ET1)
	TCON.SetBits(TCON_TR0 | TCON_TR1)
}

func reloadTimer(high, low *volatile.Register8) {
	high.Set(uint8(reload >> 8))
	low.Set(uint8(reload & 0xFF))
}

// initUART5 enables the console UART with receive interrupts.
func initUART5() {
	SCON3T.Set(SCON_ENABLE)
	SCON3R.Set(SCON_ENABLE)
	BAUD3H.Set(0x00)
	BAUD3L.Set(0xE0)
	IEN1.SetBits(IEN1_ES3R)
}

// uartWrite sends s on UART5, waiting for each byte to leave.
func uartWrite(s string) {
	for i := 0; i < len(s); i++ {
		SBUF3TX.Set(s[i])
		for !SCON3T.HasBits(SCON_FLAG) {
		}
		SCON3T.ClearBits(SCON_FLAG)
	}
}

// initPorts makes P1 push-pull for the counter output and leaves P3 open
// drain for the I2C lines.
func initPorts() {
	P1MDOUT.Set(0xFF)
	P3MDOUT.ClearBits(sclPin | sdaPin)
	P3.SetBits(sclPin | sdaPin)
}

// I2C lines on port 3. Writing 1 releases an open-drain pin.
const (
	sclPin = 1 << 2
	sdaPin = 1 << 3
)

// portLines drives the bit-banged I2C bus on P3.
type portLines struct{}

func (portLines) SetSCL(high bool) { setPin(sclPin, high) }

func (portLines) SetSDA(high bool) { setPin(sdaPin, high) }

func (portLines) SDA() bool { return P3.HasBits(sdaPin) }

func setPin(pin uint8, high bool) {
	if high {
		P3.SetBits(pin)
	} else {
		P3.ClearBits(pin)
	}
}

// i2cDelay is half a 100 kHz clock period at the core clock.
func i2cDelay() {
	for i := 0; i < 500; i++ {
		volatile.StoreUint8(&delaySink, uint8(i))
	}
}

var delaySink uint8
