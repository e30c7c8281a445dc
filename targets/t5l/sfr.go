//go:build tinygo

package main

import (
	"runtime/volatile"
	"unsafe"
)

// Special function registers of the T5L application core used by this
// target. The VP handshake block lives in the vp package.
var (
	TCON    = sfr(0x88)
	TMOD    = sfr(0x89)
	TL0     = sfr(0x8A)
	TL1     = sfr(0x8B)
	TH0     = sfr(0x8C)
	TH1     = sfr(0x8D)
	P1      = sfr(0x90)
	SCON3T  = sfr(0xA7)
	IEN0    = sfr(0xA8)
	SCON3R  = sfr(0xAB)
	SBUF3TX = sfr(0xAC)
	SBUF3RX = sfr(0xAD)
	BAUD3H  = sfr(0xAE)
	BAUD3L  = sfr(0xAF)
	P3      = sfr(0xB0)
	IEN1    = sfr(0xB8)
	P1MDOUT = sfr(0xBC)
	P3MDOUT = sfr(0xBE)
)

func sfr(addr uintptr) *volatile.Register8 {
	return (*volatile.Register8)(unsafe.Pointer(addr))
}

// Bits used from the registers above.
const (
	TCON_TR0 = 1 << 4
	TCON_TR1 = 1 << 6

	TMOD_T0_16BIT = 0x01
	TMOD_T1_16BIT = 0x10

	IEN0_ET0  = 1 << 1
	IEN0_ET1  = 1 << 3
	IEN0_EA   = 1 << 7
	IEN1_ES3R = 1 << 5

	SCON_ENABLE = 0x80
	SCON_FLAG   = 0x01
)

// Interrupt vectors.
const (
	irqTimer0  = 1
	irqTimer1  = 3
	irqUART5RX = 14
)

// Timer reload for a 1 ms period at the core clock divided by 12.
const (
	fosc   = 206438400
	reload = 65536 - fosc/12/1000
)
