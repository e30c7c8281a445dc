//go:build tinygo

// Command t5l is the display firmware for the T5L application core. It
// drives VP memory through the handshake registers, ticks the clocks from
// timers 0 and 1 and runs the console on UART5.
package main

import (
	"context"
	"runtime/interrupt"

	"dgusos/config"
	"dgusos/core"
	"dgusos/firmware"
	"dgusos/rtc"
	"dgusos/softi2c"
	"dgusos/vp"
)

// app is reached from the interrupt handlers.
var app *firmware.App

func main() {
	cfg := config.Default()

	initPorts()
	core.SetDebugWriter(func(s string) { uartWrite(s + "\r\n") })

	start, err := cfg.Firmware.Start()
	if err != nil {
		uartWrite("bad start time\r\n")
		return
	}
	clock := rtc.NewClock(rtc.FromTime(start))
	bus := softi2c.New(portLines{}, i2cDelay)
	if err := rtc.SeedFromDS3231(clock, bus); err != nil {
		core.DebugPrintln("[RTC] no DS3231, starting at " + cfg.Firmware.StartTime)
	}

	engine := vp.New(vp.NewMMIO(vp.HandshakeBase), vp.WithPollLimit(cfg.Firmware.PollLimit))
	console := firmware.NewConsole(cfg.Firmware.ConsoleRXSize, uartWrite)
	app = firmware.New(cfg.Firmware, engine, clock, console)
	app.SetPortWriter(P1.Set)

	interrupt.New(irqTimer0, timer0ISR).Enable()
	interrupt.New(irqTimer1, timer1ISR).Enable()
	interrupt.New(irqUART5RX, uart5ISR).Enable()
	initTimers()
	initUART5()
	IEN0.SetBits(IEN0_EA)

	app.Run(context.Background())
}

func timer0ISR(interrupt.Interrupt) {
	reloadTimer(TH0, TL0)
	core.TickISR()
}

func timer1ISR(interrupt.Interrupt) {
	reloadTimer(TH1, TL1)
	app.Clock().TickISR()
}

func uart5ISR(interrupt.Interrupt) {
	if SCON3R.HasBits(SCON_FLAG) {
		b := SBUF3RX.Get()
		SCON3R.ClearBits(SCON_FLAG)
		app.Console().RxISR(b)
	}
}
