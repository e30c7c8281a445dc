//go:build !tinygo

// Command sim runs the display firmware on the host against a simulated
// VP memory. Timer interrupts are raised by tickers, stdin feeds the
// console UART and the touch button can be pressed periodically.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"dgusos/config"
	"dgusos/core"
	"dgusos/firmware"
	"dgusos/rtc"
	"dgusos/vp"
)

var (
	configPath = flag.String("config", "", "JSON configuration file")
	debug      = flag.Bool("debug", false, "Print debug output and dump the event ring on exit")
	duration   = flag.Duration("duration", 0, "Stop after this long (0 = until interrupted)")
	press      = flag.Duration("press", 0, "Press the touch button at this interval")
)

func main() {
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.LoadFile(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	stderr := func(s string) { fmt.Fprintln(os.Stderr, s) }
	core.SetDebugWriter(stderr)
	core.SetDebugEnabled(*debug)

	start, err := cfg.Firmware.Start()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	sim := vp.NewSim()
	sim.SetLogging(false)
	engine := vp.New(sim, vp.WithPollLimit(cfg.Firmware.PollLimit))
	clock := rtc.NewClock(rtc.FromTime(start))
	console := firmware.NewConsole(cfg.Firmware.ConsoleRXSize, func(s string) {
		os.Stdout.WriteString(s)
	})
	app := firmware.New(cfg.Firmware, engine, clock, console)
	app.SetPortWriter(func(v uint8) {
		if *debug && v == 0 {
			core.DebugPrintln("[SIM] port counter wrapped")
		}
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if *duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *duration)
		defer cancel()
	}

	go tick(ctx)
	go readStdin(ctx, console)
	if *press > 0 {
		go pressButton(ctx, sim, cfg.Firmware.ButtonVP, *press)
	}

	err = app.Run(ctx)
	if *debug {
		core.DumpEventRing(stderr)
		fmt.Fprintf(os.Stderr, "vp errors=%d console overruns=%d\n", app.Errors(), console.Overruns())
	}
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// tick raises the system and clock timer interrupts every millisecond.
// Ticks missed while the host was busy are caught up.
func tick(ctx context.Context) {
	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()

	begin := time.Now()
	var sent int64
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		due := int64(time.Since(begin) / time.Millisecond)
		for ; sent < due; sent++ {
			core.Raise(core.IRQTick)
			core.Raise(core.IRQClock)
		}
	}
}

// readStdin feeds the console UART.
func readStdin(ctx context.Context, console *firmware.Console) {
	buf := make([]byte, 64)
	for ctx.Err() == nil {
		n, err := os.Stdin.Read(buf)
		if n > 0 {
			console.Receive(buf[:n])
		}
		if err != nil {
			return
		}
	}
}

// pressButton plays the GUI core writing 1 to the button variable when
// the button is touched.
func pressButton(ctx context.Context, sim *vp.Sim, addr uint16, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sim.PokeWord(addr, 1)
		}
	}
}
