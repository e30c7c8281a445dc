package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"dgusos/dgus"
	"dgusos/rtc"
)

var errQuit = errors.New("quit")

// shell runs the interactive commands against one display.
type shell struct {
	dev *dgus.Device
	mem dgus.Memory
	out io.Writer
}

func (s *shell) run(cmd string, args []string) error {
	switch cmd {
	case "quit", "exit", "q":
		return errQuit

	case "help", "?":
		s.printHelp()
		return nil

	case "read", "r":
		return s.read(args)

	case "write", "w":
		return s.write(args)

	case "page":
		return s.page(args)

	case "rtc":
		return s.rtc(args)

	case "adc":
		return s.adc(args)

	case "pwm":
		return s.pwm(args)

	case "led":
		return s.led(args)

	case "version":
		gui, os, err := s.dev.Versions()
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "GUI version %#02x, OS version %#02x\n", gui, os)
		return nil

	case "reset":
		if err := s.dev.Reset(); err != nil {
			return err
		}
		fmt.Fprintln(s.out, "Reset sent")
		return nil
	}
	return errors.Errorf("unknown command: %s (type 'help' for available commands)", cmd)
}

func (s *shell) printHelp() {
	fmt.Fprintln(s.out, "\nAvailable commands:")
	fmt.Fprintln(s.out, "  read <vp> <bytes>       - Read VP memory")
	fmt.Fprintln(s.out, "  write <vp> <hex>        - Write bytes (e.g. write 0x1000 5a01)")
	fmt.Fprintln(s.out, "  page [id]               - Show or switch the current page")
	fmt.Fprintln(s.out, "  rtc [now|YYYY-MM-DDTHH:MM:SS] - Show or set the display clock")
	fmt.Fprintln(s.out, "  adc <ch>                - Read ADC channel 0-7")
	fmt.Fprintln(s.out, "  pwm <ch> <duty>         - Set PWM duty of channel 0 or 1")
	fmt.Fprintln(s.out, "  led <percent>           - Set backlight brightness")
	fmt.Fprintln(s.out, "  version                 - Show firmware versions")
	fmt.Fprintln(s.out, "  reset                   - Restart the display")
	fmt.Fprintln(s.out, "  quit/exit/q             - Exit the program")
	fmt.Fprintln(s.out)
}

func parseUint(arg string, bits int) (uint64, error) {
	v, err := strconv.ParseUint(arg, 0, bits)
	return v, errors.Wrapf(err, "bad number %q", arg)
}

func need(args []string, n int, usage string) error {
	if len(args) < n {
		return errors.Errorf("usage: %s", usage)
	}
	return nil
}

func (s *shell) read(args []string) error {
	if err := need(args, 2, "read <vp> <bytes>"); err != nil {
		return err
	}
	addr, err := parseUint(args[0], 16)
	if err != nil {
		return err
	}
	n, err := parseUint(args[1], 16)
	if err != nil {
		return err
	}
	buf := make([]byte, n)
	if err := s.mem.ReadVP(uint16(addr), buf); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "%#04x: % x\n", addr, buf)
	return nil
}

func (s *shell) write(args []string) error {
	if err := need(args, 2, "write <vp> <hex>"); err != nil {
		return err
	}
	addr, err := parseUint(args[0], 16)
	if err != nil {
		return err
	}
	data, err := hex.DecodeString(strings.Join(args[1:], ""))
	if err != nil {
		return errors.Wrap(err, "bad hex data")
	}
	if len(data) == 0 {
		return errors.New("nothing to write")
	}
	if err := s.mem.WriteVP(uint16(addr), data); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Wrote %d bytes at %#04x\n", len(data), addr)
	return nil
}

func (s *shell) page(args []string) error {
	if len(args) == 0 {
		id, err := s.dev.CurrentPage()
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "Page %d\n", id)
		return nil
	}
	id, err := parseUint(args[0], 16)
	if err != nil {
		return err
	}
	if err := s.dev.SwitchPage(uint16(id)); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Switched to page %d\n", id)
	return nil
}

func (s *shell) rtc(args []string) error {
	if len(args) == 0 {
		t, err := s.dev.ReadRTC()
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "%s (weekday %d)\n", t.Go().Format("2006-01-02 15:04:05"), t.Week)
		return nil
	}

	tm := time.Now()
	if args[0] != "now" {
		var err error
		if tm, err = time.Parse("2006-01-02T15:04:05", args[0]); err != nil {
			return errors.Wrap(err, "bad time")
		}
	}
	if tm.Year() < 2000 || tm.Year() > 2099 {
		return rtc.ErrOutOfRange
	}
	t := rtc.FromTime(tm)
	if err := s.dev.SetRTC(t); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Clock set to %s\n", t.Go().Format("2006-01-02 15:04:05"))
	return nil
}

func (s *shell) adc(args []string) error {
	if err := need(args, 1, "adc <ch>"); err != nil {
		return err
	}
	ch, err := parseUint(args[0], 8)
	if err != nil {
		return err
	}
	raw, err := s.dev.ReadADC(int(ch))
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "ADC%d raw %d (%d mV)\n", ch, raw, dgus.ADCMillivolts(raw))
	return nil
}

func (s *shell) pwm(args []string) error {
	if err := need(args, 2, "pwm <ch> <duty>"); err != nil {
		return err
	}
	ch, err := parseUint(args[0], 8)
	if err != nil {
		return err
	}
	duty, err := parseUint(args[1], 16)
	if err != nil {
		return err
	}
	if err := s.dev.SetPWMDuty(int(ch), uint16(duty)); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "PWM%d duty %d\n", ch, duty)
	return nil
}

func (s *shell) led(args []string) error {
	if err := need(args, 1, "led <percent>"); err != nil {
		return err
	}
	pct, err := parseUint(args[0], 8)
	if err != nil {
		return err
	}
	if err := s.dev.SetBrightness(uint8(pct)); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Backlight %d%%\n", pct)
	return nil
}
