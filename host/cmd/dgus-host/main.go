package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"dgusos/config"
	"dgusos/dgus"
	"dgusos/host/display"
	"dgusos/host/serial"
	"dgusos/vp"
)

var (
	configPath = flag.String("config", "", "JSON configuration file")
	device     = flag.String("device", "", "Serial device path (overrides config)")
	baud       = flag.Int("baud", 0, "Baud rate (overrides config)")
	crc        = flag.Bool("crc", false, "Frames carry a CRC trailer")
	simulate   = flag.Bool("sim", false, "Talk to an in-memory display instead of a serial port")
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
	if *device != "" {
		cfg.Serial.Device = *device
	}
	if *baud != 0 {
		cfg.Serial.Baud = *baud
	}
	if *crc {
		cfg.Serial.CRC = true
	}

	fmt.Println("DGUS Host - VP memory access over the display UART")
	fmt.Println("===================================================")
	fmt.Println()

	var port serial.Port
	if *simulate {
		fmt.Println("Using simulated display")
		port = serial.NewSimPort(vp.New(vp.NewSim()), cfg.Serial.CRC)
	} else {
		fmt.Printf("Opening %s at %d baud...\n", cfg.Serial.Device, cfg.Serial.Baud)
		var err error
		if port, err = serial.Open(serial.FromConfig(cfg.Serial)); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	client := display.FromConfig(port, cfg.Serial)
	defer client.Close()

	sh := &shell{dev: dgus.NewDevice(client), mem: client, out: os.Stdout}

	if err := sh.run("version", nil); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: display not answering: %v\n", err)
	}

	fmt.Println("Enter commands (type 'help' for available commands, 'quit' to exit):")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		if err := sh.run(parts[0], parts[1:]); err != nil {
			if err == errQuit {
				fmt.Println("Goodbye!")
				return
			}
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
		os.Exit(1)
	}
}
