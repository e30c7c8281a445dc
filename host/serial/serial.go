package serial

import (
	"io"

	"dgusos/config"
)

// Port represents a serial port interface
// This abstraction allows for different implementations:
// - Native serial (using github.com/tarm/serial)
// - In-memory display (SimPort) for tests and offline use
type Port interface {
	io.ReadWriteCloser

	// Flush discards received data that has not been read yet
	Flush() error
}

// Config holds serial port configuration
type Config struct {
	// Device path (e.g., "/dev/ttyUSB0", "COM3")
	Device string

	// Baud rate of the display's configuration UART
	Baud int

	// Read timeout in milliseconds (0 = blocking)
	ReadTimeout int
}

// DefaultConfig returns the factory UART settings of a DGUS display
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        115200,
		ReadTimeout: 50,
	}
}

// FromConfig builds a port configuration from the serial section of a
// configuration file
func FromConfig(sc config.SerialConfig) *Config {
	return &Config{
		Device:      sc.Device,
		Baud:        sc.Baud,
		ReadTimeout: sc.ReadTimeoutMS,
	}
}
