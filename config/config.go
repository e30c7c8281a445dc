// Package config holds the JSON configuration shared by the firmware
// build and the host tools.
package config

import (
	"encoding/json"
	"errors"
	"os"
	"time"
)

// Config is the top-level configuration document.
type Config struct {
	Firmware FirmwareConfig `json:"firmware"`
	Serial   SerialConfig   `json:"serial"`
}

// IconConfig is a VP toggled between 0 and 1 while the icon page is shown.
type IconConfig struct {
	VP       uint16 `json:"vp"`
	PeriodMS uint32 `json:"period_ms"`
}

// FirmwareConfig places the demo application's variables and sets its
// task periods.
type FirmwareConfig struct {
	HourVP   uint16 `json:"hour_vp"`
	MinuteVP uint16 `json:"minute_vp"`
	SecondVP uint16 `json:"second_vp"`
	DigitVP  uint16 `json:"digit_vp"`
	ButtonVP uint16 `json:"button_vp"`

	Icons    []IconConfig `json:"icons"`
	IconPage uint16       `json:"icon_page"`

	Pages        []uint16 `json:"pages"`
	PagePeriodMS uint32   `json:"page_period_ms"`

	RampPeriodMS      uint32 `json:"ramp_period_ms"`
	KeepAlivePeriodMS uint32 `json:"keep_alive_period_ms"`
	ADCChannel        int    `json:"adc_channel"`

	ConsoleRXSize int `json:"console_rx_size"`

	// StartTime seeds the clock when no hardware RTC answers, RFC 3339
	// without zone ("2025-11-09T16:13:00").
	StartTime string `json:"start_time"`

	// UpdateAfterMS, when non-zero, replaces the user code from
	// UpdateSourceVP and resets the display once uptime passes it.
	UpdateAfterMS  uint32 `json:"update_after_ms"`
	UpdateSourceVP uint16 `json:"update_source_vp"`

	// PollLimit bounds each handshake poll; 0 waits forever.
	PollLimit int `json:"poll_limit"`
}

// SerialConfig configures the host side of the DGUS serial link.
type SerialConfig struct {
	Device        string `json:"device"`
	Baud          int    `json:"baud"`
	ReadTimeoutMS int    `json:"read_timeout_ms"`
	CRC           bool   `json:"crc"`
	Retries       uint64 `json:"retries"`
	RetryDelayMS  int    `json:"retry_delay_ms"`
}

// StartTimeLayout is the format of FirmwareConfig.StartTime.
const StartTimeLayout = "2006-01-02T15:04:05"

var (
	// ErrADCChannel is returned for an ADC channel outside 0..7.
	ErrADCChannel = errors.New("config: adc_channel out of range")

	// ErrRXSize is returned for a console buffer too small to hold a byte.
	ErrRXSize = errors.New("config: console_rx_size too small")

	// ErrStartYear is returned for a start time the two-digit display
	// calendar cannot hold.
	ErrStartYear = errors.New("config: start_time year outside 2000..2099")
)

// Load parses a JSON configuration and fills in defaults.
func Load(jsonData []byte) (*Config, error) {
	// ADC channel 0 is valid, so its default cannot be filled in afterwards.
	config := Config{Firmware: FirmwareConfig{ADCChannel: Default().Firmware.ADCChannel}}

	if err := json.Unmarshal(jsonData, &config); err != nil {
		return nil, err
	}

	applyDefaults(&config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// LoadFile reads and parses the configuration at path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Load(data)
}

// Validate checks values defaults cannot fix.
func (c *Config) Validate() error {
	if c.Firmware.ADCChannel < 0 || c.Firmware.ADCChannel > 7 {
		return ErrADCChannel
	}
	if c.Firmware.ConsoleRXSize < 2 {
		return ErrRXSize
	}
	start, err := c.Firmware.Start()
	if err != nil {
		return err
	}
	if start.Year() < 2000 || start.Year() > 2099 {
		return ErrStartYear
	}
	return nil
}

// Start parses StartTime.
func (f FirmwareConfig) Start() (time.Time, error) {
	return time.Parse(StartTimeLayout, f.StartTime)
}

// ReadTimeout returns the serial read timeout.
func (s SerialConfig) ReadTimeout() time.Duration {
	return time.Duration(s.ReadTimeoutMS) * time.Millisecond
}

// RetryDelay returns the base retry backoff.
func (s SerialConfig) RetryDelay() time.Duration {
	return time.Duration(s.RetryDelayMS) * time.Millisecond
}

// applyDefaults fills in missing configuration values with the layout of
// the stock demo project.
func applyDefaults(config *Config) {
	fw := &config.Firmware
	def := Default().Firmware

	if fw.HourVP == 0 {
		fw.HourVP = def.HourVP
	}
	if fw.MinuteVP == 0 {
		fw.MinuteVP = def.MinuteVP
	}
	if fw.SecondVP == 0 {
		fw.SecondVP = def.SecondVP
	}
	if fw.DigitVP == 0 {
		fw.DigitVP = def.DigitVP
	}
	if fw.ButtonVP == 0 {
		fw.ButtonVP = def.ButtonVP
	}
	if fw.Icons == nil {
		fw.Icons = def.Icons
	}
	for i := range fw.Icons {
		if fw.Icons[i].PeriodMS == 0 {
			fw.Icons[i].PeriodMS = 500
		}
	}
	if len(fw.Pages) == 0 {
		fw.Pages = def.Pages
	}
	if fw.PagePeriodMS == 0 {
		fw.PagePeriodMS = def.PagePeriodMS
	}
	if fw.RampPeriodMS == 0 {
		fw.RampPeriodMS = def.RampPeriodMS
	}
	if fw.KeepAlivePeriodMS == 0 {
		fw.KeepAlivePeriodMS = def.KeepAlivePeriodMS
	}
	if fw.ConsoleRXSize == 0 {
		fw.ConsoleRXSize = def.ConsoleRXSize
	}
	if fw.StartTime == "" {
		fw.StartTime = def.StartTime
	}
	if fw.UpdateSourceVP == 0 {
		fw.UpdateSourceVP = def.UpdateSourceVP
	}

	s := &config.Serial
	if s.Device == "" {
		s.Device = "/dev/ttyUSB0"
	}
	if s.Baud == 0 {
		s.Baud = 115200
	}
	if s.ReadTimeoutMS == 0 {
		s.ReadTimeoutMS = 200
	}
	if s.Retries == 0 {
		s.Retries = 3
	}
	if s.RetryDelayMS == 0 {
		s.RetryDelayMS = 20
	}
}

// Default returns the configuration of the stock demo project.
func Default() *Config {
	return &Config{
		Firmware: FirmwareConfig{
			HourVP:   0x2010,
			MinuteVP: 0x2020,
			SecondVP: 0x2030,
			DigitVP:  0x2040,
			ButtonVP: 0x1200,
			Icons: []IconConfig{
				{VP: 0x1030, PeriodMS: 400},
				{VP: 0x1040, PeriodMS: 900},
			},
			IconPage:          0,
			Pages:             []uint16{0, 1},
			PagePeriodMS:      5000,
			RampPeriodMS:      100,
			KeepAlivePeriodMS: 5000,
			ADCChannel:        1,
			ConsoleRXSize:     32,
			StartTime:         "2025-11-09T16:13:00",
			UpdateSourceVP:    0x1000,
		},
		Serial: SerialConfig{
			Device:        "/dev/ttyUSB0",
			Baud:          115200,
			ReadTimeoutMS: 200,
			Retries:       3,
			RetryDelayMS:  20,
		},
	}
}
