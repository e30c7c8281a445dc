package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmptyUsesDefaults(t *testing.T) {
	cfg, err := Load([]byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := Load([]byte(`{
		"firmware": {
			"button_vp": 8192,
			"icons": [{"vp": 12288}],
			"pages": [3, 4, 5],
			"adc_channel": 7,
			"poll_limit": 1000
		},
		"serial": {"device": "/dev/ttyACM1", "baud": 921600, "crc": true}
	}`))
	require.NoError(t, err)

	assert.Equal(t, uint16(0x2000), cfg.Firmware.ButtonVP)
	assert.Equal(t, uint16(0x2010), cfg.Firmware.HourVP)
	assert.Equal(t, []IconConfig{{VP: 0x3000, PeriodMS: 500}}, cfg.Firmware.Icons)
	assert.Equal(t, []uint16{3, 4, 5}, cfg.Firmware.Pages)
	assert.Equal(t, 7, cfg.Firmware.ADCChannel)
	assert.Equal(t, 1000, cfg.Firmware.PollLimit)

	assert.Equal(t, "/dev/ttyACM1", cfg.Serial.Device)
	assert.Equal(t, 921600, cfg.Serial.Baud)
	assert.True(t, cfg.Serial.CRC)
	assert.Equal(t, 200*time.Millisecond, cfg.Serial.ReadTimeout())
	assert.Equal(t, 20*time.Millisecond, cfg.Serial.RetryDelay())
}

func TestLoadADCChannel(t *testing.T) {
	cfg, err := Load([]byte(`{"firmware": {"button_vp": 8192}}`))
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Firmware.ADCChannel)

	cfg, err = Load([]byte(`{"firmware": {"adc_channel": 0}}`))
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Firmware.ADCChannel)
}

func TestLoadEmptyIconListDisablesIcons(t *testing.T) {
	cfg, err := Load([]byte(`{"firmware": {"icons": []}}`))
	require.NoError(t, err)
	assert.Empty(t, cfg.Firmware.Icons)
}

func TestLoadRejects(t *testing.T) {
	testCases := []struct {
		name string
		json string
		err  error
	}{
		{"adc channel", `{"firmware": {"adc_channel": 8}}`, ErrADCChannel},
		{"rx size", `{"firmware": {"console_rx_size": 1}}`, ErrRXSize},
		{"start before 2000", `{"firmware": {"start_time": "1990-01-01T00:00:00"}}`, ErrStartYear},
		{"start after 2099", `{"firmware": {"start_time": "2100-01-01T00:00:00"}}`, ErrStartYear},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load([]byte(tc.json))
			assert.ErrorIs(t, err, tc.err)
		})
	}

	_, err := Load([]byte(`{"firmware": {"start_time": "yesterday"}}`))
	assert.Error(t, err)

	_, err = Load([]byte(`{`))
	assert.Error(t, err)
}

func TestStartTime(t *testing.T) {
	start, err := Default().Firmware.Start()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.November, 9, 16, 13, 0, 0, time.UTC), start)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dgus.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"serial": {"baud": 9600}}`), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 9600, cfg.Serial.Baud)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
