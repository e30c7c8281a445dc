package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dgusos/core"
	"dgusos/dgus"
	"dgusos/host/display"
	"dgusos/host/serial"
	"dgusos/vp"
)

func newTestShell(t *testing.T) (*shell, *vp.Sim, *strings.Builder) {
	t.Helper()
	core.ResetInterrupts()
	sim := vp.NewSim()
	client := display.New(serial.NewSimPort(vp.New(sim), false))
	out := &strings.Builder{}
	return &shell{dev: dgus.NewDevice(client), mem: client, out: out}, sim, out
}

func TestShellReadWrite(t *testing.T) {
	sh, sim, out := newTestShell(t)

	require.NoError(t, sh.run("write", []string{"0x1000", "5a01", "0203"}))
	assert.Equal(t, uint16(0x5A01), sim.PeekWord(0x1000))
	assert.Equal(t, uint16(0x0203), sim.PeekWord(0x1001))

	out.Reset()
	require.NoError(t, sh.run("read", []string{"0x1000", "4"}))
	assert.Equal(t, "0x1000: 5a 01 02 03\n", out.String())
}

func TestShellPeripherals(t *testing.T) {
	sh, sim, out := newTestShell(t)

	require.NoError(t, sh.run("page", []string{"2"}))
	assert.Equal(t, uint16(2), sim.PeekWord(dgus.PicSet+1))

	require.NoError(t, sh.run("led", []string{"40"}))
	assert.Equal(t, uint16(40), sim.PeekWord(dgus.LEDConfig)>>8)

	require.NoError(t, sh.run("pwm", []string{"1", "0x1234"}))
	assert.Equal(t, uint16(0x1234), sim.PeekWord(dgus.PWM1Out))

	sim.PokeWord(dgus.ADCInstant, 0xFFFF)
	out.Reset()
	require.NoError(t, sh.run("adc", []string{"0"}))
	assert.Equal(t, "ADC0 raw 65535 (3300 mV)\n", out.String())

	require.NoError(t, sh.run("rtc", []string{"2025-10-19T07:08:09"}))
	out.Reset()
	require.NoError(t, sh.run("rtc", nil))
	assert.Equal(t, "2025-10-19 07:08:09 (weekday 6)\n", out.String())
}

func TestShellErrors(t *testing.T) {
	sh, _, _ := newTestShell(t)

	assert.ErrorIs(t, sh.run("adc", []string{"9"}), dgus.ErrInvalidChannel)
	assert.ErrorIs(t, sh.run("led", []string{"120"}), dgus.ErrInvalidValue)
	assert.Error(t, sh.run("write", []string{"0x10", "zz"}))
	assert.Error(t, sh.run("read", []string{"0x10"}))
	assert.Error(t, sh.run("bogus", nil))
	assert.Equal(t, errQuit, sh.run("quit", nil))
}
