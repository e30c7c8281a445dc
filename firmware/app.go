// Package firmware is the display application: it keeps the clock
// variables current, cycles pages and icons, ramps the backlight, reports
// over the console and reacts to the touch button and console digits.
package firmware

import (
	"context"

	"dgusos/config"
	"dgusos/core"
	"dgusos/dgus"
	"dgusos/rtc"
)

// Task ids recorded in the event ring.
const (
	TaskPage uint8 = iota + 1
	TaskIcon
	TaskRamp
	TaskKeepAlive
	TaskUpdate
)

// Button states written by the display.
const (
	buttonReleased = 0
	buttonPressed  = 1
)

type iconState struct {
	vp     uint16
	period uint32
	value  uint16
	timer  core.Timer
}

// App is one firmware instance. It is driven from a single main loop.
type App struct {
	cfg     config.FirmwareConfig
	dev     *dgus.Device
	clock   *rtc.Clock
	console *Console
	port    func(uint8)

	page      int
	icons     []iconState
	ramp      uint8
	counter   uint16
	booted    uint32
	updateRan bool

	pageTimer      core.Timer
	rampTimer      core.Timer
	keepAliveTimer core.Timer
	updateTimer    core.Timer

	errors uint32
	panics uint32
}

// New returns an application accessing VP memory through mem.
func New(cfg config.FirmwareConfig, mem dgus.Memory, clock *rtc.Clock, console *Console) *App {
	a := &App{
		cfg:     cfg,
		dev:     dgus.NewDevice(mem),
		clock:   clock,
		console: console,
		port:    func(uint8) {},
	}
	for _, ic := range cfg.Icons {
		a.icons = append(a.icons, iconState{vp: ic.VP, period: ic.PeriodMS})
	}
	return a
}

// SetPortWriter sets the output that mirrors the backlight ramp counter,
// a GPIO port on the demo board.
func (a *App) SetPortWriter(fn func(uint8)) {
	a.port = fn
}

// Clock returns the software clock.
func (a *App) Clock() *rtc.Clock {
	return a.clock
}

// Console returns the user console.
func (a *App) Console() *Console {
	return a.console
}

// Device returns the system variable driver.
func (a *App) Device() *dgus.Device {
	return a.dev
}

// Counter returns the button press count.
func (a *App) Counter() uint16 {
	return a.counter
}

// Page returns the page the application last switched to.
func (a *App) Page() uint16 {
	if len(a.cfg.Pages) == 0 {
		return a.cfg.IconPage
	}
	return a.cfg.Pages[a.page]
}

// Errors returns how many VP accesses failed.
func (a *App) Errors() uint32 {
	return a.errors
}

// Start attaches interrupts, announces itself, pushes the clock to the
// display RTC and schedules the periodic tasks.
func (a *App) Start() {
	a.attachInterrupts()

	now := core.Millis()
	a.booted = now
	a.console.Print("Demo Started\r\n")
	a.check(a.dev.SetRTC(a.clock.Snapshot()))

	a.schedule(&a.pageTimer, now+a.cfg.PagePeriodMS, a.pageTask)
	a.schedule(&a.rampTimer, now+a.cfg.RampPeriodMS, a.rampTask)
	a.schedule(&a.keepAliveTimer, now+a.cfg.KeepAlivePeriodMS, a.keepAliveTask)
	for i := range a.icons {
		ic := &a.icons[i]
		a.schedule(&ic.timer, now+ic.period, func(t *core.Timer) uint8 {
			return a.iconTask(ic, t)
		})
	}
	if a.cfg.UpdateAfterMS > 0 {
		a.schedule(&a.updateTimer, now+a.cfg.UpdateAfterMS, a.updateTask)
	}
}

// Stop removes the periodic tasks.
func (a *App) Stop() {
	core.CancelTimer(&a.pageTimer)
	core.CancelTimer(&a.rampTimer)
	core.CancelTimer(&a.keepAliveTimer)
	core.CancelTimer(&a.updateTimer)
	for i := range a.icons {
		core.CancelTimer(&a.icons[i].timer)
	}
}

// Poll runs one pass of the main loop. A panic inside the pass is
// recorded and swallowed so the loop keeps going.
func (a *App) Poll() {
	defer func() {
		if r := recover(); r != nil {
			a.panics++
			core.RecordEvent(core.EvtPanic, 0, core.Millis(), a.panics, 0)
			core.DebugPrintln("[FW] recovered from panic in main loop")
		}
	}()

	a.syncClock()
	core.ProcessTimers()
	a.pollConsole()
	a.pollButton()
}

// Run starts the application and loops until ctx is done.
func (a *App) Run(ctx context.Context) error {
	a.Start()
	defer a.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		a.Poll()
		yield()
	}
}

func (a *App) schedule(t *core.Timer, wake uint32, fn func(*core.Timer) uint8) {
	t.WakeTime = wake
	t.Handler = fn
	core.ScheduleTimer(t)
}

// check counts and logs a failed VP access.
func (a *App) check(err error) bool {
	if err == nil {
		return true
	}
	a.errors++
	core.DebugPrintln("[FW] vp access failed: " + err.Error())
	return false
}

// syncClock mirrors hour, minute and second into their display words once
// per elapsed second.
func (a *App) syncClock() {
	if !a.clock.Updated() {
		return
	}
	t := a.clock.Snapshot()
	a.check(a.dev.WriteWord(a.cfg.HourVP, uint16(t.Hour)))
	a.check(a.dev.WriteWord(a.cfg.MinuteVP, uint16(t.Min)))
	a.check(a.dev.WriteWord(a.cfg.SecondVP, uint16(t.Sec)))
}

func (a *App) pageTask(t *core.Timer) uint8 {
	core.RecordEvent(core.EvtTask, TaskPage, core.Millis(), 0, 0)
	if len(a.cfg.Pages) > 0 {
		a.page = (a.page + 1) % len(a.cfg.Pages)
		a.check(a.dev.SwitchPage(a.cfg.Pages[a.page]))
	}
	t.WakeTime += a.cfg.PagePeriodMS
	return core.SF_RESCHEDULE
}

// iconTask toggles an icon variable while the icon page is shown.
func (a *App) iconTask(ic *iconState, t *core.Timer) uint8 {
	core.RecordEvent(core.EvtTask, TaskIcon, core.Millis(), uint32(ic.vp), 0)
	if a.Page() == a.cfg.IconPage {
		ic.value ^= 1
		a.check(a.dev.WriteWord(ic.vp, ic.value))
	}
	t.WakeTime += ic.period
	return core.SF_RESCHEDULE
}

// rampTask advances the port counter and sets the backlight from it.
func (a *App) rampTask(t *core.Timer) uint8 {
	core.RecordEvent(core.EvtTask, TaskRamp, core.Millis(), uint32(a.ramp), 0)
	a.port(a.ramp)
	a.ramp++
	a.check(a.dev.SetBrightness(a.ramp / 3))
	t.WakeTime += a.cfg.RampPeriodMS
	return core.SF_RESCHEDULE
}

// keepAliveTask reports the time and one ADC input on the console.
func (a *App) keepAliveTask(t *core.Timer) uint8 {
	core.RecordEvent(core.EvtTask, TaskKeepAlive, core.Millis(), 0, 0)
	a.console.Print(a.keepAliveLine())
	t.WakeTime += a.cfg.KeepAlivePeriodMS
	return core.SF_RESCHEDULE
}

func (a *App) keepAliveLine() string {
	now := a.clock.Snapshot()
	line := "Time: " + clockString(now) + " | "

	ch := a.cfg.ADCChannel
	raw, err := a.dev.ReadADC(ch)
	if !a.check(err) {
		return line + "ADC" + core.Itoa(ch) + " Error\r\n"
	}
	mv := dgus.ADCMillivolts(raw)
	return line + "ADC" + core.Itoa(ch) + " Raw: " + core.PadUtoa(uint32(raw), 5) +
		" (" + core.Utoa(mv/1000) + "." + core.PadUtoa(mv%1000/10, 2) + "V)\r\n"
}

// updateTask replaces the user code and, one second later, resets the
// display so the new code runs.
func (a *App) updateTask(t *core.Timer) uint8 {
	core.RecordEvent(core.EvtTask, TaskUpdate, core.Millis(), 0, 0)
	if !a.updateRan {
		a.updateRan = true
		a.console.Print("Updating user code from " + core.Hex(uint32(a.cfg.UpdateSourceVP), 4) + "\r\n")
		a.check(a.dev.UpdateOS(a.cfg.UpdateSourceVP))
		t.WakeTime += 1000
		return core.SF_RESCHEDULE
	}
	a.check(a.dev.Reset())
	return core.SF_DONE
}

// pollConsole handles one received byte: a digit is stored at the digit
// variable and echoed, anything else is refused.
func (a *App) pollConsole() {
	c, ok := a.console.Next()
	if !ok {
		return
	}
	core.RecordEvent(core.EvtConsole, 0, core.Millis(), uint32(c), 0)

	if c < '0' || c > '9' {
		a.console.Print("out of limit\r\n")
		return
	}
	if a.check(a.dev.WriteWord(a.cfg.DigitVP, uint16(c-'0'))) {
		a.console.Print("written number: " + string(rune(c)) + "\r\n")
	}
}

// pollButton counts a press of the touch button and clears it so the next
// press is seen.
func (a *App) pollButton() {
	v, err := a.dev.ReadWord(a.cfg.ButtonVP)
	if !a.check(err) || v != buttonPressed {
		return
	}
	a.counter++
	a.console.Print("Variable updated [new value:" + core.PadUtoa(uint32(a.counter%1000), 3) + "]\r\n")
	a.check(a.dev.WriteWord(a.cfg.ButtonVP, buttonReleased))
}

func clockString(t rtc.Time) string {
	return core.PadUtoa(uint32(t.Hour), 2) + ":" +
		core.PadUtoa(uint32(t.Min), 2) + ":" +
		core.PadUtoa(uint32(t.Sec), 2)
}
