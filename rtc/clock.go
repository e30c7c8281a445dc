package rtc

import "dgusos/core"

// Clock is a calendar advanced by TickISR once per millisecond. The
// interrupt side owns the fields; the main loop only touches them through
// the masked accessors.
type Clock struct {
	ms      uint16
	now     Time
	updated bool
}

// NewClock returns a clock set to t.
func NewClock(t Time) *Clock {
	c := &Clock{}
	c.now = t
	c.now.Week = Weekday(t.Year, t.Month, t.Day)
	return c
}

// TickISR advances the clock by one millisecond. It runs in interrupt
// context.
func (c *Clock) TickISR() {
	c.ms++
	if c.ms < 1000 {
		return
	}
	c.ms = 0
	c.now.advance()
	c.updated = true
}

// Snapshot returns the current time.
func (c *Clock) Snapshot() Time {
	tok := core.Mask()
	defer tok.Restore()
	return c.now
}

// Set replaces the current time and restarts the second.
func (c *Clock) Set(t Time) {
	t.Week = Weekday(t.Year, t.Month, t.Day)

	tok := core.Mask()
	defer tok.Restore()
	c.now = t
	c.ms = 0
	c.updated = true
}

// Updated reports whether a second has elapsed since the last call, and
// clears the flag.
func (c *Clock) Updated() bool {
	tok := core.Mask()
	defer tok.Restore()
	u := c.updated
	c.updated = false
	return u
}

func (t *Time) advance() {
	t.Sec++
	if t.Sec < 60 {
		return
	}
	t.Sec = 0
	t.Min++
	if t.Min < 60 {
		return
	}
	t.Min = 0
	t.Hour++
	if t.Hour < 24 {
		return
	}
	t.Hour = 0
	t.Day++
	if t.Day > DaysInMonth(t.Year, t.Month) {
		t.Day = 1
		t.Month++
		if t.Month > 12 {
			t.Month = 1
			t.Year++
			if t.Year > 99 {
				t.Year = 0
			}
		}
	}
	t.Week = Weekday(t.Year, t.Month, t.Day)
}
