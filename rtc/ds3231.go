package rtc

import (
	"errors"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/ds3231"
)

// ErrOutOfRange is returned when a hardware clock holds a date the
// display RTC cannot represent.
var ErrOutOfRange = errors.New("rtc: time out of range")

// SeedFromDS3231 loads c from a DS3231 on bus. Boards without a battery
// backed clock start from the compiled-in default instead.
func SeedFromDS3231(c *Clock, bus drivers.I2C) error {
	dev := ds3231.New(bus)
	tm, err := dev.ReadTime()
	if err != nil {
		return err
	}
	if tm.Year() < 2000 || tm.Year() > 2099 {
		return ErrOutOfRange
	}
	c.Set(FromTime(tm))
	return nil
}
