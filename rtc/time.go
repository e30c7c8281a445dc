// Package rtc keeps the software calendar clock of the display firmware.
// The clock is advanced from a 1 ms interrupt and read by the main loop
// under the interrupt mask.
package rtc

import "time"

// Time is a calendar time in the display's RTC layout. Year counts from
// 2000. Week is 0 for Monday through 6 for Sunday.
type Time struct {
	Year  uint8
	Month uint8
	Day   uint8
	Week  uint8
	Hour  uint8
	Min   uint8
	Sec   uint8
}

// Bytes returns t as stored at the RTC system variable:
// year, month, day, week, hour, minute, second, reserved.
func (t Time) Bytes() [8]byte {
	return [8]byte{t.Year, t.Month, t.Day, t.Week, t.Hour, t.Min, t.Sec, 0}
}

// FromBytes decodes the RTC system variable layout.
func FromBytes(b [8]byte) Time {
	return Time{
		Year:  b[0],
		Month: b[1],
		Day:   b[2],
		Week:  b[3],
		Hour:  b[4],
		Min:   b[5],
		Sec:   b[6],
	}
}

// FromTime converts a time.Time in the years 2000-2099.
func FromTime(tm time.Time) Time {
	t := Time{
		Year:  uint8(tm.Year() - 2000),
		Month: uint8(tm.Month()),
		Day:   uint8(tm.Day()),
		Hour:  uint8(tm.Hour()),
		Min:   uint8(tm.Minute()),
		Sec:   uint8(tm.Second()),
	}
	t.Week = Weekday(t.Year, t.Month, t.Day)
	return t
}

// Go returns t as a UTC time.Time.
func (t Time) Go() time.Time {
	return time.Date(2000+int(t.Year), time.Month(t.Month), int(t.Day),
		int(t.Hour), int(t.Min), int(t.Sec), 0, time.UTC)
}

// Valid reports whether every field is in range.
func (t Time) Valid() bool {
	if t.Year > 99 || t.Month < 1 || t.Month > 12 {
		return false
	}
	if t.Day < 1 || t.Day > DaysInMonth(t.Year, t.Month) {
		return false
	}
	return t.Hour < 24 && t.Min < 60 && t.Sec < 60 && t.Week < 7
}

// Month offsets for the day-of-week congruence.
var weekTable = [12]uint8{0, 3, 3, 6, 1, 4, 6, 2, 5, 0, 3, 5}

var monthDays = [12]uint8{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// Weekday returns the day of the week, 0 for Monday, of a date in
// 2000-2099.
func Weekday(year, month, day uint8) uint8 {
	if month < 1 || month > 12 {
		return 0
	}
	yl := uint16(year%100) + 100
	temp := (yl + yl/4) % 7
	temp += uint16(day) + uint16(weekTable[month-1])
	if yl%4 == 0 && month < 3 {
		temp--
	}
	temp %= 7
	if temp == 0 {
		return 6
	}
	return uint8(temp - 1)
}

// IsLeap reports whether 2000+year is a leap year.
func IsLeap(year uint8) bool {
	y := 2000 + int(year)
	return y%4 == 0 && (y%100 != 0 || y%400 == 0)
}

// DaysInMonth returns the number of days in month of 2000+year.
func DaysInMonth(year, month uint8) uint8 {
	if month < 1 || month > 12 {
		return 0
	}
	if month == 2 && IsLeap(year) {
		return 29
	}
	return monthDays[month-1]
}
