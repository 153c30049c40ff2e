package rtc

import (
	"fmt"
	"time"
)

var daysOfMonth = [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// DateTime is a date and time as stored by the clock. Year is the offset to 2000.
type DateTime struct {
	Second int
	Minute int
	Hour   int
	Day    int
	Month  int
	Year   int
	TempC  int8
}

// FromTime converts t to a DateTime, years outside of 2000..2099 are wrapped.
func FromTime(t time.Time) DateTime {
	return DateTime{
		Second: t.Second(),
		Minute: t.Minute(),
		Hour:   t.Hour(),
		Day:    t.Day(),
		Month:  int(t.Month()),
		Year:   t.Year() % 100,
	}
}

// String returns the date and time as DD/MM/YY hh:mm:ss.
func (d DateTime) String() string {
	return fmt.Sprintf("%02d/%02d/%02d %02d:%02d:%02d", d.Day, d.Month, d.Year, d.Hour, d.Minute, d.Second)
}

// Validate checks that all fields are in range.
func (d DateTime) Validate() error {
	switch {
	case d.Year < 0 || d.Year > 99:
		return fmt.Errorf("invalid year %d", d.Year)
	case d.Month < 1 || d.Month > 12:
		return fmt.Errorf("invalid month %d", d.Month)
	case d.Day < 1 || d.Day > daysInMonth(d.Month, d.Year):
		return fmt.Errorf("invalid day %d", d.Day)
	case d.Hour < 0 || d.Hour > 23:
		return fmt.Errorf("invalid hour %d", d.Hour)
	case d.Minute < 0 || d.Minute > 59:
		return fmt.Errorf("invalid minute %d", d.Minute)
	case d.Second < 0 || d.Second > 59:
		return fmt.Errorf("invalid second %d", d.Second)
	}
	return nil
}

// IsLeapYear returns whether 2000+year is a leap year, valid for 2000..2099.
func IsLeapYear(year int) bool {
	return (2000+year)%4 == 0
}

func daysInMonth(month, year int) int {
	days := daysOfMonth[month-1]
	if month == 2 && IsLeapYear(year) {
		days++
	}
	return days
}
