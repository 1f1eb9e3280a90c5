package blockrec

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

const (
	// DateTimeLayout is the fixed-width token layout, YYYYMMDDTHHMMSS.
	DateTimeLayout = "20060102T150405"
	dateTimeLength = len(DateTimeLayout)
	dateTimeSep    = 8
)

var (
	ErrDateTimeLength    = errors.New("date-time must be 15 characters")
	ErrDateTimeSeparator = errors.New("date-time must have T at offset 8")
	ErrDateTimeDigits    = errors.New("date-time must be digits around T")
	ErrDateTimeRange     = errors.New("date-time does not exist on the calendar")
)

// DateTime is a decoded YYYYMMDDTHHMMSS token. It carries no time zone; the
// wrapped time is in UTC so values compare as wall-clock readings.
type DateTime struct {
	t time.Time
}

// ParseDateTime decodes a token. The numeric parts are fed to time.Date and
// every part must read back unchanged, so 20240230T000000 (February 30) or
// 20240101T240000 are rejected instead of rolling over. Leap years follow the
// full Gregorian rule.
func ParseDateTime(s string) (DateTime, error) {
	if len(s) != dateTimeLength {
		return DateTime{}, fmt.Errorf("%w, got %q", ErrDateTimeLength, s)
	}
	if s[dateTimeSep] != 'T' {
		return DateTime{}, fmt.Errorf("%w, got %q", ErrDateTimeSeparator, s)
	}
	for i := 0; i < len(s); i++ {
		if i == dateTimeSep {
			continue
		}
		if s[i] < '0' || s[i] > '9' {
			return DateTime{}, fmt.Errorf("%w, got %q", ErrDateTimeDigits, s)
		}
	}
	num := func(from, to int) int {
		n, _ := strconv.Atoi(s[from:to])
		return n
	}
	year, month, day := num(0, 4), num(4, 6), num(6, 8)
	hour, minute, second := num(9, 11), num(11, 13), num(13, 15)

	t := time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day ||
		t.Hour() != hour || t.Minute() != minute || t.Second() != second {
		return DateTime{}, fmt.Errorf("%w, got %q", ErrDateTimeRange, s)
	}
	return DateTime{t: t}, nil
}

// MustParseDateTime is ParseDateTime for literals known to be valid.
func MustParseDateTime(s string) DateTime {
	dt, err := ParseDateTime(s)
	if err != nil {
		panic(err)
	}
	return dt
}

// NewDateTime converts t's wall clock reading, dropping its zone and any
// sub-second part.
func NewDateTime(t time.Time) DateTime {
	return DateTime{t: time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)}
}

// IsValidDateTime reports whether s is a well formed token for a real
// calendar date and time.
func IsValidDateTime(s string) bool {
	_, err := ParseDateTime(s)
	return err == nil
}

func (d DateTime) String() string {
	return d.t.Format(DateTimeLayout)
}

func (d DateTime) Time() time.Time {
	return d.t
}

func (d DateTime) IsZero() bool {
	return d.t.IsZero()
}

// Date returns the YYYYMMDD part of the token.
func (d DateTime) Date() string {
	return d.t.Format("20060102")
}

func (d DateTime) Compare(o DateTime) int {
	return d.t.Compare(o.t)
}

func (d DateTime) Before(o DateTime) bool {
	return d.t.Before(o.t)
}

func (d DateTime) After(o DateTime) bool {
	return d.t.After(o.t)
}

func (d DateTime) Equal(o DateTime) bool {
	return d.t.Equal(o.t)
}

// Humanize renders the token the way dates are commonly written in the
// United States: "January 18, 1998, at 11 PM". Minutes are shown when they
// or the seconds are non-zero, seconds only when non-zero.
func (d DateTime) Humanize() string {
	t := d.t
	hour := t.Hour()
	suffix := "AM"
	if hour >= 12 {
		suffix = "PM"
	}
	hour %= 12
	if hour == 0 {
		hour = 12
	}
	clock := strconv.Itoa(hour)
	switch {
	case t.Second() != 0:
		clock += fmt.Sprintf(":%02d:%02d", t.Minute(), t.Second())
	case t.Minute() != 0:
		clock += fmt.Sprintf(":%02d", t.Minute())
	}
	return fmt.Sprintf("%s %d, %d, at %s %s", t.Month(), t.Day(), t.Year(), clock, suffix)
}
