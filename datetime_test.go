package blockrec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateTime_RoundTrip(t *testing.T) {
	for _, token := range []string{
		"19980118T230000",
		"20240229T000000",
		"20000229T120000",
		"20231231T235959",
		"00010101T000000",
		"99991231T235959",
	} {
		t.Run(token, func(t *testing.T) {
			dt, err := ParseDateTime(token)
			require.NoError(t, err)
			assert.Equal(t, token, dt.String())
		})
	}
}

func TestParseDateTime_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"empty", "", ErrDateTimeLength},
		{"short", "20240101T12000", ErrDateTimeLength},
		{"long", "20240101T1200000", ErrDateTimeLength},
		{"zone designator", "20240101T120000Z", ErrDateTimeLength},
		{"space separator", "20240101 120000", ErrDateTimeSeparator},
		{"lower case t", "20240101t120000", ErrDateTimeSeparator},
		{"letter in date", "2024O101T120000", ErrDateTimeDigits},
		{"sign in time", "20240101T-12000", ErrDateTimeDigits},
		{"february 30", "20240230T000000", ErrDateTimeRange},
		{"not a leap year", "20230229T000000", ErrDateTimeRange},
		{"centennial not a leap year", "19000229T000000", ErrDateTimeRange},
		{"month 13", "20241301T000000", ErrDateTimeRange},
		{"month 0", "20240001T000000", ErrDateTimeRange},
		{"day 0", "20240100T000000", ErrDateTimeRange},
		{"april 31", "20240431T000000", ErrDateTimeRange},
		{"hour 24", "20240101T240000", ErrDateTimeRange},
		{"minute 60", "20240101T126000", ErrDateTimeRange},
		{"second 60", "20240101T120060", ErrDateTimeRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDateTime(tt.token)
			assert.ErrorIs(t, err, tt.want)
			assert.False(t, IsValidDateTime(tt.token))
		})
	}
}

func TestParseDateTime_LeapYears(t *testing.T) {
	assert.True(t, IsValidDateTime("20240229T000000"))
	assert.False(t, IsValidDateTime("20230229T000000"))
	assert.True(t, IsValidDateTime("20000229T000000"))
	assert.False(t, IsValidDateTime("21000229T000000"))
}

func TestDateTime_Compare(t *testing.T) {
	a := MustParseDateTime("20240101T120000")
	b := MustParseDateTime("20240101T130000")
	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.Equal(t, -1, a.Compare(b))
	assert.Equal(t, 0, a.Compare(MustParseDateTime("20240101T120000")))
	assert.True(t, a.Equal(NewDateTime(time.Date(2024, 1, 1, 12, 0, 0, 999, time.UTC))))
	assert.Equal(t, "20240101", a.Date())
	assert.False(t, a.IsZero())
	assert.True(t, DateTime{}.IsZero())
}

func TestNewDateTime_DropsZone(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	dt := NewDateTime(time.Date(2024, 3, 15, 9, 30, 0, 0, loc))
	assert.Equal(t, "20240315T093000", dt.String())
}

func TestDateTime_Humanize(t *testing.T) {
	tests := []struct {
		token string
		want  string
	}{
		{"19980118T230000", "January 18, 1998, at 11 PM"},
		{"20240101T000000", "January 1, 2024, at 12 AM"},
		{"20240704T120000", "July 4, 2024, at 12 PM"},
		{"20240101T120500", "January 1, 2024, at 12:05 PM"},
		{"20241225T090509", "December 25, 2024, at 9:05:09 AM"},
		{"20241225T090009", "December 25, 2024, at 9:00:09 AM"},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			assert.Equal(t, tt.want, MustParseDateTime(tt.token).Humanize())
		})
	}
}

func TestMustParseDateTime_Panics(t *testing.T) {
	assert.Panics(t, func() { MustParseDateTime("nope") })
}
