package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	blockrec "github.com/arran4/golang-blockrec"
	"github.com/arran4/golang-blockrec/internal/booking"
	"github.com/arran4/golang-blockrec/internal/config"
)

const recordsInput = `BEGIN:RECORD
IDENTIFIER: 123
TIME: 20240101T130000
WEIGHT: 150
UNITS: lbs
END:RECORD
BEGIN:RECORD
IDENTIFIER: 456
TIME: 20240101T120000
MOOD: calm
END:RECORD
`

func writeTemp(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestRecordsReport(t *testing.T) {
	path := writeTemp(t, "records.txt", recordsInput)
	got, err := recordsReport(path)
	require.NoError(t, err)
	assert.Equal(t, `1. Record
IDENTIFIER: 456
TIME: 20240101T120000
MOOD: calm

2. Record
IDENTIFIER: 123
TIME: 20240101T130000
WEIGHT: 150
UNITS: lbs
`, got)

	_, err = recordsReport(path, blockrec.UnrecognizedReject)
	assert.ErrorIs(t, err, blockrec.ErrUnrecognizedField)

	_, err = recordsReport(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestRecordsReport_NoRecords(t *testing.T) {
	got, err := recordsReport(writeTemp(t, "notes.txt", "nothing to see\n"))
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestPolicyOps(t *testing.T) {
	assert.Empty(t, policyOps(config.PolicyConfig{}, false, false))
	assert.Equal(t, []any{blockrec.UnrecognizedWarn, blockrec.LinesStrict},
		policyOps(config.PolicyConfig{Unrecognized: "warn"}, true, false))
	assert.Equal(t, []any{blockrec.LinesLenient, blockrec.UnrecognizedReject},
		policyOps(config.PolicyConfig{Lines: "lenient"}, false, true))
}

func TestDetectKind(t *testing.T) {
	assert.Equal(t, "calendar", detectKind("auto", "begin:vcalendar\n"))
	assert.Equal(t, "records", detectKind("auto", "BEGIN:RECORD\n"))
	assert.Equal(t, "events", detectKind("events", "BEGIN:VCALENDAR\n"))
}

func TestValidate(t *testing.T) {
	event := "BEGIN:VEVENT\nDTSTART:20240301T090000\nDTSTAMP:20240201T000000\nMETHOD:REQUEST\nSTATUS:CONFIRMED\nEND:VEVENT\n"
	calendar := "BEGIN:VCALENDAR\nVERSION:2.0\nPRODID:-//test//EN\n" + event + "END:VCALENDAR\n"

	tests := []struct {
		name    string
		kind    string
		data    string
		want    string
		wantErr error
	}{
		{"records", "records", recordsInput, "warning: line 10: unrecognized property in RECORD MOOD\nok: 2 records, 1 warnings\n", nil},
		{"events", "events", event, "ok: 1 events, 0 warnings\n", nil},
		{"calendar", "calendar", calendar, "ok: 1 calendar, 0 warnings\n", nil},
		{"calendar missing", "calendar", event, "", blockrec.ErrMisplacedBlock},
		{"empty", "records", "", "", blockrec.ErrEmptyInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			err := validate(buf, tt.kind, tt.data)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, buf.String())
		})
	}

	assert.Error(t, validate(&bytes.Buffer{}, "todo", recordsInput))
}

func TestHumanize(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, humanize(buf, []string{"19980118T230000", "20240101T000500"}))
	assert.Equal(t, "January 18, 1998, at 11 PM\nJanuary 1, 2024, at 12:05 AM\n", buf.String())
	assert.ErrorIs(t, humanize(buf, []string{"19980118"}), blockrec.ErrDateTimeLength)
}

func TestParseWhen(t *testing.T) {
	now := time.Date(2024, 3, 15, 9, 30, 15, 0, time.UTC)
	got, err := parseWhen("", now)
	require.NoError(t, err)
	assert.Equal(t, "20240315T093015", got.String())

	got, err = parseWhen("20240401", now)
	require.NoError(t, err)
	assert.Equal(t, "20240401T000000", got.String())

	got, err = parseWhen("20240401T120000", now)
	require.NoError(t, err)
	assert.Equal(t, "20240401T120000", got.String())

	_, err = parseWhen("20240431", now)
	assert.ErrorIs(t, err, blockrec.ErrDateTimeRange)
}

func TestDefaultStamp(t *testing.T) {
	now := time.Date(2024, 3, 15, 9, 30, 15, 0, time.UTC)

	today, err := parseWhen("20240315", now)
	require.NoError(t, err)
	assert.Equal(t, "20240315T000000", defaultStamp(today, now).String(), "start earlier today")

	later := blockrec.MustParseDateTime("20240315T170000")
	assert.Equal(t, "20240315T093015", defaultStamp(later, now).String())

	b, err := booking.Open(filepath.Join(t.TempDir(), "calendar.ics"))
	require.NoError(t, err)
	_, err = b.Reserve("ada", today, defaultStamp(today, now))
	assert.NoError(t, err)
}

func TestPrintReservations(t *testing.T) {
	buf := &bytes.Buffer{}
	printReservations(buf, "ada", nil)
	assert.Equal(t, "No reservations found for ada.\n", buf.String())

	buf.Reset()
	printReservations(buf, "ada", []booking.Reservation{{
		Attendee: "ada",
		Start:    blockrec.MustParseDateTime("20240315T090000"),
		Code:     "c0de",
	}})
	assert.Equal(t, "20240315T090000\tMarch 15, 2024, at 9 AM\tc0de\n", buf.String())
}
