package ics

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func berlin(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	return loc
}

func TestGenerate(t *testing.T) {
	t.Parallel()

	got, err := Generate(Event{
		UID:         "42",
		Title:       "Sommerfest, 2025; Ausgabe",
		Description: "Zeile 1\nZeile 2",
		Date:        "2025-07-12",
		Time:        "14:30",
	}, berlin(t))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(got, "BEGIN:VCALENDAR\r\n"))
	assert.Contains(t, got, "UID:42")
	assert.Contains(t, got, "DTSTART;TZID=Europe/Berlin:20250712T143000")
	assert.Contains(t, got, "DTEND;TZID=Europe/Berlin:20250712T153000")
	assert.Contains(t, got, `SUMMARY:Sommerfest\, 2025\; Ausgabe`)
	assert.Contains(t, got, `DESCRIPTION:Zeile 1\nZeile 2`)
	assert.Contains(t, got, "LOCATION:"+escapeText(DefaultLocation))
	assert.True(t, strings.HasSuffix(got, "END:VCALENDAR"))
}

func TestGenerate_DefaultsMidnight(t *testing.T) {
	t.Parallel()

	got, err := Generate(Event{UID: "1", Title: "T", Date: "2025-01-02"}, berlin(t))
	require.NoError(t, err)
	assert.Contains(t, got, "DTSTART;TZID=Europe/Berlin:20250102T000000")
	assert.Contains(t, got, "DTEND;TZID=Europe/Berlin:20250102T010000")
}

func TestGenerate_BadDate(t *testing.T) {
	t.Parallel()

	_, err := Generate(Event{UID: "1", Title: "T", Date: "12.07.2025"}, berlin(t))
	require.Error(t, err)
}

func TestFilename(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "sommerfest-2025-2025-07-12.ics", Filename("Sommerfest 2025!", "2025-07-12"))
	assert.Equal(t, "event-2025-07-12.ics", Filename("???", "2025-07-12"))
}

func TestGoogleCalendarURL(t *testing.T) {
	t.Parallel()

	// 14:30 CEST == 12:30 UTC.
	u, err := GoogleCalendarURL(Event{
		Title: "Fest",
		Date:  "2025-07-12",
		Time:  "14:30",
	}, berlin(t))
	require.NoError(t, err)
	assert.Contains(t, u, "calendar.google.com/calendar/render")
	assert.Contains(t, u, "dates=20250712T123000Z%2F20250712T133000Z")
	assert.Contains(t, u, "text=Fest")
}
