// internal/ics/ics.go
//
// Calendar-file generation for program broadcasts.
//
// Emits one VEVENT per announcement with local wall-clock times pinned to
// the site timezone, plus a prefilled Google Calendar link.  Cross-day
// events are not modelled; the default duration is one hour.
package ics

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// DefaultLocation is used when an announcement carries no venue.
const DefaultLocation = "Gießener Str. 10, 35457 Lollar"

const defaultDuration = 60 * time.Minute

// Event is the calendar payload of one announcement.  Date is
// "YYYY-MM-DD" and Time "HH:MM"; an empty Time means midnight.
type Event struct {
	UID         string
	Title       string
	Description string
	Date        string
	Time        string
	Location    string
	Duration    time.Duration
}

// Generate renders the VCALENDAR document.  tz anchors the wall-clock
// times (TZID) so recipients in other zones see the event at the right
// local hour.
func Generate(ev Event, tz *time.Location) (string, error) {
	start, err := startTime(ev, tz)
	if err != nil {
		return "", err
	}

	dur := ev.Duration
	if dur <= 0 {
		dur = defaultDuration
	}
	end := start.Add(dur)

	loc := ev.Location
	if loc == "" {
		loc = DefaultLocation
	}

	const stamp = "20060102T150405"
	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//Naje e.V.//Programme//DE",
		"CALSCALE:GREGORIAN",
		"METHOD:PUBLISH",
		"BEGIN:VEVENT",
		"UID:" + ev.UID,
		"DTSTAMP:" + time.Now().UTC().Format(stamp) + "Z",
		fmt.Sprintf("DTSTART;TZID=%s:%s", tz.String(), start.Format(stamp)),
		fmt.Sprintf("DTEND;TZID=%s:%s", tz.String(), end.Format(stamp)),
		"SUMMARY:" + escapeText(ev.Title),
		"DESCRIPTION:" + escapeText(ev.Description),
		"LOCATION:" + escapeText(loc),
		"END:VEVENT",
		"END:VCALENDAR",
	}
	return strings.Join(lines, "\r\n"), nil
}

// Filename slugs the title into "<slug>-<date>.ics".
func Filename(title, date string) string {
	var b strings.Builder
	lastDash := true // suppress leading dashes
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	slug := strings.TrimRight(b.String(), "-")
	if slug == "" {
		slug = "event"
	}
	return slug + "-" + date + ".ics"
}

// GoogleCalendarURL builds a calendar.google.com render link for ev.
func GoogleCalendarURL(ev Event, tz *time.Location) (string, error) {
	start, err := startTime(ev, tz)
	if err != nil {
		return "", err
	}
	dur := ev.Duration
	if dur <= 0 {
		dur = defaultDuration
	}
	end := start.Add(dur)

	const utcStamp = "20060102T150405Z"
	params := url.Values{}
	params.Set("action", "TEMPLATE")
	params.Set("text", ev.Title)
	params.Set("dates", start.UTC().Format(utcStamp)+"/"+end.UTC().Format(utcStamp))
	params.Set("details", ev.Description)
	params.Set("location", ev.Location)
	return "https://calendar.google.com/calendar/render?" + params.Encode(), nil
}

// startTime parses Date + Time in tz.
func startTime(ev Event, tz *time.Location) (time.Time, error) {
	hhmm := ev.Time
	if hhmm == "" {
		hhmm = "00:00"
	}
	t, err := time.ParseInLocation("2006-01-02 15:04", ev.Date+" "+hhmm, tz)
	if err != nil {
		return time.Time{}, fmt.Errorf("ics: bad date/time %q %q: %w", ev.Date, ev.Time, err)
	}
	return t, nil
}

// escapeText applies RFC 5545 TEXT escaping.
func escapeText(s string) string {
	r := strings.NewReplacer(`\`, `\\`, "\n", `\n`, ",", `\,`, ";", `\;`)
	return r.Replace(s)
}
