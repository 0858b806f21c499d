package smsparser

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

const maxDay = 31

var (
	fullDateTimePattern = regexp.MustCompile(`\b(\d{4})([/.-])(\d{1,2})([/.-])(\d{1,2})(?:[ \t]+|_)(\d{1,2}):(\d{2})(?::(\d{2}))?\b`)
	monthDayTimePattern = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})_(\d{1,2}):(\d{2})(?::(\d{2}))?\b`)
	dateOnlyPattern     = regexp.MustCompile(`\b(\d{4})([/.-])(\d{1,2})([/.-])(\d{1,2})\b`)
	timeOnlyPattern     = regexp.MustCompile(`\b(\d{1,2}):(\d{2})(?::(\d{2}))?\b`)
)

// ResolveDateTime finds the event timestamp embedded in a message.
//
// Banks put the event time near the end, so lines are scanned from the last
// one up. On each line a full "date time" wins over "month/day_time" (which
// takes its year from now), which wins over a bare date. A bare date takes the
// time on its own line, else the last time found anywhere, else midnight.
// Candidates with impossible components (month 13, day 32, hour 24) are
// skipped. A day past the end of its month is clamped to the last day, so
// Jalali dates such as 1403/06/31 still resolve. Nil means no timestamp.
func ResolveDateTime(text string, now time.Time) *civil.DateTime {
	lines := strings.Split(Normalize(text), "\n")
	fallbackTime, hasFallbackTime := lastTime(lines)

	for i := len(lines) - 1; i >= 0; i-- {
		line := lines[i]

		if dt, ok := matchFullDateTime(line); ok {
			return &dt
		}
		if dt, ok := matchMonthDayTime(line, now.Year()); ok {
			return &dt
		}

		date, ok := matchDate(line)
		if !ok {
			continue
		}

		t, ok := matchTime(line)
		if !ok && hasFallbackTime {
			t, ok = fallbackTime, true
		}
		if !ok {
			t = civil.Time{}
		}

		return &civil.DateTime{Date: date, Time: t}
	}

	return nil
}

func matchFullDateTime(line string) (civil.DateTime, bool) {
	matches := fullDateTimePattern.FindAllStringSubmatch(line, -1)
	for i := len(matches) - 1; i >= 0; i-- {
		m := matches[i]
		if m[2] != m[4] {
			continue
		}

		date, ok := buildDate(m[1], m[3], m[5])
		if !ok {
			continue
		}
		t, ok := buildTime(m[6], m[7], m[8])
		if !ok {
			continue
		}

		return civil.DateTime{Date: date, Time: t}, true
	}

	return civil.DateTime{}, false
}

func matchMonthDayTime(line string, year int) (civil.DateTime, bool) {
	matches := monthDayTimePattern.FindAllStringSubmatch(line, -1)
	for i := len(matches) - 1; i >= 0; i-- {
		m := matches[i]

		date, ok := buildDate(strconv.Itoa(year), m[1], m[2])
		if !ok {
			continue
		}
		t, ok := buildTime(m[3], m[4], m[5])
		if !ok {
			continue
		}

		return civil.DateTime{Date: date, Time: t}, true
	}

	return civil.DateTime{}, false
}

func matchDate(line string) (civil.Date, bool) {
	matches := dateOnlyPattern.FindAllStringSubmatch(line, -1)
	for i := len(matches) - 1; i >= 0; i-- {
		m := matches[i]
		if m[2] != m[4] {
			continue
		}
		if date, ok := buildDate(m[1], m[3], m[5]); ok {
			return date, true
		}
	}

	return civil.Date{}, false
}

func matchTime(line string) (civil.Time, bool) {
	matches := timeOnlyPattern.FindAllStringSubmatch(line, -1)
	for i := len(matches) - 1; i >= 0; i-- {
		m := matches[i]
		if t, ok := buildTime(m[1], m[2], m[3]); ok {
			return t, true
		}
	}

	return civil.Time{}, false
}

func lastTime(lines []string) (civil.Time, bool) {
	for i := len(lines) - 1; i >= 0; i-- {
		if t, ok := matchTime(lines[i]); ok {
			return t, true
		}
	}

	return civil.Time{}, false
}

func buildDate(year, month, day string) (civil.Date, bool) {
	y, errY := strconv.Atoi(year)
	m, errM := strconv.Atoi(month)
	d, errD := strconv.Atoi(day)
	if errY != nil || errM != nil || errD != nil {
		return civil.Date{}, false
	}

	if m < 1 || m > 12 || d < 1 || d > maxDay {
		return civil.Date{}, false
	}

	return civil.Date{Year: y, Month: time.Month(m), Day: min(d, daysIn(y, time.Month(m)))}, true
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func buildTime(hour, minute, second string) (civil.Time, bool) {
	h, errH := strconv.Atoi(hour)
	m, errM := strconv.Atoi(minute)
	if errH != nil || errM != nil {
		return civil.Time{}, false
	}

	s := 0
	if second != "" {
		v, err := strconv.Atoi(second)
		if err != nil {
			return civil.Time{}, false
		}
		s = v
	}

	t := civil.Time{Hour: h, Minute: m, Second: s}
	return t, t.IsValid()
}
