package schedule

import (
	"fmt"
	"strconv"
	"time"

	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
)

const DateLayout = "2006-01-02"

// ParseTimeOfDay converts "HH:MM" (or "HH:MM:00" as rendered by Postgres
// time columns) into minutes since midnight.
func ParseTimeOfDay(s string) (int, error) {
	invalid := httperr.NewValidationError("time", fmt.Sprintf("invalid time %q, use HH:MM", s))

	switch len(s) {
	case 5:
	case 8:
		if s[5] != ':' || s[6:] != "00" {
			return 0, invalid
		}
	default:
		return 0, invalid
	}

	if s[2] != ':' || !isDigits(s[0:2]) || !isDigits(s[3:5]) {
		return 0, invalid
	}

	h, _ := strconv.Atoi(s[0:2])
	m, _ := strconv.Atoi(s[3:5])
	if h > 23 || m > 59 {
		return 0, invalid
	}

	return h*60 + m, nil
}

// FormatTimeOfDay renders minutes since midnight as "HH:MM".
func FormatTimeOfDay(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// RangesOverlap reports whether [aStart, aEnd) and [bStart, bEnd) share more
// than a boundary point.
func RangesOverlap(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && bStart < aEnd
}

// InstantsOverlap is RangesOverlap for absolute instants.
func InstantsOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// ParseDate parses "2006-01-02" at midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	d, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, httperr.NewValidationError("date", fmt.Sprintf("invalid date %q, use YYYY-MM-DD", s))
	}
	return d, nil
}

// CalendarDate returns t's calendar day in t's own location as UTC midnight.
// Effective dates are stored this way so values from a Postgres date column
// and values parsed from input compare equal.
func CalendarDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseCalendarDate parses "2006-01-02" as a UTC calendar date.
func ParseCalendarDate(s string) (time.Time, error) {
	return ParseDate(s, time.UTC)
}

// At returns the instant at minutes past midnight of date's calendar day.
func At(date time.Time, minutes int) time.Time {
	return time.Date(
		date.Year(), date.Month(), date.Day(),
		minutes/60, minutes%60, 0, 0,
		date.Location(),
	)
}

// DayBounds returns [00:00, next 00:00) of date's calendar day.
func DayBounds(date time.Time) (time.Time, time.Time) {
	start := At(date, 0)
	return start, start.AddDate(0, 0, 1)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// ===============================
// Window
// ===============================

// Span is a validated same-day range in minutes since midnight.
type Span struct {
	Start int
	End   int
}

func (s Span) Overlaps(o Span) bool {
	return RangesOverlap(s.Start, s.End, o.Start, o.End)
}

// Window is the recurring part of a schedule template. An empty BreakStart
// and BreakEnd means no break.
type Window struct {
	Day            DayOfWeek
	StartTime      string
	EndTime        string
	BreakStart     string
	BreakEnd       string
	EffectiveFrom  *time.Time
	EffectiveUntil *time.Time
}

// Normalize validates the window shape and returns it with canonical
// "HH:MM" times.
func (w Window) Normalize() (Window, error) {
	if !w.Day.Valid() {
		return w, httperr.NewValidationError("day_of_week", "unknown weekday")
	}

	span, err := parseSpan("start_time", w.StartTime, "end_time", w.EndTime)
	if err != nil {
		return w, err
	}
	w.StartTime = FormatTimeOfDay(span.Start)
	w.EndTime = FormatTimeOfDay(span.End)

	hasStart, hasEnd := w.BreakStart != "", w.BreakEnd != ""
	if hasStart != hasEnd {
		return w, httperr.NewValidationError("break", "break_start and break_end must be set together")
	}

	if hasStart {
		brk, err := parseSpan("break_start", w.BreakStart, "break_end", w.BreakEnd)
		if err != nil {
			return w, err
		}
		if brk.Start < span.Start || brk.End > span.End {
			return w, httperr.NewValidationError("break", "break must fall within the working window")
		}
		w.BreakStart = FormatTimeOfDay(brk.Start)
		w.BreakEnd = FormatTimeOfDay(brk.End)
	}

	if w.EffectiveFrom != nil {
		from := CalendarDate(*w.EffectiveFrom)
		w.EffectiveFrom = &from
	}
	if w.EffectiveUntil != nil {
		until := CalendarDate(*w.EffectiveUntil)
		w.EffectiveUntil = &until
	}
	if w.EffectiveFrom != nil && w.EffectiveUntil != nil && w.EffectiveUntil.Before(*w.EffectiveFrom) {
		return w, httperr.NewValidationError("effective_until", "must be on or after effective_from")
	}

	return w, nil
}

// ParseSpan validates a start/end pair on its own.
func ParseSpan(start, end string) (Span, error) {
	return parseSpan("start_time", start, "end_time", end)
}

func parseSpan(startField, start, endField, end string) (Span, error) {
	s, err := parseField(startField, start)
	if err != nil {
		return Span{}, err
	}
	e, err := parseField(endField, end)
	if err != nil {
		return Span{}, err
	}
	if s >= e {
		return Span{}, httperr.NewValidationError(endField, fmt.Sprintf("%s must be after %s", endField, startField))
	}
	return Span{Start: s, End: e}, nil
}

func parseField(field, value string) (int, error) {
	m, err := ParseTimeOfDay(value)
	if err != nil {
		return 0, httperr.NewValidationError(field, fmt.Sprintf("invalid time %q, use HH:MM", value))
	}
	return m, nil
}
