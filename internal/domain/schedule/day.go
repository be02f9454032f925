package schedule

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
)

// ===============================
// Day of week
// ===============================

// DayOfWeek is stored and serialized as the lowercase English weekday name.
// Index order follows time.Weekday: Sunday=0 ... Saturday=6.
type DayOfWeek string

const (
	Sunday    DayOfWeek = "sunday"
	Monday    DayOfWeek = "monday"
	Tuesday   DayOfWeek = "tuesday"
	Wednesday DayOfWeek = "wednesday"
	Thursday  DayOfWeek = "thursday"
	Friday    DayOfWeek = "friday"
	Saturday  DayOfWeek = "saturday"
)

var weekdays = [7]DayOfWeek{
	Sunday,
	Monday,
	Tuesday,
	Wednesday,
	Thursday,
	Friday,
	Saturday,
}

func (d DayOfWeek) String() string {
	return string(d)
}

func (d DayOfWeek) Valid() bool {
	return d.Index() >= 0
}

// Index returns 0..6, or -1 for an unknown value.
func (d DayOfWeek) Index() int {
	for i, w := range weekdays {
		if w == d {
			return i
		}
	}
	return -1
}

// DayFromIndex maps 0..6 to a weekday.
func DayFromIndex(i int) (DayOfWeek, bool) {
	if i < 0 || i > 6 {
		return "", false
	}
	return weekdays[i], true
}

// ParseDayOfWeek accepts a weekday name (any case) or its index "0".."6".
func ParseDayOfWeek(s string) (DayOfWeek, error) {
	v := strings.ToLower(strings.TrimSpace(s))

	if n, err := strconv.Atoi(v); err == nil {
		if d, ok := DayFromIndex(n); ok {
			return d, nil
		}
		return "", httperr.NewValidationError("day_of_week", "must be between 0 (sunday) and 6 (saturday)")
	}

	d := DayOfWeek(v)
	if !d.Valid() {
		return "", httperr.NewValidationError("day_of_week", "unknown weekday "+strconv.Quote(s))
	}
	return d, nil
}

func (d *DayOfWeek) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	var s string
	switch v := raw.(type) {
	case string:
		s = v
	case float64:
		if v != math.Trunc(v) {
			return httperr.NewValidationError("day_of_week", "must be a weekday name or index")
		}
		s = strconv.Itoa(int(v))
	default:
		return httperr.NewValidationError("day_of_week", "must be a weekday name or index")
	}

	parsed, err := ParseDayOfWeek(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ResolveDayOfWeek maps a calendar date to its weekday in the date's own
// location, using the time.Weekday convention (Sunday=0).
func ResolveDayOfWeek(date time.Time) DayOfWeek {
	return weekdays[int(date.Weekday())]
}

// SortDays orders days Sunday..Saturday and drops duplicates.
func SortDays(days []DayOfWeek) []DayOfWeek {
	seen := [7]bool{}
	for _, d := range days {
		if i := d.Index(); i >= 0 {
			seen[i] = true
		}
	}

	out := make([]DayOfWeek, 0, len(days))
	for i, ok := range seen {
		if ok {
			out = append(out, weekdays[i])
		}
	}
	return out
}

func dayNames(days []DayOfWeek) []string {
	out := make([]string, len(days))
	for i, d := range days {
		out[i] = d.String()
	}
	return out
}
