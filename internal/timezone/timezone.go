package timezone

import "time"

const DefaultTimezone = "America/Sao_Paulo"

func IsValid(tz string) bool {
	if tz == "" {
		return false
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}

// Resolver maps salon timezones to locations, falling back to a default zone.
type Resolver struct {
	fallback *time.Location
	now      func() time.Time
}

// NewResolver uses def as fallback, or DefaultTimezone when def is invalid.
func NewResolver(def string) *Resolver {
	if !IsValid(def) {
		def = DefaultTimezone
	}
	loc, err := time.LoadLocation(def)
	if err != nil {
		loc = time.UTC
	}
	return &Resolver{fallback: loc, now: time.Now}
}

// WithClock overrides the clock, for tests.
func (r *Resolver) WithClock(now func() time.Time) *Resolver {
	r.now = now
	return r
}

func (r *Resolver) Location(tz string) *time.Location {
	if IsValid(tz) {
		if loc, err := time.LoadLocation(tz); err == nil {
			return loc
		}
	}
	return r.fallback
}

// TodayIn returns midnight of the current calendar day in loc.
func (r *Resolver) TodayIn(loc *time.Location) time.Time {
	now := r.now().In(loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
}
