package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/BruksfildServices01/salon-scheduler/internal/audit"
	"github.com/BruksfildServices01/salon-scheduler/internal/auth"
	"github.com/BruksfildServices01/salon-scheduler/internal/cache"
	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/schedule"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/logger"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
	"github.com/BruksfildServices01/salon-scheduler/internal/timezone"
	"github.com/BruksfildServices01/salon-scheduler/internal/validators"
)

// Auditor receives schedule audit events. *audit.Dispatcher satisfies it.
type Auditor interface {
	Dispatch(ev audit.Event)
}

// ======================================================
// INPUT
// ======================================================

// WindowInput is one requested template as it arrives from a client. Dates
// are "YYYY-MM-DD" in the salon timezone.
type WindowInput struct {
	DayOfWeek      string  `json:"day_of_week" validate:"required,weekday"`
	StartTime      string  `json:"start_time" validate:"required,hhmm"`
	EndTime        string  `json:"end_time" validate:"required,hhmm"`
	BreakStart     *string `json:"break_start" validate:"omitempty,hhmm"`
	BreakEnd       *string `json:"break_end" validate:"omitempty,hhmm"`
	EffectiveFrom  *string `json:"effective_from" validate:"omitempty,datetime=2006-01-02"`
	EffectiveUntil *string `json:"effective_until" validate:"omitempty,datetime=2006-01-02"`
	IsActive       *bool   `json:"is_active"`
}

func (in WindowInput) active() bool {
	return in.IsActive == nil || *in.IsActive
}

// shape converts the input into a domain window without dates, so the pure
// shape checks run before any storage access.
func (in WindowInput) shape() (domain.Window, error) {
	day, err := domain.ParseDayOfWeek(in.DayOfWeek)
	if err != nil {
		return domain.Window{}, err
	}
	return domain.Window{
		Day:        day,
		StartTime:  in.StartTime,
		EndTime:    in.EndTime,
		BreakStart: deref(in.BreakStart),
		BreakEnd:   deref(in.BreakEnd),
	}.Normalize()
}

// ======================================================
// SHARED
// ======================================================

// owner is a staff member resolved together with the salon that owns it.
type owner struct {
	staff *models.Staff
	salon *models.Salon
	loc   *time.Location
}

func loadOwner(
	ctx context.Context,
	repo domain.Repository,
	tz *timezone.Resolver,
	ac auth.Context,
	staffID uuid.UUID,
) (*owner, error) {

	staff, err := repo.GetStaff(ctx, staffID)
	if err != nil {
		return nil, readErr("get staff", err)
	}

	if !ac.CanActOnStaff(staff.SalonID, staff.ID) {
		return nil, httperr.NewAuthorizationError("not allowed to manage this staff member's schedule")
	}

	salon, err := repo.GetSalon(ctx, staff.SalonID)
	if err != nil {
		return nil, readErr("get salon", err)
	}

	return &owner{
		staff: staff,
		salon: salon,
		loc:   tz.Location(salon.Timezone),
	}, nil
}

func validate(v *validator.Validate, in any) error {
	if err := v.Struct(in); err != nil {
		return validators.Translate(err)
	}
	return nil
}

// readErr keeps not-found errors and wraps everything else.
func readErr(op string, err error) error {
	if httperr.IsNotFound(err) {
		return err
	}
	return httperr.NewSystemError(op, err)
}

// writeErr converts the active-day index violation into a conflict on days.
func writeErr(op string, err error, days ...domain.DayOfWeek) error {
	if errors.Is(err, domain.ErrActiveDayTaken) {
		return httperr.NewConflictError(domain.DayNames(domain.SortDays(days))...)
	}
	return readErr(op, err)
}

// parseDate reads a date-only field as a calendar date. Salon timezones
// only matter for "today" and for concrete instants.
func parseDate(field string, s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	d, err := domain.ParseCalendarDate(*s)
	if err != nil {
		return nil, httperr.NewValidationError(field, fmt.Sprintf("invalid date %q, use YYYY-MM-DD", *s))
	}
	return &d, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func invalidate(ctx context.Context, c cache.ScheduleCache, salonID uuid.UUID) {
	if err := c.InvalidateSalon(ctx, salonID); err != nil {
		logger.FromContext(ctx).
			WithError(err).
			WithField("salon_id", salonID).
			Warn("schedule cache invalidation failed")
	}
}

func logConflict(ctx context.Context, staffID uuid.UUID, err error) {
	if ce, ok := httperr.AsConflict(err); ok {
		logger.FromContext(ctx).
			WithField("staff_id", staffID).
			WithField("days", ce.Days).
			Info("schedule rejected: conflict")
	}
}
