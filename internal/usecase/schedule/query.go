package schedule

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/BruksfildServices01/salon-scheduler/internal/auth"
	"github.com/BruksfildServices01/salon-scheduler/internal/cache"
	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/schedule"
	"github.com/BruksfildServices01/salon-scheduler/internal/dto"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/logger"
	"github.com/BruksfildServices01/salon-scheduler/internal/timezone"
)

// DateRange optionally narrows listings to templates effective over the
// whole range. Dates are "YYYY-MM-DD" calendar dates.
type DateRange struct {
	From string `form:"from" validate:"omitempty,datetime=2006-01-02"`
	To   string `form:"to" validate:"omitempty,datetime=2006-01-02"`
}

func (r DateRange) empty() bool {
	return r.From == "" && r.To == ""
}

// apply parses the range as calendar dates and copies it onto f.
func (r DateRange) apply(f *domain.TemplateFilter) error {
	from, err := parseDate("from", optional(r.From))
	if err != nil {
		return err
	}
	to, err := parseDate("to", optional(r.To))
	if err != nil {
		return err
	}
	if from != nil && to != nil && to.Before(*from) {
		return httperr.NewValidationError("to", "must be on or after from")
	}
	f.EffectiveFrom = from
	f.EffectiveUntil = to
	return nil
}

type ConflictInput struct {
	StaffID   uuid.UUID
	Date      string     `form:"date" json:"date" validate:"required,datetime=2006-01-02"`
	StartTime string     `form:"start" json:"start_time" validate:"required,hhmm"`
	EndTime   string     `form:"end" json:"end_time" validate:"required,hhmm"`
	ExcludeID *uuid.UUID `json:"exclude_id"`
}

// QueryService answers read questions about schedules.
type QueryService struct {
	repo     domain.Repository
	detector *domain.ConflictDetector
	cache    cache.ScheduleCache
	validate *validator.Validate
	tz       *timezone.Resolver
}

func NewQueryService(
	repo domain.Repository,
	detector *domain.ConflictDetector,
	scheduleCache cache.ScheduleCache,
	validate *validator.Validate,
	tz *timezone.Resolver,
) *QueryService {
	if scheduleCache == nil {
		scheduleCache = cache.Noop{}
	}
	return &QueryService{
		repo:     repo,
		detector: detector,
		cache:    scheduleCache,
		validate: validate,
		tz:       tz,
	}
}

// ListSalonSchedules lists every template of a salon with staff identity,
// ordered by day then start time.
func (q *QueryService) ListSalonSchedules(
	ctx context.Context,
	ac auth.Context,
	salonID uuid.UUID,
	r DateRange,
) ([]dto.StaffScheduleDTO, error) {

	if !ac.HasRoleInSalon(salonID) {
		return nil, httperr.NewAuthorizationError("not a member of this salon")
	}
	if err := validate(q.validate, r); err != nil {
		return nil, err
	}

	if _, err := q.repo.GetSalon(ctx, salonID); err != nil {
		return nil, readErr("get salon", err)
	}

	log := logger.FromContext(ctx).WithField("salon_id", salonID)

	// the version is read before the rows so a concurrent invalidation
	// retires whatever this call writes back
	cacheable := r.empty()
	var version int64
	if cacheable {
		hit, err := q.cache.GetSalon(ctx, salonID)
		switch {
		case err != nil:
			log.WithError(err).Warn("schedule cache read failed")
			cacheable = false
		case hit.Hit:
			return hit.Items, nil
		default:
			version = hit.Version
		}
	}

	filter := domain.TemplateFilter{
		SalonID:   &salonID,
		WithStaff: true,
	}
	if err := r.apply(&filter); err != nil {
		return nil, err
	}

	rows, err := q.repo.ListSchedules(ctx, filter)
	if err != nil {
		log.WithError(err).Error("list salon schedules failed")
		return nil, httperr.NewSystemError("list salon schedules", err)
	}
	items := dto.FromStaffSchedules(rows)

	if cacheable {
		if err := q.cache.SetSalon(ctx, salonID, version, items); err != nil {
			log.WithError(err).Warn("schedule cache write failed")
		}
	}

	return items, nil
}

// ListStaffSchedule lists one staff member's templates. Managers of the
// salon and the staff member themself may read it.
func (q *QueryService) ListStaffSchedule(
	ctx context.Context,
	ac auth.Context,
	staffID uuid.UUID,
	r DateRange,
) ([]dto.StaffScheduleDTO, error) {

	if err := validate(q.validate, r); err != nil {
		return nil, err
	}

	own, err := loadOwner(ctx, q.repo, q.tz, ac, staffID)
	if err != nil {
		return nil, err
	}

	filter := domain.TemplateFilter{
		StaffID:   &own.staff.ID,
		WithStaff: true,
	}
	if err := r.apply(&filter); err != nil {
		return nil, err
	}

	rows, err := q.repo.ListSchedules(ctx, filter)
	if err != nil {
		return nil, httperr.NewSystemError("list staff schedules", err)
	}
	return dto.FromStaffSchedules(rows), nil
}

// GetConflicts reports templates and live bookings that a candidate window
// on a concrete date would collide with.
func (q *QueryService) GetConflicts(
	ctx context.Context,
	ac auth.Context,
	in ConflictInput,
) (*domain.ConflictReport, error) {

	if err := validate(q.validate, in); err != nil {
		return nil, err
	}
	if _, err := domain.ParseSpan(in.StartTime, in.EndTime); err != nil {
		return nil, err
	}

	own, err := loadOwner(ctx, q.repo, q.tz, ac, in.StaffID)
	if err != nil {
		return nil, err
	}

	date, err := domain.ParseDate(in.Date, own.loc)
	if err != nil {
		return nil, err
	}

	return q.detector.CheckFullConflict(ctx, own.staff.ID, date, in.StartTime, in.EndTime, in.ExcludeID)
}
