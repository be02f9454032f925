package schedule

import (
	"context"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/salon-scheduler/internal/audit"
	"github.com/BruksfildServices01/salon-scheduler/internal/auth"
	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/schedule"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/logger"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

// Patch is a partial update. Nil fields keep the stored value; the Clear
// flags null the optional parts explicitly.
type Patch struct {
	DayOfWeek      *string `json:"day_of_week" validate:"omitempty,weekday"`
	StartTime      *string `json:"start_time" validate:"omitempty,hhmm"`
	EndTime        *string `json:"end_time" validate:"omitempty,hhmm"`
	BreakStart     *string `json:"break_start" validate:"omitempty,hhmm"`
	BreakEnd       *string `json:"break_end" validate:"omitempty,hhmm"`
	EffectiveFrom  *string `json:"effective_from" validate:"omitempty,datetime=2006-01-02"`
	EffectiveUntil *string `json:"effective_until" validate:"omitempty,datetime=2006-01-02"`
	IsActive       *bool   `json:"is_active"`

	ClearBreak          bool `json:"clear_break"`
	ClearEffectiveUntil bool `json:"clear_effective_until"`
}

func (s *MutationService) Update(
	ctx context.Context,
	ac auth.Context,
	id uuid.UUID,
	p Patch,
) (*models.StaffSchedule, error) {

	if err := validate(s.validate, p); err != nil {
		return nil, err
	}
	if p.ClearBreak && (p.BreakStart != nil || p.BreakEnd != nil) {
		return nil, httperr.NewValidationError("clear_break", "cannot set and clear the break at once")
	}
	if p.ClearEffectiveUntil && p.EffectiveUntil != nil {
		return nil, httperr.NewValidationError("clear_effective_until", "cannot set and clear effective_until at once")
	}

	current, err := s.repo.GetSchedule(ctx, id)
	if err != nil {
		return nil, readErr("get schedule", err)
	}

	_, err = loadOwner(ctx, s.repo, s.tz, ac, current.StaffID)
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// Merge onto the stored row
	// --------------------------------------------------
	merged, err := mergePatch(*current, p)
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// Conflict, always re-checked for an active result
	// --------------------------------------------------
	if merged.IsActive {
		hit, err := s.detector.CheckTemplateConflict(
			ctx,
			merged.StaffID,
			domain.DayOfWeek(merged.DayOfWeek),
			merged.StartTime,
			merged.EndTime,
			&merged.ID,
		)
		if err != nil {
			return nil, err
		}
		if hit {
			err := httperr.NewConflictError(merged.DayOfWeek)
			logConflict(ctx, merged.StaffID, err)
			return nil, err
		}
	}

	actor := ac.CurrentActor()
	merged.UpdatedBy = actor.UserID

	if err := s.repo.UpdateSchedule(ctx, &merged); err != nil {
		err = writeErr("update schedule", err, domain.DayOfWeek(merged.DayOfWeek))
		logConflict(ctx, merged.StaffID, err)
		if httperr.IsSystem(err) {
			logger.FromContext(ctx).WithError(err).WithField("schedule_id", id).Error("update schedule failed")
		}
		return nil, err
	}

	userID := actor.UserID
	s.audit.Dispatch(audit.Event{
		SalonID:  merged.SalonID,
		UserID:   &userID,
		Action:   audit.ActionScheduleUpdated,
		Entity:   audit.EntityStaffSchedule,
		EntityID: &merged.ID,
		Metadata: map[string]any{
			"before": windowMeta(*current),
			"after":  windowMeta(merged),
		},
	})
	invalidate(ctx, s.cache, merged.SalonID)

	return &merged, nil
}

func mergePatch(row models.StaffSchedule, p Patch) (models.StaffSchedule, error) {
	w := domain.Window{
		Day:            domain.DayOfWeek(row.DayOfWeek),
		StartTime:      row.StartTime,
		EndTime:        row.EndTime,
		BreakStart:     deref(row.BreakStart),
		BreakEnd:       deref(row.BreakEnd),
		EffectiveFrom:  &row.EffectiveFrom,
		EffectiveUntil: row.EffectiveUntil,
	}

	if p.DayOfWeek != nil {
		day, err := domain.ParseDayOfWeek(*p.DayOfWeek)
		if err != nil {
			return row, err
		}
		w.Day = day
	}
	if p.StartTime != nil {
		w.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		w.EndTime = *p.EndTime
	}
	if p.ClearBreak {
		w.BreakStart, w.BreakEnd = "", ""
	}
	if p.BreakStart != nil {
		w.BreakStart = *p.BreakStart
	}
	if p.BreakEnd != nil {
		w.BreakEnd = *p.BreakEnd
	}

	if p.EffectiveFrom != nil {
		from, err := parseDate("effective_from", p.EffectiveFrom)
		if err != nil {
			return row, err
		}
		w.EffectiveFrom = from
	}
	if p.ClearEffectiveUntil {
		w.EffectiveUntil = nil
	}
	if p.EffectiveUntil != nil {
		until, err := parseDate("effective_until", p.EffectiveUntil)
		if err != nil {
			return row, err
		}
		w.EffectiveUntil = until
	}

	w, err := w.Normalize()
	if err != nil {
		return row, err
	}

	row.DayOfWeek = w.Day.String()
	row.StartTime = w.StartTime
	row.EndTime = w.EndTime
	row.BreakStart = optional(w.BreakStart)
	row.BreakEnd = optional(w.BreakEnd)
	row.EffectiveFrom = *w.EffectiveFrom
	row.EffectiveUntil = w.EffectiveUntil
	if p.IsActive != nil {
		row.IsActive = *p.IsActive
	}
	row.Staff = nil

	return row, nil
}

func windowMeta(s models.StaffSchedule) map[string]any {
	return map[string]any{
		"day_of_week": s.DayOfWeek,
		"start_time":  s.StartTime,
		"end_time":    s.EndTime,
		"is_active":   s.IsActive,
	}
}
