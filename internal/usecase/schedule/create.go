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

// ======================================================
// INPUT
// ======================================================

type CreateInput struct {
	StaffID uuid.UUID
	// SalonID, when set, must match the staff member's salon.
	SalonID uuid.UUID
	Window  WindowInput
}

// ======================================================
// EXECUTE
// ======================================================

func (s *MutationService) Create(
	ctx context.Context,
	ac auth.Context,
	in CreateInput,
) (*models.StaffSchedule, error) {

	// --------------------------------------------------
	// Shape
	// --------------------------------------------------
	if err := validate(s.validate, in.Window); err != nil {
		return nil, err
	}
	shape, err := in.Window.shape()
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// Ownership
	// --------------------------------------------------
	own, err := loadOwner(ctx, s.repo, s.tz, ac, in.StaffID)
	if err != nil {
		return nil, err
	}
	if in.SalonID != uuid.Nil && in.SalonID != own.staff.SalonID {
		return nil, httperr.NewValidationError("salon_id", "staff member does not belong to this salon")
	}

	// --------------------------------------------------
	// Effective dates, salon timezone
	// --------------------------------------------------
	window, err := s.withDates(shape, in.Window.EffectiveFrom, in.Window.EffectiveUntil, own)
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// Conflict
	// --------------------------------------------------
	active := in.Window.active()
	if active {
		hit, err := s.detector.CheckTemplateConflict(
			ctx,
			own.staff.ID,
			window.Day,
			window.StartTime,
			window.EndTime,
			nil,
		)
		if err != nil {
			return nil, err
		}
		if hit {
			err := httperr.NewConflictError(window.Day.String())
			logConflict(ctx, own.staff.ID, err)
			return nil, err
		}
	}

	// --------------------------------------------------
	// Persist
	// --------------------------------------------------
	actor := ac.CurrentActor()
	row := &models.StaffSchedule{
		StaffID:        own.staff.ID,
		SalonID:        own.staff.SalonID,
		DayOfWeek:      window.Day.String(),
		StartTime:      window.StartTime,
		EndTime:        window.EndTime,
		BreakStart:     optional(window.BreakStart),
		BreakEnd:       optional(window.BreakEnd),
		EffectiveFrom:  *window.EffectiveFrom,
		EffectiveUntil: window.EffectiveUntil,
		IsActive:       active,
		CreatedBy:      actor.UserID,
		UpdatedBy:      actor.UserID,
	}

	if err := s.repo.CreateSchedule(ctx, row); err != nil {
		err = writeErr("create schedule", err, window.Day)
		logConflict(ctx, own.staff.ID, err)
		if httperr.IsSystem(err) {
			logger.FromContext(ctx).WithError(err).WithField("staff_id", own.staff.ID).Error("create schedule failed")
		}
		return nil, err
	}

	// --------------------------------------------------
	// Side effects
	// --------------------------------------------------
	userID := actor.UserID
	s.audit.Dispatch(audit.Event{
		SalonID:  row.SalonID,
		UserID:   &userID,
		Action:   audit.ActionScheduleCreated,
		Entity:   audit.EntityStaffSchedule,
		EntityID: &row.ID,
		Metadata: map[string]any{
			"staff_id":    row.StaffID,
			"day_of_week": row.DayOfWeek,
			"start_time":  row.StartTime,
			"end_time":    row.EndTime,
		},
	})
	invalidate(ctx, s.cache, row.SalonID)

	return row, nil
}

// withDates parses the effective dates, defaulting effective_from to today
// in the salon timezone, and re-validates the full window.
func (s *MutationService) withDates(
	w domain.Window,
	from *string,
	until *string,
	own *owner,
) (domain.Window, error) {

	effFrom, err := parseDate("effective_from", from)
	if err != nil {
		return w, err
	}
	if effFrom == nil {
		today := domain.CalendarDate(s.tz.TodayIn(own.loc))
		effFrom = &today
	}

	effUntil, err := parseDate("effective_until", until)
	if err != nil {
		return w, err
	}

	w.EffectiveFrom = effFrom
	w.EffectiveUntil = effUntil
	return w.Normalize()
}
