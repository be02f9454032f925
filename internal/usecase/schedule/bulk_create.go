package schedule

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/salon-scheduler/internal/audit"
	"github.com/BruksfildServices01/salon-scheduler/internal/auth"
	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/schedule"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/logger"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

type BulkCreateInput struct {
	StaffID uuid.UUID
	SalonID uuid.UUID
	Windows []WindowInput `json:"windows" validate:"required,min=1,max=7,dive"`
}

// BulkCreate inserts a week of templates all-or-nothing. Any requested
// active day that already has an active template rejects the whole batch.
func (s *MutationService) BulkCreate(
	ctx context.Context,
	ac auth.Context,
	in BulkCreateInput,
) ([]models.StaffSchedule, error) {

	// --------------------------------------------------
	// Shape of every window, duplicates inside the batch
	// --------------------------------------------------
	if err := validate(s.validate, in); err != nil {
		return nil, err
	}

	shapes := make([]domain.Window, len(in.Windows))
	seen := map[domain.DayOfWeek]bool{}
	for i, w := range in.Windows {
		shape, err := w.shape()
		if err != nil {
			return nil, prefixField(fmt.Sprintf("windows[%d]", i), err)
		}
		if seen[shape.Day] {
			return nil, httperr.NewValidationError(
				fmt.Sprintf("windows[%d].day_of_week", i),
				"duplicate day "+shape.Day.String()+" in batch",
			)
		}
		seen[shape.Day] = true
		shapes[i] = shape
	}

	// --------------------------------------------------
	// Single authorization for the batch
	// --------------------------------------------------
	own, err := loadOwner(ctx, s.repo, s.tz, ac, in.StaffID)
	if err != nil {
		return nil, err
	}
	if in.SalonID != uuid.Nil && in.SalonID != own.staff.SalonID {
		return nil, httperr.NewValidationError("salon_id", "staff member does not belong to this salon")
	}

	windows := make([]domain.Window, len(shapes))
	var proposals []domain.Proposal
	var activeDays []domain.DayOfWeek
	for i, shape := range shapes {
		w, err := s.withDates(shape, in.Windows[i].EffectiveFrom, in.Windows[i].EffectiveUntil, own)
		if err != nil {
			return nil, prefixField(fmt.Sprintf("windows[%d]", i), err)
		}
		windows[i] = w

		if in.Windows[i].active() {
			proposals = append(proposals, domain.Proposal{
				Day:       w.Day,
				StartTime: w.StartTime,
				EndTime:   w.EndTime,
			})
			activeDays = append(activeDays, w.Day)
		}
	}

	// --------------------------------------------------
	// One conflict query for all days
	// --------------------------------------------------
	flags, err := s.detector.BulkCheckConflicts(ctx, own.staff.ID, proposals)
	if err != nil {
		return nil, err
	}
	if days := domain.ConflictingDays(flags); len(days) > 0 {
		err := httperr.NewConflictError(domain.DayNames(days)...)
		logConflict(ctx, own.staff.ID, err)
		return nil, err
	}

	// --------------------------------------------------
	// Persist in one transaction
	// --------------------------------------------------
	actor := ac.CurrentActor()
	rows := make([]models.StaffSchedule, len(windows))
	for i, w := range windows {
		rows[i] = models.StaffSchedule{
			StaffID:        own.staff.ID,
			SalonID:        own.staff.SalonID,
			DayOfWeek:      w.Day.String(),
			StartTime:      w.StartTime,
			EndTime:        w.EndTime,
			BreakStart:     optional(w.BreakStart),
			BreakEnd:       optional(w.BreakEnd),
			EffectiveFrom:  *w.EffectiveFrom,
			EffectiveUntil: w.EffectiveUntil,
			IsActive:       in.Windows[i].active(),
			CreatedBy:      actor.UserID,
			UpdatedBy:      actor.UserID,
		}
	}

	if err := s.repo.CreateSchedules(ctx, rows); err != nil {
		err = writeErr("bulk create schedules", err, activeDays...)
		logConflict(ctx, own.staff.ID, err)
		if httperr.IsSystem(err) {
			logger.FromContext(ctx).WithError(err).WithField("staff_id", own.staff.ID).Error("bulk create schedules failed")
		}
		return nil, err
	}

	ids := make([]uuid.UUID, len(rows))
	days := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
		days[i] = r.DayOfWeek
	}

	userID := actor.UserID
	staffID := own.staff.ID
	s.audit.Dispatch(audit.Event{
		SalonID:  own.staff.SalonID,
		UserID:   &userID,
		Action:   audit.ActionScheduleBulkCreated,
		Entity:   audit.EntityStaffSchedule,
		Metadata: map[string]any{
			"staff_id":     staffID,
			"schedule_ids": ids,
			"days":         days,
		},
	})
	invalidate(ctx, s.cache, own.staff.SalonID)

	return rows, nil
}

// prefixField scopes a window validation error to its position in the batch.
func prefixField(prefix string, err error) error {
	var ve *httperr.ValidationError
	if errors.As(err, &ve) {
		return httperr.NewValidationError(prefix+"."+ve.Field, ve.Message)
	}
	return err
}
