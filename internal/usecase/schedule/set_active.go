package schedule

import (
	"context"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/salon-scheduler/internal/audit"
	"github.com/BruksfildServices01/salon-scheduler/internal/auth"
	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/schedule"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

// SetActive toggles a template. Activating re-runs the conflict check;
// deactivating never conflicts.
func (s *MutationService) SetActive(
	ctx context.Context,
	ac auth.Context,
	id uuid.UUID,
	active bool,
) (*models.StaffSchedule, error) {

	current, err := s.repo.GetSchedule(ctx, id)
	if err != nil {
		return nil, readErr("get schedule", err)
	}

	if _, err := loadOwner(ctx, s.repo, s.tz, ac, current.StaffID); err != nil {
		return nil, err
	}

	if current.IsActive == active {
		return current, nil
	}

	day := domain.DayOfWeek(current.DayOfWeek)
	if active {
		hit, err := s.detector.CheckTemplateConflict(
			ctx,
			current.StaffID,
			day,
			current.StartTime,
			current.EndTime,
			&current.ID,
		)
		if err != nil {
			return nil, err
		}
		if hit {
			err := httperr.NewConflictError(day.String())
			logConflict(ctx, current.StaffID, err)
			return nil, err
		}
	}

	actor := ac.CurrentActor()
	updated := *current
	updated.Staff = nil
	updated.IsActive = active
	updated.UpdatedBy = actor.UserID

	if err := s.repo.UpdateSchedule(ctx, &updated); err != nil {
		err = writeErr("set schedule active", err, day)
		logConflict(ctx, current.StaffID, err)
		return nil, err
	}

	action := audit.ActionScheduleDeactivated
	if active {
		action = audit.ActionScheduleActivated
	}
	userID := actor.UserID
	s.audit.Dispatch(audit.Event{
		SalonID:  updated.SalonID,
		UserID:   &userID,
		Action:   action,
		Entity:   audit.EntityStaffSchedule,
		EntityID: &updated.ID,
	})
	invalidate(ctx, s.cache, updated.SalonID)

	return &updated, nil
}
