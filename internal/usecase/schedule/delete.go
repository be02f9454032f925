package schedule

import (
	"context"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/salon-scheduler/internal/audit"
	"github.com/BruksfildServices01/salon-scheduler/internal/auth"
)

// Delete removes a template. Removing availability never creates a conflict.
func (s *MutationService) Delete(
	ctx context.Context,
	ac auth.Context,
	id uuid.UUID,
) error {

	current, err := s.repo.GetSchedule(ctx, id)
	if err != nil {
		return readErr("get schedule", err)
	}

	if _, err := loadOwner(ctx, s.repo, s.tz, ac, current.StaffID); err != nil {
		return err
	}

	if err := s.repo.DeleteSchedule(ctx, id); err != nil {
		return readErr("delete schedule", err)
	}

	userID := ac.CurrentActor().UserID
	s.audit.Dispatch(audit.Event{
		SalonID:  current.SalonID,
		UserID:   &userID,
		Action:   audit.ActionScheduleDeleted,
		Entity:   audit.EntityStaffSchedule,
		EntityID: &current.ID,
		Metadata: windowMeta(*current),
	})
	invalidate(ctx, s.cache, current.SalonID)

	return nil
}
