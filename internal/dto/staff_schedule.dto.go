package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

const dateLayout = "2006-01-02"

type StaffIdentityDTO struct {
	ID       uuid.UUID `json:"id"`
	FullName string    `json:"full_name"`
	Title    string    `json:"title,omitempty"`
	Email    string    `json:"email,omitempty"`
}

type StaffScheduleDTO struct {
	ID             uuid.UUID         `json:"id"`
	StaffID        uuid.UUID         `json:"staff_id"`
	SalonID        uuid.UUID         `json:"salon_id"`
	DayOfWeek      string            `json:"day_of_week"`
	StartTime      string            `json:"start_time"`
	EndTime        string            `json:"end_time"`
	BreakStart     *string           `json:"break_start"`
	BreakEnd       *string           `json:"break_end"`
	EffectiveFrom  string            `json:"effective_from"`
	EffectiveUntil *string           `json:"effective_until"`
	IsActive       bool              `json:"is_active"`
	Staff          *StaffIdentityDTO `json:"staff,omitempty"`
	CreatedBy      uuid.UUID         `json:"created_by"`
	UpdatedBy      uuid.UUID         `json:"updated_by"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

func FromStaffSchedule(s models.StaffSchedule) StaffScheduleDTO {
	out := StaffScheduleDTO{
		ID:            s.ID,
		StaffID:       s.StaffID,
		SalonID:       s.SalonID,
		DayOfWeek:     s.DayOfWeek,
		StartTime:     s.StartTime,
		EndTime:       s.EndTime,
		BreakStart:    s.BreakStart,
		BreakEnd:      s.BreakEnd,
		EffectiveFrom: s.EffectiveFrom.Format(dateLayout),
		IsActive:      s.IsActive,
		CreatedBy:     s.CreatedBy,
		UpdatedBy:     s.UpdatedBy,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}

	if s.EffectiveUntil != nil {
		until := s.EffectiveUntil.Format(dateLayout)
		out.EffectiveUntil = &until
	}

	if s.Staff != nil {
		out.Staff = &StaffIdentityDTO{
			ID:       s.Staff.ID,
			FullName: s.Staff.FullName,
			Title:    s.Staff.Title,
			Email:    s.Staff.Email,
		}
	}

	return out
}

func FromStaffSchedules(rows []models.StaffSchedule) []StaffScheduleDTO {
	out := make([]StaffScheduleDTO, len(rows))
	for i, r := range rows {
		out[i] = FromStaffSchedule(r)
	}
	return out
}
