package schedule

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

// ErrActiveDayTaken is returned by storage when the active-template unique
// index rejects a write.
var ErrActiveDayTaken = errors.New("active schedule already exists for this staff member and day")

// TemplateFilter narrows template listings. Zero values mean "no filter".
type TemplateFilter struct {
	StaffID    *uuid.UUID
	SalonID    *uuid.UUID
	Days       []DayOfWeek
	ActiveOnly bool
	ExcludeID  *uuid.UUID

	// EffectiveFrom keeps rows with effective_from <= the date;
	// EffectiveUntil keeps rows with no end or effective_until >= the date.
	EffectiveFrom  *time.Time
	EffectiveUntil *time.Time

	WithStaff bool
}

// TemplateReader is the read side the conflict detector needs.
type TemplateReader interface {
	ListSchedules(ctx context.Context, f TemplateFilter) ([]models.StaffSchedule, error)
}

type Repository interface {
	TemplateReader

	// -------- Ownership chain --------
	GetSalon(
		ctx context.Context,
		id uuid.UUID,
	) (*models.Salon, error)

	GetStaff(
		ctx context.Context,
		id uuid.UUID,
	) (*models.Staff, error)

	GetStaffByUserID(
		ctx context.Context,
		userID uuid.UUID,
	) (*models.Staff, error)

	// -------- Templates --------
	GetSchedule(
		ctx context.Context,
		id uuid.UUID,
	) (*models.StaffSchedule, error)

	CreateSchedule(
		ctx context.Context,
		s *models.StaffSchedule,
	) error

	// CreateSchedules inserts every row or none.
	CreateSchedules(
		ctx context.Context,
		rows []models.StaffSchedule,
	) error

	UpdateSchedule(
		ctx context.Context,
		s *models.StaffSchedule,
	) error

	DeleteSchedule(
		ctx context.Context,
		id uuid.UUID,
	) error
}

// ===============================
// Appointments (external, read-only)
// ===============================

type AppointmentInterval struct {
	ID      uuid.UUID
	StaffID uuid.UUID
	Start   time.Time
	End     time.Time
	Status  appointment.Status
}

// AppointmentSource lists bookings of a staff member that overlap
// [from, to) and are in one of statuses.
type AppointmentSource interface {
	ListAppointments(
		ctx context.Context,
		staffID uuid.UUID,
		from time.Time,
		to time.Time,
		statuses []appointment.Status,
	) ([]AppointmentInterval, error)
}
