package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/domain/schedule"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

// AppointmentGormRepository reads bookings owned by the booking subsystem.
// It never writes.
type AppointmentGormRepository struct {
	db *gorm.DB
}

func NewAppointmentGormRepository(db *gorm.DB) *AppointmentGormRepository {
	return &AppointmentGormRepository{db: db}
}

var _ schedule.AppointmentSource = (*AppointmentGormRepository)(nil)

func (r *AppointmentGormRepository) ListAppointments(
	ctx context.Context,
	staffID uuid.UUID,
	from time.Time,
	to time.Time,
	statuses []appointment.Status,
) ([]schedule.AppointmentInterval, error) {

	if len(statuses) == 0 {
		return nil, nil
	}

	var rows []models.Appointment
	if err := r.db.WithContext(ctx).
		Where(
			"staff_id = ? AND start_time < ? AND end_time > ? AND status IN ?",
			staffID,
			to,
			from,
			appointment.Strings(statuses),
		).
		Order("start_time ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}

	out := make([]schedule.AppointmentInterval, len(rows))
	for i, a := range rows {
		out[i] = schedule.AppointmentInterval{
			ID:      a.ID,
			StaffID: a.StaffID,
			Start:   a.StartTime,
			End:     a.EndTime,
			Status:  appointment.Status(a.Status),
		}
	}
	return out, nil
}
