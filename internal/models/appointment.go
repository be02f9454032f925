package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Appointment belongs to the booking subsystem; schedules only read the
// interval and status.
type Appointment struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	SalonID    uuid.UUID `gorm:"type:uuid;not null;index" json:"salon_id"`
	StaffID    uuid.UUID `gorm:"type:uuid;not null;index:idx_appointments_staff_start,priority:1" json:"staff_id"`
	CustomerID uuid.UUID `gorm:"type:uuid" json:"customer_id"`

	StartTime time.Time `gorm:"not null;index:idx_appointments_staff_start,priority:2" json:"start_time"`
	EndTime   time.Time `gorm:"not null" json:"end_time"`

	Status string `gorm:"size:20;not null" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
