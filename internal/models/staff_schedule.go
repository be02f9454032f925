package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StaffSchedule is a recurring weekly availability window for one staff
// member on one weekday.
type StaffSchedule struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	StaffID uuid.UUID `gorm:"type:uuid;not null;index:idx_staff_schedules_staff_day,priority:1" json:"staff_id"`
	Staff   *Staff    `gorm:"foreignKey:StaffID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"staff,omitempty"`

	SalonID uuid.UUID `gorm:"type:uuid;not null;index" json:"salon_id"`

	DayOfWeek string `gorm:"size:10;not null;index:idx_staff_schedules_staff_day,priority:2" json:"day_of_week"`

	StartTime  string  `gorm:"size:5;not null" json:"start_time"`
	EndTime    string  `gorm:"size:5;not null" json:"end_time"`
	BreakStart *string `gorm:"size:5" json:"break_start"`
	BreakEnd   *string `gorm:"size:5" json:"break_end"`

	EffectiveFrom  time.Time  `gorm:"type:date;not null" json:"effective_from"`
	EffectiveUntil *time.Time `gorm:"type:date" json:"effective_until"`

	// no gorm default: a false value must survive Create
	IsActive bool `gorm:"not null" json:"is_active"`

	CreatedBy uuid.UUID `gorm:"type:uuid" json:"created_by"`
	UpdatedBy uuid.UUID `gorm:"type:uuid" json:"updated_by"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (StaffSchedule) TableName() string {
	return "staff_schedules"
}

func (s *StaffSchedule) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
