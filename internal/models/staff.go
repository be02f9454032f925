package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Staff is the staff profile owned by staff management. Schedules only read
// it for ownership checks and the identity join.
type Staff struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SalonID uuid.UUID `gorm:"type:uuid;not null;index" json:"salon_id"`
	Salon   *Salon    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"salon,omitempty"`
	UserID  uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"user_id"`

	FullName string `gorm:"size:100;not null" json:"full_name"`
	Title    string `gorm:"size:100" json:"title"`
	Email    string `gorm:"size:100" json:"email"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Staff) TableName() string {
	return "staff"
}

func (s *Staff) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
