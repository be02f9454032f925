package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/salon-scheduler/internal/domain/schedule"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

const uniqueViolation = "23505"

// orderByDay sorts Sunday first, matching time.Weekday.
const orderByDay = `CASE day_of_week
	WHEN 'sunday' THEN 0
	WHEN 'monday' THEN 1
	WHEN 'tuesday' THEN 2
	WHEN 'wednesday' THEN 3
	WHEN 'thursday' THEN 4
	WHEN 'friday' THEN 5
	WHEN 'saturday' THEN 6
END`

type ScheduleGormRepository struct {
	db *gorm.DB
}

func NewScheduleGormRepository(db *gorm.DB) *ScheduleGormRepository {
	return &ScheduleGormRepository{db: db}
}

var _ schedule.Repository = (*ScheduleGormRepository)(nil)

// --------------------------------------------------
// Ownership chain
// --------------------------------------------------

func (r *ScheduleGormRepository) GetSalon(
	ctx context.Context,
	id uuid.UUID,
) (*models.Salon, error) {

	var salon models.Salon
	if err := r.db.WithContext(ctx).First(&salon, "id = ?", id).Error; err != nil {
		return nil, notFound(err, httperr.ErrSalonNotFound)
	}
	return &salon, nil
}

func (r *ScheduleGormRepository) GetStaff(
	ctx context.Context,
	id uuid.UUID,
) (*models.Staff, error) {

	var staff models.Staff
	if err := r.db.WithContext(ctx).First(&staff, "id = ?", id).Error; err != nil {
		return nil, notFound(err, httperr.ErrStaffNotFound)
	}
	return &staff, nil
}

func (r *ScheduleGormRepository) GetStaffByUserID(
	ctx context.Context,
	userID uuid.UUID,
) (*models.Staff, error) {

	var staff models.Staff
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&staff).Error; err != nil {
		return nil, notFound(err, httperr.ErrStaffNotFound)
	}
	return &staff, nil
}

// --------------------------------------------------
// Templates
// --------------------------------------------------

func (r *ScheduleGormRepository) GetSchedule(
	ctx context.Context,
	id uuid.UUID,
) (*models.StaffSchedule, error) {

	var s models.StaffSchedule
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, notFound(err, httperr.ErrScheduleNotFound)
	}
	return &s, nil
}

func (r *ScheduleGormRepository) ListSchedules(
	ctx context.Context,
	f schedule.TemplateFilter,
) ([]models.StaffSchedule, error) {

	q := r.db.WithContext(ctx).Model(&models.StaffSchedule{})

	if f.StaffID != nil {
		q = q.Where("staff_id = ?", *f.StaffID)
	}
	if f.SalonID != nil {
		q = q.Where("salon_id = ?", *f.SalonID)
	}
	if len(f.Days) > 0 {
		q = q.Where("day_of_week IN ?", schedule.DayNames(f.Days))
	}
	if f.ActiveOnly {
		q = q.Where("is_active = ?", true)
	}
	if f.ExcludeID != nil {
		q = q.Where("id <> ?", *f.ExcludeID)
	}
	if f.EffectiveFrom != nil {
		q = q.Where("(effective_from IS NULL OR effective_from <= ?)", *f.EffectiveFrom)
	}
	if f.EffectiveUntil != nil {
		q = q.Where("(effective_until IS NULL OR effective_until >= ?)", *f.EffectiveUntil)
	}
	if f.WithStaff {
		q = q.Preload("Staff")
	}

	var out []models.StaffSchedule
	if err := q.
		Order(orderByDay).
		Order("start_time ASC").
		Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	return out, nil
}

func (r *ScheduleGormRepository) CreateSchedule(
	ctx context.Context,
	s *models.StaffSchedule,
) error {
	return uniqueErr(r.db.WithContext(ctx).Omit("Staff").Create(s).Error)
}

func (r *ScheduleGormRepository) CreateSchedules(
	ctx context.Context,
	rows []models.StaffSchedule,
) error {
	if len(rows) == 0 {
		return nil
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit("Staff").Create(&rows).Error
	})
	return uniqueErr(err)
}

func (r *ScheduleGormRepository) UpdateSchedule(
	ctx context.Context,
	s *models.StaffSchedule,
) error {

	res := r.db.WithContext(ctx).
		Model(s).
		Select(
			"day_of_week",
			"start_time",
			"end_time",
			"break_start",
			"break_end",
			"effective_from",
			"effective_until",
			"is_active",
			"updated_by",
			"updated_at",
		).
		Updates(s)
	if res.Error != nil {
		return uniqueErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return httperr.ErrScheduleNotFound
	}
	return nil
}

func (r *ScheduleGormRepository) DeleteSchedule(
	ctx context.Context,
	id uuid.UUID,
) error {

	res := r.db.WithContext(ctx).Delete(&models.StaffSchedule{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("delete schedule: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return httperr.ErrScheduleNotFound
	}
	return nil
}

// --------------------------------------------------
// Error mapping
// --------------------------------------------------

func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

// uniqueErr maps the active-day index violation, whether gorm translated it
// or the raw pgx error came through.
func uniqueErr(err error) error {
	if err == nil {
		return nil
	}
	if isUniqueViolation(err) {
		return schedule.ErrActiveDayTaken
	}
	return err
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
