package testutils

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/domain/schedule"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

// MemoryRepository is an in-memory schedule.Repository. It enforces the
// same active (staff_id, day_of_week) uniqueness as the Postgres index.
type MemoryRepository struct {
	mu        sync.Mutex
	salons    map[uuid.UUID]models.Salon
	staff     map[uuid.UUID]models.Staff
	schedules map[uuid.UUID]models.StaffSchedule

	// Err, when set, is returned by every call.
	Err error
	// SkipUniqueCheck disables the active-day index.
	SkipUniqueCheck bool

	ListCalls int
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		salons:    map[uuid.UUID]models.Salon{},
		staff:     map[uuid.UUID]models.Staff{},
		schedules: map[uuid.UUID]models.StaffSchedule{},
	}
}

// -------- Seeding --------

func (r *MemoryRepository) AddSalon(s models.Salon) models.Salon {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.salons[s.ID] = s
	return s
}

func (r *MemoryRepository) AddStaff(s models.Staff) models.Staff {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.staff[s.ID] = s
	return s
}

// AddSchedule stores a template as-is, bypassing the unique index.
func (r *MemoryRepository) AddSchedule(s models.StaffSchedule) models.StaffSchedule {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.schedules[s.ID] = s
	return s
}

func (r *MemoryRepository) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.schedules)
}

// -------- schedule.Repository --------

func (r *MemoryRepository) GetSalon(ctx context.Context, id uuid.UUID) (*models.Salon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	s, ok := r.salons[id]
	if !ok {
		return nil, httperr.ErrSalonNotFound
	}
	return &s, nil
}

func (r *MemoryRepository) GetStaff(ctx context.Context, id uuid.UUID) (*models.Staff, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	s, ok := r.staff[id]
	if !ok {
		return nil, httperr.ErrStaffNotFound
	}
	return &s, nil
}

func (r *MemoryRepository) GetStaffByUserID(ctx context.Context, userID uuid.UUID) (*models.Staff, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	for _, s := range r.staff {
		if s.UserID == userID {
			s := s
			return &s, nil
		}
	}
	return nil, httperr.ErrStaffNotFound
}

func (r *MemoryRepository) GetSchedule(ctx context.Context, id uuid.UUID) (*models.StaffSchedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	s, ok := r.schedules[id]
	if !ok {
		return nil, httperr.ErrScheduleNotFound
	}
	return &s, nil
}

func (r *MemoryRepository) ListSchedules(ctx context.Context, f schedule.TemplateFilter) ([]models.StaffSchedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ListCalls++
	if r.Err != nil {
		return nil, r.Err
	}

	var out []models.StaffSchedule
	for _, s := range r.schedules {
		if matches(s, f) {
			if f.WithStaff {
				if st, ok := r.staff[s.StaffID]; ok {
					st := st
					s.Staff = &st
				}
			}
			out = append(out, s)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		di := schedule.DayOfWeek(out[i].DayOfWeek).Index()
		dj := schedule.DayOfWeek(out[j].DayOfWeek).Index()
		if di != dj {
			return di < dj
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out, nil
}

func (r *MemoryRepository) CreateSchedule(ctx context.Context, s *models.StaffSchedule) error {
	rows := []models.StaffSchedule{*s}
	if err := r.CreateSchedules(ctx, rows); err != nil {
		return err
	}
	*s = rows[0]
	return nil
}

// CreateSchedules inserts all rows or none, writing ids and timestamps back
// into rows the way gorm does.
func (r *MemoryRepository) CreateSchedules(ctx context.Context, rows []models.StaffSchedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}

	now := time.Now()
	staged := make([]models.StaffSchedule, len(rows))
	for i, row := range rows {
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
		row.CreatedAt, row.UpdatedAt = now, now
		if r.violatesUnique(row, staged[:i]) {
			return schedule.ErrActiveDayTaken
		}
		staged[i] = row
	}

	for i, row := range staged {
		r.schedules[row.ID] = row
		rows[i] = row
	}
	return nil
}

func (r *MemoryRepository) UpdateSchedule(ctx context.Context, s *models.StaffSchedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if _, ok := r.schedules[s.ID]; !ok {
		return httperr.ErrScheduleNotFound
	}
	if r.violatesUnique(*s, nil) {
		return schedule.ErrActiveDayTaken
	}
	s.UpdatedAt = time.Now()
	r.schedules[s.ID] = *s
	return nil
}

func (r *MemoryRepository) DeleteSchedule(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if _, ok := r.schedules[id]; !ok {
		return httperr.ErrScheduleNotFound
	}
	delete(r.schedules, id)
	return nil
}

func (r *MemoryRepository) violatesUnique(row models.StaffSchedule, staged []models.StaffSchedule) bool {
	if r.SkipUniqueCheck || !row.IsActive {
		return false
	}
	clash := func(o models.StaffSchedule) bool {
		return o.ID != row.ID && o.IsActive && o.StaffID == row.StaffID && o.DayOfWeek == row.DayOfWeek
	}
	for _, o := range r.schedules {
		if clash(o) {
			return true
		}
	}
	for _, o := range staged {
		if clash(o) {
			return true
		}
	}
	return false
}

func matches(s models.StaffSchedule, f schedule.TemplateFilter) bool {
	if f.StaffID != nil && s.StaffID != *f.StaffID {
		return false
	}
	if f.SalonID != nil && s.SalonID != *f.SalonID {
		return false
	}
	if f.ActiveOnly && !s.IsActive {
		return false
	}
	if f.ExcludeID != nil && s.ID == *f.ExcludeID {
		return false
	}
	if len(f.Days) > 0 {
		found := false
		for _, d := range f.Days {
			if string(d) == s.DayOfWeek {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.EffectiveFrom != nil && s.EffectiveFrom.After(*f.EffectiveFrom) {
		return false
	}
	if f.EffectiveUntil != nil && s.EffectiveUntil != nil && s.EffectiveUntil.Before(*f.EffectiveUntil) {
		return false
	}
	return true
}

var _ schedule.Repository = (*MemoryRepository)(nil)

// ===============================
// Appointments
// ===============================

// MemoryAppointments is an in-memory schedule.AppointmentSource.
type MemoryAppointments struct {
	mu    sync.Mutex
	items []schedule.AppointmentInterval

	Err   error
	Calls int
}

func NewMemoryAppointments() *MemoryAppointments {
	return &MemoryAppointments{}
}

func (m *MemoryAppointments) Add(a schedule.AppointmentInterval) schedule.AppointmentInterval {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	m.items = append(m.items, a)
	return a
}

func (m *MemoryAppointments) ListAppointments(
	ctx context.Context,
	staffID uuid.UUID,
	from time.Time,
	to time.Time,
	statuses []appointment.Status,
) ([]schedule.AppointmentInterval, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}

	allowed := map[appointment.Status]bool{}
	for _, s := range statuses {
		allowed[s] = true
	}

	var out []schedule.AppointmentInterval
	for _, a := range m.items {
		if a.StaffID != staffID || !allowed[a.Status] {
			continue
		}
		if a.Start.Before(to) && from.Before(a.End) {
			out = append(out, a)
		}
	}
	return out, nil
}

var _ schedule.AppointmentSource = (*MemoryAppointments)(nil)
