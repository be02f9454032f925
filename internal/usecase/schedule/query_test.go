package schedule_test

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/schedule"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
	"github.com/BruksfildServices01/salon-scheduler/internal/testutils"
	usecase "github.com/BruksfildServices01/salon-scheduler/internal/usecase/schedule"
)

type querySuite struct {
	serviceSuite
}

func (s *querySuite) TestListSalonSchedulesJoinsStaffInOrder() {
	s.seed(s.colleague, domain.Wednesday, "09:00", "12:00")
	s.seed(s.staff, domain.Monday, "13:00", "17:00")
	s.seed(s.colleague, domain.Monday, "08:00", "12:00")
	s.seed(s.staff, domain.Sunday, "10:00", "14:00")

	items, err := s.queries.ListSalonSchedules(s.ctx, s.self, s.salon.ID, usecase.DateRange{})
	s.Require().NoError(err)
	s.Require().Len(items, 4)

	var order []string
	for _, it := range items {
		s.Require().NotNil(it.Staff)
		order = append(order, it.DayOfWeek+" "+it.StartTime+" "+it.Staff.FullName)
	}
	s.Equal([]string{
		"sunday 10:00 Ana Souza",
		"monday 08:00 Bruno Lima",
		"monday 13:00 Ana Souza",
		"wednesday 09:00 Bruno Lima",
	}, order)
}

func (s *querySuite) TestListSalonSchedulesUsesCacheUntilMutation() {
	s.seed(s.staff, domain.Monday, "09:00", "17:00")

	_, err := s.queries.ListSalonSchedules(s.ctx, s.manager, s.salon.ID, usecase.DateRange{})
	s.Require().NoError(err)
	s.True(s.cache.Has(s.salon.ID))
	calls := s.repo.ListCalls

	items, err := s.queries.ListSalonSchedules(s.ctx, s.manager, s.salon.ID, usecase.DateRange{})
	s.Require().NoError(err)
	s.Len(items, 1)
	s.Equal(calls, s.repo.ListCalls)
	s.Equal(1, s.cache.Hits)

	_, err = s.mutations.Create(s.ctx, s.manager, usecase.CreateInput{StaffID: s.staff.ID, Window: window("tuesday", "09:00", "17:00")})
	s.Require().NoError(err)
	s.False(s.cache.Has(s.salon.ID))

	items, err = s.queries.ListSalonSchedules(s.ctx, s.manager, s.salon.ID, usecase.DateRange{})
	s.Require().NoError(err)
	s.Len(items, 2)
}

func (s *querySuite) TestListSalonSchedulesDropsFillRacingInvalidation() {
	s.seed(s.staff, domain.Monday, "09:00", "17:00")
	racing := &mutateDuringList{MemoryRepository: s.repo, after: func() {
		s.seed(s.staff, domain.Tuesday, "09:00", "17:00")
		s.Require().NoError(s.cache.InvalidateSalon(s.ctx, s.salon.ID))
	}}
	queries := usecase.NewQueryService(racing, domain.NewConflictDetector(racing, s.appts), s.cache, s.validate, s.tz)

	stale, err := queries.ListSalonSchedules(s.ctx, s.manager, s.salon.ID, usecase.DateRange{})
	s.Require().NoError(err)
	s.Len(stale, 1)
	s.False(s.cache.Has(s.salon.ID))

	fresh, err := queries.ListSalonSchedules(s.ctx, s.manager, s.salon.ID, usecase.DateRange{})
	s.Require().NoError(err)
	s.Len(fresh, 2)
	s.Equal(0, s.cache.Hits)
}

func (s *querySuite) TestListSalonSchedulesDateRange() {
	until := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)

	s.repo.AddSchedule(models.StaffSchedule{
		StaffID: s.staff.ID, SalonID: s.salon.ID, DayOfWeek: "monday", StartTime: "09:00", EndTime: "12:00",
		EffectiveFrom: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), EffectiveUntil: &until, IsActive: true,
	})
	s.repo.AddSchedule(models.StaffSchedule{
		StaffID: s.staff.ID, SalonID: s.salon.ID, DayOfWeek: "tuesday", StartTime: "09:00", EndTime: "12:00",
		EffectiveFrom: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), IsActive: true,
	})
	s.repo.AddSchedule(models.StaffSchedule{
		StaffID: s.staff.ID, SalonID: s.salon.ID, DayOfWeek: "friday", StartTime: "09:00", EndTime: "12:00",
		EffectiveFrom: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), IsActive: true,
	})

	june, err := s.queries.ListSalonSchedules(s.ctx, s.manager, s.salon.ID, usecase.DateRange{From: "2024-06-01", To: "2024-06-30"})
	s.Require().NoError(err)
	s.Len(june, 2)
	s.False(s.cache.Has(s.salon.ID))

	summer, err := s.queries.ListSalonSchedules(s.ctx, s.manager, s.salon.ID, usecase.DateRange{From: "2024-07-15", To: "2024-08-15"})
	s.Require().NoError(err)
	s.Require().Len(summer, 2)
	s.Equal("tuesday", summer[0].DayOfWeek)
	s.Equal("friday", summer[1].DayOfWeek)

	_, err = s.queries.ListSalonSchedules(s.ctx, s.manager, s.salon.ID, usecase.DateRange{From: "2024-08-15", To: "2024-07-15"})
	s.True(httperr.IsValidation(err))

	_, err = s.queries.ListSalonSchedules(s.ctx, s.manager, s.salon.ID, usecase.DateRange{From: "15/07/2024"})
	s.True(httperr.IsValidation(err))
}

func (s *querySuite) TestListSalonSchedulesRequiresMembership() {
	_, err := s.queries.ListSalonSchedules(s.ctx, s.outsider, s.salon.ID, usecase.DateRange{})
	s.True(httperr.IsAuthorization(err))
}

func (s *querySuite) TestListSalonSchedulesStorageFailure() {
	s.repo.Err = errors.New("connection refused")
	_, err := s.queries.ListSalonSchedules(s.ctx, s.manager, s.salon.ID, usecase.DateRange{})
	s.True(httperr.IsSystem(err))
}

func (s *querySuite) TestListStaffSchedule() {
	s.seed(s.staff, domain.Monday, "09:00", "17:00")
	s.seed(s.colleague, domain.Monday, "09:00", "17:00")

	items, err := s.queries.ListStaffSchedule(s.ctx, s.self, s.staff.ID, usecase.DateRange{})
	s.Require().NoError(err)
	s.Require().Len(items, 1)
	s.Equal(s.staff.ID, items[0].StaffID)

	_, err = s.queries.ListStaffSchedule(s.ctx, s.self, s.colleague.ID, usecase.DateRange{})
	s.True(httperr.IsAuthorization(err))

	items, err = s.queries.ListStaffSchedule(s.ctx, s.manager, s.colleague.ID, usecase.DateRange{})
	s.Require().NoError(err)
	s.Len(items, 1)

	_, err = s.queries.ListStaffSchedule(s.ctx, s.manager, uuid.New(), usecase.DateRange{})
	s.True(errors.Is(err, httperr.ErrStaffNotFound))
}

func (s *querySuite) TestGetConflictsCombinesTemplatesAndBookings() {
	row := s.seed(s.staff, domain.Monday, "09:00", "17:00")

	loc, err := time.LoadLocation("America/Sao_Paulo")
	s.Require().NoError(err)
	booked := s.appts.Add(domain.AppointmentInterval{
		StaffID: s.staff.ID,
		Start:   time.Date(2024, 6, 3, 10, 0, 0, 0, loc),
		End:     time.Date(2024, 6, 3, 11, 0, 0, 0, loc),
		Status:  appointment.StatusConfirmed,
	})

	report, err := s.queries.GetConflicts(s.ctx, s.manager, usecase.ConflictInput{
		StaffID:   s.staff.ID,
		Date:      "2024-06-03",
		StartTime: "09:30",
		EndTime:   "10:15",
	})
	s.Require().NoError(err)
	s.True(report.HasConflict)
	s.Require().Len(report.ConflictingSchedules, 1)
	s.Equal(row.ID, report.ConflictingSchedules[0].ID)
	s.Require().Len(report.ConflictingAppointments, 1)
	s.Equal(booked.ID, report.ConflictingAppointments[0].ID)

	report, err = s.queries.GetConflicts(s.ctx, s.manager, usecase.ConflictInput{
		StaffID:   s.staff.ID,
		Date:      "2024-06-03",
		StartTime: "11:00",
		EndTime:   "12:00",
		ExcludeID: &row.ID,
	})
	s.Require().NoError(err)
	s.False(report.HasConflict)
}

func (s *querySuite) TestGetConflictsValidatesFirst() {
	s.repo.Err = errors.New("storage must not be reached")

	for _, in := range []usecase.ConflictInput{
		{StaffID: s.staff.ID, Date: "2024-06-03", StartTime: "9:30", EndTime: "10:15"},
		{StaffID: s.staff.ID, Date: "2024-06-03", StartTime: "10:30", EndTime: "10:15"},
		{StaffID: s.staff.ID, Date: "June 3rd", StartTime: "09:30", EndTime: "10:15"},
		{StaffID: s.staff.ID, StartTime: "09:30", EndTime: "10:15"},
	} {
		_, err := s.queries.GetConflicts(s.ctx, s.manager, in)
		s.True(httperr.IsValidation(err), "%+v", in)
	}
}

func (s *querySuite) TestGetConflictsForbidden() {
	_, err := s.queries.GetConflicts(s.ctx, s.self, usecase.ConflictInput{
		StaffID:   s.colleague.ID,
		Date:      "2024-06-03",
		StartTime: "09:30",
		EndTime:   "10:15",
	})
	s.True(httperr.IsAuthorization(err))
}

// mutateDuringList runs after once, right after the first listing read.
type mutateDuringList struct {
	*testutils.MemoryRepository
	after func()
	done  bool
}

func (m *mutateDuringList) ListSchedules(ctx context.Context, f domain.TemplateFilter) ([]models.StaffSchedule, error) {
	rows, err := m.MemoryRepository.ListSchedules(ctx, f)
	if !m.done {
		m.done = true
		m.after()
	}
	return rows, err
}
