package schedule_test

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/salon-scheduler/internal/audit"
	"github.com/BruksfildServices01/salon-scheduler/internal/auth"
	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/schedule"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
	"github.com/BruksfildServices01/salon-scheduler/internal/testutils"
	usecase "github.com/BruksfildServices01/salon-scheduler/internal/usecase/schedule"
)

type mutationSuite struct {
	serviceSuite
}

// ===============================
// Create
// ===============================

func (s *mutationSuite) TestCreateStoresTemplate() {
	in := window("Monday", "09:00", "17:00")
	in.BreakStart = ptr("12:00")
	in.BreakEnd = ptr("13:00")

	row, err := s.mutations.Create(s.ctx, s.manager, usecase.CreateInput{StaffID: s.staff.ID, Window: in})
	s.Require().NoError(err)

	s.NotEqual(uuid.Nil, row.ID)
	s.Equal("monday", row.DayOfWeek)
	s.Equal(s.salon.ID, row.SalonID)
	s.True(row.IsActive)
	s.Equal("12:00", *row.BreakStart)
	s.Equal(s.managerID, row.CreatedBy)
	s.Equal(s.managerID, row.UpdatedBy)

	// effective_from defaults to today in the salon timezone, kept as a calendar date
	s.Equal("2024-06-01", row.EffectiveFrom.Format(domain.DateLayout))
	s.Equal(time.UTC, row.EffectiveFrom.Location())

	s.Equal([]string{audit.ActionScheduleCreated}, s.auditor.Actions())
	s.Equal(1, s.cache.Invalidations)
	s.Equal(1, s.repo.Count())
}

func (s *mutationSuite) TestCreateRejectsOverlap() {
	s.seed(s.staff, domain.Monday, "09:00", "17:00")

	_, err := s.mutations.Create(s.ctx, s.manager, usecase.CreateInput{
		StaffID: s.staff.ID,
		Window:  window("monday", "08:00", "09:30"),
	})

	ce, ok := httperr.AsConflict(err)
	s.Require().True(ok)
	s.Equal([]string{"monday"}, ce.Days)
	s.Equal(1, s.repo.Count())
	s.Empty(s.auditor.Events())
}

func (s *mutationSuite) TestCreateOnOtherDayOrStaffSucceeds() {
	s.seed(s.staff, domain.Monday, "09:00", "17:00")

	_, err := s.mutations.Create(s.ctx, s.manager, usecase.CreateInput{
		StaffID: s.staff.ID,
		Window:  window("tuesday", "08:00", "09:30"),
	})
	s.Require().NoError(err)

	_, err = s.mutations.Create(s.ctx, s.manager, usecase.CreateInput{
		StaffID: s.colleague.ID,
		Window:  window("monday", "08:00", "09:30"),
	})
	s.Require().NoError(err)
	s.Equal(3, s.repo.Count())
}

func (s *mutationSuite) TestCreateAdjacentSameDayHitsActiveDayIndex() {
	s.seed(s.staff, domain.Monday, "09:00", "17:00")

	// no overlap, but only one active template per staff and day is stored
	_, err := s.mutations.Create(s.ctx, s.manager, usecase.CreateInput{
		StaffID: s.staff.ID,
		Window:  window("monday", "17:00", "18:00"),
	})

	ce, ok := httperr.AsConflict(err)
	s.Require().True(ok)
	s.Equal([]string{"monday"}, ce.Days)
	s.Equal(1, s.repo.Count())
}

func (s *mutationSuite) TestCreateInactiveSkipsConflictCheck() {
	s.seed(s.staff, domain.Monday, "09:00", "17:00")

	in := window("monday", "10:00", "11:00")
	in.IsActive = ptr(false)
	row, err := s.mutations.Create(s.ctx, s.manager, usecase.CreateInput{StaffID: s.staff.ID, Window: in})
	s.Require().NoError(err)
	s.False(row.IsActive)
	s.Equal(2, s.repo.Count())
}

func (s *mutationSuite) TestCreateValidatesBeforeStorage() {
	s.repo.Err = errors.New("storage must not be reached")

	testCases := []struct {
		name  string
		in    usecase.WindowInput
		field string
	}{
		{"malformed start", window("monday", "9:00", "17:00"), "start_time"},
		{"hour out of range", window("monday", "09:00", "24:00"), "end_time"},
		{"start equals end", window("monday", "09:00", "09:00"), "end_time"},
		{"unknown day", window("someday", "09:00", "10:00"), "day_of_week"},
		{"missing end", window("monday", "09:00", ""), "end_time"},
		{"half break", usecase.WindowInput{DayOfWeek: "monday", StartTime: "09:00", EndTime: "17:00", BreakStart: ptr("12:00")}, "break"},
		{"break outside", usecase.WindowInput{DayOfWeek: "monday", StartTime: "09:00", EndTime: "17:00", BreakStart: ptr("16:30"), BreakEnd: ptr("17:30")}, "break"},
		{"bad date", usecase.WindowInput{DayOfWeek: "monday", StartTime: "09:00", EndTime: "17:00", EffectiveFrom: ptr("01/06/2024")}, "effective_from"},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			_, err := s.mutations.Create(s.ctx, s.manager, usecase.CreateInput{StaffID: s.staff.ID, Window: tc.in})
			var ve *httperr.ValidationError
			s.Require().ErrorAs(err, &ve)
			s.Equal(tc.field, ve.Field)
		})
	}
	s.Zero(s.repo.ListCalls)
}

func (s *mutationSuite) TestCreateRejectsInvertedEffectiveDates() {
	in := window("monday", "09:00", "17:00")
	in.EffectiveFrom = ptr("2024-06-10")
	in.EffectiveUntil = ptr("2024-06-09")

	_, err := s.mutations.Create(s.ctx, s.manager, usecase.CreateInput{StaffID: s.staff.ID, Window: in})
	var ve *httperr.ValidationError
	s.Require().ErrorAs(err, &ve)
	s.Equal("effective_until", ve.Field)
}

func (s *mutationSuite) TestCreateAuthorization() {
	// staff may edit their own schedule
	_, err := s.mutations.Create(s.ctx, s.self, usecase.CreateInput{StaffID: s.staff.ID, Window: window("monday", "09:00", "17:00")})
	s.Require().NoError(err)

	// but not a colleague's
	_, err = s.mutations.Create(s.ctx, s.self, usecase.CreateInput{StaffID: s.colleague.ID, Window: window("monday", "09:00", "17:00")})
	s.True(httperr.IsAuthorization(err))

	// nor can another salon's owner
	_, err = s.mutations.Create(s.ctx, s.outsider, usecase.CreateInput{StaffID: s.staff.ID, Window: window("friday", "09:00", "17:00")})
	s.True(httperr.IsAuthorization(err))

	s.Equal(1, s.repo.Count())
}

func (s *mutationSuite) TestCreateUnknownStaff() {
	_, err := s.mutations.Create(s.ctx, s.manager, usecase.CreateInput{StaffID: uuid.New(), Window: window("monday", "09:00", "17:00")})
	s.True(errors.Is(err, httperr.ErrStaffNotFound))
}

func (s *mutationSuite) TestCreateSalonMismatch() {
	_, err := s.mutations.Create(s.ctx, s.manager, usecase.CreateInput{
		StaffID: s.staff.ID,
		SalonID: s.otherShop.ID,
		Window:  window("monday", "09:00", "17:00"),
	})
	s.True(httperr.IsValidation(err))
}

func (s *mutationSuite) TestCreateStorageFailureIsSystemError() {
	failing := &failingWrites{MemoryRepository: s.repo, err: errors.New("disk full")}
	detector := domain.NewConflictDetector(failing, s.appts)
	svc := usecase.NewMutationService(failing, detector, s.auditor, s.cache, s.validate, s.tz)

	_, err := svc.Create(s.ctx, s.manager, usecase.CreateInput{StaffID: s.staff.ID, Window: window("monday", "12:00", "13:00")})
	s.True(httperr.IsSystem(err))
	s.False(httperr.IsConflict(err))
	s.Empty(s.auditor.Events())
}

// failingWrites fails every template write.
type failingWrites struct {
	*testutils.MemoryRepository
	err error
}

func (f *failingWrites) CreateSchedule(ctx context.Context, row *models.StaffSchedule) error {
	return f.err
}

// ===============================
// Update
// ===============================

func (s *mutationSuite) TestUpdateWithoutChangeDoesNotConflictWithItself() {
	row := s.seed(s.staff, domain.Monday, "09:00", "17:00")

	updated, err := s.mutations.Update(s.ctx, s.manager, row.ID, usecase.Patch{})
	s.Require().NoError(err)
	s.Equal("09:00", updated.StartTime)
	s.Equal(s.managerID, updated.UpdatedBy)

	updated, err = s.mutations.Update(s.ctx, s.manager, row.ID, usecase.Patch{EndTime: ptr("18:00")})
	s.Require().NoError(err)
	s.Equal("18:00", updated.EndTime)
	s.Equal([]string{audit.ActionScheduleUpdated, audit.ActionScheduleUpdated}, s.auditor.Actions())
}

func (s *mutationSuite) TestUpdateMovingOntoOccupiedDayConflicts() {
	s.seed(s.staff, domain.Monday, "09:00", "17:00")
	tuesday := s.seed(s.staff, domain.Tuesday, "08:00", "10:00")

	_, err := s.mutations.Update(s.ctx, s.manager, tuesday.ID, usecase.Patch{DayOfWeek: ptr("monday")})
	ce, ok := httperr.AsConflict(err)
	s.Require().True(ok)
	s.Equal([]string{"monday"}, ce.Days)

	stored, err := s.repo.GetSchedule(s.ctx, tuesday.ID)
	s.Require().NoError(err)
	s.Equal("tuesday", stored.DayOfWeek)
}

func (s *mutationSuite) TestUpdateStorageUniqueViolationBecomesConflict() {
	s.seed(s.staff, domain.Monday, "09:00", "17:00")
	tuesday := s.seed(s.staff, domain.Tuesday, "18:00", "19:00")

	// no overlap with 09:00-17:00, rejected by the active-day index
	_, err := s.mutations.Update(s.ctx, s.manager, tuesday.ID, usecase.Patch{DayOfWeek: ptr("monday")})
	ce, ok := httperr.AsConflict(err)
	s.Require().True(ok)
	s.Equal([]string{"monday"}, ce.Days)
}

func (s *mutationSuite) TestUpdateClearsOptionalParts() {
	row := s.seed(s.staff, domain.Monday, "09:00", "17:00")

	updated, err := s.mutations.Update(s.ctx, s.manager, row.ID, usecase.Patch{
		BreakStart:     ptr("12:00"),
		BreakEnd:       ptr("13:00"),
		EffectiveUntil: ptr("2024-12-31"),
	})
	s.Require().NoError(err)
	s.Require().NotNil(updated.BreakStart)
	s.Require().NotNil(updated.EffectiveUntil)

	updated, err = s.mutations.Update(s.ctx, s.manager, row.ID, usecase.Patch{ClearBreak: true, ClearEffectiveUntil: true})
	s.Require().NoError(err)
	s.Nil(updated.BreakStart)
	s.Nil(updated.BreakEnd)
	s.Nil(updated.EffectiveUntil)
}

func (s *mutationSuite) TestUpdateRevalidatesMergedWindow() {
	row := s.seed(s.staff, domain.Monday, "09:00", "17:00")

	_, err := s.mutations.Update(s.ctx, s.manager, row.ID, usecase.Patch{StartTime: ptr("18:00")})
	s.True(httperr.IsValidation(err))

	_, err = s.mutations.Update(s.ctx, s.manager, row.ID, usecase.Patch{ClearBreak: true, BreakStart: ptr("12:00")})
	s.True(httperr.IsValidation(err))
}

func (s *mutationSuite) TestUpdateInactiveResultSkipsConflictCheck() {
	s.seed(s.staff, domain.Monday, "09:00", "17:00")
	other := s.seed(s.staff, domain.Tuesday, "09:00", "17:00")

	updated, err := s.mutations.Update(s.ctx, s.manager, other.ID, usecase.Patch{DayOfWeek: ptr("monday"), IsActive: ptr(false)})
	s.Require().NoError(err)
	s.False(updated.IsActive)
	s.Equal("monday", updated.DayOfWeek)
}

func (s *mutationSuite) TestUpdateNotFoundAndForbidden() {
	_, err := s.mutations.Update(s.ctx, s.manager, uuid.New(), usecase.Patch{})
	s.True(errors.Is(err, httperr.ErrScheduleNotFound))

	row := s.seed(s.colleague, domain.Monday, "09:00", "17:00")
	_, err = s.mutations.Update(s.ctx, s.self, row.ID, usecase.Patch{EndTime: ptr("18:00")})
	s.True(httperr.IsAuthorization(err))
}

// ===============================
// BulkCreate
// ===============================

func (s *mutationSuite) TestBulkCreateRejectsWholeBatch() {
	s.seed(s.staff, domain.Tuesday, "13:00", "18:00")

	_, err := s.mutations.BulkCreate(s.ctx, s.manager, usecase.BulkCreateInput{
		StaffID: s.staff.ID,
		Windows: []usecase.WindowInput{
			window("monday", "09:00", "17:00"),
			window("tuesday", "08:00", "12:00"),
		},
	})

	ce, ok := httperr.AsConflict(err)
	s.Require().True(ok)
	s.Equal([]string{"tuesday"}, ce.Days)

	// no Monday row was persisted
	s.Equal(1, s.repo.Count())
	mondays, err := s.repo.ListSchedules(s.ctx, domain.TemplateFilter{StaffID: &s.staff.ID, Days: []domain.DayOfWeek{domain.Monday}})
	s.Require().NoError(err)
	s.Empty(mondays)
	s.Empty(s.auditor.Events())
}

func (s *mutationSuite) TestBulkCreateOrdersConflictDays() {
	s.seed(s.staff, domain.Saturday, "09:00", "12:00")
	s.seed(s.staff, domain.Sunday, "09:00", "12:00")

	_, err := s.mutations.BulkCreate(s.ctx, s.manager, usecase.BulkCreateInput{
		StaffID: s.staff.ID,
		Windows: []usecase.WindowInput{
			window("saturday", "13:00", "17:00"),
			window("wednesday", "09:00", "17:00"),
			window("sunday", "13:00", "17:00"),
		},
	})
	ce, ok := httperr.AsConflict(err)
	s.Require().True(ok)
	s.Equal([]string{"sunday", "saturday"}, ce.Days)
}

func (s *mutationSuite) TestBulkCreateInsertsWeek() {
	var windows []usecase.WindowInput
	for _, d := range []string{"monday", "tuesday", "wednesday", "thursday", "friday"} {
		windows = append(windows, window(d, "09:00", "18:00"))
	}

	rows, err := s.mutations.BulkCreate(s.ctx, s.manager, usecase.BulkCreateInput{StaffID: s.staff.ID, Windows: windows})
	s.Require().NoError(err)
	s.Len(rows, 5)
	for _, r := range rows {
		s.NotEqual(uuid.Nil, r.ID)
		s.Equal(s.managerID, r.CreatedBy)
	}
	s.Equal(5, s.repo.Count())
	s.Equal([]string{audit.ActionScheduleBulkCreated}, s.auditor.Actions())
	s.Equal(1, s.cache.Invalidations)
}

func (s *mutationSuite) TestBulkCreateInactiveWindowIgnoresOccupiedDay() {
	s.seed(s.staff, domain.Tuesday, "13:00", "18:00")

	off := window("tuesday", "08:00", "12:00")
	off.IsActive = ptr(false)
	rows, err := s.mutations.BulkCreate(s.ctx, s.manager, usecase.BulkCreateInput{
		StaffID: s.staff.ID,
		Windows: []usecase.WindowInput{window("monday", "09:00", "17:00"), off},
	})
	s.Require().NoError(err)
	s.Len(rows, 2)
}

func (s *mutationSuite) TestBulkCreateValidation() {
	_, err := s.mutations.BulkCreate(s.ctx, s.manager, usecase.BulkCreateInput{StaffID: s.staff.ID})
	s.True(httperr.IsValidation(err))

	_, err = s.mutations.BulkCreate(s.ctx, s.manager, usecase.BulkCreateInput{
		StaffID: s.staff.ID,
		Windows: []usecase.WindowInput{
			window("monday", "09:00", "12:00"),
			window("Monday", "13:00", "17:00"),
		},
	})
	var ve *httperr.ValidationError
	s.Require().ErrorAs(err, &ve)
	s.Equal("windows[1].day_of_week", ve.Field)

	_, err = s.mutations.BulkCreate(s.ctx, s.manager, usecase.BulkCreateInput{
		StaffID: s.staff.ID,
		Windows: []usecase.WindowInput{window("monday", "12:00", "09:00")},
	})
	s.Require().ErrorAs(err, &ve)
	s.Equal("windows[0].end_time", ve.Field)
	s.Zero(s.repo.Count())
}

func (s *mutationSuite) TestBulkCreateForbidden() {
	_, err := s.mutations.BulkCreate(s.ctx, s.self, usecase.BulkCreateInput{
		StaffID: s.colleague.ID,
		Windows: []usecase.WindowInput{window("monday", "09:00", "12:00")},
	})
	s.True(httperr.IsAuthorization(err))
}

// ===============================
// Delete / SetActive
// ===============================

func (s *mutationSuite) TestDelete() {
	row := s.seed(s.staff, domain.Monday, "09:00", "17:00")

	s.Require().NoError(s.mutations.Delete(s.ctx, s.self, row.ID))
	s.Zero(s.repo.Count())
	s.Equal([]string{audit.ActionScheduleDeleted}, s.auditor.Actions())

	err := s.mutations.Delete(s.ctx, s.manager, row.ID)
	s.True(errors.Is(err, httperr.ErrScheduleNotFound))
}

func (s *mutationSuite) TestDeleteForbidden() {
	row := s.seed(s.staff, domain.Monday, "09:00", "17:00")
	err := s.mutations.Delete(s.ctx, s.outsider, row.ID)
	s.True(httperr.IsAuthorization(err))
	s.Equal(1, s.repo.Count())
}

func (s *mutationSuite) TestSetActive() {
	first := s.seed(s.staff, domain.Monday, "09:00", "17:00")

	off, err := s.mutations.SetActive(s.ctx, s.manager, first.ID, false)
	s.Require().NoError(err)
	s.False(off.IsActive)

	// with the first template off, an overlapping one can be active
	second, err := s.mutations.Create(s.ctx, s.manager, usecase.CreateInput{StaffID: s.staff.ID, Window: window("monday", "10:00", "12:00")})
	s.Require().NoError(err)

	_, err = s.mutations.SetActive(s.ctx, s.manager, first.ID, true)
	ce, ok := httperr.AsConflict(err)
	s.Require().True(ok)
	s.Equal([]string{"monday"}, ce.Days)

	_, err = s.mutations.SetActive(s.ctx, s.manager, second.ID, false)
	s.Require().NoError(err)
	on, err := s.mutations.SetActive(s.ctx, s.manager, first.ID, true)
	s.Require().NoError(err)
	s.True(on.IsActive)

	s.Equal([]string{
		audit.ActionScheduleDeactivated,
		audit.ActionScheduleCreated,
		audit.ActionScheduleDeactivated,
		audit.ActionScheduleActivated,
	}, s.auditor.Actions())
}

func (s *mutationSuite) TestSetActiveNoop() {
	row := s.seed(s.staff, domain.Monday, "09:00", "17:00")
	got, err := s.mutations.SetActive(s.ctx, s.manager, row.ID, true)
	s.Require().NoError(err)
	s.True(got.IsActive)
	s.Empty(s.auditor.Events())
}

// ===============================
// Effective dates east of UTC
// ===============================

func (s *mutationSuite) TestUpdateEffectiveUntilSameDayInTokyo() {
	tokyo := s.repo.AddSalon(models.Salon{Name: "Ginza", Slug: "ginza", Timezone: "Asia/Tokyo"})
	staff := s.repo.AddStaff(models.Staff{SalonID: tokyo.ID, UserID: uuid.New(), FullName: "Yuki Sato"})
	owner := auth.NewContext(auth.Actor{UserID: uuid.New(), SalonID: tokyo.ID, Role: auth.RoleOwner}, nil)

	// a Postgres date column scans as UTC midnight
	row := s.repo.AddSchedule(models.StaffSchedule{
		StaffID:       staff.ID,
		SalonID:       tokyo.ID,
		DayOfWeek:     domain.Monday.String(),
		StartTime:     "09:00",
		EndTime:       "17:00",
		EffectiveFrom: time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC),
		IsActive:      true,
	})

	updated, err := s.mutations.Update(s.ctx, owner, row.ID, usecase.Patch{EffectiveUntil: ptr("2024-06-03")})
	s.Require().NoError(err)
	s.Require().NotNil(updated.EffectiveUntil)
	s.Equal("2024-06-03", updated.EffectiveUntil.Format(domain.DateLayout))
	s.Equal("2024-06-03", updated.EffectiveFrom.Format(domain.DateLayout))

	_, err = s.mutations.Update(s.ctx, owner, row.ID, usecase.Patch{EffectiveUntil: ptr("2024-06-02")})
	s.True(httperr.IsValidation(err))
}

func (s *mutationSuite) TestCreateDefaultFromAcceptsSameDayUntilInTokyo() {
	tokyo := s.repo.AddSalon(models.Salon{Name: "Ginza", Slug: "ginza", Timezone: "Asia/Tokyo"})
	staff := s.repo.AddStaff(models.Staff{SalonID: tokyo.ID, UserID: uuid.New(), FullName: "Yuki Sato"})
	owner := auth.NewContext(auth.Actor{UserID: uuid.New(), SalonID: tokyo.ID, Role: auth.RoleOwner}, nil)

	// the suite clock is 2024-06-01 21:00 in Tokyo
	in := window("saturday", "09:00", "17:00")
	in.EffectiveUntil = ptr("2024-06-01")

	row, err := s.mutations.Create(s.ctx, owner, usecase.CreateInput{StaffID: staff.ID, Window: in})
	s.Require().NoError(err)
	s.Equal("2024-06-01", row.EffectiveFrom.Format(domain.DateLayout))
	s.Equal(row.EffectiveFrom, *row.EffectiveUntil)
}
