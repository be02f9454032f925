package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

// ConflictScope selects which sources a conflict check consults.
type ConflictScope int

const (
	TemplatesOnly ConflictScope = iota
	TemplatesAndAppointments
)

func (s ConflictScope) String() string {
	switch s {
	case TemplatesOnly:
		return "templates_only"
	case TemplatesAndAppointments:
		return "templates_and_appointments"
	}
	return fmt.Sprintf("ConflictScope(%d)", int(s))
}

// ConflictQuery describes one candidate window. Date is required for
// TemplatesAndAppointments; with TemplatesOnly, Day is used when Date is zero.
type ConflictQuery struct {
	StaffID   uuid.UUID
	Day       DayOfWeek
	Date      time.Time
	StartTime string
	EndTime   string
	ExcludeID *uuid.UUID
}

type ConflictingAppointment struct {
	ID    uuid.UUID `json:"id"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type ConflictReport struct {
	HasConflict             bool                     `json:"has_conflict"`
	ConflictingSchedules    []models.StaffSchedule   `json:"conflicting_schedules"`
	ConflictingAppointments []ConflictingAppointment `json:"conflicting_appointments"`
}

// Err converts a positive report into a ConflictError, nil otherwise.
func (r *ConflictReport) Err() error {
	if r == nil || !r.HasConflict {
		return nil
	}

	var days []DayOfWeek
	for _, s := range r.ConflictingSchedules {
		days = append(days, DayOfWeek(s.DayOfWeek))
	}

	ce := &httperr.ConflictError{Days: dayNames(SortDays(days))}
	for _, a := range r.ConflictingAppointments {
		ce.Appointments = append(ce.Appointments, httperr.ConflictAppointment{
			ID:    a.ID.String(),
			Start: a.Start.Format(time.RFC3339),
			End:   a.End.Format(time.RFC3339),
		})
	}
	return ce
}

// Proposal is one requested day of a bulk creation.
type Proposal struct {
	Day       DayOfWeek
	StartTime string
	EndTime   string
}

// ===============================
// Detector
// ===============================

type ConflictDetector struct {
	templates    TemplateReader
	appointments AppointmentSource
}

func NewConflictDetector(
	templates TemplateReader,
	appointments AppointmentSource,
) *ConflictDetector {
	return &ConflictDetector{
		templates:    templates,
		appointments: appointments,
	}
}

// Check is the single overlap implementation behind every conflict question.
func (d *ConflictDetector) Check(
	ctx context.Context,
	scope ConflictScope,
	q ConflictQuery,
) (*ConflictReport, error) {

	// --------------------------------------------------
	// Shape first, before touching storage
	// --------------------------------------------------
	target, err := parseSpan("start_time", q.StartTime, "end_time", q.EndTime)
	if err != nil {
		return nil, err
	}

	day := q.Day
	if !q.Date.IsZero() {
		day = ResolveDayOfWeek(q.Date)
	}
	if !day.Valid() {
		return nil, httperr.NewValidationError("day_of_week", "unknown weekday")
	}
	if scope == TemplatesAndAppointments && q.Date.IsZero() {
		return nil, httperr.NewValidationError("date", "a concrete date is required to check appointments")
	}

	report := &ConflictReport{
		ConflictingSchedules:    []models.StaffSchedule{},
		ConflictingAppointments: []ConflictingAppointment{},
	}

	// --------------------------------------------------
	// Active templates on the same weekday
	// --------------------------------------------------
	staffID := q.StaffID
	templates, err := d.templates.ListSchedules(ctx, TemplateFilter{
		StaffID:    &staffID,
		Days:       []DayOfWeek{day},
		ActiveOnly: true,
		ExcludeID:  q.ExcludeID,
	})
	if err != nil {
		return nil, httperr.NewSystemError("list schedules", err)
	}

	for _, t := range templates {
		if !t.IsActive || (q.ExcludeID != nil && t.ID == *q.ExcludeID) {
			continue
		}
		span, err := parseSpan("start_time", t.StartTime, "end_time", t.EndTime)
		if err != nil {
			return nil, httperr.NewSystemError(
				fmt.Sprintf("stored schedule %s", t.ID),
				fmt.Errorf("invalid window %q-%q", t.StartTime, t.EndTime),
			)
		}
		if span.Overlaps(target) {
			report.ConflictingSchedules = append(report.ConflictingSchedules, t)
		}
	}

	// --------------------------------------------------
	// Live bookings on the concrete date
	// --------------------------------------------------
	if scope == TemplatesAndAppointments {
		from, to := DayBounds(q.Date)
		start, end := At(q.Date, target.Start), At(q.Date, target.End)

		appts, err := d.appointments.ListAppointments(
			ctx,
			q.StaffID,
			from,
			to,
			appointment.BlockingStatuses(),
		)
		if err != nil {
			return nil, httperr.NewSystemError("list appointments", err)
		}

		for _, a := range appts {
			if !a.Status.IsBlocking() {
				continue
			}
			if InstantsOverlap(a.Start, a.End, start, end) {
				report.ConflictingAppointments = append(report.ConflictingAppointments, ConflictingAppointment{
					ID:    a.ID,
					Start: a.Start,
					End:   a.End,
				})
			}
		}
	}

	report.HasConflict = len(report.ConflictingSchedules) > 0 || len(report.ConflictingAppointments) > 0
	return report, nil
}

// CheckTemplateConflict reports whether [start, end) overlaps any active
// template of staffID on day, ignoring excludeID.
func (d *ConflictDetector) CheckTemplateConflict(
	ctx context.Context,
	staffID uuid.UUID,
	day DayOfWeek,
	start string,
	end string,
	excludeID *uuid.UUID,
) (bool, error) {
	report, err := d.Check(ctx, TemplatesOnly, ConflictQuery{
		StaffID:   staffID,
		Day:       day,
		StartTime: start,
		EndTime:   end,
		ExcludeID: excludeID,
	})
	if err != nil {
		return false, err
	}
	return report.HasConflict, nil
}

// CheckFullConflict checks templates on date's weekday and live bookings on
// date itself.
func (d *ConflictDetector) CheckFullConflict(
	ctx context.Context,
	staffID uuid.UUID,
	date time.Time,
	start string,
	end string,
	excludeID *uuid.UUID,
) (*ConflictReport, error) {
	return d.Check(ctx, TemplatesAndAppointments, ConflictQuery{
		StaffID:   staffID,
		Date:      date,
		StartTime: start,
		EndTime:   end,
		ExcludeID: excludeID,
	})
}

// BulkCheckConflicts flags every requested day that already has any active
// template. This is an existence check, coarser than the pairwise overlap
// test of single creation, and matches the active-day unique index.
func (d *ConflictDetector) BulkCheckConflicts(
	ctx context.Context,
	staffID uuid.UUID,
	proposals []Proposal,
) (map[DayOfWeek]bool, error) {

	result := make(map[DayOfWeek]bool, len(proposals))
	days := make([]DayOfWeek, 0, len(proposals))

	for _, p := range proposals {
		if !p.Day.Valid() {
			return nil, httperr.NewValidationError("day_of_week", "unknown weekday")
		}
		if _, err := parseSpan("start_time", p.StartTime, "end_time", p.EndTime); err != nil {
			return nil, err
		}
		if _, seen := result[p.Day]; !seen {
			result[p.Day] = false
			days = append(days, p.Day)
		}
	}

	if len(days) == 0 {
		return result, nil
	}

	existing, err := d.templates.ListSchedules(ctx, TemplateFilter{
		StaffID:    &staffID,
		Days:       days,
		ActiveOnly: true,
	})
	if err != nil {
		return nil, httperr.NewSystemError("list schedules", err)
	}

	for _, t := range existing {
		if !t.IsActive {
			continue
		}
		day := DayOfWeek(t.DayOfWeek)
		if _, requested := result[day]; requested {
			result[day] = true
		}
	}

	return result, nil
}

// ConflictingDays returns the flagged days of a bulk check, Sunday first.
func ConflictingDays(flags map[DayOfWeek]bool) []DayOfWeek {
	var days []DayOfWeek
	for d, hit := range flags {
		if hit {
			days = append(days, d)
		}
	}
	return SortDays(days)
}

// DayNames renders days as their lowercase names.
func DayNames(days []DayOfWeek) []string {
	return dayNames(days)
}
