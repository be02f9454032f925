package appointment

// ===============================
// Appointment Status
// ===============================

// Status mirrors the booking subsystem's appointment lifecycle.
type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
	StatusNoShow     Status = "no_show"
)

// BlockingStatuses are the states in which a booking still occupies the
// staff member's time.
func BlockingStatuses() []Status {
	return []Status{StatusPending, StatusConfirmed, StatusInProgress}
}

// IsBlocking reports whether an appointment in this state blocks schedule
// changes. Terminal states never do.
func (s Status) IsBlocking() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusInProgress:
		return true
	}
	return false
}

func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

func (s Status) Valid() bool {
	return s.IsBlocking() || s.IsTerminal()
}

// Strings converts statuses for storage queries.
func Strings(statuses []Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
