package audit

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/salon-scheduler/internal/logger"
)

const (
	ActionScheduleCreated     = "staff_schedule_created"
	ActionScheduleBulkCreated = "staff_schedule_bulk_created"
	ActionScheduleUpdated     = "staff_schedule_updated"
	ActionScheduleDeleted     = "staff_schedule_deleted"
	ActionScheduleActivated   = "staff_schedule_activated"
	ActionScheduleDeactivated = "staff_schedule_deactivated"

	EntityStaffSchedule = "staff_schedule"
)

type Event struct {
	SalonID  uuid.UUID
	UserID   *uuid.UUID
	Action   string
	Entity   string
	EntityID *uuid.UUID
	Metadata any
}

// Store is where the dispatcher delivers events.
type Store interface {
	Log(ctx context.Context, ev Event) error
}

// Dispatcher writes events from a buffered queue on a single worker so
// requests never wait on the audit table.
type Dispatcher struct {
	store   Store
	queue   chan Event
	timeout time.Duration
	log     *logger.Logger

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

func NewDispatcher(store Store, buffer int) *Dispatcher {
	if buffer <= 0 {
		buffer = 100
	}
	d := &Dispatcher{
		store:   store,
		queue:   make(chan Event, buffer),
		timeout: 5 * time.Second,
		log:     logger.New().WithField("component", "audit"),
		done:    make(chan struct{}),
	}

	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	defer close(d.done)
	for ev := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		if err := d.store.Log(ctx, ev); err != nil {
			d.log.WithError(err).
				WithFields(map[string]any{
					"action":   ev.Action,
					"salon_id": ev.SalonID,
				}).
				Error("audit write failed")
		}
		cancel()
	}
}

// Dispatch enqueues ev. A full queue or closed dispatcher drops the event.
func (d *Dispatcher) Dispatch(ev Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return
	}

	select {
	case d.queue <- ev:
	default:
		d.log.WithField("action", ev.Action).Warn("audit queue full, dropping event")
	}
}

// Close stops accepting events and waits for the queue to drain or ctx to end.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
