package testutils

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/salon-scheduler/internal/audit"
	"github.com/BruksfildServices01/salon-scheduler/internal/cache"
	"github.com/BruksfildServices01/salon-scheduler/internal/dto"
)

// RecordingAuditor collects dispatched events synchronously.
type RecordingAuditor struct {
	mu     sync.Mutex
	events []audit.Event
}

func (a *RecordingAuditor) Dispatch(ev audit.Event) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, ev)
}

func (a *RecordingAuditor) Events() []audit.Event {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]audit.Event(nil), a.events...)
}

func (a *RecordingAuditor) Actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.events))
	for i, ev := range a.events {
		out[i] = ev.Action
	}
	return out
}

// MemoryScheduleCache is a map-backed cache.ScheduleCache with the same
// versioning as the Redis implementation.
type MemoryScheduleCache struct {
	mu       sync.Mutex
	versions map[uuid.UUID]int64
	items    map[listingKey][]dto.StaffScheduleDTO

	Hits          int
	Invalidations int
}

type listingKey struct {
	salonID uuid.UUID
	version int64
}

func NewMemoryScheduleCache() *MemoryScheduleCache {
	return &MemoryScheduleCache{
		versions: map[uuid.UUID]int64{},
		items:    map[listingKey][]dto.StaffScheduleDTO{},
	}
}

func (c *MemoryScheduleCache) GetSalon(ctx context.Context, salonID uuid.UUID) (cache.Lookup, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := c.versions[salonID]
	items, ok := c.items[listingKey{salonID, v}]
	if ok {
		c.Hits++
	}
	return cache.Lookup{Items: items, Hit: ok, Version: v}, nil
}

func (c *MemoryScheduleCache) SetSalon(ctx context.Context, salonID uuid.UUID, version int64, items []dto.StaffScheduleDTO) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[listingKey{salonID, version}] = items
	return nil
}

func (c *MemoryScheduleCache) InvalidateSalon(ctx context.Context, salonID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.versions[salonID]++
	c.Invalidations++
	return nil
}

// Has reports whether the current generation of salonID is cached.
func (c *MemoryScheduleCache) Has(salonID uuid.UUID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.items[listingKey{salonID, c.versions[salonID]}]
	return ok
}

var _ cache.ScheduleCache = (*MemoryScheduleCache)(nil)
