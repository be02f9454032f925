package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/BruksfildServices01/salon-scheduler/internal/dto"
)

// ScheduleCache holds unfiltered salon listings under a per-salon version.
// InvalidateSalon bumps the version; SetSalon writes under the version its
// caller read, so a fill that raced an invalidation lands on a dead key.
type ScheduleCache interface {
	GetSalon(ctx context.Context, salonID uuid.UUID) (Lookup, error)
	SetSalon(ctx context.Context, salonID uuid.UUID, version int64, items []dto.StaffScheduleDTO) error
	InvalidateSalon(ctx context.Context, salonID uuid.UUID) error
}

// Lookup is one cache read. Version is valid on a miss too.
type Lookup struct {
	Items   []dto.StaffScheduleDTO
	Hit     bool
	Version int64
}

// NewRedisClient connects and pings, failing fast when Redis is unreachable.
func NewRedisClient(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return client, nil
}

type RedisScheduleCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisScheduleCache(client *redis.Client, ttl time.Duration) *RedisScheduleCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisScheduleCache{client: client, ttl: ttl}
}

func SalonKey(salonID uuid.UUID) string {
	return "schedules:salon:" + salonID.String()
}

// VersionKey holds the current generation of a salon's listing.
func VersionKey(salonID uuid.UUID) string {
	return SalonKey(salonID) + ":version"
}

// ListingKey names one generation of a salon's listing.
func ListingKey(salonID uuid.UUID, version int64) string {
	return fmt.Sprintf("%s:v%d", SalonKey(salonID), version)
}

func (c *RedisScheduleCache) version(ctx context.Context, salonID uuid.UUID) (int64, error) {
	v, err := c.client.Get(ctx, VersionKey(salonID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get version: %w", err)
	}
	return v, nil
}

func (c *RedisScheduleCache) GetSalon(ctx context.Context, salonID uuid.UUID) (Lookup, error) {
	v, err := c.version(ctx, salonID)
	if err != nil {
		return Lookup{}, err
	}

	raw, err := c.client.Get(ctx, ListingKey(salonID, v)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Lookup{Version: v}, nil
	}
	if err != nil {
		return Lookup{}, fmt.Errorf("redis get: %w", err)
	}

	var items []dto.StaffScheduleDTO
	if err := json.Unmarshal(raw, &items); err != nil {
		// stale or foreign payload, treat as a miss
		return Lookup{Version: v}, nil
	}
	return Lookup{Items: items, Hit: true, Version: v}, nil
}

func (c *RedisScheduleCache) SetSalon(ctx context.Context, salonID uuid.UUID, version int64, items []dto.StaffScheduleDTO) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode schedules: %w", err)
	}
	if err := c.client.Set(ctx, ListingKey(salonID, version), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// InvalidateSalon retires the current generation. Old listings expire with
// their TTL.
func (c *RedisScheduleCache) InvalidateSalon(ctx context.Context, salonID uuid.UUID) error {
	if err := c.client.Incr(ctx, VersionKey(salonID)).Err(); err != nil {
		return fmt.Errorf("redis incr: %w", err)
	}
	return nil
}

// Noop never hits. Used when REDIS_ADDR is empty.
type Noop struct{}

func (Noop) GetSalon(context.Context, uuid.UUID) (Lookup, error) {
	return Lookup{}, nil
}

func (Noop) SetSalon(context.Context, uuid.UUID, int64, []dto.StaffScheduleDTO) error { return nil }

func (Noop) InvalidateSalon(context.Context, uuid.UUID) error { return nil }
