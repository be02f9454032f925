package cache

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/salon-scheduler/internal/dto"
)

func TestKeys(t *testing.T) {
	id := uuid.MustParse("6f1c2d9e-0b7a-4a53-9c1e-2b1f6a0d9a11")
	assert.Equal(t, "schedules:salon:6f1c2d9e-0b7a-4a53-9c1e-2b1f6a0d9a11", SalonKey(id))
	assert.Equal(t, "schedules:salon:6f1c2d9e-0b7a-4a53-9c1e-2b1f6a0d9a11:version", VersionKey(id))
	assert.Equal(t, "schedules:salon:6f1c2d9e-0b7a-4a53-9c1e-2b1f6a0d9a11:v3", ListingKey(id, 3))
	assert.NotEqual(t, ListingKey(id, 3), ListingKey(id, 4))
}

func TestNoopAlwaysMisses(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	var c ScheduleCache = Noop{}

	require.NoError(t, c.SetSalon(ctx, id, 0, []dto.StaffScheduleDTO{{ID: uuid.New()}}))
	hit, err := c.GetSalon(ctx, id)
	require.NoError(t, err)
	assert.False(t, hit.Hit)
	assert.Nil(t, hit.Items)
	assert.NoError(t, c.InvalidateSalon(ctx, id))
}
