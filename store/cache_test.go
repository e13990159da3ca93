package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f64(v float64) *float64 { return &v }

func TestCacheReplaceAllSupersedes(t *testing.T) {
	ctx := context.Background()
	c := NewEventCache(NewMemKV(), testLogger)

	assert.Empty(t, c.GetAll(ctx))

	require.NoError(t, c.ReplaceAll(ctx, []TrackedEvent{
		{ID: "a", Title: "first", StartAt: "2026-08-01T12:00:00Z"},
		{ID: "b", Title: "second", StartAt: "2026-08-01T13:00:00Z"},
	}))
	assert.Len(t, c.GetAll(ctx), 2)

	// Last write wins, no merging.
	require.NoError(t, c.ReplaceAll(ctx, []TrackedEvent{
		{ID: "c", Title: "third", StartAt: "2026-08-01T14:00:00Z"},
	}))

	events := c.GetAll(ctx)
	require.Len(t, events, 1)
	assert.Equal(t, "c", events[0].ID)
}

func TestCacheReadFailureDegradesToEmpty(t *testing.T) {
	c := NewEventCache(brokenKV{}, testLogger)
	assert.Empty(t, c.GetAll(context.Background()))
}

func TestTrackedEventStart(t *testing.T) {
	ev := TrackedEvent{StartAt: "2026-08-01T12:00:00Z"}
	ts, ok := ev.Start()
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC), ts)

	for _, raw := range []string{"", "not-a-time", "2026-13-40"} {
		_, ok := (&TrackedEvent{StartAt: raw}).Start()
		assert.False(t, ok, "startAt=%q", raw)
	}
}

func TestTrackedEventCoordinate(t *testing.T) {
	_, ok := (&TrackedEvent{}).Coordinate()
	assert.False(t, ok)

	_, ok = (&TrackedEvent{Lat: f64(60.17)}).Coordinate()
	assert.False(t, ok)

	pt, ok := (&TrackedEvent{Lat: f64(60.17), Lon: f64(24.94)}).Coordinate()
	require.True(t, ok)
	assert.Equal(t, 60.17, pt.Lat)
	assert.Equal(t, 24.94, pt.Lon)
}
