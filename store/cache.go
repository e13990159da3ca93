package store

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const snapshotKey = "events/snapshot"

// EventCache holds the most recently pushed snapshot of trackable events.
// Each ReplaceAll fully supersedes the previous snapshot; there is no
// merging or diffing.
type EventCache struct {
	kv     KV
	logger *zap.SugaredLogger
}

func NewEventCache(kv KV, l *zap.SugaredLogger) *EventCache {
	return &EventCache{kv: kv, logger: l}
}

func (c *EventCache) ReplaceAll(ctx context.Context, events []TrackedEvent) error {
	if events == nil {
		events = []TrackedEvent{}
	}

	raw, err := json.Marshal(events)
	if err != nil {
		return errors.Wrap(err, "failed marshalling event snapshot")
	}

	if err := c.kv.Set(ctx, snapshotKey, raw); err != nil {
		return errors.Wrap(err, "failed storing event snapshot")
	}
	return nil
}

// GetAll returns the current snapshot. Any read or decode failure degrades
// to an empty snapshot so a tick turns into a no-op instead of a crash.
func (c *EventCache) GetAll(ctx context.Context) []TrackedEvent {
	raw, ok, err := c.kv.Get(ctx, snapshotKey)
	if err != nil {
		c.logger.Errorw("failed reading event snapshot; treating as empty", "err", err)
		return nil
	}
	if !ok {
		return nil
	}

	var events []TrackedEvent
	if err := json.Unmarshal(raw, &events); err != nil {
		c.logger.Errorw("failed decoding event snapshot; treating as empty", "err", err)
		return nil
	}

	return events
}
