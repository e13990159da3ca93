package store

import (
	"time"

	"georemind/geo"
)

// TrackedEvent is one entry of the event snapshot pushed by the event
// source. The scheduler never mutates events, it only reads them.
type TrackedEvent struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	StartAt      string   `json:"startAt"` // RFC 3339; empty or unparseable means the event is skipped
	LocationName string   `json:"locationName,omitempty"`
	Lat          *float64 `json:"lat,omitempty"`
	Lon          *float64 `json:"lon,omitempty"`
}

// Start parses the event's start timestamp. ok is false for events with a
// missing or malformed timestamp; such events are excluded from evaluation
// rather than treated as errors.
func (e *TrackedEvent) Start() (time.Time, bool) {
	if e.StartAt == "" {
		return time.Time{}, false
	}
	ts, err := time.Parse(time.RFC3339, e.StartAt)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

// Coordinate returns the event's target location. Events carry either both
// latitude and longitude or neither; ok is false when the pair is absent.
func (e *TrackedEvent) Coordinate() (geo.Point, bool) {
	if e.Lat == nil || e.Lon == nil {
		return geo.Point{}, false
	}
	return geo.Point{Lat: *e.Lat, Lon: *e.Lon}, true
}

// NotificationRecord marks an event as already notified. At most one record
// exists per event ID; the record suppresses re-notification while it is
// younger than the dedup window and is pruned once older than the retention
// period.
type NotificationRecord struct {
	EventID    string    `json:"eventId"`
	NotifiedAt time.Time `json:"notifiedAt"`
}
