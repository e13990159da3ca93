package schedule

import "time"

// Eligible reports whether an event starting at startAt is inside the
// trigger window at now. The window is the half-open band
// (lead-tolerance, lead+tolerance] of time remaining until start: an event
// exactly lead+tolerance away still qualifies, one exactly lead-tolerance
// away no longer does.
//
// The tolerance must be at least half the tick interval, otherwise a tick
// can land on either side of the band and the event is never observed in an
// eligible state. Config.Normalize enforces that floor.
func Eligible(startAt, now time.Time, lead, tolerance time.Duration) bool {
	until := startAt.Sub(now)
	return until > lead-tolerance && until <= lead+tolerance
}
