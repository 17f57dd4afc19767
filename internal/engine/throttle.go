package engine

import (
	"github.com/spotterlabs/beacon/internal/geo"
	"github.com/spotterlabs/beacon/internal/models"
)

// Throttle gates raw position updates: a new position triggers
// re-evaluation only when the user has moved at least the configured
// threshold since the last accepted position. A threshold of 0 accepts
// every update. This bounds evaluation frequency under dense update
// streams; dedup correctness is the ledger's job, not this one's.
//
// Throttle is not safe for concurrent use; the engine serializes access.
type Throttle struct {
	threshold float64
	last      *models.Coordinates
}

// NewThrottle creates a throttle with the given movement threshold in meters.
func NewThrottle(thresholdMeters float64) *Throttle {
	return &Throttle{threshold: thresholdMeters}
}

// Accept reports whether the position is significant enough to evaluate,
// updating the last-accepted position when it is.
func (t *Throttle) Accept(pos models.UserPosition) bool {
	if t.last != nil && geo.DistanceMeters(*t.last, pos.Coordinate) < t.threshold {
		return false
	}

	coord := pos.Coordinate
	t.last = &coord

	return true
}
