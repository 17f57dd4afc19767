package models

import "time"

// UserPosition is a single position event delivered by the host location
// service. Only the latest accepted position is ever retained.
type UserPosition struct {
	Coordinate Coordinates // Coordinate is the reported location.
	Timestamp  time.Time   // Timestamp is the time the host reported the fix.
}
