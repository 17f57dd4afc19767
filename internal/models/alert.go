package models

// Match pairs a candidate with its distance from the user for one
// evaluation cycle. Matches are ephemeral and never persisted.
type Match struct {
	Candidate      Candidate // Candidate is the matched catalog entry.
	DistanceMeters float64   // DistanceMeters is the great-circle distance from the user.
}

// AlertCommand is the payload handed to the host notification sink.
type AlertCommand struct {
	Title   string `json:"title"`   // Title is the notification headline.
	Body    string `json:"body"`    // Body is the notification text.
	Payload string `json:"payload"` // Payload carries the candidate id for tap handling.
}
