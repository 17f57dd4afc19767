package engine

import (
	"sort"

	"github.com/spotterlabs/beacon/internal/geo"
	"github.com/spotterlabs/beacon/internal/models"
)

// Evaluate computes the distance from the user to every candidate with a
// coordinate and returns those within the threshold, sorted ascending by
// distance with ties broken by candidate id. Candidates without
// coordinates are skipped, not an error. Evaluation is stateless: every
// call starts from scratch against the snapshot it was given.
func Evaluate(pos models.UserPosition, snapshot []models.Candidate, thresholdMeters float64) []models.Match {
	var matches []models.Match

	for _, candidate := range snapshot {
		if candidate.Coordinate == nil {
			continue
		}

		dist := geo.DistanceMeters(pos.Coordinate, *candidate.Coordinate)
		if dist > thresholdMeters {
			continue
		}

		matches = append(matches, models.Match{Candidate: candidate, DistanceMeters: dist})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].DistanceMeters != matches[j].DistanceMeters {
			return matches[i].DistanceMeters < matches[j].DistanceMeters
		}
		return matches[i].Candidate.ID < matches[j].Candidate.ID
	})

	return matches
}
