package models

// Candidate is a geotagged item fetched from the remote catalog, eligible
// for proximity alerting. The link itself is the stable identity: the
// catalog keys its collection by link, so dedup and delete both use it.
type Candidate struct {
	ID         string       // ID is the link/URL, unique and stable across fetches.
	Coordinate *Coordinates // Coordinate is nil when the catalog holds no location for this entry.
	Label      string       // Label is an optional human-readable description; falls back to ID.
	Address    string       // Address is an optional street address, used for local geocoding enrichment.
	ImageRef   string       // ImageRef is an optional preview-image reference, carried through opaquely.
}

// DisplayName returns the label when present, otherwise the raw id.
func (c Candidate) DisplayName() string {
	if c.Label != "" {
		return c.Label
	}
	return c.ID
}
