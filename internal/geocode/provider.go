// Package geocode resolves street addresses into coordinates for catalog
// entries that arrived without a location, mirroring the enrichment the
// catalog server performs on ingest.
package geocode

import (
	"context"

	"github.com/spotterlabs/beacon/internal/models"
)

// Provider is an interface that defines a method for geocoding an address.
// The Geocode method takes a context and an address string as input,
// and returns the corresponding coordinates and an error if any occurs.
type Provider interface {
	Geocode(ctx context.Context, address string) (*models.Coordinates, error)
}
