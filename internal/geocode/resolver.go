package geocode

import (
	"context"
	"log/slog"

	"github.com/spotterlabs/beacon/internal/catalog"
	"github.com/spotterlabs/beacon/internal/models"
)

// Resolver fills in coordinates for candidates that carry a street
// address but no location, which happens when the catalog server's own
// geocoding failed on ingest. Resolution failures leave the candidate
// untouched; it simply stays excluded from proximity evaluation.
type Resolver struct {
	provider Provider
	log      *slog.Logger
}

// NewResolver creates a resolver backed by the given provider. A nil
// provider disables enrichment: Resolve returns its input unchanged.
func NewResolver(provider Provider, log *slog.Logger) *Resolver {
	return &Resolver{provider: provider, log: log}
}

// Resolve returns the candidates with coordinates filled in where an
// address could be geocoded. The input slice is not modified.
func (r *Resolver) Resolve(ctx context.Context, candidates []models.Candidate) []models.Candidate {
	if r.provider == nil {
		return candidates
	}

	out := make([]models.Candidate, len(candidates))
	copy(out, candidates)

	for i := range out {
		if out[i].Coordinate != nil || out[i].Address == "" {
			continue
		}

		coords, err := r.provider.Geocode(ctx, out[i].Address)
		if err != nil {
			r.log.WarnContext(ctx, "Failed to geocode candidate address",
				"link", out[i].ID, "address", out[i].Address, "error", err)
			continue
		}

		out[i].Coordinate = coords
	}

	return out
}

var _ catalog.Fetcher = (*EnrichingFetcher)(nil)

// EnrichingFetcher decorates a catalog fetcher so every refresh passes
// through address resolution before the snapshot is swapped in.
type EnrichingFetcher struct {
	inner    catalog.Fetcher
	resolver *Resolver
}

// NewEnrichingFetcher wraps inner with the given resolver.
func NewEnrichingFetcher(inner catalog.Fetcher, resolver *Resolver) *EnrichingFetcher {
	return &EnrichingFetcher{inner: inner, resolver: resolver}
}

// FetchAll fetches the catalog and resolves address-only candidates.
func (f *EnrichingFetcher) FetchAll(ctx context.Context) ([]models.Candidate, error) {
	candidates, err := f.inner.FetchAll(ctx)
	if err != nil {
		return nil, err
	}

	return f.resolver.Resolve(ctx, candidates), nil
}
