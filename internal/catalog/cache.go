package catalog

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/spotterlabs/beacon/internal/models"
)

// Fetcher is the slice of the catalog client the cache needs.
type Fetcher interface {
	FetchAll(ctx context.Context) ([]models.Candidate, error)
}

// Cache holds the most recently fetched candidate snapshot. A refresh
// replaces the snapshot wholesale on success; on failure the previous
// snapshot is retained, so the engine degrades to stale data rather
// than an empty catalog.
type Cache struct {
	fetcher Fetcher
	log     *slog.Logger

	mu          sync.RWMutex
	snapshot    []models.Candidate
	lastRefresh time.Time
	lastErr     error
}

// NewCache creates a cache backed by the given fetcher. The snapshot is
// empty until the first successful refresh.
func NewCache(fetcher Fetcher, log *slog.Logger) *Cache {
	return &Cache{fetcher: fetcher, log: log}
}

// Refresh fetches the catalog and swaps in the new snapshot. Concurrent
// refreshes collapse to latest-wins: each writer replaces the whole
// snapshot under the lock, never interleaving partial writes.
func (c *Cache) Refresh(ctx context.Context) error {
	candidates, err := c.fetcher.FetchAll(ctx)
	if err != nil {
		c.mu.Lock()
		c.lastErr = err
		c.mu.Unlock()

		c.log.WarnContext(ctx, "Catalog refresh failed, keeping stale snapshot", "error", err)

		return err
	}

	c.mu.Lock()
	c.snapshot = candidates
	c.lastRefresh = time.Now()
	c.lastErr = nil
	c.mu.Unlock()

	return nil
}

// Snapshot returns a copy of the latest successfully fetched candidate
// set, or an empty slice if no refresh has ever succeeded.
func (c *Cache) Snapshot() []models.Candidate {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]models.Candidate, len(c.snapshot))
	copy(out, c.snapshot)

	return out
}

// LastRefresh reports when the snapshot was last replaced and the most
// recent refresh error, if any.
func (c *Cache) LastRefresh() (time.Time, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.lastRefresh, c.lastErr
}
