// Package engine coordinates the proximity notification pipeline: a
// catalog refresh loop on one side and a throttled position-evaluation
// path on the other, meeting only at the immutable catalog snapshot.
package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/spotterlabs/beacon/internal/catalog"
	"github.com/spotterlabs/beacon/internal/ledger"
	"github.com/spotterlabs/beacon/internal/metrics"
	"github.com/spotterlabs/beacon/internal/models"
)

// CatalogDeleter is the slice of the catalog client the engine needs for
// user-driven deletes.
type CatalogDeleter interface {
	Delete(ctx context.Context, link string) error
}

// Engine owns the two state machines of the notifier: the refresh timer
// loop (Run) and the position-evaluation path (HandlePosition). All
// mutable evaluation state is serialized behind one mutex; the cache
// guards its snapshot independently, so a refresh in flight never blocks
// position handling and vice versa.
type Engine struct {
	log       *slog.Logger
	cache     *catalog.Cache
	deleter   CatalogDeleter
	ledger    ledger.Interface
	scheduler *Scheduler
	metrics   *metrics.Metrics

	refreshInterval time.Duration
	threshold       float64

	mu       sync.Mutex
	throttle *Throttle
}

// NewEngine creates an engine. The proximity threshold is in meters.
func NewEngine(
	log *slog.Logger,
	cache *catalog.Cache,
	deleter CatalogDeleter,
	ldg ledger.Interface,
	scheduler *Scheduler,
	appMetrics *metrics.Metrics,
	refreshInterval time.Duration,
	thresholdMeters float64,
	movementMeters float64,
) *Engine {
	return &Engine{
		log:             log,
		cache:           cache,
		deleter:         deleter,
		ledger:          ldg,
		scheduler:       scheduler,
		metrics:         appMetrics,
		refreshInterval: refreshInterval,
		threshold:       thresholdMeters,
		throttle:        NewThrottle(movementMeters),
	}
}

// Run drives the catalog refresh loop until the context is canceled.
// A refresh failure keeps the stale snapshot and the loop carries on.
func (e *Engine) Run(ctx context.Context) {
	ticker := time.NewTicker(e.refreshInterval)
	defer ticker.Stop()

	e.log.InfoContext(ctx, "Proximity engine started...")

	e.refresh(ctx)

	for {
		select {
		case <-ctx.Done():
			e.log.InfoContext(ctx, "Proximity engine stopped.")
			return
		case <-ticker.C:
			e.refresh(ctx)
		}
	}
}

func (e *Engine) refresh(ctx context.Context) {
	start := time.Now()
	err := e.cache.Refresh(ctx)
	e.metrics.FetchSeconds.Observe(time.Since(start).Seconds())

	if err != nil {
		e.metrics.CatalogRefreshes.WithLabelValues("failure").Inc()
		return
	}

	snapshot := e.cache.Snapshot()
	e.metrics.CatalogRefreshes.WithLabelValues("success").Inc()
	e.metrics.CatalogSize.Set(float64(len(snapshot)))
}

// HandlePosition feeds one raw position event through the throttle, the
// evaluator and the scheduler. Calls are serialized; the host may invoke
// it from any goroutine.
func (e *Engine) HandlePosition(ctx context.Context, pos models.UserPosition) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.throttle.Accept(pos) {
		e.metrics.PositionUpdates.WithLabelValues("throttled").Inc()
		e.log.DebugContext(ctx, "Position below movement threshold, skipping evaluation")
		return
	}
	e.metrics.PositionUpdates.WithLabelValues("accepted").Inc()

	matches := Evaluate(pos, e.cache.Snapshot(), e.threshold)
	if len(matches) == 0 {
		return
	}

	emitted := e.scheduler.Process(ctx, matches)
	e.log.DebugContext(ctx, "Evaluated position",
		"matches", len(matches), "alerts", emitted)
}

// DeleteLink removes a link from the remote catalog and, on success,
// prunes it from the notified set so a re-added link can alert again.
func (e *Engine) DeleteLink(ctx context.Context, link string) error {
	if err := e.deleter.Delete(ctx, link); err != nil {
		return err
	}

	if err := e.ledger.Remove(ctx, link); err != nil {
		e.log.ErrorContext(ctx, "Deleted link but failed to prune notified set",
			"link", link, "error", err)
	}

	return nil
}
