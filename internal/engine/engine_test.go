package engine_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spotterlabs/beacon/internal/catalog"
	"github.com/spotterlabs/beacon/internal/engine"
	"github.com/spotterlabs/beacon/internal/metrics"
	"github.com/spotterlabs/beacon/internal/models"
	"github.com/spotterlabs/beacon/test/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type staticFetcher struct {
	candidates []models.Candidate
	err        error
}

func (f *staticFetcher) FetchAll(_ context.Context) ([]models.Candidate, error) {
	return f.candidates, f.err
}

type stubDeleter struct {
	deleted []string
	err     error
}

func (d *stubDeleter) Delete(_ context.Context, link string) error {
	if d.err != nil {
		return d.err
	}
	d.deleted = append(d.deleted, link)
	return nil
}

func newEngine(
	t *testing.T,
	cache *catalog.Cache,
	deleter engine.CatalogDeleter,
	mockLedger *mocks.Interface,
	mockSink *mocks.Sink,
	movementMeters float64,
) *engine.Engine {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	appMetrics := metrics.NewMetrics(prometheus.NewRegistry())
	scheduler := engine.NewScheduler(
		logger, mockLedger, mockSink, appMetrics, engine.PolicyNotifyOnce, time.Minute,
	)

	return engine.NewEngine(
		logger, cache, deleter, mockLedger, scheduler, appMetrics,
		5*time.Second, 30, movementMeters,
	)
}

func primedCache(t *testing.T, candidates ...models.Candidate) *catalog.Cache {
	t.Helper()

	cache := catalog.NewCache(&staticFetcher{candidates: candidates}, slog.Default())
	require.NoError(t, cache.Refresh(t.Context()))

	return cache
}

func TestEngine_HandlePosition(t *testing.T) {
	ctx := t.Context()

	nearby := models.Candidate{
		ID: "https://example.com/near",
		// ~25 m north of the test position.
		Coordinate: &models.Coordinates{Latitude: 50.450225, Longitude: 30.52},
	}

	t.Run("nearby candidate triggers one alert", func(t *testing.T) {
		mockLedger := mocks.NewInterface(t)
		mockSink := mocks.NewSink(t)
		eng := newEngine(t, primedCache(t, nearby), nil, mockLedger, mockSink, 0)

		mockLedger.On("Contains", ctx, nearby.ID).Return(false, nil).Once()
		mockSink.On("Enqueue", ctx, mock.Anything).Return(nil).Once()
		mockLedger.On("MarkNotified", ctx, nearby.ID).Return(nil).Once()

		eng.HandlePosition(ctx, position(50.45, 30.52))
	})

	t.Run("throttled position runs no evaluation", func(t *testing.T) {
		mockLedger := mocks.NewInterface(t)
		mockSink := mocks.NewSink(t)
		eng := newEngine(t, primedCache(t, nearby), nil, mockLedger, mockSink, 100)

		mockLedger.On("Contains", ctx, nearby.ID).Return(false, nil).Once()
		mockSink.On("Enqueue", ctx, mock.Anything).Return(nil).Once()
		mockLedger.On("MarkNotified", ctx, nearby.ID).Return(nil).Once()

		eng.HandlePosition(ctx, position(50.45, 30.52))

		// ~50 m away with a 100 m movement threshold: accept returns false,
		// no evaluation cycle runs, no ledger call, no alert.
		eng.HandlePosition(ctx, position(50.45045, 30.52))

		assert.Len(t, mockSink.Calls, 1)
	})

	t.Run("empty cache yields no alerts", func(t *testing.T) {
		mockLedger := mocks.NewInterface(t)
		mockSink := mocks.NewSink(t)
		cache := catalog.NewCache(&staticFetcher{err: assert.AnError}, slog.Default())
		eng := newEngine(t, cache, nil, mockLedger, mockSink, 0)

		eng.HandlePosition(ctx, position(50.45, 30.52))
	})
}

func TestEngine_Run_ContextCancelled(t *testing.T) {
	mockLedger := mocks.NewInterface(t)
	mockSink := mocks.NewSink(t)
	cache := catalog.NewCache(&staticFetcher{}, slog.Default())
	eng := newEngine(t, cache, nil, mockLedger, mockSink, 0)

	ctx, cancel := context.WithTimeout(t.Context(), 10*time.Millisecond)
	defer cancel()

	eng.Run(ctx)
}

func TestEngine_DeleteLink(t *testing.T) {
	ctx := t.Context()
	link := "https://example.com/a"

	t.Run("delete prunes the notified set", func(t *testing.T) {
		mockLedger := mocks.NewInterface(t)
		deleter := &stubDeleter{}
		eng := newEngine(t, primedCache(t), deleter, mockLedger, mocks.NewSink(t), 0)

		mockLedger.On("Remove", ctx, link).Return(nil).Once()

		require.NoError(t, eng.DeleteLink(ctx, link))
		assert.Equal(t, []string{link}, deleter.deleted)
	})

	t.Run("failed catalog delete leaves the ledger alone", func(t *testing.T) {
		mockLedger := mocks.NewInterface(t)
		deleter := &stubDeleter{err: assert.AnError}
		eng := newEngine(t, primedCache(t), deleter, mockLedger, mocks.NewSink(t), 0)

		require.ErrorIs(t, eng.DeleteLink(ctx, link), assert.AnError)
	})

	t.Run("ledger prune failure is not fatal", func(t *testing.T) {
		mockLedger := mocks.NewInterface(t)
		deleter := &stubDeleter{}
		eng := newEngine(t, primedCache(t), deleter, mockLedger, mocks.NewSink(t), 0)

		mockLedger.On("Remove", ctx, link).Return(assert.AnError).Once()

		require.NoError(t, eng.DeleteLink(ctx, link))
	})
}
