package notify

import (
	"context"

	"github.com/spotterlabs/beacon/internal/models"
)

var _ Sink = (*Async)(nil)

// Async wraps a sink so that Enqueue returns immediately and delivery
// errors are reported to a caller-supplied error sink. The position
// callback path must never block on alert I/O, so this is the wrapper
// the engine is wired with in production.
type Async struct {
	inner Sink
	onErr func(models.AlertCommand, error)
}

// NewAsync creates an asynchronous wrapper around inner. onErr may be
// nil, in which case delivery errors are dropped silently.
func NewAsync(inner Sink, onErr func(models.AlertCommand, error)) *Async {
	return &Async{inner: inner, onErr: onErr}
}

// Enqueue hands the command to the inner sink in a new goroutine and
// always returns nil. Delivery is at-least-attempted, never retried.
func (a *Async) Enqueue(ctx context.Context, cmd models.AlertCommand) error {
	go func() {
		if err := a.inner.Enqueue(ctx, cmd); err != nil && a.onErr != nil {
			a.onErr(cmd, err)
		}
	}()

	return nil
}
