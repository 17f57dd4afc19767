// Package notify delivers alert commands to the host notification layer.
package notify

import (
	"context"

	"github.com/spotterlabs/beacon/internal/models"
)

// Sink is the host notification boundary. Display timing and permission
// handling are the host's responsibility; the engine only enqueues.
type Sink interface {
	Enqueue(ctx context.Context, cmd models.AlertCommand) error
}
