// Package ledger persists the set of candidate ids that have already
// triggered an alert. It is the sole owner of dedup state: the scheduler
// consults it, user-driven deletes prune it, nothing re-arms it.
package ledger

import (
	"context"
	"log/slog"
)

// DefaultNamespace is the key the original client stored its notified set under.
const DefaultNamespace = "NotifiedLinks"

// Interface is the notified-set contract consumed by the scheduler.
type Interface interface {
	Contains(ctx context.Context, id string) (bool, error)
	MarkNotified(ctx context.Context, id string) error
	Remove(ctx context.Context, id string) error
	ListAll(ctx context.Context) ([]string, error)
}

// Ledger is a Postgres-backed notified set, keyed by a fixed namespace
// so that several engines can share one table.
type Ledger struct {
	db        Database
	namespace string
	log       *slog.Logger
}

// NewLedger creates a new instance of Ledger with the provided Database.
// It returns a pointer to the newly created Ledger.
func NewLedger(db Database, namespace string, log *slog.Logger) *Ledger {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	return &Ledger{db: db, namespace: namespace, log: log}
}
