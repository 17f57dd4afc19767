package ledger

import (
	"context"
	"fmt"
)

// EnsureSchema creates the notified-set table when it does not exist yet.
// Membership is set semantics: the composite primary key makes repeated
// marks collapse into a single row.
func (l *Ledger) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS notified_links (
			namespace   TEXT        NOT NULL,
			link        TEXT        NOT NULL,
			notified_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (namespace, link)
		);
	`

	_, err := l.db.Exec(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to create notified_links table: %w", err)
	}

	return nil
}

// Contains reports whether the given candidate id has already triggered an alert.
func (l *Ledger) Contains(ctx context.Context, id string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM notified_links
			WHERE namespace = $1 AND link = $2
		);
	`

	var exists bool
	if err := l.db.QueryRow(ctx, query, l.namespace, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check notified set membership: %w", err)
	}

	return exists, nil
}

// MarkNotified records that an alert was emitted for the given candidate id.
// Marking an already-present id is a no-op.
func (l *Ledger) MarkNotified(ctx context.Context, id string) error {
	query := `
		INSERT INTO notified_links (namespace, link)
		VALUES ($1, $2)
		ON CONFLICT (namespace, link) DO NOTHING;
	`

	_, err := l.db.Exec(ctx, query, l.namespace, id)
	if err != nil {
		return fmt.Errorf("failed to mark link as notified: %w", err)
	}

	l.log.DebugContext(ctx, "Marked link as notified", "link", id)

	return nil
}

// Remove deletes a candidate id from the notified set. This only happens on
// explicit user action (deleting a link), so the candidate may alert again
// if it ever reappears in the catalog.
func (l *Ledger) Remove(ctx context.Context, id string) error {
	query := `
		DELETE FROM notified_links
		WHERE namespace = $1 AND link = $2;
	`

	_, err := l.db.Exec(ctx, query, l.namespace, id)
	if err != nil {
		return fmt.Errorf("failed to remove link from notified set: %w", err)
	}

	return nil
}

// ListAll returns every notified candidate id in the ledger's namespace.
func (l *Ledger) ListAll(ctx context.Context) ([]string, error) {
	query := `
		SELECT link FROM notified_links
		WHERE namespace = $1
		ORDER BY link ASC;
	`

	rows, err := l.db.Query(ctx, query, l.namespace)
	if err != nil {
		return nil, fmt.Errorf("failed to query notified set: %w", err)
	}
	defer rows.Close()

	var links []string
	for rows.Next() {
		var link string
		if errScan := rows.Scan(&link); errScan != nil {
			return nil, fmt.Errorf("failed to scan notified link: %w", errScan)
		}
		links = append(links, link)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read row: %w", err)
	}

	return links, nil
}
