package notify

import (
	"context"
	"log/slog"

	"github.com/spotterlabs/beacon/internal/models"
)

var _ Sink = (*LogSink)(nil)

// LogSink writes alerts to the logger instead of a broker. Used in local
// runs where no AMQP broker is available.
type LogSink struct {
	log *slog.Logger
}

// NewLogSink creates a sink that logs every alert at info level.
func NewLogSink(log *slog.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Enqueue(ctx context.Context, cmd models.AlertCommand) error {
	s.log.InfoContext(ctx, "ALERT", "title", cmd.Title, "body", cmd.Body, "payload", cmd.Payload)
	return nil
}
