package engine

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/spotterlabs/beacon/internal/ledger"
	"github.com/spotterlabs/beacon/internal/metrics"
	"github.com/spotterlabs/beacon/internal/models"
	"github.com/spotterlabs/beacon/internal/notify"
)

// Policy selects how the scheduler deduplicates alerts. The two policies
// are mutually exclusive: notify-once consults the persistent ledger and
// never re-arms, interval gates on a single global timestamp and allows
// a candidate to alert again once the interval has elapsed.
type Policy string

const (
	// PolicyNotifyOnce alerts each candidate id at most once, ever.
	PolicyNotifyOnce Policy = "once"
	// PolicyInterval alerts only the nearest candidate, at most once per interval.
	PolicyInterval Policy = "interval"
)

// Scheduler consumes in-threshold matches and decides which of them turn
// into alert commands. It is not safe for concurrent use; the engine
// serializes calls to Process.
type Scheduler struct {
	log      *slog.Logger
	ledger   ledger.Interface
	sink     notify.Sink
	metrics  *metrics.Metrics
	policy   Policy
	interval time.Duration

	lastNotification time.Time
	now              func() time.Time
}

// NewScheduler creates a scheduler applying the given policy. The
// interval is only consulted under PolicyInterval.
func NewScheduler(
	log *slog.Logger,
	ldg ledger.Interface,
	sink notify.Sink,
	appMetrics *metrics.Metrics,
	policy Policy,
	interval time.Duration,
) *Scheduler {
	return &Scheduler{
		log:      log,
		ledger:   ldg,
		sink:     sink,
		metrics:  appMetrics,
		policy:   policy,
		interval: interval,
		now:      time.Now,
	}
}

// Process walks the matches in ascending-distance order and emits alert
// commands according to the policy. It returns the number of alerts
// handed to the sink. Delivery failures are counted and logged but never
// undo the dedup-state transition: the engine favors "notify at most as
// configured" over guaranteed delivery.
func (s *Scheduler) Process(ctx context.Context, matches []models.Match) int {
	if s.policy == PolicyInterval {
		return s.processInterval(ctx, matches)
	}

	return s.processNotifyOnce(ctx, matches)
}

func (s *Scheduler) processNotifyOnce(ctx context.Context, matches []models.Match) int {
	emitted := 0

	for _, match := range matches {
		id := match.Candidate.ID

		seen, err := s.ledger.Contains(ctx, id)
		if err != nil {
			// Degrade to "no new alerts" rather than risk a duplicate.
			s.log.ErrorContext(ctx, "Failed to consult notified set, skipping candidate",
				"link", id, "error", err)
			continue
		}
		if seen {
			continue
		}

		s.emit(ctx, match)
		emitted++

		if err = s.ledger.MarkNotified(ctx, id); err != nil {
			s.log.ErrorContext(ctx, "Failed to mark candidate as notified", "link", id, "error", err)
		}
	}

	return emitted
}

func (s *Scheduler) processInterval(ctx context.Context, matches []models.Match) int {
	if len(matches) == 0 {
		return 0
	}

	now := s.now()
	if !s.lastNotification.IsZero() && now.Sub(s.lastNotification) < s.interval {
		return 0
	}

	// Only the nearest match may fire under this policy.
	s.emit(ctx, matches[0])
	s.lastNotification = now

	return 1
}

func (s *Scheduler) emit(ctx context.Context, match models.Match) {
	cmd := buildAlert(match.Candidate)

	if err := s.sink.Enqueue(ctx, cmd); err != nil {
		s.metrics.DeliveryErrors.Inc()
		s.log.ErrorContext(ctx, "Failed to enqueue alert", "link", cmd.Payload, "error", err)
	}

	s.metrics.AlertsEmitted.Inc()
	s.log.InfoContext(ctx, "Emitted proximity alert",
		"link", cmd.Payload, "distance_m", match.DistanceMeters)
}

// buildAlert derives the notification text from the candidate: its label
// when present, else the host of the link, else a generic fallback.
func buildAlert(candidate models.Candidate) models.AlertCommand {
	title := candidate.Label
	if title == "" {
		if parsed, err := url.Parse(candidate.ID); err == nil && parsed.Host != "" {
			title = parsed.Host
		}
	}
	if title == "" {
		title = "Nearby content available"
	}

	return models.AlertCommand{
		Title:   title,
		Body:    fmt.Sprintf("Check out this link: %s", candidate.ID),
		Payload: candidate.ID,
	}
}
