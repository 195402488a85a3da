package appointments

import (
	"context"
	"time"

	"github.com/mindwell-health/practice-api/internal/observability/metrics"
	"github.com/mindwell-health/practice-api/pkg/logging"
)

// ReminderStore is the repository surface the reminder run needs.
type ReminderStore interface {
	DueForReminder(ctx context.Context, window time.Duration, now time.Time) ([]*ReminderCandidate, error)
	MarkReminderSent(ctx context.Context, id string, at time.Time) (bool, error)
}

// ReminderMailer sends appointment reminder emails.
type ReminderMailer interface {
	SendAppointmentReminder(ctx context.Context, to, toName string, startsAt time.Time, location string) error
}

// ReminderRunner performs one on-demand reminder sweep. It is driven by an
// external scheduler hitting the run endpoint; there is no internal loop.
type ReminderRunner struct {
	store   ReminderStore
	mailer  ReminderMailer
	metrics *metrics.OnboardingMetrics
	logger  *logging.Logger

	window time.Duration
	now    func() time.Time
}

func NewReminderRunner(store ReminderStore, mailer ReminderMailer, m *metrics.OnboardingMetrics, logger *logging.Logger, window time.Duration) *ReminderRunner {
	if logger == nil {
		logger = logging.Default()
	}
	if window <= 0 {
		window = 24 * time.Hour
	}
	return &ReminderRunner{
		store:   store,
		mailer:  mailer,
		metrics: m,
		logger:  logger,
		window:  window,
		now:     time.Now,
	}
}

// RunResult summarizes one reminder sweep.
type RunResult struct {
	Candidates int `json:"candidates"`
	Sent       int `json:"sent"`
	Skipped    int `json:"skipped"`
	Failed     int `json:"failed"`
}

// Run claims each due appointment before emailing, so two overlapping sweeps
// never double-send. A failed send is logged and counted; the stamp is not
// rolled back.
func (r *ReminderRunner) Run(ctx context.Context) (*RunResult, error) {
	now := r.now()
	candidates, err := r.store.DueForReminder(ctx, r.window, now)
	if err != nil {
		return nil, err
	}

	result := &RunResult{Candidates: len(candidates)}
	for _, c := range candidates {
		claimed, err := r.store.MarkReminderSent(ctx, c.AppointmentID, now)
		if err != nil {
			r.logger.Error("reminder claim failed", "error", err, "appointment_id", c.AppointmentID)
			result.Failed++
			continue
		}
		if !claimed {
			result.Skipped++
			continue
		}

		if err := r.mailer.SendAppointmentReminder(ctx, c.PatientEmail, c.PatientName, c.StartsAt, c.Location); err != nil {
			r.logger.Error("reminder email failed", "error", err, "appointment_id", c.AppointmentID)
			result.Failed++
			continue
		}
		r.metrics.ObserveReminder("sent")
		result.Sent++
	}

	r.logger.Info("reminder sweep finished",
		"candidates", result.Candidates, "sent", result.Sent,
		"skipped", result.Skipped, "failed", result.Failed)
	return result, nil
}
