package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/kendall-kelly/cleancans-api/metrics"
	"github.com/kendall-kelly/cleancans-api/models"
	"github.com/kendall-kelly/cleancans-api/store"
)

// Waker is signalled after new notifications are committed
type Waker interface {
	Notify()
}

// OutboxWorker delivers pending notifications
type OutboxWorker struct {
	store    *store.Store
	sms      *SMSService
	interval time.Duration
	wake     chan struct{}
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// NewOutboxWorker creates a worker that polls every interval
func NewOutboxWorker(st *store.Store, sms *SMSService, interval time.Duration, logger *slog.Logger, m *metrics.Metrics) *OutboxWorker {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &OutboxWorker{
		store:    st,
		sms:      sms,
		interval: interval,
		wake:     make(chan struct{}, 1),
		logger:   logger,
		metrics:  m,
	}
}

// Notify wakes the worker without waiting for the next poll. It never blocks.
func (w *OutboxWorker) Notify() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// ProcessPending attempts delivery of every pending notification once and
// returns how many were sent.
func (w *OutboxWorker) ProcessPending(ctx context.Context) (int, error) {
	pending, err := store.Notifications(w.store).Where(ctx, map[string]interface{}{
		"status": models.NotificationPending,
	})
	if err != nil {
		return 0, err
	}
	w.metrics.Pending(len(pending))

	sent := 0
	for _, n := range pending {
		if ctx.Err() != nil {
			break
		}
		if w.sms.Deliver(ctx, n) {
			sent++
		}
	}
	return sent, nil
}

// Run drains the outbox until ctx is cancelled
func (w *OutboxWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("outbox worker started", "interval", w.interval.String())
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("outbox worker stopped")
			return nil
		case <-ticker.C:
		case <-w.wake:
		}

		if _, err := w.ProcessPending(ctx); err != nil {
			w.logger.Error("outbox pass failed", "error", err)
		}
	}
}
