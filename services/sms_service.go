package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kendall-kelly/cleancans-api/metrics"
	"github.com/kendall-kelly/cleancans-api/models"
	"github.com/kendall-kelly/cleancans-api/store"
)

// Notifier sends a text message to a customer. Delivery failure is reported
// through the result, never as an error.
type Notifier interface {
	Send(ctx context.Context, destination, message, category, jobID string) bool
}

var _ Notifier = (*SMSService)(nil)

// Sender performs the actual delivery of one notification
type Sender interface {
	Deliver(ctx context.Context, n models.Notification) error
}

// SMSServiceConfig configures an SMSService
type SMSServiceConfig struct {
	WebhookURL   string
	BusinessName string
	MaxAttempts  int
	Logger       *slog.Logger
	Metrics      *metrics.Metrics
}

// SMSService records every notification in the notifications collection and
// delivers it through a Sender. Pending rows are the outbox drained by
// OutboxWorker.
type SMSService struct {
	store        *store.Store
	sender       Sender
	webhookURL   string
	businessName string
	maxAttempts  int
	logger       *slog.Logger
	metrics      *metrics.Metrics
}

// NewSMSService creates an SMS service
func NewSMSService(st *store.Store, sender Sender, cfg SMSServiceConfig) *SMSService {
	if cfg.BusinessName == "" {
		cfg.BusinessName = "CleanCans Pro"
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &SMSService{
		store:        st,
		sender:       sender,
		webhookURL:   cfg.WebhookURL,
		businessName: cfg.BusinessName,
		maxAttempts:  cfg.MaxAttempts,
		logger:       cfg.Logger,
		metrics:      cfg.Metrics,
	}
}

// Enqueue persists a pending notification. Pass a transaction-scoped store to
// make the notification part of the same commit as the job it is about.
func (s *SMSService) Enqueue(ctx context.Context, st *store.Store, jobID, category, destination, message string) (models.Notification, error) {
	if st == nil {
		st = s.store
	}
	n, err := store.Notifications(st).Create(ctx, models.Notification{
		JobID:       jobID,
		Category:    category,
		Destination: destination,
		Message:     message,
		Status:      models.NotificationPending,
		WebhookURL:  s.webhookURL,
	})
	if err != nil {
		return models.Notification{}, fmt.Errorf("failed to enqueue notification: %w", err)
	}
	return n, nil
}

// Send records and immediately attempts delivery of a message. A failed
// attempt leaves the row pending for the outbox worker to retry.
func (s *SMSService) Send(ctx context.Context, destination, message, category, jobID string) bool {
	n, err := s.Enqueue(ctx, nil, jobID, category, destination, message)
	if err != nil {
		s.logger.ErrorContext(ctx, "sms enqueue failed", "job_id", jobID, "category", category, "error", err)
		return false
	}
	return s.Deliver(ctx, n)
}

// Deliver attempts one delivery of n and records the outcome on its row.
// The row becomes failed once MaxAttempts deliveries have failed.
func (s *SMSService) Deliver(ctx context.Context, n models.Notification) bool {
	attempts := n.Attempts + 1
	fields := map[string]interface{}{"attempts": attempts}

	sendErr := s.sender.Deliver(ctx, n)
	outcome := "sent"
	if sendErr == nil {
		sentAt := s.store.Now().UTC()
		fields["status"] = models.NotificationSent
		fields["sent_at"] = &sentAt
		fields["last_error"] = ""
	} else {
		fields["last_error"] = sendErr.Error()
		outcome = "retry"
		if attempts >= s.maxAttempts {
			fields["status"] = models.NotificationFailed
			outcome = "failed"
		}
	}
	s.metrics.Delivery(n.Category, outcome)

	if _, _, err := store.Notifications(s.store).Update(ctx, n.ID, fields); err != nil {
		s.logger.ErrorContext(ctx, "failed to record sms outcome", "notification_id", n.ID, "error", err)
	}

	if sendErr != nil {
		s.logger.WarnContext(ctx, "sms delivery failed",
			"notification_id", n.ID, "job_id", n.JobID, "attempt", attempts, "error", sendErr)
		return false
	}
	s.logger.InfoContext(ctx, "sms sent", "notification_id", n.ID, "job_id", n.JobID, "category", n.Category)
	return true
}

// JobCreatedMessage is sent when a job is booked or generated from a plan
func (s *SMSService) JobCreatedMessage(customerName, serviceDate string) string {
	return fmt.Sprintf("Hi %s! Your trash can cleaning is scheduled for %s. We'll send updates as we get closer. - %s",
		customerName, serviceDate, s.businessName)
}

// StatusUpdateMessage is sent when a technician changes the job status
func (s *SMSService) StatusUpdateMessage(customerName, status string) string {
	switch status {
	case models.JobStatusEnRoute:
		return fmt.Sprintf("Hi %s! Our technician is on the way to clean your trash cans. ETA: 30 minutes. - %s", customerName, s.businessName)
	case models.JobStatusInProgress:
		return fmt.Sprintf("Hi %s! We're currently cleaning your trash cans. Almost done! - %s", customerName, s.businessName)
	case models.JobStatusCompleted:
		return fmt.Sprintf("Hi %s! Your trash cans are sparkling clean! Check your email for before/after photos. Thanks for choosing %s!", customerName, s.businessName)
	default:
		return fmt.Sprintf("Status update: %s", status)
	}
}

// ReminderMessage is sent the day before a scheduled job
func (s *SMSService) ReminderMessage(customerName, serviceDate string) string {
	return fmt.Sprintf("Hi %s! Reminder: Your trash can cleaning is scheduled for tomorrow (%s). Please ensure cans are accessible. - %s",
		customerName, serviceDate, s.businessName)
}

// DisplayDate renders a stored YYYY-MM-DD date for message text. Malformed
// values are returned unchanged.
func DisplayDate(value string) string {
	t, err := models.ParseDate(value, nil)
	if err != nil {
		return value
	}
	return t.Format("January 2, 2006")
}

// List returns the recorded notifications, newest first, optionally only
// those with the given status.
func (s *SMSService) List(ctx context.Context, status string) ([]models.Notification, error) {
	var (
		items []models.Notification
		err   error
	)
	if status == "" {
		items, err = store.Notifications(s.store).All(ctx)
	} else {
		items, err = store.Notifications(s.store).Where(ctx, map[string]interface{}{"status": status})
	}
	if err != nil {
		return nil, err
	}
	for i, k := 0, len(items)-1; i < k; i, k = i+1, k-1 {
		items[i], items[k] = items[k], items[i]
	}
	return items, nil
}
