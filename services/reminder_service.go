package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/kendall-kelly/cleancans-api/models"
	"github.com/kendall-kelly/cleancans-api/store"
)

// ReminderService texts customers the day before a scheduled visit
type ReminderService struct {
	store    *store.Store
	sms      *SMSService
	outbox   Waker
	location *time.Location
	now      func() time.Time
	logger   *slog.Logger
}

// NewReminderService creates a reminder service
func NewReminderService(st *store.Store, sms *SMSService, outbox Waker, loc *time.Location, now func() time.Time, logger *slog.Logger) *ReminderService {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ReminderService{store: st, sms: sms, outbox: outbox, location: loc, now: now, logger: logger}
}

// SendDueReminders enqueues one reminder for each scheduled job dated
// tomorrow whose customer has a phone number. Jobs already reminded are
// skipped, so repeated calls on the same day send nothing new.
func (s *ReminderService) SendDueReminders(ctx context.Context) (int, error) {
	tomorrow := models.FormatDate(models.DateOf(s.now(), s.location).AddDate(0, 0, 1))
	jobs, err := store.Jobs(s.store).Where(ctx, map[string]interface{}{
		"scheduled_date": tomorrow,
		"status":         models.JobStatusScheduled,
	})
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, job := range jobs {
		queued, err := s.remind(ctx, job)
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to queue reminder", "job_id", job.ID, "error", err)
			continue
		}
		if queued {
			sent++
		}
	}

	if sent > 0 && s.outbox != nil {
		s.outbox.Notify()
	}
	s.logger.InfoContext(ctx, "queued reminders", "date", tomorrow, "count", sent)
	return sent, nil
}

func (s *ReminderService) remind(ctx context.Context, job models.Job) (bool, error) {
	queued := false
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		existing, err := store.Notifications(tx).Where(ctx, map[string]interface{}{
			"job_id":   job.ID,
			"category": models.NotificationReminder,
		})
		if err != nil || len(existing) > 0 {
			return err
		}

		customer, ok, err := store.Customers(tx).FindByID(ctx, job.CustomerID)
		if err != nil || !ok || customer.Phone == "" {
			return err
		}

		message := s.sms.ReminderMessage(customer.Name, DisplayDate(job.ScheduledDate))
		if _, err := s.sms.Enqueue(ctx, tx, job.ID, models.NotificationReminder, customer.Phone, message); err != nil {
			return err
		}
		queued = true
		return nil
	})
	return queued, err
}
