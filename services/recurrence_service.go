package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kendall-kelly/cleancans-api/metrics"
	"github.com/kendall-kelly/cleancans-api/models"
	"github.com/kendall-kelly/cleancans-api/store"
	"gorm.io/datatypes"
)

// CatchUpPolicy decides what a pass does with a plan that missed several
// occurrences.
type CatchUpPolicy string

const (
	// CatchUpAll materializes one job per missed occurrence until the plan's
	// next date is after today.
	CatchUpAll CatchUpPolicy = "all"
	// CatchUpSingle materializes at most one job per plan per pass.
	CatchUpSingle CatchUpPolicy = "single"
	// CatchUpSkip materializes a job for the most recent due occurrence only
	// and moves the plan to its first occurrence after today.
	CatchUpSkip CatchUpPolicy = "skip"
)

// IsValid reports whether p is a known policy
func (p CatchUpPolicy) IsValid() bool {
	switch p {
	case CatchUpAll, CatchUpSingle, CatchUpSkip:
		return true
	}
	return false
}

// RecurrenceConfig configures a RecurrenceService
type RecurrenceConfig struct {
	Location   *time.Location
	Now        func() time.Time
	Policy     CatchUpPolicy
	MaxCatchUp int // upper bound of jobs per plan per pass under CatchUpAll
	Logger     *slog.Logger
	Metrics    *metrics.Metrics
	Outbox     Waker
}

// RecurrenceService turns due recurring plans into jobs. It has no timing
// loop of its own; callers decide when GenerateNextJobs runs.
type RecurrenceService struct {
	store      *store.Store
	sms        *SMSService
	location   *time.Location
	now        func() time.Time
	policy     CatchUpPolicy
	maxCatchUp int
	logger     *slog.Logger
	metrics    *metrics.Metrics
	outbox     Waker
}

// NewRecurrenceService creates the recurrence engine
func NewRecurrenceService(st *store.Store, sms *SMSService, cfg RecurrenceConfig) *RecurrenceService {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if !cfg.Policy.IsValid() {
		cfg.Policy = CatchUpAll
	}
	if cfg.MaxCatchUp <= 0 {
		cfg.MaxCatchUp = 52
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &RecurrenceService{
		store:      st,
		sms:        sms,
		location:   cfg.Location,
		now:        cfg.Now,
		policy:     cfg.Policy,
		maxCatchUp: cfg.MaxCatchUp,
		logger:     cfg.Logger,
		metrics:    cfg.Metrics,
		outbox:     cfg.Outbox,
	}
}

// GenerateNextJobs materializes every due active plan and returns the jobs
// that were created. A plan that fails is logged and skipped; the error is
// only non-nil when the plans cannot be read at all.
func (r *RecurrenceService) GenerateNextJobs(ctx context.Context) ([]models.Job, error) {
	plans, err := store.Plans(r.store).Where(ctx, map[string]interface{}{"active": true})
	if err != nil {
		return nil, fmt.Errorf("failed to load recurring plans: %w", err)
	}

	today := models.DateOf(r.now(), r.location)
	newJobs := make([]models.Job, 0)
	failed := 0

	for _, plan := range plans {
		jobs, err := r.materialize(ctx, plan, today)
		if err != nil {
			failed++
			r.logger.ErrorContext(ctx, "failed to materialize recurring plan",
				"plan_id", plan.ID, "next_date", plan.NextDate, "error", err)
			continue
		}
		newJobs = append(newJobs, jobs...)
	}

	r.metrics.RecurrencePass(len(newJobs), failed)
	if len(newJobs) > 0 && r.outbox != nil {
		r.outbox.Notify()
	}
	return newJobs, nil
}

// AutoGenerateJobs runs one pass and logs the outcome
func (r *RecurrenceService) AutoGenerateJobs(ctx context.Context) {
	jobs, err := r.GenerateNextJobs(ctx)
	if err != nil {
		r.logger.ErrorContext(ctx, "recurring job generation failed", "error", err)
		return
	}
	r.logger.InfoContext(ctx, "auto-generated recurring jobs", "count", len(jobs))
}

// occurrences returns the dates to materialize and the plan's new next date
func (r *RecurrenceService) occurrences(plan models.RecurringPlan, next, today time.Time) ([]time.Time, time.Time, error) {
	anchor := plan.AnchorDay
	if anchor <= 0 {
		anchor = next.Day()
	}
	step := func(d time.Time) (time.Time, error) {
		return NextOccurrence(d, plan.Frequency, anchor)
	}

	switch r.policy {
	case CatchUpSingle:
		after, err := step(next)
		return []time.Time{next}, after, err
	case CatchUpSkip:
		latest := next
		after, err := step(latest)
		for err == nil && !after.After(today) {
			latest = after
			after, err = step(latest)
		}
		return []time.Time{latest}, after, err
	default:
		dates := make([]time.Time, 0, 1)
		current := next
		for !current.After(today) && len(dates) < r.maxCatchUp {
			dates = append(dates, current)
			after, err := step(current)
			if err != nil {
				return nil, time.Time{}, err
			}
			current = after
		}
		return dates, current, nil
	}
}

func (r *RecurrenceService) materialize(ctx context.Context, plan models.RecurringPlan, today time.Time) ([]models.Job, error) {
	next, err := models.ParseDate(plan.NextDate, r.location)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDate, err)
	}
	if next.After(today) {
		return nil, nil
	}

	dates, newNext, err := r.occurrences(plan, next, today)
	if err != nil {
		return nil, err
	}

	var created []models.Job
	err = r.store.Transaction(ctx, func(tx *store.Store) error {
		created = nil

		// Another pass may have advanced or cancelled the plan since it was read
		current, ok, err := store.Plans(tx).FindByID(ctx, plan.ID)
		if err != nil {
			return err
		}
		if !ok || !current.Active || current.NextDate != plan.NextDate {
			return nil
		}

		customer, hasCustomer, err := store.Customers(tx).FindByID(ctx, plan.CustomerID)
		if err != nil {
			return err
		}

		planID := plan.ID
		for _, d := range dates {
			job, err := store.Jobs(tx).Create(ctx, models.Job{
				CustomerID:      plan.CustomerID,
				ServiceID:       plan.ServiceID,
				ScheduledDate:   models.FormatDate(d),
				Status:          models.JobStatusScheduled,
				BeforePhotos:    datatypes.JSONSlice[string]{},
				AfterPhotos:     datatypes.JSONSlice[string]{},
				RecurringPlanID: &planID,
			})
			if err != nil {
				return err
			}
			created = append(created, job)

			if hasCustomer && customer.Phone != "" && r.sms != nil {
				message := r.sms.JobCreatedMessage(customer.Name, DisplayDate(job.ScheduledDate))
				if _, err := r.sms.Enqueue(ctx, tx, job.ID, models.NotificationJobCreated, customer.Phone, message); err != nil {
					return err
				}
			}
		}

		fields := map[string]interface{}{"next_date": models.FormatDate(newNext)}
		if plan.AnchorDay <= 0 {
			// Pin the anchor before the first clamp can move the day of month
			fields["anchor_day"] = next.Day()
		}
		_, _, err = store.Plans(tx).Update(ctx, plan.ID, fields)
		return err
	})
	if err != nil {
		return nil, err
	}

	for _, job := range created {
		r.logger.InfoContext(ctx, "materialized recurring job",
			"plan_id", plan.ID, "job_id", job.ID, "scheduled_date", job.ScheduledDate)
	}
	return created, nil
}

// RecurrenceTrigger calls GenerateNextJobs on a fixed interval. It stands in
// for the admin pressing "generate" every day.
type RecurrenceTrigger struct {
	service  *RecurrenceService
	interval time.Duration
	logger   *slog.Logger
}

// NewRecurrenceTrigger creates a trigger
func NewRecurrenceTrigger(service *RecurrenceService, interval time.Duration, logger *slog.Logger) *RecurrenceTrigger {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecurrenceTrigger{service: service, interval: interval, logger: logger}
}

// Run performs one pass immediately, then one per interval until ctx is done
func (t *RecurrenceTrigger) Run(ctx context.Context) error {
	if t.interval <= 0 {
		return nil
	}
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	t.logger.Info("recurrence trigger started", "interval", t.interval.String())
	for {
		t.service.AutoGenerateJobs(ctx)
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
