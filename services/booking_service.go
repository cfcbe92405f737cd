package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kendall-kelly/cleancans-api/models"
	"github.com/kendall-kelly/cleancans-api/store"
	"gorm.io/datatypes"
)

// BookingRequest is a customer's request for a cleaning visit
type BookingRequest struct {
	ServiceID     string `json:"service_id" binding:"required"`
	ScheduledDate string `json:"scheduled_date" binding:"required"`
	Notes         string `json:"notes"`
	Recurring     bool   `json:"recurring"`
	Frequency     string `json:"frequency"`
}

// BookingResult holds the job that was booked and the plan created with it
type BookingResult struct {
	Job  models.Job            `json:"job"`
	Plan *models.RecurringPlan `json:"plan,omitempty"`
}

// BookingService books jobs on behalf of customers
type BookingService struct {
	store    *store.Store
	sms      *SMSService
	outbox   Waker
	location *time.Location
}

// NewBookingService creates a booking service. outbox may be nil.
func NewBookingService(st *store.Store, sms *SMSService, outbox Waker, loc *time.Location) *BookingService {
	if loc == nil {
		loc = time.UTC
	}
	return &BookingService{store: st, sms: sms, outbox: outbox, location: loc}
}

// Book creates a scheduled job for user and, for recurring bookings, the
// plan that continues it one increment after the booked date.
func (s *BookingService) Book(ctx context.Context, user models.User, req BookingRequest) (BookingResult, error) {
	date, err := models.ParseDate(strings.TrimSpace(req.ScheduledDate), s.location)
	if err != nil {
		return BookingResult{}, fmt.Errorf("%w: %v", ErrInvalidDate, err)
	}

	var next time.Time
	if req.Recurring {
		if next, err = NextOccurrence(date, req.Frequency, date.Day()); err != nil {
			return BookingResult{}, err
		}
	}

	var result BookingResult
	err = s.store.Transaction(ctx, func(tx *store.Store) error {
		result = BookingResult{}

		customer, err := customerForUser(ctx, tx, user)
		if err != nil {
			return err
		}
		if _, err := requireActive(ctx, tx, req.ServiceID); err != nil {
			return err
		}

		if req.Recurring {
			plan, err := store.Plans(tx).Create(ctx, models.RecurringPlan{
				CustomerID: customer.ID,
				ServiceID:  req.ServiceID,
				Frequency:  req.Frequency,
				AnchorDay:  date.Day(),
				NextDate:   models.FormatDate(next),
				Active:     true,
			})
			if err != nil {
				return err
			}
			result.Plan = &plan
		}

		// The booked visit belongs to the booking; only the engine tags jobs with a plan
		result.Job, err = store.Jobs(tx).Create(ctx, models.Job{
			CustomerID:    customer.ID,
			ServiceID:     req.ServiceID,
			ScheduledDate: models.FormatDate(date),
			Status:        models.JobStatusScheduled,
			Notes:         req.Notes,
			BeforePhotos:  datatypes.JSONSlice[string]{},
			AfterPhotos:   datatypes.JSONSlice[string]{},
		})
		if err != nil {
			return err
		}

		if customer.Phone == "" || s.sms == nil {
			return nil
		}
		message := s.sms.JobCreatedMessage(customer.Name, DisplayDate(result.Job.ScheduledDate))
		_, err = s.sms.Enqueue(ctx, tx, result.Job.ID, models.NotificationJobCreated, customer.Phone, message)
		return err
	})
	if err != nil {
		return BookingResult{}, err
	}

	if s.outbox != nil {
		s.outbox.Notify()
	}
	return result, nil
}
