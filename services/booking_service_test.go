package services

import (
	"testing"
	"time"

	"github.com/kendall-kelly/cleancans-api/models"
	"github.com/kendall-kelly/cleancans-api/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBook_SingleJob(t *testing.T) {
	f := newFixture(t)
	svc, user := f.basics(t)
	waker := &countingWaker{}
	booking := NewBookingService(f.store, f.sms, waker, nil)

	result, err := booking.Book(f.ctx, user, BookingRequest{
		ServiceID:     svc.ID,
		ScheduledDate: "2024-06-20",
		Notes:         "Cans are by the garage",
	})
	require.NoError(t, err)

	assert.Nil(t, result.Plan)
	assert.Equal(t, models.JobStatusScheduled, result.Job.Status)
	assert.Equal(t, "2024-06-20", result.Job.ScheduledDate)
	assert.Equal(t, "Cans are by the garage", result.Job.Notes)
	assert.Nil(t, result.Job.RecurringPlanID)
	assert.NotNil(t, result.Job.BeforePhotos)

	customer, err := NewCustomerService(f.store).ForUser(f.ctx, user)
	require.NoError(t, err)
	assert.Equal(t, customer.ID, result.Job.CustomerID)
	assert.Equal(t, user.Phone, customer.Phone)

	notes := f.notifications(t)
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotificationJobCreated, notes[0].Category)
	assert.Equal(t, models.NotificationPending, notes[0].Status)
	assert.Equal(t, result.Job.ID, notes[0].JobID)
	assert.Contains(t, notes[0].Message, "June 20, 2024")
	assert.Equal(t, 1, waker.n)
}

func TestBook_RecurringCreatesPlan(t *testing.T) {
	f := newFixture(t)
	svc, user := f.basics(t)
	booking := NewBookingService(f.store, f.sms, nil, nil)

	result, err := booking.Book(f.ctx, user, BookingRequest{
		ServiceID:     svc.ID,
		ScheduledDate: "2024-01-31",
		Recurring:     true,
		Frequency:     models.FrequencyMonthly,
	})
	require.NoError(t, err)
	require.NotNil(t, result.Plan)

	assert.Equal(t, "2024-02-29", result.Plan.NextDate)
	assert.Equal(t, 31, result.Plan.AnchorDay)
	assert.True(t, result.Plan.Active)
	assert.Nil(t, result.Job.RecurringPlanID)
}

func TestBook_OnlyGeneratedJobsCarryPlanID(t *testing.T) {
	f := newFixture(t)
	svc, user := f.basics(t)
	booking := NewBookingService(f.store, f.sms, nil, nil)

	result, err := booking.Book(f.ctx, user, BookingRequest{
		ServiceID:     svc.ID,
		ScheduledDate: "2024-06-14",
		Recurring:     true,
		Frequency:     models.FrequencyWeekly,
	})
	require.NoError(t, err)
	require.NotNil(t, result.Plan)
	assert.Equal(t, "2024-06-21", result.Plan.NextDate)

	f.clock.Set(time.Date(2024, time.June, 21, 9, 0, 0, 0, time.UTC))
	generated, err := f.engine(CatchUpAll, nil).GenerateNextJobs(f.ctx)
	require.NoError(t, err)
	require.Len(t, generated, 1)
	assert.Equal(t, "2024-06-21", generated[0].ScheduledDate)

	tagged, err := store.Jobs(f.store).Where(f.ctx, map[string]interface{}{"recurring_plan_id": result.Plan.ID})
	require.NoError(t, err)
	require.Len(t, tagged, 1)
	assert.Equal(t, generated[0].ID, tagged[0].ID)

	assert.Nil(t, f.job(t, result.Job.ID).RecurringPlanID)
}

func TestBook_ReusesCustomerProfile(t *testing.T) {
	f := newFixture(t)
	svc, user := f.basics(t)
	booking := NewBookingService(f.store, f.sms, nil, nil)

	first, err := booking.Book(f.ctx, user, BookingRequest{ServiceID: svc.ID, ScheduledDate: "2024-06-20"})
	require.NoError(t, err)
	second, err := booking.Book(f.ctx, user, BookingRequest{ServiceID: svc.ID, ScheduledDate: "2024-06-27"})
	require.NoError(t, err)

	assert.Equal(t, first.Job.CustomerID, second.Job.CustomerID)
	assert.Equal(t, int64(1), f.count(t, func() (int64, error) { return store.Customers(f.store).Count(f.ctx) }))
}

func TestBook_Rejections(t *testing.T) {
	f := newFixture(t)
	svc, user := f.basics(t)
	inactive := f.createService(t, models.Service{Name: "Retired", Price: 10, Duration: 15, Active: false})
	booking := NewBookingService(f.store, f.sms, nil, nil)

	tests := []struct {
		name    string
		req     BookingRequest
		wantErr error
	}{
		{"inactive service", BookingRequest{ServiceID: inactive.ID, ScheduledDate: "2024-06-20"}, ErrServiceInactive},
		{"unknown service", BookingRequest{ServiceID: "missing", ScheduledDate: "2024-06-20"}, ErrServiceNotFound},
		{"bad date", BookingRequest{ServiceID: svc.ID, ScheduledDate: "06/20/2024"}, ErrInvalidDate},
		{"bad frequency", BookingRequest{ServiceID: svc.ID, ScheduledDate: "2024-06-20", Recurring: true, Frequency: "daily"}, ErrInvalidFrequency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := booking.Book(f.ctx, user, tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	// Failed bookings leave nothing behind
	assert.Equal(t, int64(0), f.count(t, func() (int64, error) { return store.Jobs(f.store).Count(f.ctx) }))
	assert.Equal(t, int64(0), f.count(t, func() (int64, error) { return store.Customers(f.store).Count(f.ctx) }))
	assert.Empty(t, f.notifications(t))
}

func TestBook_NoNotificationWithoutPhone(t *testing.T) {
	f := newFixture(t)
	svc := f.createService(t, models.Service{Name: "Standard Clean", Price: 25, Duration: 30, Active: true})
	user := f.createUser(t, models.User{Email: "quiet@example.com", Name: "Quiet", Role: models.RoleCustomer})
	booking := NewBookingService(f.store, f.sms, nil, nil)

	_, err := booking.Book(f.ctx, user, BookingRequest{ServiceID: svc.ID, ScheduledDate: "2024-06-20"})
	require.NoError(t, err)
	assert.Empty(t, f.notifications(t))
}
