package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/kendall-kelly/cleancans-api/models"
	"github.com/kendall-kelly/cleancans-api/store"
	"github.com/kendall-kelly/cleancans-api/testutil"
	"github.com/stretchr/testify/require"
)

// fakeSender records deliveries and fails while failing is set
type fakeSender struct {
	mu        sync.Mutex
	delivered []models.Notification
	failing   bool
}

func (f *fakeSender) Deliver(ctx context.Context, n models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return errors.New("webhook unreachable")
	}
	f.delivered = append(f.delivered, n)
	return nil
}

func (f *fakeSender) setFailing(v bool) {
	f.mu.Lock()
	f.failing = v
	f.mu.Unlock()
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.delivered)
}

// countingWaker counts outbox wake-ups
type countingWaker struct {
	mu sync.Mutex
	n  int
}

func (w *countingWaker) Notify() {
	w.mu.Lock()
	w.n++
	w.mu.Unlock()
}

type fixture struct {
	ctx    context.Context
	store  *store.Store
	clock  *testutil.Clock
	sender *fakeSender
	sms    *SMSService
}

// referenceNow is the "current time" of every service test
var referenceNow = time.Date(2024, time.June, 15, 10, 0, 0, 0, time.UTC)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	clock := testutil.NewClock(referenceNow)
	st := store.New(testutil.NewTestDB(t), store.WithClock(clock.Now))
	require.NoError(t, st.Migrate(ctx))

	sender := &fakeSender{}
	sms := NewSMSService(st, sender, SMSServiceConfig{
		WebhookURL:  "https://hooks.example.com/sms",
		MaxAttempts: 2,
	})
	return &fixture{ctx: ctx, store: st, clock: clock, sender: sender, sms: sms}
}

func (f *fixture) today() time.Time {
	return models.DateOf(f.clock.Now(), time.UTC)
}

func (f *fixture) daysFromToday(days int) string {
	return models.FormatDate(f.today().AddDate(0, 0, days))
}

func (f *fixture) createCustomer(t *testing.T, c models.Customer) models.Customer {
	t.Helper()
	created, err := store.Customers(f.store).Create(f.ctx, c)
	require.NoError(t, err)
	return created
}

func (f *fixture) createService(t *testing.T, s models.Service) models.Service {
	t.Helper()
	created, err := store.Services(f.store).Create(f.ctx, s)
	require.NoError(t, err)
	return created
}

func (f *fixture) createPlan(t *testing.T, p models.RecurringPlan) models.RecurringPlan {
	t.Helper()
	created, err := store.Plans(f.store).Create(f.ctx, p)
	require.NoError(t, err)
	return created
}

func (f *fixture) createUser(t *testing.T, u models.User) models.User {
	t.Helper()
	created, err := store.Users(f.store).Create(f.ctx, u)
	require.NoError(t, err)
	return created
}

func (f *fixture) plan(t *testing.T, id string) models.RecurringPlan {
	t.Helper()
	p, ok, err := store.Plans(f.store).FindByID(f.ctx, id)
	require.NoError(t, err)
	require.True(t, ok)
	return p
}

func (f *fixture) notifications(t *testing.T) []models.Notification {
	t.Helper()
	all, err := store.Notifications(f.store).All(f.ctx)
	require.NoError(t, err)
	return all
}

func (f *fixture) engine(policy CatchUpPolicy, waker Waker) *RecurrenceService {
	return NewRecurrenceService(f.store, f.sms, RecurrenceConfig{
		Now:    f.clock.Now,
		Policy: policy,
		Outbox: waker,
	})
}

func (f *fixture) createJob(t *testing.T, j models.Job) models.Job {
	t.Helper()
	if j.Status == "" {
		j.Status = models.JobStatusScheduled
	}
	created, err := store.Jobs(f.store).Create(f.ctx, j)
	require.NoError(t, err)
	return created
}

func (f *fixture) job(t *testing.T, id string) models.Job {
	t.Helper()
	j, ok, err := store.Jobs(f.store).FindByID(f.ctx, id)
	require.NoError(t, err)
	require.True(t, ok)
	return j
}

func (f *fixture) count(t *testing.T, n func() (int64, error)) int64 {
	t.Helper()
	c, err := n()
	require.NoError(t, err)
	return c
}

// basics creates an active service and a customer user with a phone number
func (f *fixture) basics(t *testing.T) (models.Service, models.User) {
	t.Helper()
	svc := f.createService(t, models.Service{Name: "Standard Clean", Price: 25, Duration: 30, Active: true})
	user := f.createUser(t, models.User{Email: "pat@example.com", Name: "Pat", Role: models.RoleCustomer, Phone: "+15551234567"})
	return svc, user
}
