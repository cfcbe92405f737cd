package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kendall-kelly/cleancans-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSMSService_SendSuccess(t *testing.T) {
	f := newFixture(t)
	var notifier Notifier = f.sms

	ok := notifier.Send(f.ctx, "+1234567892", "hello", models.NotificationStatusUpdate, "job-1")
	assert.True(t, ok)

	notifications := f.notifications(t)
	require.Len(t, notifications, 1)
	n := notifications[0]
	assert.Equal(t, models.NotificationSent, n.Status)
	assert.Equal(t, 1, n.Attempts)
	assert.Equal(t, "https://hooks.example.com/sms", n.WebhookURL)
	require.NotNil(t, n.SentAt)
	assert.Equal(t, 1, f.sender.count())
}

func TestSMSService_SendFailureIsNotAnError(t *testing.T) {
	f := newFixture(t)
	f.sender.setFailing(true)
	var notifier Notifier = f.sms

	ok := notifier.Send(f.ctx, "+1234567892", "hello", models.NotificationReminder, "job-1")
	assert.False(t, ok)

	notifications := f.notifications(t)
	require.Len(t, notifications, 1)
	// One attempt out of two used: still pending for the outbox
	assert.Equal(t, models.NotificationPending, notifications[0].Status)
	assert.Equal(t, "webhook unreachable", notifications[0].LastError)
}

func TestOutboxWorker_RetriesUntilSent(t *testing.T) {
	f := newFixture(t)
	f.sender.setFailing(true)
	_, err := f.sms.Enqueue(f.ctx, nil, "job-1", models.NotificationJobCreated, "+1", "msg")
	require.NoError(t, err)
	worker := NewOutboxWorker(f.store, f.sms, time.Minute, nil, nil)

	sent, err := worker.ProcessPending(f.ctx)
	require.NoError(t, err)
	assert.Zero(t, sent)

	f.sender.setFailing(false)
	sent, err = worker.ProcessPending(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	notifications := f.notifications(t)
	require.Len(t, notifications, 1)
	assert.Equal(t, models.NotificationSent, notifications[0].Status)
	assert.Equal(t, 2, notifications[0].Attempts)
	assert.Empty(t, notifications[0].LastError)

	// Nothing left to deliver
	sent, err = worker.ProcessPending(f.ctx)
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Equal(t, 1, f.sender.count())
}

func TestOutboxWorker_RunStopsOnCancel(t *testing.T) {
	f := newFixture(t)
	_, err := f.sms.Enqueue(f.ctx, nil, "job-1", models.NotificationJobCreated, "+1", "msg")
	require.NoError(t, err)
	worker := NewOutboxWorker(f.store, f.sms, time.Hour, nil, nil)

	ctx, cancel := context.WithCancel(f.ctx)
	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()

	worker.Notify()
	assert.Eventually(t, func() bool { return f.sender.count() == 1 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestMessageTemplates(t *testing.T) {
	sms := NewSMSService(nil, nil, SMSServiceConfig{BusinessName: "CleanCans Pro"})

	assert.Equal(t,
		"Hi Sarah! Your trash can cleaning is scheduled for June 15, 2024. We'll send updates as we get closer. - CleanCans Pro",
		sms.JobCreatedMessage("Sarah", DisplayDate("2024-06-15")))
	assert.Contains(t, sms.StatusUpdateMessage("Sarah", models.JobStatusEnRoute), "on the way")
	assert.Contains(t, sms.StatusUpdateMessage("Sarah", models.JobStatusInProgress), "currently cleaning")
	assert.Contains(t, sms.StatusUpdateMessage("Sarah", models.JobStatusCompleted), "sparkling clean")
	assert.Equal(t, "Status update: cancelled", sms.StatusUpdateMessage("Sarah", models.JobStatusCancelled))
	assert.Contains(t, sms.ReminderMessage("Sarah", "June 16, 2024"), "tomorrow (June 16, 2024)")
	assert.Equal(t, "garbage", DisplayDate("garbage"))
}

func TestWebhookSender_Deliver(t *testing.T) {
	var received webhookPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sender := NewWebhookSender(5*time.Second, 0)
	err := sender.Deliver(context.Background(), models.Notification{
		JobID:       "job-1",
		Category:    models.NotificationJobCreated,
		Destination: "+1234567892",
		Message:     "hello",
		WebhookURL:  server.URL,
	})
	require.NoError(t, err)
	assert.Equal(t, "+1234567892", received.Phone)
	assert.Equal(t, "hello", received.Message)
	assert.Equal(t, "job_created", received.Type)
	assert.Equal(t, "job-1", received.JobID)
	assert.NotEmpty(t, received.Timestamp)
}

func TestWebhookSender_Failures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	}))
	defer server.Close()

	sender := NewWebhookSender(5*time.Second, 10)

	err := sender.Deliver(context.Background(), models.Notification{WebhookURL: server.URL})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.Contains(t, err.Error(), "upstream down")

	err = sender.Deliver(context.Background(), models.Notification{})
	assert.ErrorIs(t, err, ErrNoWebhook)
}

func TestLogSender(t *testing.T) {
	assert.NoError(t, NewLogSender(nil).Deliver(context.Background(), models.Notification{Message: "hi"}))
}
