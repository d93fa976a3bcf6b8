package cron

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rmarchetti/stockroom-backend/internal/notifications"
	"github.com/rmarchetti/stockroom-backend/pkg/db/models"
	"github.com/rmarchetti/stockroom-backend/pkg/enums"
	"github.com/rmarchetti/stockroom-backend/pkg/logger"
)

type fakePendingReader struct {
	cutoffSeen time.Time
	requests   []models.ItemRequest
}

func (f *fakePendingReader) ListPendingOlderThan(ctx context.Context, cutoff time.Time) ([]models.ItemRequest, error) {
	f.cutoffSeen = cutoff
	return f.requests, nil
}

type fakeNotifier struct {
	payloads []notifications.Payload
}

func (f *fakeNotifier) NotifyPrivileged(ctx context.Context, payload notifications.Payload, exclude ...uuid.UUID) {
	f.payloads = append(f.payloads, payload)
}

func TestPendingReminderJobNotifiesPerStaleRequest(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	stale := models.ItemRequest{
		ID:        uuid.New(),
		Title:     "Laptop",
		Status:    enums.RequestStatusPending,
		CreatedAt: now.Add(-96 * time.Hour),
	}
	reader := &fakePendingReader{requests: []models.ItemRequest{stale}}
	notifier := &fakeNotifier{}

	jobIface, err := NewPendingReminderJob(PendingReminderJobParams{
		Logger:   logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		Requests: reader,
		Notifier: notifier,
		Age:      72 * time.Hour,
	})
	if err != nil {
		t.Fatalf("NewPendingReminderJob: %v", err)
	}
	job := jobIface.(*pendingReminderJob)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if want := now.Add(-72 * time.Hour); !reader.cutoffSeen.Equal(want) {
		t.Fatalf("unexpected cutoff: %s", reader.cutoffSeen)
	}
	if len(notifier.payloads) != 1 {
		t.Fatalf("expected 1 reminder, got %d", len(notifier.payloads))
	}
	payload := notifier.payloads[0]
	if payload.RelatedItemID == nil || *payload.RelatedItemID != stale.ID {
		t.Fatal("reminder must reference the stale request")
	}
}

func TestPendingReminderJobNoStaleRequests(t *testing.T) {
	notifier := &fakeNotifier{}
	jobIface, err := NewPendingReminderJob(PendingReminderJobParams{
		Logger:   logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		Requests: &fakePendingReader{},
		Notifier: notifier,
	})
	if err != nil {
		t.Fatalf("NewPendingReminderJob: %v", err)
	}

	if err := jobIface.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(notifier.payloads) != 0 {
		t.Fatal("no reminders expected")
	}
}
