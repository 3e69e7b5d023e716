package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Zadjehi/satisf-exercice/internal/models"
)

func newTestNotificationService() (*NotificationService, *fakeNotificationStore) {
	store := &fakeNotificationStore{}
	svc := NewNotificationService(store, nil, zerolog.Nop())
	return svc, store
}

func TestNotificationReadFlow(t *testing.T) {
	svc, store := newTestNotificationService()
	ctx := context.Background()

	if err := store.CreateForUsers(ctx, []int64{1, 2}, models.NotificationDissatisfied, "alert", "details"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	count, err := svc.UnreadCount(ctx, 1)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}

	unread, err := svc.Unread(ctx, 1)
	if err != nil {
		t.Fatalf("unread: %v", err)
	}
	if len(unread) != 1 {
		t.Fatalf("unread = %d items", len(unread))
	}

	if err := svc.MarkRead(ctx, unread[0].ID, 1); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	count, _ = svc.UnreadCount(ctx, 1)
	if count != 0 {
		t.Errorf("count after read = %d", count)
	}

	// User 2's copy is untouched.
	count, _ = svc.UnreadCount(ctx, 2)
	if count != 1 {
		t.Errorf("user 2 count = %d", count)
	}
}

func TestNotificationMarkReadOwnership(t *testing.T) {
	svc, store := newTestNotificationService()
	ctx := context.Background()

	store.CreateForUsers(ctx, []int64{1}, models.NotificationManual, "note", "")
	list, _ := svc.Unread(ctx, 1)

	if err := svc.MarkRead(ctx, list[0].ID, 2); err == nil {
		t.Error("expected an error marking another user's notification")
	}
}

func TestNotificationMarkAllRead(t *testing.T) {
	svc, store := newTestNotificationService()
	ctx := context.Background()

	store.CreateForUsers(ctx, []int64{1}, models.NotificationManual, "a", "")
	store.CreateForUsers(ctx, []int64{1}, models.NotificationManual, "b", "")

	n, err := svc.MarkAllRead(ctx, 1)
	if err != nil {
		t.Fatalf("mark all: %v", err)
	}
	if n != 2 {
		t.Errorf("marked %d, want 2", n)
	}
}

func TestNotifyValidation(t *testing.T) {
	svc, _ := newTestNotificationService()
	ctx := context.Background()

	if err := svc.Notify(ctx, NotifyInput{Title: "no recipients"}); err == nil {
		t.Error("expected error without recipients")
	}
	if err := svc.Notify(ctx, NotifyInput{UserIDs: []int64{1}}); err == nil {
		t.Error("expected error without title")
	}
	if err := svc.Notify(ctx, NotifyInput{UserIDs: []int64{1}, Title: "hello"}); err != nil {
		t.Errorf("notify: %v", err)
	}
}

func TestNotificationCleanup(t *testing.T) {
	svc, store := newTestNotificationService()
	ctx := context.Background()

	store.notifications = []models.Notification{
		{ID: 1, UserID: 1, Read: true, CreatedAt: time.Now().Add(-40 * 24 * time.Hour)},
		{ID: 2, UserID: 1, Read: false, CreatedAt: time.Now().Add(-40 * 24 * time.Hour)},
		{ID: 3, UserID: 1, Read: true, CreatedAt: time.Now()},
	}

	n, err := svc.Cleanup(ctx)
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted %d, want 1 (only old read entries)", n)
	}
}
