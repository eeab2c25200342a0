package notifications

import (
	"context"
	"fmt"
	"testing"

	"github.com/fortifyapp/fortify/app/models"
	"github.com/google/uuid"
)

func TestMemorySink_NewestFirst(t *testing.T) {
	sink := NewMemorySink()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		err := sink.Append(ctx, &models.Notification{
			PublicID: uuid.NewString(),
			UserID:   1,
			Type:     models.NotificationTypePaymentCompleted,
			Message:  fmt.Sprintf("message %d", i),
		})
		if err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	list, err := sink.List(ctx, 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 notifications, got %d", len(list))
	}
	if list[0].Message != "message 2" || list[2].Message != "message 0" {
		t.Fatalf("expected newest first, got %q .. %q", list[0].Message, list[2].Message)
	}
}

func TestMemorySink_CapEvictsOldest(t *testing.T) {
	sink := NewMemorySink()
	ctx := context.Background()

	for i := 0; i < MaxPerUser+10; i++ {
		_ = sink.Append(ctx, &models.Notification{
			PublicID: uuid.NewString(),
			UserID:   1,
			Type:     models.NotificationTypePaymentCompleted,
			Message:  fmt.Sprintf("message %d", i),
		})
	}

	list, _ := sink.List(ctx, 1)
	if len(list) != MaxPerUser {
		t.Fatalf("expected %d notifications, got %d", MaxPerUser, len(list))
	}
	if list[0].Message != fmt.Sprintf("message %d", MaxPerUser+9) {
		t.Fatalf("newest entry = %q", list[0].Message)
	}
	if list[len(list)-1].Message != "message 10" {
		t.Fatalf("oldest surviving entry = %q", list[len(list)-1].Message)
	}
}

func TestMemorySink_MarkRead(t *testing.T) {
	sink := NewMemorySink()
	ctx := context.Background()

	n := &models.Notification{PublicID: uuid.NewString(), UserID: 1, Type: models.NotificationTypePaymentFailed}
	_ = sink.Append(ctx, n)

	unread, _ := sink.CountUnread(ctx, 1)
	if unread != 1 {
		t.Fatalf("unread = %d, want 1", unread)
	}

	if err := sink.MarkRead(ctx, 1, n.PublicID); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	unread, _ = sink.CountUnread(ctx, 1)
	if unread != 0 {
		t.Fatalf("unread after mark = %d, want 0", unread)
	}

	// Unknown ids and repeated marks succeed without effect.
	if err := sink.MarkRead(ctx, 1, "does-not-exist"); err != nil {
		t.Fatalf("mark unknown: %v", err)
	}
	if err := sink.MarkRead(ctx, 1, n.PublicID); err != nil {
		t.Fatalf("mark again: %v", err)
	}
}

func TestMemorySink_UsersIsolated(t *testing.T) {
	sink := NewMemorySink()
	ctx := context.Background()

	_ = sink.Append(ctx, &models.Notification{PublicID: uuid.NewString(), UserID: 1, Type: models.NotificationTypePaymentCompleted})
	_ = sink.Append(ctx, &models.Notification{PublicID: uuid.NewString(), UserID: 2, Type: models.NotificationTypePaymentFailed})

	one, _ := sink.List(ctx, 1)
	two, _ := sink.List(ctx, 2)
	if len(one) != 1 || len(two) != 1 {
		t.Fatalf("expected isolated feeds, got %d and %d", len(one), len(two))
	}
	if one[0].Type == two[0].Type {
		t.Fatalf("feeds bled into each other")
	}
}
