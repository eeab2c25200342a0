package billing

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/fortifyapp/fortify/app/models"
	"github.com/fortifyapp/fortify/internal/pkg/entitlements"
	"github.com/fortifyapp/fortify/internal/pkg/notifications"
)

// staticResolver resolves subscribers from a fixed email map, falling back
// to agreement-id lookup like the production resolver.
type staticResolver struct {
	byEmail map[string]uint
	store   SubscriptionStore
}

func (r *staticResolver) Resolve(ctx context.Context, ev *BillingEvent) (uint, error) {
	if id, ok := r.byEmail[ev.SubscriberEmail]; ok {
		return id, nil
	}
	if ev.BillingAgreementID != "" && r.store != nil {
		if sub, err := r.store.FindByAgreementID(ctx, ev.BillingAgreementID); err == nil {
			return sub.UserID, nil
		}
	}
	return 0, ErrUnknownSubscriber
}

type engineFixture struct {
	engine *Engine
	store  *MemoryStore
	sink   *notifications.MemorySink
	events *MemoryEventLog
}

func newEngineFixture(userID uint, email string) *engineFixture {
	sink := notifications.NewMemorySink()
	store := NewMemoryStore(sink)
	events := NewMemoryEventLog()
	resolver := &staticResolver{byEmail: map[string]uint{email: userID}, store: store}
	return &engineFixture{
		engine: NewEngine(AcceptAllVerifier{}, events, resolver, store),
		store:  store,
		sink:   sink,
		events: events,
	}
}

func paypalBody(eventID, eventType, createTime, agreementID, email string) []byte {
	return []byte(fmt.Sprintf(`{
		"id": %q,
		"event_type": %q,
		"create_time": %q,
		"resource": {
			"id": %q,
			"billing_agreement_id": %q,
			"payer": { "payer_info": { "email": %q } }
		}
	}`, eventID, eventType, createTime, agreementID, agreementID, email))
}

func TestEngine_ActivationStartsTrial(t *testing.T) {
	f := newEngineFixture(7, "user@example.com")

	body := paypalBody("WH-1", "BILLING.SUBSCRIPTION.ACTIVATED", "2026-03-05T10:00:00Z", "I-AGREE1", "user@example.com")
	result, err := f.engine.Process(context.Background(), body, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Outcome != OutcomeApplied {
		t.Fatalf("outcome = %q, want applied", result.Outcome)
	}
	if result.NewStatus != models.SubscriptionStatusTrial {
		t.Fatalf("new status = %q, want trial", result.NewStatus)
	}

	sub, err := f.store.Get(context.Background(), 7)
	if err != nil {
		t.Fatalf("expected subscription record: %v", err)
	}
	if sub.Status != models.SubscriptionStatusTrial {
		t.Fatalf("stored status = %q", sub.Status)
	}
	if sub.BillingAgreementID != "I-AGREE1" {
		t.Fatalf("agreement id = %q", sub.BillingAgreementID)
	}

	occurred := time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC)
	wantTrialEnd := occurred.Add(entitlements.TrialDuration())
	if sub.TrialEndDate == nil || !sub.TrialEndDate.Equal(wantTrialEnd) {
		t.Fatalf("trial end = %v, want %v", sub.TrialEndDate, wantTrialEnd)
	}

	list, _ := f.sink.List(context.Background(), 7)
	if len(list) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(list))
	}
	if list[0].Type != models.NotificationTypeSubscriptionActivated {
		t.Fatalf("notification type = %q", list[0].Type)
	}
}

func TestEngine_PaymentKeepsTrialEndDate(t *testing.T) {
	f := newEngineFixture(7, "user@example.com")
	ctx := context.Background()

	activate := paypalBody("WH-1", "BILLING.SUBSCRIPTION.ACTIVATED", "2026-03-05T10:00:00Z", "I-AGREE1", "user@example.com")
	if _, err := f.engine.Process(ctx, activate, nil); err != nil {
		t.Fatalf("activate: %v", err)
	}
	before, _ := f.store.Get(ctx, 7)

	pay := paypalBody("WH-2", "PAYMENT.SALE.COMPLETED", "2026-03-12T09:00:00Z", "I-AGREE1", "user@example.com")
	result, err := f.engine.Process(ctx, pay, nil)
	if err != nil {
		t.Fatalf("payment: %v", err)
	}
	if result.NewStatus != models.SubscriptionStatusActive {
		t.Fatalf("new status = %q, want active", result.NewStatus)
	}

	after, _ := f.store.Get(ctx, 7)
	if after.Status != models.SubscriptionStatusActive {
		t.Fatalf("stored status = %q", after.Status)
	}
	// The trial window is written once and never moved afterwards.
	if after.TrialEndDate == nil || !after.TrialEndDate.Equal(*before.TrialEndDate) {
		t.Fatalf("trial end moved: %v -> %v", before.TrialEndDate, after.TrialEndDate)
	}

	list, _ := f.sink.List(ctx, 7)
	if len(list) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(list))
	}
	// Newest first.
	if list[0].Type != models.NotificationTypePaymentCompleted {
		t.Fatalf("newest notification = %q", list[0].Type)
	}
}

func TestEngine_PaymentDeniedSuspends(t *testing.T) {
	f := newEngineFixture(7, "user@example.com")
	ctx := context.Background()

	body := paypalBody("WH-3", "PAYMENT.SALE.DENIED", "2026-03-12T09:00:00Z", "I-AGREE1", "user@example.com")
	result, err := f.engine.Process(ctx, body, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.NewStatus != models.SubscriptionStatusSuspended {
		t.Fatalf("new status = %q, want suspended", result.NewStatus)
	}

	list, _ := f.sink.List(ctx, 7)
	if len(list) != 1 || list[0].Type != models.NotificationTypePaymentFailed {
		t.Fatalf("unexpected notifications %+v", list)
	}
}

func TestEngine_DuplicateDeliverySuppressed(t *testing.T) {
	f := newEngineFixture(7, "user@example.com")
	ctx := context.Background()

	body := paypalBody("WH-1", "BILLING.SUBSCRIPTION.ACTIVATED", "2026-03-05T10:00:00Z", "I-AGREE1", "user@example.com")
	if _, err := f.engine.Process(ctx, body, nil); err != nil {
		t.Fatalf("first delivery: %v", err)
	}

	result, err := f.engine.Process(ctx, body, nil)
	if err != nil {
		t.Fatalf("second delivery: %v", err)
	}
	if result.Outcome != OutcomeDuplicate {
		t.Fatalf("outcome = %q, want duplicate", result.Outcome)
	}

	// No second notification, no state change.
	list, _ := f.sink.List(ctx, 7)
	if len(list) != 1 {
		t.Fatalf("expected 1 notification after duplicate, got %d", len(list))
	}
}

func TestEngine_UnknownSubscriberAccepted(t *testing.T) {
	f := newEngineFixture(7, "user@example.com")
	ctx := context.Background()

	body := paypalBody("WH-9", "BILLING.SUBSCRIPTION.ACTIVATED", "2026-03-05T10:00:00Z", "I-OTHER", "stranger@example.com")
	result, err := f.engine.Process(ctx, body, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Outcome != OutcomeUnknownSubscriber {
		t.Fatalf("outcome = %q, want unknown_subscriber", result.Outcome)
	}

	if _, err := f.store.Get(ctx, 7); err == nil {
		t.Fatalf("expected no subscription record for unrelated event")
	}
}

func TestEngine_UnrecognizedEventAccepted(t *testing.T) {
	f := newEngineFixture(7, "user@example.com")
	ctx := context.Background()

	body := paypalBody("WH-10", "BILLING.SUBSCRIPTION.RENEWED", "2026-03-05T10:00:00Z", "I-AGREE1", "user@example.com")
	result, err := f.engine.Process(ctx, body, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Outcome != OutcomeUnrecognized {
		t.Fatalf("outcome = %q, want unrecognized", result.Outcome)
	}
	if result.RawType != "BILLING.SUBSCRIPTION.RENEWED" {
		t.Fatalf("raw type = %q", result.RawType)
	}

	if _, err := f.store.Get(ctx, 7); err == nil {
		t.Fatalf("expected no subscription record")
	}
}

func TestEngine_InvalidSignatureRejected(t *testing.T) {
	sink := notifications.NewMemorySink()
	store := NewMemoryStore(sink)
	engine := NewEngine(
		&PayPalVerifier{Secret: "secret"},
		NewMemoryEventLog(),
		&staticResolver{byEmail: map[string]uint{"user@example.com": 7}},
		store,
	)

	body := paypalBody("WH-1", "BILLING.SUBSCRIPTION.ACTIVATED", "2026-03-05T10:00:00Z", "I-AGREE1", "user@example.com")
	_, err := engine.Process(context.Background(), body, map[string]string{
		"paypal-transmission-id":  "tx-1",
		"paypal-transmission-sig": "deadbeef",
	})
	if !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("err = %v, want ErrInvalidSignature", err)
	}

	if _, err := store.Get(context.Background(), 7); err == nil {
		t.Fatalf("expected no state change on rejected delivery")
	}
}

func TestEngine_MalformedPayloadRejectedAfterVerify(t *testing.T) {
	f := newEngineFixture(7, "user@example.com")

	_, err := f.engine.Process(context.Background(), []byte(`{"event_type":`), nil)
	if !errors.Is(err, ErrMalformedPayload) {
		t.Fatalf("err = %v, want ErrMalformedPayload", err)
	}
}

// failingOnceStore fails the first Apply to simulate a transient storage
// outage, then delegates.
type failingOnceStore struct {
	SubscriptionStore
	failed bool
}

func (s *failingOnceStore) Apply(ctx context.Context, userID uint, eventID string, mutate MutateFunc) (bool, error) {
	if !s.failed {
		s.failed = true
		return false, errors.New("connection reset")
	}
	return s.SubscriptionStore.Apply(ctx, userID, eventID, mutate)
}

func TestEngine_RedeliveryAfterFailedApplyIsProcessed(t *testing.T) {
	sink := notifications.NewMemorySink()
	store := &failingOnceStore{SubscriptionStore: NewMemoryStore(sink)}
	engine := NewEngine(
		AcceptAllVerifier{},
		NewMemoryEventLog(),
		&staticResolver{byEmail: map[string]uint{"user@example.com": 7}},
		store,
	)
	ctx := context.Background()

	body := paypalBody("WH-1", "BILLING.SUBSCRIPTION.ACTIVATED", "2026-03-05T10:00:00Z", "I-AGREE1", "user@example.com")
	if _, err := engine.Process(ctx, body, nil); err == nil {
		t.Fatalf("expected first delivery to fail")
	}

	// The provider redelivers after the 500. The event id is already in the
	// event log, but the first attempt never committed, so it must not be
	// swallowed as a duplicate.
	result, err := engine.Process(ctx, body, nil)
	if err != nil {
		t.Fatalf("redelivery: %v", err)
	}
	if result.Outcome != OutcomeApplied {
		t.Fatalf("redelivery outcome = %q, want applied", result.Outcome)
	}

	sub, err := store.Get(ctx, 7)
	if err != nil {
		t.Fatalf("expected subscription record after redelivery: %v", err)
	}
	if sub.Status != models.SubscriptionStatusTrial {
		t.Fatalf("status = %q, want trial", sub.Status)
	}
	list, _ := sink.List(ctx, 7)
	if len(list) != 1 {
		t.Fatalf("expected exactly 1 notification, got %d", len(list))
	}

	// A third delivery after the successful commit is a real duplicate.
	result, err = engine.Process(ctx, body, nil)
	if err != nil {
		t.Fatalf("third delivery: %v", err)
	}
	if result.Outcome != OutcomeDuplicate {
		t.Fatalf("third delivery outcome = %q, want duplicate", result.Outcome)
	}
}

func TestEngine_ReactivationAfterCancel(t *testing.T) {
	f := newEngineFixture(7, "user@example.com")
	ctx := context.Background()

	deliveries := []struct {
		id, eventType string
		wantStatus    string
	}{
		{"WH-1", "BILLING.SUBSCRIPTION.ACTIVATED", models.SubscriptionStatusTrial},
		{"WH-2", "BILLING.SUBSCRIPTION.CANCELLED", models.SubscriptionStatusCancelled},
		{"WH-3", "PAYMENT.SALE.COMPLETED", models.SubscriptionStatusActive},
	}

	for _, d := range deliveries {
		body := paypalBody(d.id, d.eventType, "2026-03-05T10:00:00Z", "I-AGREE1", "user@example.com")
		result, err := f.engine.Process(ctx, body, nil)
		if err != nil {
			t.Fatalf("%s: %v", d.id, err)
		}
		if result.NewStatus != d.wantStatus {
			t.Fatalf("%s: status = %q, want %q", d.id, result.NewStatus, d.wantStatus)
		}
	}
}
