package billing

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestParsePayPalWebhookEvent_SubscriptionActivated(t *testing.T) {
	raw := []byte(`{
		"id": "WH-77687562XN25889J8-8Y6T55435R66168T6",
		"event_type": "BILLING.SUBSCRIPTION.ACTIVATED",
		"create_time": "2026-03-05T10:15:30Z",
		"resource_type": "subscription",
		"resource": {
			"id": "I-BW452GLLEP1G",
			"subscriber": { "email_address": "user@example.com" }
		}
	}`)

	ev, err := ParsePayPalWebhookEvent(raw)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if ev.ID != "WH-77687562XN25889J8-8Y6T55435R66168T6" {
		t.Fatalf("unexpected event id %q", ev.ID)
	}
	if ev.Type != EventSubscriptionActivated {
		t.Fatalf("type = %q, want subscription_activated", ev.Type)
	}
	if ev.SubscriberEmail != "user@example.com" {
		t.Fatalf("email = %q", ev.SubscriberEmail)
	}
	// No billing_agreement_id on subscription resources, fall back to the
	// resource id.
	if ev.BillingAgreementID != "I-BW452GLLEP1G" {
		t.Fatalf("agreement id = %q", ev.BillingAgreementID)
	}
	want := time.Date(2026, 3, 5, 10, 15, 30, 0, time.UTC)
	if !ev.OccurredAt.Equal(want) {
		t.Fatalf("occurred at = %v, want %v", ev.OccurredAt, want)
	}
}

func TestParsePayPalWebhookEvent_SaleCompleted(t *testing.T) {
	raw := []byte(`{
		"id": "WH-58D329510W468432D-8HN650336L201105X",
		"event_type": "PAYMENT.SALE.COMPLETED",
		"create_time": "2026-03-12T09:00:00Z",
		"resource": {
			"id": "80021663DE681814L",
			"billing_agreement_id": "I-BW452GLLEP1G",
			"amount": { "total": "39.90", "currency": "USD" },
			"payer": { "payer_info": { "email": "user@example.com" } }
		}
	}`)

	ev, err := ParsePayPalWebhookEvent(raw)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if ev.Type != EventPaymentCompleted {
		t.Fatalf("type = %q", ev.Type)
	}
	if ev.BillingAgreementID != "I-BW452GLLEP1G" {
		t.Fatalf("agreement id = %q, want billing_agreement_id over resource id", ev.BillingAgreementID)
	}
	if ev.Amount == nil || ev.Amount.Total != "39.90" || ev.Amount.Currency != "USD" {
		t.Fatalf("unexpected amount %+v", ev.Amount)
	}
}

func TestParsePayPalWebhookEvent_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "bad json", raw: `{"event_type": `},
		{name: "missing resource", raw: `{"id": "WH-1", "event_type": "PAYMENT.SALE.COMPLETED"}`},
		{name: "missing event type", raw: `{"id": "WH-1", "resource": {"id": "X"}}`},
	}

	for _, tt := range tests {
		_, err := ParsePayPalWebhookEvent([]byte(tt.raw))
		if !errors.Is(err, ErrMalformedPayload) {
			t.Fatalf("%s: err = %v, want ErrMalformedPayload", tt.name, err)
		}
	}
}

func TestParsePayPalWebhookEvent_UnknownTypeIsNotAnError(t *testing.T) {
	raw := []byte(`{
		"id": "WH-UNKNOWN-1",
		"event_type": "BILLING.SUBSCRIPTION.RENEWED",
		"resource": { "id": "I-XYZ" }
	}`)

	ev, err := ParsePayPalWebhookEvent(raw)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if ev.Type != EventUnrecognized {
		t.Fatalf("type = %q, want unrecognized", ev.Type)
	}
	if ev.RawType != "BILLING.SUBSCRIPTION.RENEWED" {
		t.Fatalf("raw type = %q", ev.RawType)
	}
}

func TestParsePayPalWebhookEvent_HashIdentityStable(t *testing.T) {
	raw := []byte(`{
		"event_type": "BILLING.SUBSCRIPTION.CANCELLED",
		"create_time": "2026-03-20T08:00:00Z",
		"resource": { "id": "I-BW452GLLEP1G" }
	}`)

	first, err := ParsePayPalWebhookEvent(raw)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	second, err := ParsePayPalWebhookEvent(raw)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	if !strings.HasPrefix(first.ID, "hash:") {
		t.Fatalf("expected derived identity, got %q", first.ID)
	}
	if first.ID != second.ID {
		t.Fatalf("identity not stable: %q vs %q", first.ID, second.ID)
	}
}

func TestParsePayPalWebhookEvent_EmailFallback(t *testing.T) {
	// payer_info.email wins when both are present
	raw := []byte(`{
		"id": "WH-2",
		"event_type": "PAYMENT.SALE.COMPLETED",
		"resource": {
			"id": "S-1",
			"payer": { "payer_info": { "email": "payer@example.com" } },
			"subscriber": { "email_address": "subscriber@example.com" }
		}
	}`)

	ev, err := ParsePayPalWebhookEvent(raw)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if ev.SubscriberEmail != "payer@example.com" {
		t.Fatalf("email = %q, want payer_info email", ev.SubscriberEmail)
	}
}
