package controllers

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/fortifyapp/fortify/internal/pkg/billing"
	"github.com/fortifyapp/fortify/internal/pkg/database"
	"github.com/fortifyapp/fortify/internal/pkg/metrics/counter"
)

// HandlePayPalWebhook ingests one PayPal billing event. Every handled
// delivery answers 200 so the provider stops retrying; only an unverifiable
// signature (401) or a structural/internal failure (500) asks for another
// attempt.
func HandlePayPalWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)
	headers := make(map[string]string)
	c.Request().Header.VisitAll(func(key, value []byte) {
		headers[string(key)] = string(value)
	})

	engine := billing.NewEngineFromDB(database.GetDB())
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	result, err := engine.Process(ctx, rawBody, headers)
	if err != nil {
		switch {
		case errors.Is(err, billing.ErrInvalidSignature):
			trackOutcome("unauthorized", "")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid_signature"})
		case errors.Is(err, billing.ErrMalformedPayload):
			trackOutcome("malformed", "")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "invalid_payload"})
		default:
			log.Printf("paypal webhook processing failed: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "webhook_processing_failed"})
		}
	}

	trackOutcome(string(result.Outcome), result.RawType)

	switch result.Outcome {
	case billing.OutcomeDuplicate:
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "duplicate": true})
	case billing.OutcomeUnrecognized:
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "ignored": true, "reason": "event_not_processed"})
	case billing.OutcomeUnknownSubscriber:
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "ignored": true, "reason": "unknown_subscriber"})
	default:
		invalidateSubscriptionCache(result.UserID)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"ok":         true,
			"event_type": result.RawType,
			"new_status": result.NewStatus,
		})
	}
}

func trackOutcome(outcome, eventType string) {
	// Counters are best-effort; a cache outage never fails the webhook.
	if err := counter.TrackWebhookOutcome(outcome); err != nil {
		log.Printf("webhook counter update failed: %v", err)
		return
	}
	if eventType != "" {
		_ = counter.TrackWebhookEventType(eventType)
	}
}
