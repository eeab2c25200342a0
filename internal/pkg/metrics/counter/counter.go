package counter

import (
	"context"
	"strconv"

	"github.com/fortifyapp/fortify/internal/pkg/cache"
)

const (
	webhookOutcomesKey   = "billing:counters:outcomes"
	webhookEventTypesKey = "billing:counters:event_types"
)

// TrackWebhookOutcome increments the counter for a webhook handling outcome
// (applied, duplicate, unrecognized, unknown_subscriber, unauthorized,
// malformed). Best-effort: callers ignore the error.
func TrackWebhookOutcome(outcome string) error {
	ctx := context.Background()
	return cache.GetClient().HIncrBy(ctx, webhookOutcomesKey, outcome, 1).Err()
}

// TrackWebhookEventType increments the counter for a raw provider event type.
func TrackWebhookEventType(eventType string) error {
	if eventType == "" {
		return nil
	}
	ctx := context.Background()
	return cache.GetClient().HIncrBy(ctx, webhookEventTypesKey, eventType, 1).Err()
}

// Snapshot returns the current outcome and event-type counters.
func Snapshot() (map[string]int64, map[string]int64, error) {
	ctx := context.Background()

	outcomes, err := readHash(ctx, webhookOutcomesKey)
	if err != nil {
		return nil, nil, err
	}
	eventTypes, err := readHash(ctx, webhookEventTypesKey)
	if err != nil {
		return nil, nil, err
	}
	return outcomes, eventTypes, nil
}

func readHash(ctx context.Context, key string) (map[string]int64, error) {
	raw, err := cache.GetClient().HGetAll(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(raw))
	for field, value := range raw {
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			continue
		}
		out[field] = n
	}
	return out, nil
}
