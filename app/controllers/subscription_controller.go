package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/fortifyapp/fortify/app/models"
	"github.com/fortifyapp/fortify/app/repository"
	"github.com/fortifyapp/fortify/internal/pkg/billing"
	"github.com/fortifyapp/fortify/internal/pkg/cache"
	"github.com/fortifyapp/fortify/internal/pkg/database"
	"github.com/fortifyapp/fortify/internal/pkg/entitlements"
)

const subscriptionCacheTTL = 60 * time.Second

// subscriptionProjection is the status card payload the dashboard polls.
type subscriptionProjection struct {
	SubscriptionStatus string      `json:"subscription_status"`
	TrialEndDate       interface{} `json:"trial_end_date"`
	BillingAgreementID string      `json:"billing_agreement_id,omitempty"`
	LastUpdated        interface{} `json:"last_updated"`
	HasProAccess       bool        `json:"has_pro_access"`
	RemainingTrialDays int         `json:"remaining_trial_days"`
	PlanPrice          string      `json:"plan_price"`
	TrialDays          int         `json:"trial_days"`
}

// HandleGetSubscription returns the current subscription projection for a
// user. A user without any subscription record reads as never-subscribed.
func HandleGetSubscription(c *fiber.Ctx) error {
	userID, ok := parseUserIDQuery(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "userId is required"})
	}

	if cached, err := cache.Get(subscriptionCacheKey(userID)); err == nil && cached != "" {
		var projection subscriptionProjection
		if err := json.Unmarshal([]byte(cached), &projection); err == nil {
			return c.Status(fiber.StatusOK).JSON(projection)
		}
	}

	users := repository.GetGlobalFactory().GetUserRepository()
	if _, err := users.GetByID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "User not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load user"})
	}

	store := billing.NewStore(database.GetDB())
	sub, err := store.Get(c.Context(), userID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load subscription"})
	}

	projection := buildSubscriptionProjection(sub, time.Now())

	if payload, err := json.Marshal(projection); err == nil {
		_ = cache.Set(subscriptionCacheKey(userID), string(payload), subscriptionCacheTTL)
	}

	return c.Status(fiber.StatusOK).JSON(projection)
}

// buildSubscriptionProjection folds the stored record and the trial policy
// into the dashboard view. It never mutates the record: the client-side
// "expired" view may legitimately run ahead of the stored status until the
// provider event arrives.
func buildSubscriptionProjection(sub *models.Subscription, now time.Time) subscriptionProjection {
	projection := subscriptionProjection{
		SubscriptionStatus: models.SubscriptionStatusExpired, // never-subscribed default
		PlanPrice:          entitlements.PlanPrice,
		TrialDays:          entitlements.TrialDays,
	}
	if sub == nil {
		return projection
	}

	projection.SubscriptionStatus = sub.Status
	projection.TrialEndDate = formatTimePtr(sub.TrialEndDate)
	projection.BillingAgreementID = sub.BillingAgreementID
	lastUpdated := sub.UpdatedAt
	projection.LastUpdated = formatTimePtr(&lastUpdated)
	projection.HasProAccess = entitlements.HasProAccess(sub, now)
	projection.RemainingTrialDays = entitlements.RemainingTrialDays(sub, now)
	return projection
}

func subscriptionCacheKey(userID uint) string {
	return fmt.Sprintf("subscription:projection:%d", userID)
}

// invalidateSubscriptionCache drops the cached projection after an applied
// event. Best-effort.
func invalidateSubscriptionCache(userID uint) {
	_ = cache.Delete(subscriptionCacheKey(userID))
}
