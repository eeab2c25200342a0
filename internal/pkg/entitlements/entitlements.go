package entitlements

import (
	"math"
	"time"

	"github.com/fortifyapp/fortify/app/models"
)

const (
	// TrialDays is the fixed free-trial window granted on first activation.
	TrialDays = 7

	// PlanPrice is the display price of the Pro plan.
	PlanPrice = "$39.90/month"
)

// TrialDuration returns the trial window as a duration.
func TrialDuration() time.Duration {
	return TrialDays * 24 * time.Hour
}

// IsInTrial reports whether the subscription is inside its trial window at
// the given instant. These checks never mutate the record: expiry is only
// ever applied by a provider event, so the client-side view and the stored
// status can diverge until that event arrives.
func IsInTrial(sub *models.Subscription, now time.Time) bool {
	if sub == nil || sub.Status != models.SubscriptionStatusTrial {
		return false
	}
	if sub.TrialEndDate == nil {
		return false
	}
	return now.Before(*sub.TrialEndDate)
}

// HasProAccess reports whether the user may use Pro features at the given
// instant: an active subscription, or a trial that has not ended yet.
func HasProAccess(sub *models.Subscription, now time.Time) bool {
	if sub == nil {
		return false
	}
	return sub.Status == models.SubscriptionStatusActive || IsInTrial(sub, now)
}

// RemainingTrialDays returns the number of full or partial days left in the
// trial window, floored at 0. Returns 0 when no trial end date is set.
func RemainingTrialDays(sub *models.Subscription, now time.Time) int {
	if sub == nil || sub.TrialEndDate == nil {
		return 0
	}
	remaining := sub.TrialEndDate.Sub(now)
	if remaining <= 0 {
		return 0
	}
	return int(math.Ceil(remaining.Hours() / 24))
}
