package entitlements

import (
	"strings"
	"time"

	"github.com/ManuelReschke/SupplierComply/app/models"
)

type Tier string

const (
	TierFreeTrial Tier = "free_trial"
	TierPending   Tier = "pending"
	TierPaid      Tier = "paid"
)

const (
	TrialPeriod = 14 * 24 * time.Hour
	PaidPeriod  = 30 * 24 * time.Hour

	// MonthlyPrice is the fixed subscription price claimed per payment.
	MonthlyPrice int64 = 15000

	// FreeMonthlyBarcodes is the encode ceiling per calendar month for
	// subscribers that are not paid.
	FreeMonthlyBarcodes = 10
)

// NormalizeTier maps stored values to a known tier; unknown values are free_trial.
func NormalizeTier(tier string) Tier {
	switch Tier(strings.ToLower(strings.TrimSpace(tier))) {
	case TierPaid:
		return TierPaid
	case TierPending:
		return TierPending
	default:
		return TierFreeTrial
	}
}

// IsPaid reports a paid tier whose paid period has not ended.
func IsPaid(sub *models.Subscriber, now time.Time) bool {
	return sub != nil &&
		NormalizeTier(sub.Tier) == TierPaid &&
		sub.PaidUntil != nil && sub.PaidUntil.After(now)
}

// IsTrialActive reports a free_trial tier whose trial window is still open.
func IsTrialActive(sub *models.Subscriber, now time.Time) bool {
	return sub != nil &&
		NormalizeTier(sub.Tier) == TierFreeTrial &&
		sub.TrialEndsAt != nil && sub.TrialEndsAt.After(now)
}

// CanAccess gates every feature behind a subscription.
//
// A pending subscriber is neither paid nor trial-active, so access is blocked
// while a claim awaits review. Login keeps letting pending subscribers in so
// they can see their claim.
func CanAccess(sub *models.Subscriber, now time.Time) bool {
	return IsPaid(sub, now) || IsTrialActive(sub, now)
}

// IsExpired is the derived expired condition: a lapsed trial with no claim.
func IsExpired(sub *models.Subscriber, now time.Time) bool {
	return sub != nil && NormalizeTier(sub.Tier) == TierFreeTrial && !IsTrialActive(sub, now)
}

// ShouldWatermark reports whether rendered barcodes get the sample overlay.
func ShouldWatermark(sub *models.Subscriber, now time.Time) bool {
	return !IsPaid(sub, now)
}

// CanUseExpiryAlerts reports whether expiring-product alerts are available.
func CanUseExpiryAlerts(sub *models.Subscriber, now time.Time) bool {
	return IsPaid(sub, now)
}

// MonthlyLimit returns the encode ceiling, or nil when unlimited.
func MonthlyLimit(sub *models.Subscriber, now time.Time) *int {
	if IsPaid(sub, now) {
		return nil
	}
	limit := FreeMonthlyBarcodes
	return &limit
}

// DaysRemaining counts whole days left on the timestamp that is
// authoritative for the subscriber's tier, floored at zero.
func DaysRemaining(sub *models.Subscriber, now time.Time) int {
	if sub == nil {
		return 0
	}
	var until *time.Time
	switch NormalizeTier(sub.Tier) {
	case TierPaid:
		until = sub.PaidUntil
	case TierFreeTrial:
		until = sub.TrialEndsAt
	}
	if until == nil || !until.After(now) {
		return 0
	}
	return int(until.Sub(now).Hours() / 24)
}
