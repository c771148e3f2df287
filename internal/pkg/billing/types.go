package billing

import (
	"time"

	"github.com/ManuelReschke/SupplierComply/app/models"
)

// Clock returns the current wall-clock time.
type Clock func() time.Time

// AdminActor is the capability required for reconciliation events. The
// caller's authorization layer decides IsAdmin.
type AdminActor struct {
	ID      uint
	IsAdmin bool
}

// RegisterRequest is the validated input of a registration.
type RegisterRequest struct {
	Email       string
	Password    string
	CompanyName string
	Phone       string
}

// ClaimRequest is the input of a payment claim.
type ClaimRequest struct {
	ConfirmationCode string
}

// StatusView is a subscriber's entitlement state as shown to the subscriber.
type StatusView struct {
	PaymentCode    string                `json:"payment_code"`
	Tier           string                `json:"payment_status"`
	IsPaid         bool                  `json:"is_paid"`
	IsTrialActive  bool                  `json:"is_trial_active"`
	CanAccess      bool                  `json:"can_access"`
	TrialEndsAt    *time.Time            `json:"trial_ends_at"`
	PaidUntil      *time.Time            `json:"paid_until"`
	DaysRemaining  *int                  `json:"days_remaining"`
	PendingPayment *models.PaymentClaim  `json:"pending_payment"`
	PaymentHistory []models.PaymentClaim `json:"payment_history"`
}

// ClaimPage is one page of the admin claim history.
type ClaimPage struct {
	Claims      []models.PaymentClaim `json:"payments"`
	Total       int64                 `json:"total"`
	Pages       int                   `json:"pages"`
	CurrentPage int                   `json:"current_page"`
}

// PaymentCodeLookup is the result of searching a bank reference.
type PaymentCodeLookup struct {
	Subscriber     *models.Subscriber   `json:"user"`
	PendingPayment *models.PaymentClaim `json:"pending_payment"`
}

// Notifier receives entitlement events after they are committed. Delivery is
// best effort and never affects the transition.
type Notifier interface {
	SubscriberRegistered(sub *models.Subscriber)
	PaymentClaimed(sub *models.Subscriber, claim *models.PaymentClaim)
	PaymentConfirmed(sub *models.Subscriber, claim *models.PaymentClaim)
}

type noopNotifier struct{}

func (noopNotifier) SubscriberRegistered(*models.Subscriber)                   {}
func (noopNotifier) PaymentClaimed(*models.Subscriber, *models.PaymentClaim)   {}
func (noopNotifier) PaymentConfirmed(*models.Subscriber, *models.PaymentClaim) {}
