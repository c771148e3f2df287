package models

import "time"

const (
	CLAIM_STATUS_PENDING   = "pending"
	CLAIM_STATUS_CONFIRMED = "confirmed"
)

// PaymentClaim is a subscriber's statement that a transfer was made. It stays
// pending until an admin reconciles it; confirmed claims are kept for audit.
type PaymentClaim struct {
	ID               uint        `gorm:"primaryKey" json:"id"`
	SubscriberID     uint        `gorm:"index;not null" json:"subscriber_id"`
	Subscriber       *Subscriber `gorm:"foreignKey:SubscriberID" json:"subscriber,omitempty"`
	Amount           int64       `gorm:"not null" json:"amount"`
	PaymentCode      string      `gorm:"type:varchar(10);index" json:"payment_code"`
	ConfirmationCode string      `gorm:"type:varchar(20);not null" json:"confirmation_code"`
	Status           string      `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	ConfirmedBy      *uint       `gorm:"default:null" json:"confirmed_by"`
	ConfirmedAt      *time.Time  `gorm:"type:timestamp;default:null" json:"confirmed_at"`
	CreatedAt        time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *PaymentClaim) IsPending() bool {
	return p.Status == CLAIM_STATUS_PENDING
}
