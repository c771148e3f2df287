package models

import "time"

const (
	ACTIVITY_USER_REGISTERED   = "user_registered"
	ACTIVITY_BARCODE_GENERATED = "barcode_generated"
	ACTIVITY_PAYMENT_INITIATED = "payment_initiated"
	ACTIVITY_PAYMENT_CANCELLED = "payment_cancelled"
	ACTIVITY_PAYMENT_CONFIRMED = "payment_confirmed"
	ACTIVITY_TRIAL_SET         = "trial_set"
	ACTIVITY_USER_LOGIN        = "user_login"
	ACTIVITY_USER_LOGOUT       = "user_logout"
	ACTIVITY_PASSWORD_RESET    = "password_reset"
)

// Activity is one append-only audit entry.
type Activity struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SubscriberID uint      `gorm:"index;not null" json:"subscriber_id"`
	Action       string    `gorm:"type:varchar(50);index;not null" json:"action"`
	Details      string    `gorm:"type:text" json:"details"`
	CreatedAt    time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func NewActivity(subscriberID uint, action, details string) *Activity {
	return &Activity{SubscriberID: subscriberID, Action: action, Details: details}
}
