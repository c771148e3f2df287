package models

import (
	"time"
)

const (
	EXPIRY_EXPIRED   = "expired"
	EXPIRY_CRITICAL  = "critical"
	EXPIRY_WARNING   = "warning"
	EXPIRY_ATTENTION = "attention"
	EXPIRY_GOOD      = "good"
	EXPIRY_UNKNOWN   = "unknown"
)

// Product is the record written by every successful barcode encode.
// It is never updated after creation.
type Product struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	SubscriberID uint       `gorm:"index:idx_products_subscriber_created,priority:1;not null" json:"subscriber_id"`
	Name         string     `gorm:"type:varchar(200);not null" json:"name"`
	BatchNumber  string     `gorm:"type:varchar(20);default:null" json:"batch_number"`
	ExpiryDate   *time.Time `gorm:"type:date;default:null;index" json:"expiry_date"`
	Quantity     *int       `gorm:"default:null" json:"quantity"`
	GTIN         string     `gorm:"column:gtin;type:char(14);index;not null" json:"gtin"`
	GS1String    string     `gorm:"column:gs1_string;type:varchar(100)" json:"gs1_string"`
	ObjectKey    string     `gorm:"type:varchar(255)" json:"-"`
	BarcodeURL   string     `gorm:"type:varchar(500)" json:"barcode_url"`
	Watermarked  bool       `gorm:"default:false" json:"watermarked"`
	CreatedAt    time.Time  `gorm:"autoCreateTime;index:idx_products_subscriber_created,priority:2" json:"created_at"`
}

// DaysUntilExpiry returns whole days between now and the expiry date,
// or false if the product has no expiry date.
func (p *Product) DaysUntilExpiry(now time.Time) (int, bool) {
	if p.ExpiryDate == nil {
		return 0, false
	}
	y, m, d := p.ExpiryDate.Date()
	expiry := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	y, m, d = now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return int(expiry.Sub(today).Hours() / 24), true
}

// ExpiryStatus buckets the remaining shelf life for dashboard display.
func (p *Product) ExpiryStatus(now time.Time) string {
	days, ok := p.DaysUntilExpiry(now)
	switch {
	case !ok:
		return EXPIRY_UNKNOWN
	case days < 0:
		return EXPIRY_EXPIRED
	case days <= 30:
		return EXPIRY_CRITICAL
	case days <= 60:
		return EXPIRY_WARNING
	case days <= 90:
		return EXPIRY_ATTENTION
	default:
		return EXPIRY_GOOD
	}
}
