package repository

import (
	"context"
	"time"

	"github.com/ManuelReschke/SupplierComply/app/models"
	"gorm.io/gorm"
)

// SubscriberRepository defines the subscriber account operations outside of
// entitlement transitions, which belong to the billing service.
type SubscriberRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Subscriber, error)
	// Subscriber is GetByID under the name the quota enforcer expects.
	Subscriber(ctx context.Context, id uint) (*models.Subscriber, error)
	GetByEmail(ctx context.Context, email string) (*models.Subscriber, error)
	UpdatePassword(ctx context.Context, id uint, hash string) error
	UpdateProfile(ctx context.Context, id uint, companyName, phone string) error
	TouchLastLogin(ctx context.Context, id uint, at time.Time) error
	ListWithStats(ctx context.Context, filter SubscriberFilter) ([]SubscriberWithStats, int64, error)
}

// ProductRepository defines the product record operations.
type ProductRepository interface {
	CreateWithActivity(ctx context.Context, product *models.Product, activity *models.Activity) error
	CountBySubscriber(ctx context.Context, subscriberID uint) (int64, error)
	CountCreatedBetween(ctx context.Context, subscriberID uint, from, to time.Time) (int64, error)
	ListBySubscriber(ctx context.Context, subscriberID uint, offset, limit int) ([]models.Product, int64, error)
	Search(ctx context.Context, filter ProductFilter) ([]models.Product, int64, error)
	CountInWindow(ctx context.Context, subscriberID uint, window ExpiryWindow, today time.Time) (int64, error)
	ListExpiring(ctx context.Context, subscriberID uint, today time.Time, days int) ([]models.Product, error)
}

// ActivityRepository reads and appends the audit log.
type ActivityRepository interface {
	Append(ctx context.Context, activity *models.Activity) error
	ListBySubscriber(ctx context.Context, subscriberID uint, offset, limit int) ([]models.Activity, int64, error)
	ListRecent(ctx context.Context, limit int) ([]ActivityWithSubscriber, error)
}

// StatsRepository aggregates the admin dashboard numbers.
type StatsRepository interface {
	AdminDashboard(ctx context.Context, now time.Time) (*AdminDashboardStats, error)
}

// SubscriberFilter narrows the admin user list. Empty fields match all.
type SubscriberFilter struct {
	Search string
	Tier   string
	Offset int
	Limit  int
}

// SubscriberWithStats combines a subscriber with their barcode count
type SubscriberWithStats struct {
	models.Subscriber
	BarcodeCount int64 `json:"barcode_count"`
}

// ProductFilter narrows a subscriber's product list.
type ProductFilter struct {
	SubscriberID uint
	Search       string
	Window       ExpiryWindow // empty for no expiry filter
	Today        time.Time
	Offset       int
	Limit        int
}

// ActivityWithSubscriber is an activity row joined with the subscriber email.
type ActivityWithSubscriber struct {
	models.Activity
	Email string `json:"user_email"`
}

type UserCounts struct {
	Total          int64 `json:"total"`
	Paid           int64 `json:"paid"`
	Trial          int64 `json:"trial"`
	Pending        int64 `json:"pending"`
	NewToday       int64 `json:"new_today"`
	ExpiringTrials int64 `json:"expiring_trials"`
}

type BarcodeCounts struct {
	Total     int64 `json:"total"`
	ThisMonth int64 `json:"this_month"`
}

type RevenueTotals struct {
	TotalConfirmed int64 `json:"total_confirmed"`
	Pending        int64 `json:"pending"`
}

type AdminDashboardStats struct {
	Users            UserCounts               `json:"users"`
	Barcodes         BarcodeCounts            `json:"barcodes"`
	Revenue          RevenueTotals            `json:"revenue"`
	RecentActivities []ActivityWithSubscriber `json:"recent_activities"`
}

// Repositories struct holds all repository instances
type Repositories struct {
	Subscriber SubscriberRepository
	Product    ProductRepository
	Activity   ActivityRepository
	Stats      StatsRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	activity := NewActivityRepository(db)
	return &Repositories{
		Subscriber: NewSubscriberRepository(db),
		Product:    NewProductRepository(db),
		Activity:   activity,
		Stats:      NewStatsRepository(db, activity),
	}
}
