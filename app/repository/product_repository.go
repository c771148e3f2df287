package repository

import (
	"context"
	"strings"
	"time"

	"github.com/ManuelReschke/SupplierComply/app/models"
	"gorm.io/gorm"
)

// ExpiryWindow selects products by remaining shelf life. The windows are
// disjoint.
type ExpiryWindow string

const (
	WindowExpired ExpiryWindow = "expired" // before today
	Window30Days  ExpiryWindow = "30_days" // today .. today+30
	Window60Days  ExpiryWindow = "60_days" // (today+30) .. today+60
	Window90Days  ExpiryWindow = "90_days" // (today+60) .. today+90
)

// ExpiryWindows lists the windows in dashboard order.
var ExpiryWindows = []ExpiryWindow{WindowExpired, Window30Days, Window60Days, Window90Days}

// ParseExpiryWindow returns false for unknown filters.
func ParseExpiryWindow(s string) (ExpiryWindow, bool) {
	for _, w := range ExpiryWindows {
		if string(w) == s {
			return w, true
		}
	}
	return "", false
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (w ExpiryWindow) apply(q *gorm.DB, today time.Time) *gorm.DB {
	day := startOfDay(today)
	plus := func(n int) time.Time { return day.AddDate(0, 0, n) }
	switch w {
	case WindowExpired:
		return q.Where("expiry_date < ?", day)
	case Window30Days:
		return q.Where("expiry_date >= ? AND expiry_date <= ?", day, plus(30))
	case Window60Days:
		return q.Where("expiry_date > ? AND expiry_date <= ?", plus(30), plus(60))
	case Window90Days:
		return q.Where("expiry_date > ? AND expiry_date <= ?", plus(60), plus(90))
	default:
		return q
	}
}

// productRepository implements the ProductRepository interface
type productRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository instance
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

// CreateWithActivity inserts the product and its audit entry atomically.
func (r *productRepository) CreateWithActivity(ctx context.Context, product *models.Product, activity *models.Activity) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(product).Error; err != nil {
			return err
		}
		if activity == nil {
			return nil
		}
		return tx.Create(activity).Error
	})
}

func (r *productRepository) CountBySubscriber(ctx context.Context, subscriberID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Product{}).Where("subscriber_id = ?", subscriberID).Count(&count).Error
	return count, err
}

// CountCreatedBetween counts products created in [from, to].
func (r *productRepository) CountCreatedBetween(ctx context.Context, subscriberID uint, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("subscriber_id = ? AND created_at >= ? AND created_at <= ?", subscriberID, from, to).
		Count(&count).Error
	return count, err
}

func (r *productRepository) ListBySubscriber(ctx context.Context, subscriberID uint, offset, limit int) ([]models.Product, int64, error) {
	return r.Search(ctx, ProductFilter{SubscriberID: subscriberID, Offset: offset, Limit: limit})
}

// Search returns one page of a subscriber's products, newest first.
func (r *productRepository) Search(ctx context.Context, filter ProductFilter) ([]models.Product, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Product{}).Where("subscriber_id = ?", filter.SubscriberID)
	if s := strings.TrimSpace(filter.Search); s != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(s)+"%")
	}
	if filter.Window != "" {
		query = filter.Window.apply(query, filter.Today)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []models.Product
	err := query.Order("created_at DESC").Order("id DESC").Offset(filter.Offset).Limit(filter.Limit).Find(&products).Error
	return products, total, err
}

func (r *productRepository) CountInWindow(ctx context.Context, subscriberID uint, window ExpiryWindow, today time.Time) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.Product{}).Where("subscriber_id = ?", subscriberID)
	err := window.apply(query, today).Count(&count).Error
	return count, err
}

// ListExpiring returns products expiring between today and today+days,
// soonest first. Expired products are not included.
func (r *productRepository) ListExpiring(ctx context.Context, subscriberID uint, today time.Time, days int) ([]models.Product, error) {
	day := startOfDay(today)
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("subscriber_id = ? AND expiry_date >= ? AND expiry_date <= ?", subscriberID, day, day.AddDate(0, 0, days)).
		Order("expiry_date ASC").
		Find(&products).Error
	return products, err
}
