package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ManuelReschke/SupplierComply/app/models"
	"gorm.io/gorm"
)

// subscriberRepository implements the SubscriberRepository interface
type subscriberRepository struct {
	db *gorm.DB
}

// NewSubscriberRepository creates a new subscriber repository instance
func NewSubscriberRepository(db *gorm.DB) SubscriberRepository {
	return &subscriberRepository{db: db}
}

func (r *subscriberRepository) GetByID(ctx context.Context, id uint) (*models.Subscriber, error) {
	var sub models.Subscriber
	if err := r.db.WithContext(ctx).First(&sub, id).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *subscriberRepository) Subscriber(ctx context.Context, id uint) (*models.Subscriber, error) {
	return r.GetByID(ctx, id)
}

// GetByEmail retrieves a subscriber by normalized email address
func (r *subscriberRepository) GetByEmail(ctx context.Context, email string) (*models.Subscriber, error) {
	return models.FindSubscriberByEmail(r.db.WithContext(ctx), email)
}

func (r *subscriberRepository) UpdatePassword(ctx context.Context, id uint, hash string) error {
	return r.updateColumns(ctx, id, map[string]interface{}{"password": hash})
}

func (r *subscriberRepository) UpdateProfile(ctx context.Context, id uint, companyName, phone string) error {
	return r.updateColumns(ctx, id, map[string]interface{}{
		"company_name": strings.TrimSpace(companyName),
		"phone":        strings.TrimSpace(phone),
	})
}

func (r *subscriberRepository) TouchLastLogin(ctx context.Context, id uint, at time.Time) error {
	return r.updateColumns(ctx, id, map[string]interface{}{"last_login_at": at})
}

func (r *subscriberRepository) updateColumns(ctx context.Context, id uint, values map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&models.Subscriber{}).Where("id = ?", id).Updates(values)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListWithStats returns one page of subscribers, newest first, with their
// barcode counts.
func (r *subscriberRepository) ListWithStats(ctx context.Context, filter SubscriberFilter) ([]SubscriberWithStats, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Subscriber{})
	if s := strings.TrimSpace(filter.Search); s != "" {
		pattern := "%" + strings.ToLower(s) + "%"
		query = query.Where("LOWER(email) LIKE ? OR LOWER(company_name) LIKE ? OR LOWER(payment_code) LIKE ?", pattern, pattern, pattern)
	}
	if filter.Tier != "" {
		query = query.Where("tier = ?", filter.Tier)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var subs []models.Subscriber
	err := query.Order("created_at DESC").Order("id DESC").Offset(filter.Offset).Limit(filter.Limit).Find(&subs).Error
	if err != nil {
		return nil, 0, err
	}

	out := make([]SubscriberWithStats, 0, len(subs))
	for _, sub := range subs {
		var count int64
		if err := r.db.WithContext(ctx).Model(&models.Product{}).Where("subscriber_id = ?", sub.ID).Count(&count).Error; err != nil {
			return nil, 0, fmt.Errorf("failed to count barcodes for subscriber %d: %w", sub.ID, err)
		}
		out = append(out, SubscriberWithStats{Subscriber: sub, BarcodeCount: count})
	}
	return out, total, nil
}
