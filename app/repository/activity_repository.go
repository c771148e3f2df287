package repository

import (
	"context"

	"github.com/ManuelReschke/SupplierComply/app/models"
	"gorm.io/gorm"
)

type activityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) Append(ctx context.Context, activity *models.Activity) error {
	return r.db.WithContext(ctx).Create(activity).Error
}

func (r *activityRepository) ListBySubscriber(ctx context.Context, subscriberID uint, offset, limit int) ([]models.Activity, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Activity{}).Where("subscriber_id = ?", subscriberID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var activities []models.Activity
	err := query.Order("created_at DESC").Order("id DESC").Offset(offset).Limit(limit).Find(&activities).Error
	return activities, total, err
}

// ListRecent returns the newest activities across all subscribers.
func (r *activityRepository) ListRecent(ctx context.Context, limit int) ([]ActivityWithSubscriber, error) {
	var rows []ActivityWithSubscriber
	err := r.db.WithContext(ctx).
		Table("activities").
		Select("activities.*, subscribers.email AS email").
		Joins("LEFT JOIN subscribers ON subscribers.id = activities.subscriber_id").
		Order("activities.created_at DESC").
		Order("activities.id DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}
