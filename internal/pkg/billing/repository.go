package billing

import (
	"context"

	"github.com/ManuelReschke/SupplierComply/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository provides DB operations used by the billing service.
// Lookups return gorm.ErrRecordNotFound when nothing matches.
type Repository interface {
	Transaction(ctx context.Context, fn func(repo Repository) error) error

	GetSubscriber(ctx context.Context, id uint) (*models.Subscriber, error)
	GetSubscriberForUpdate(ctx context.Context, id uint) (*models.Subscriber, error)
	GetSubscriberByPaymentCode(ctx context.Context, code string) (*models.Subscriber, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	LastPaymentCode(ctx context.Context) (string, error)
	CreateSubscriber(ctx context.Context, sub *models.Subscriber) error
	SaveSubscriber(ctx context.Context, sub *models.Subscriber) error

	FindPendingClaim(ctx context.Context, subscriberID uint) (*models.PaymentClaim, error)
	GetClaimForUpdate(ctx context.Context, id uint) (*models.PaymentClaim, error)
	CreateClaim(ctx context.Context, claim *models.PaymentClaim) error
	SaveClaim(ctx context.Context, claim *models.PaymentClaim) error
	DeleteClaim(ctx context.Context, claim *models.PaymentClaim) error
	ListConfirmedClaims(ctx context.Context, subscriberID uint) ([]models.PaymentClaim, error)
	ListPendingClaims(ctx context.Context) ([]models.PaymentClaim, error)
	ListClaims(ctx context.Context, offset, limit int) ([]models.PaymentClaim, int64, error)

	AppendActivity(ctx context.Context, activity *models.Activity) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a billing repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Transaction(ctx context.Context, fn func(repo Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormRepository{db: tx})
	})
}

func (r *gormRepository) GetSubscriber(ctx context.Context, id uint) (*models.Subscriber, error) {
	var sub models.Subscriber
	if err := r.db.WithContext(ctx).First(&sub, id).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *gormRepository) GetSubscriberForUpdate(ctx context.Context, id uint) (*models.Subscriber, error) {
	var sub models.Subscriber
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&sub, id).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *gormRepository) GetSubscriberByPaymentCode(ctx context.Context, code string) (*models.Subscriber, error) {
	var sub models.Subscriber
	if err := r.db.WithContext(ctx).Where("payment_code = ?", code).First(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *gormRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Subscriber{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

func (r *gormRepository) LastPaymentCode(ctx context.Context) (string, error) {
	var codes []string
	err := r.db.WithContext(ctx).Model(&models.Subscriber{}).
		Order("id desc").
		Limit(1).
		Pluck("payment_code", &codes).Error
	if err != nil || len(codes) == 0 {
		return "", err
	}
	return codes[0], nil
}

func (r *gormRepository) CreateSubscriber(ctx context.Context, sub *models.Subscriber) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

func (r *gormRepository) SaveSubscriber(ctx context.Context, sub *models.Subscriber) error {
	return r.db.WithContext(ctx).Save(sub).Error
}

func (r *gormRepository) FindPendingClaim(ctx context.Context, subscriberID uint) (*models.PaymentClaim, error) {
	var claim models.PaymentClaim
	err := r.db.WithContext(ctx).
		Where("subscriber_id = ? AND status = ?", subscriberID, models.CLAIM_STATUS_PENDING).
		Order("created_at desc").
		First(&claim).Error
	if err != nil {
		return nil, err
	}
	return &claim, nil
}

func (r *gormRepository) GetClaimForUpdate(ctx context.Context, id uint) (*models.PaymentClaim, error) {
	var claim models.PaymentClaim
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&claim, id).Error
	if err != nil {
		return nil, err
	}
	return &claim, nil
}

func (r *gormRepository) CreateClaim(ctx context.Context, claim *models.PaymentClaim) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(claim).Error
}

func (r *gormRepository) SaveClaim(ctx context.Context, claim *models.PaymentClaim) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(claim).Error
}

func (r *gormRepository) DeleteClaim(ctx context.Context, claim *models.PaymentClaim) error {
	return r.db.WithContext(ctx).Delete(claim).Error
}

func (r *gormRepository) ListConfirmedClaims(ctx context.Context, subscriberID uint) ([]models.PaymentClaim, error) {
	var claims []models.PaymentClaim
	err := r.db.WithContext(ctx).
		Where("subscriber_id = ? AND status = ?", subscriberID, models.CLAIM_STATUS_CONFIRMED).
		Order("confirmed_at desc").
		Find(&claims).Error
	return claims, err
}

func (r *gormRepository) ListPendingClaims(ctx context.Context) ([]models.PaymentClaim, error) {
	var claims []models.PaymentClaim
	err := r.db.WithContext(ctx).
		Preload("Subscriber").
		Where("status = ?", models.CLAIM_STATUS_PENDING).
		Order("created_at desc").
		Find(&claims).Error
	return claims, err
}

func (r *gormRepository) ListClaims(ctx context.Context, offset, limit int) ([]models.PaymentClaim, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.PaymentClaim{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var claims []models.PaymentClaim
	err := r.db.WithContext(ctx).
		Preload("Subscriber").
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&claims).Error
	return claims, total, err
}

func (r *gormRepository) AppendActivity(ctx context.Context, activity *models.Activity) error {
	return r.db.WithContext(ctx).Create(activity).Error
}
