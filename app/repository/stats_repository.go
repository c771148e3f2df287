package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/ManuelReschke/SupplierComply/app/models"
	"github.com/ManuelReschke/SupplierComply/internal/pkg/entitlements"
	"gorm.io/gorm"
)

const (
	recentActivityLimit = 10
	expiringTrialWindow = 3 * 24 * time.Hour
)

type statsRepository struct {
	db         *gorm.DB
	activities ActivityRepository
}

func NewStatsRepository(db *gorm.DB, activities ActivityRepository) StatsRepository {
	return &statsRepository{db: db, activities: activities}
}

func (r *statsRepository) AdminDashboard(ctx context.Context, now time.Time) (*AdminDashboardStats, error) {
	db := r.db.WithContext(ctx)
	stats := &AdminDashboardStats{}

	subs := func() *gorm.DB { return db.Model(&models.Subscriber{}) }
	counts := []struct {
		dst   *int64
		query *gorm.DB
	}{
		{&stats.Users.Total, subs()},
		{&stats.Users.Paid, subs().Where("tier = ?", string(entitlements.TierPaid))},
		{&stats.Users.Trial, subs().Where("tier = ?", string(entitlements.TierFreeTrial))},
		{&stats.Users.Pending, subs().Where("tier = ?", string(entitlements.TierPending))},
		{&stats.Users.NewToday, subs().Where("created_at >= ?", startOfDay(now))},
		{&stats.Users.ExpiringTrials, subs().Where("tier = ? AND trial_ends_at > ? AND trial_ends_at <= ?",
			string(entitlements.TierFreeTrial), now, now.Add(expiringTrialWindow))},
		{&stats.Barcodes.Total, db.Model(&models.Product{})},
		{&stats.Barcodes.ThisMonth, db.Model(&models.Product{}).Where("created_at >= ?", monthStart(now))},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dst).Error; err != nil {
			return nil, fmt.Errorf("failed to count dashboard stats: %w", err)
		}
	}

	sums := []struct {
		dst    *int64
		status string
	}{
		{&stats.Revenue.TotalConfirmed, models.CLAIM_STATUS_CONFIRMED},
		{&stats.Revenue.Pending, models.CLAIM_STATUS_PENDING},
	}
	for _, s := range sums {
		err := db.Model(&models.PaymentClaim{}).
			Where("status = ?", s.status).
			Select("COALESCE(SUM(amount), 0)").
			Row().Scan(s.dst)
		if err != nil {
			return nil, fmt.Errorf("failed to sum revenue: %w", err)
		}
	}

	recent, err := r.activities.ListRecent(ctx, recentActivityLimit)
	if err != nil {
		return nil, err
	}
	stats.RecentActivities = recent
	return stats, nil
}

func monthStart(now time.Time) time.Time {
	y, m, _ := now.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, now.Location())
}
