// Package quota enforces the monthly encode ceiling of subscribers that are
// not on a paid subscription.
package quota

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ManuelReschke/SupplierComply/app/models"
	"github.com/ManuelReschke/SupplierComply/internal/pkg/entitlements"
)

// ErrQuotaExceeded matches every *ExceededError via errors.Is.
var ErrQuotaExceeded = errors.New("monthly barcode quota exceeded")

// ExceededError is a policy denial, not a failure. Callers should prompt an
// upgrade.
type ExceededError struct {
	Limit int
	Used  int
}

func (e *ExceededError) Error() string {
	return fmt.Sprintf("monthly barcode quota exceeded: %d of %d used", e.Used, e.Limit)
}

func (e *ExceededError) Is(target error) bool {
	return target == ErrQuotaExceeded
}

// ProductCounter counts a subscriber's products created in [from, to].
type ProductCounter interface {
	CountCreatedBetween(ctx context.Context, subscriberID uint, from, to time.Time) (int64, error)
}

// SubscriberSource loads the entitlement state of a subscriber.
type SubscriberSource interface {
	Subscriber(ctx context.Context, subscriberID uint) (*models.Subscriber, error)
}

type Enforcer struct {
	products    ProductCounter
	subscribers SubscriberSource
	now         func() time.Time
	limit       int
}

type Option func(*Enforcer)

func WithClock(now func() time.Time) Option {
	return func(e *Enforcer) {
		if now != nil {
			e.now = now
		}
	}
}

// WithLimit overrides the free-tier ceiling.
func WithLimit(limit int) Option {
	return func(e *Enforcer) {
		if limit > 0 {
			e.limit = limit
		}
	}
}

func NewEnforcer(products ProductCounter, subscribers SubscriberSource, opts ...Option) *Enforcer {
	e := &Enforcer{
		products:    products,
		subscribers: subscribers,
		now:         time.Now,
		limit:       entitlements.FreeMonthlyBarcodes,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// PeriodStart returns the first instant of now's calendar month in now's
// location.
func PeriodStart(now time.Time) time.Time {
	y, m, _ := now.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, now.Location())
}

// UsageThisPeriod counts the subscriber's products created since the start
// of the current calendar month.
func (e *Enforcer) UsageThisPeriod(ctx context.Context, subscriberID uint) (int, error) {
	now := e.now()
	n, err := e.products.CountCreatedBetween(ctx, subscriberID, PeriodStart(now), now)
	if err != nil {
		return 0, fmt.Errorf("count products this period: %w", err)
	}
	return int(n), nil
}

// Admit loads the subscriber and checks the ceiling. Paid subscribers are
// always admitted.
func (e *Enforcer) Admit(ctx context.Context, subscriberID uint) error {
	sub, err := e.subscribers.Subscriber(ctx, subscriberID)
	if err != nil {
		return err
	}
	return e.AdmitSubscriber(ctx, sub)
}

// AdmitSubscriber checks the ceiling for an already loaded subscriber.
//
// Admission and the following insert are separate steps. Two concurrent
// calls can both observe used == limit-1 and both insert; wrap admit and
// insert in a Locker to make the ceiling hard.
func (e *Enforcer) AdmitSubscriber(ctx context.Context, sub *models.Subscriber) error {
	if entitlements.IsPaid(sub, e.now()) {
		return nil
	}

	used, err := e.UsageThisPeriod(ctx, sub.ID)
	if err != nil {
		return err
	}
	if used >= e.limit {
		return &ExceededError{Limit: e.limit, Used: used}
	}
	return nil
}

// Limit returns the free-tier ceiling.
func (e *Enforcer) Limit() int {
	return e.limit
}
