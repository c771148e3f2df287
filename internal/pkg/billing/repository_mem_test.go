package billing

import (
	"context"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/ManuelReschke/SupplierComply/app/models"
)

// memRepository is an in-memory Repository. Transactions snapshot the state
// and restore it when fn fails.
type memRepository struct {
	mu         sync.Mutex
	subs       map[uint]models.Subscriber
	claims     map[uint]models.PaymentClaim
	activities []models.Activity
	nextSubID  uint
	nextClaim  uint

	// staleLastCode, when set, is returned once by LastPaymentCode to
	// simulate a concurrent registration racing the read.
	staleLastCode string
	failActivity  error
	clock         func() time.Time
}

func newMemRepository(clock func() time.Time) *memRepository {
	return &memRepository{
		subs:   map[uint]models.Subscriber{},
		claims: map[uint]models.PaymentClaim{},
		clock:  clock,
	}
}

func (r *memRepository) Transaction(ctx context.Context, fn func(repo Repository) error) error {
	r.mu.Lock()
	subs := make(map[uint]models.Subscriber, len(r.subs))
	for k, v := range r.subs {
		subs[k] = v
	}
	claims := make(map[uint]models.PaymentClaim, len(r.claims))
	for k, v := range r.claims {
		claims[k] = v
	}
	activities := append([]models.Activity(nil), r.activities...)
	nextSub, nextClaim := r.nextSubID, r.nextClaim
	r.mu.Unlock()

	if err := fn(r); err != nil {
		r.mu.Lock()
		r.subs, r.claims, r.activities = subs, claims, activities
		r.nextSubID, r.nextClaim = nextSub, nextClaim
		r.mu.Unlock()
		return err
	}
	return nil
}

func (r *memRepository) GetSubscriber(ctx context.Context, id uint) (*models.Subscriber, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := r.subs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &sub, nil
}

func (r *memRepository) GetSubscriberForUpdate(ctx context.Context, id uint) (*models.Subscriber, error) {
	return r.GetSubscriber(ctx, id)
}

func (r *memRepository) GetSubscriberByPaymentCode(ctx context.Context, code string) (*models.Subscriber, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, sub := range r.subs {
		if sub.PaymentCode == code {
			return &sub, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, sub := range r.subs {
		if sub.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *memRepository) LastPaymentCode(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.staleLastCode != "" {
		code := r.staleLastCode
		r.staleLastCode = ""
		return code, nil
	}
	var last models.Subscriber
	for _, sub := range r.subs {
		if sub.ID > last.ID {
			last = sub
		}
	}
	return last.PaymentCode, nil
}

func (r *memRepository) CreateSubscriber(ctx context.Context, sub *models.Subscriber) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.subs {
		if existing.Email == sub.Email || existing.PaymentCode == sub.PaymentCode {
			return gorm.ErrDuplicatedKey
		}
	}
	r.nextSubID++
	sub.ID = r.nextSubID
	sub.CreatedAt = r.clock()
	r.subs[sub.ID] = *sub
	return nil
}

func (r *memRepository) SaveSubscriber(ctx context.Context, sub *models.Subscriber) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs[sub.ID] = *sub
	return nil
}

func (r *memRepository) FindPendingClaim(ctx context.Context, subscriberID uint) (*models.PaymentClaim, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.claims {
		if c.SubscriberID == subscriberID && c.Status == models.CLAIM_STATUS_PENDING {
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memRepository) GetClaimForUpdate(ctx context.Context, id uint) (*models.PaymentClaim, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.claims[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &c, nil
}

func (r *memRepository) CreateClaim(ctx context.Context, claim *models.PaymentClaim) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextClaim++
	claim.ID = r.nextClaim
	claim.CreatedAt = r.clock()
	r.claims[claim.ID] = *claim
	return nil
}

func (r *memRepository) SaveClaim(ctx context.Context, claim *models.PaymentClaim) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.claims[claim.ID] = *claim
	return nil
}

func (r *memRepository) DeleteClaim(ctx context.Context, claim *models.PaymentClaim) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.claims, claim.ID)
	return nil
}

func (r *memRepository) sortedClaims(keep func(models.PaymentClaim) bool) []models.PaymentClaim {
	var out []models.PaymentClaim
	for _, c := range r.claims {
		if keep(c) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (r *memRepository) ListConfirmedClaims(ctx context.Context, subscriberID uint) ([]models.PaymentClaim, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sortedClaims(func(c models.PaymentClaim) bool {
		return c.SubscriberID == subscriberID && c.Status == models.CLAIM_STATUS_CONFIRMED
	}), nil
}

func (r *memRepository) ListPendingClaims(ctx context.Context) ([]models.PaymentClaim, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sortedClaims(func(c models.PaymentClaim) bool { return c.IsPending() }), nil
}

func (r *memRepository) ListClaims(ctx context.Context, offset, limit int) ([]models.PaymentClaim, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.sortedClaims(func(models.PaymentClaim) bool { return true })
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (r *memRepository) AppendActivity(ctx context.Context, activity *models.Activity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failActivity != nil {
		return r.failActivity
	}
	r.activities = append(r.activities, *activity)
	return nil
}

func (r *memRepository) actions(subscriberID uint) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, a := range r.activities {
		if a.SubscriberID == subscriberID {
			out = append(out, a.Action)
		}
	}
	return out
}
