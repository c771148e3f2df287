package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/ManuelReschke/SupplierComply/app/models"
	"github.com/ManuelReschke/SupplierComply/internal/pkg/entitlements"
)

var (
	ErrSubscriberNotFound      = errors.New("subscriber not found")
	ErrEmailTaken              = errors.New("email already registered")
	ErrEmptyConfirmationCode   = errors.New("confirmation code is required")
	ErrConfirmationCodeTooLong = fmt.Errorf("confirmation code must be at most %d characters", maxConfirmationCodeLen)
	ErrDuplicatePendingClaim   = errors.New("a pending payment already exists")
	ErrAlreadyPaid             = errors.New("subscription is already active")
	ErrClaimNotFound           = errors.New("payment claim not found")
	ErrClaimNotPending         = errors.New("payment claim is not pending")
	ErrForbidden               = errors.New("admin capability required")
	ErrInvalidTrialDays        = fmt.Errorf("trial days must be between 0 and %d", MaxTrialDays)
	ErrPaymentCodeRequired     = errors.New("payment code is required")
	ErrPaymentCodeUnavailable  = errors.New("could not assign a unique payment code")
)

// MaxTrialDays keeps trial_ends_at well inside the TIMESTAMP column range.
const MaxTrialDays = 3650

// maxCodeAttempts bounds retries when a concurrent registration took the
// computed payment code.
const maxCodeAttempts = 5

// Service drives the entitlement state machine. Every transition runs in one
// transaction together with its activity entry.
type Service struct {
	repo     Repository
	notifier Notifier
	now      Clock
}

type Option func(*Service)

// WithNotifier sets the receiver of committed entitlement events.
func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithClock overrides the time source.
func WithClock(c Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.now = c
		}
	}
}

// NewService creates a billing service from an injected repository.
func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{repo: repo, notifier: noopNotifier{}, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewServiceFromDB creates a billing service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB, opts ...Option) *Service {
	return NewService(NewRepository(db), opts...)
}

// Now exposes the service clock so callers evaluate predicates consistently.
func (s *Service) Now() time.Time {
	return s.now()
}

// Register creates a subscriber on a fresh trial with the next payment code.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*models.Subscriber, error) {
	sub, err := models.NewSubscriber(req.Email, req.Password, req.CompanyName, req.Phone)
	if err != nil {
		return nil, err
	}

	var tried string
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		err = s.repo.Transaction(ctx, func(repo Repository) error {
			taken, err := repo.EmailExists(ctx, sub.Email)
			if err != nil {
				return err
			}
			if taken {
				return ErrEmailTaken
			}

			last, err := repo.LastPaymentCode(ctx)
			if err != nil {
				return err
			}

			code := nextPaymentCode(last)
			if code == tried {
				code = nextPaymentCode(tried)
			}
			tried = code

			trialEnds := s.now().Add(entitlements.TrialPeriod)
			sub.ID = 0
			sub.PaymentCode = code
			sub.Tier = string(entitlements.TierFreeTrial)
			sub.TrialEndsAt = &trialEnds
			sub.PaidUntil = nil
			if err := repo.CreateSubscriber(ctx, sub); err != nil {
				return err
			}

			return repo.AppendActivity(ctx, models.NewActivity(sub.ID, models.ACTIVITY_USER_REGISTERED,
				fmt.Sprintf("Company: %s", sub.CompanyName)))
		})
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			break
		}
		log.Warnf("[Billing] Payment code %s taken concurrently, retrying", sub.PaymentCode)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, ErrPaymentCodeUnavailable
	}
	if err != nil {
		return nil, err
	}

	log.Infof("[Billing] Registered subscriber %d (%s) with payment code %s", sub.ID, sub.Email, sub.PaymentCode)
	s.notifier.SubscriberRegistered(sub)
	return sub, nil
}

// Subscriber loads a subscriber by id.
func (s *Service) Subscriber(ctx context.Context, subscriberID uint) (*models.Subscriber, error) {
	sub, err := s.repo.GetSubscriber(ctx, subscriberID)
	if err != nil {
		return nil, mapNotFound(err, ErrSubscriberNotFound)
	}
	return sub, nil
}

// ClaimPayment records that the subscriber paid and moves them to pending.
func (s *Service) ClaimPayment(ctx context.Context, subscriberID uint, req ClaimRequest) (*models.PaymentClaim, error) {
	code := normalizeConfirmationCode(req.ConfirmationCode)
	if code == "" {
		return nil, ErrEmptyConfirmationCode
	}
	if len(code) > maxConfirmationCodeLen {
		return nil, ErrConfirmationCodeTooLong
	}

	var (
		sub   *models.Subscriber
		claim *models.PaymentClaim
	)
	err := s.repo.Transaction(ctx, func(repo Repository) error {
		var err error
		sub, err = repo.GetSubscriberForUpdate(ctx, subscriberID)
		if err != nil {
			return mapNotFound(err, ErrSubscriberNotFound)
		}

		if _, err := repo.FindPendingClaim(ctx, subscriberID); err == nil {
			return ErrDuplicatePendingClaim
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if entitlements.IsPaid(sub, s.now()) {
			return ErrAlreadyPaid
		}

		claim = &models.PaymentClaim{
			SubscriberID:     sub.ID,
			Amount:           entitlements.MonthlyPrice,
			PaymentCode:      sub.PaymentCode,
			ConfirmationCode: code,
			Status:           models.CLAIM_STATUS_PENDING,
		}
		if err := repo.CreateClaim(ctx, claim); err != nil {
			return err
		}

		sub.Tier = string(entitlements.TierPending)
		if err := repo.SaveSubscriber(ctx, sub); err != nil {
			return err
		}

		return repo.AppendActivity(ctx, models.NewActivity(sub.ID, models.ACTIVITY_PAYMENT_INITIATED,
			fmt.Sprintf("Amount: %d, Code: %s, Confirmation: %s", claim.Amount, sub.PaymentCode, code)))
	})
	if err != nil {
		return nil, err
	}

	log.Infof("[Billing] Subscriber %d claimed payment %s (pending confirmation)", sub.ID, code)
	s.notifier.PaymentClaimed(sub, claim)
	return claim, nil
}

// CancelPending withdraws the subscriber's pending claim and returns them to
// free_trial, even when the trial window has already lapsed.
func (s *Service) CancelPending(ctx context.Context, subscriberID uint) error {
	err := s.repo.Transaction(ctx, func(repo Repository) error {
		sub, err := repo.GetSubscriberForUpdate(ctx, subscriberID)
		if err != nil {
			return mapNotFound(err, ErrSubscriberNotFound)
		}

		claim, err := repo.FindPendingClaim(ctx, subscriberID)
		if err != nil {
			return mapNotFound(err, ErrClaimNotFound)
		}
		if err := repo.DeleteClaim(ctx, claim); err != nil {
			return err
		}

		sub.Tier = string(entitlements.TierFreeTrial)
		if err := repo.SaveSubscriber(ctx, sub); err != nil {
			return err
		}

		return repo.AppendActivity(ctx, models.NewActivity(sub.ID, models.ACTIVITY_PAYMENT_CANCELLED, ""))
	})
	if err != nil {
		return err
	}

	log.Infof("[Billing] Subscriber %d cancelled pending payment", subscriberID)
	return nil
}

// ConfirmPayment reconciles a pending claim and upgrades its subscriber to
// paid for one period starting now.
func (s *Service) ConfirmPayment(ctx context.Context, claimID uint, admin AdminActor) (*models.Subscriber, error) {
	if !admin.IsAdmin {
		return nil, ErrForbidden
	}

	var (
		sub   *models.Subscriber
		claim *models.PaymentClaim
	)
	err := s.repo.Transaction(ctx, func(repo Repository) error {
		var err error
		claim, err = repo.GetClaimForUpdate(ctx, claimID)
		if err != nil {
			return mapNotFound(err, ErrClaimNotFound)
		}
		if !claim.IsPending() {
			return ErrClaimNotPending
		}

		sub, err = repo.GetSubscriberForUpdate(ctx, claim.SubscriberID)
		if err != nil {
			return mapNotFound(err, ErrSubscriberNotFound)
		}

		now := s.now()
		adminID := admin.ID
		claim.Status = models.CLAIM_STATUS_CONFIRMED
		claim.ConfirmedBy = &adminID
		claim.ConfirmedAt = &now
		if err := repo.SaveClaim(ctx, claim); err != nil {
			return err
		}

		paidUntil := now.Add(entitlements.PaidPeriod)
		sub.Tier = string(entitlements.TierPaid)
		sub.PaidUntil = &paidUntil
		if err := repo.SaveSubscriber(ctx, sub); err != nil {
			return err
		}

		return repo.AppendActivity(ctx, models.NewActivity(sub.ID, models.ACTIVITY_PAYMENT_CONFIRMED,
			fmt.Sprintf("Amount: %d, Confirmed by: %d", claim.Amount, admin.ID)))
	})
	if err != nil {
		return nil, err
	}

	log.Infof("[Billing] Payment %d confirmed for subscriber %d by admin %d", claim.ID, sub.ID, admin.ID)
	s.notifier.PaymentConfirmed(sub, claim)
	return sub, nil
}

// SetTrial puts a subscriber on a trial of the given length and clears any
// paid period.
func (s *Service) SetTrial(ctx context.Context, subscriberID uint, days int, admin AdminActor) (*models.Subscriber, error) {
	if !admin.IsAdmin {
		return nil, ErrForbidden
	}
	if days < 0 || days > MaxTrialDays {
		return nil, ErrInvalidTrialDays
	}

	var sub *models.Subscriber
	err := s.repo.Transaction(ctx, func(repo Repository) error {
		var err error
		sub, err = repo.GetSubscriberForUpdate(ctx, subscriberID)
		if err != nil {
			return mapNotFound(err, ErrSubscriberNotFound)
		}

		trialEnds := s.now().AddDate(0, 0, days)
		sub.Tier = string(entitlements.TierFreeTrial)
		sub.TrialEndsAt = &trialEnds
		sub.PaidUntil = nil
		if err := repo.SaveSubscriber(ctx, sub); err != nil {
			return err
		}

		return repo.AppendActivity(ctx, models.NewActivity(sub.ID, models.ACTIVITY_TRIAL_SET,
			fmt.Sprintf("Days: %d, Set by: %d", days, admin.ID)))
	})
	if err != nil {
		return nil, err
	}

	log.Infof("[Billing] Trial set for subscriber %d for %d days by admin %d", sub.ID, days, admin.ID)
	return sub, nil
}

// CanAccess reports whether the subscriber may use gated features right now.
func (s *Service) CanAccess(ctx context.Context, subscriberID uint) (bool, error) {
	sub, err := s.Subscriber(ctx, subscriberID)
	if err != nil {
		return false, err
	}
	return entitlements.CanAccess(sub, s.now()), nil
}

// Status assembles the subscriber-facing payment status.
func (s *Service) Status(ctx context.Context, subscriberID uint) (*StatusView, error) {
	sub, err := s.Subscriber(ctx, subscriberID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	view := &StatusView{
		PaymentCode:    sub.PaymentCode,
		Tier:           sub.Tier,
		IsPaid:         entitlements.IsPaid(sub, now),
		IsTrialActive:  entitlements.IsTrialActive(sub, now),
		CanAccess:      entitlements.CanAccess(sub, now),
		TrialEndsAt:    sub.TrialEndsAt,
		PaidUntil:      sub.PaidUntil,
		PaymentHistory: []models.PaymentClaim{},
	}
	if view.IsPaid || view.IsTrialActive {
		days := entitlements.DaysRemaining(sub, now)
		view.DaysRemaining = &days
	}

	pending, err := s.repo.FindPendingClaim(ctx, subscriberID)
	switch {
	case err == nil:
		view.PendingPayment = pending
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	history, err := s.repo.ListConfirmedClaims(ctx, subscriberID)
	if err != nil {
		return nil, err
	}
	if history != nil {
		view.PaymentHistory = history
	}
	return view, nil
}

// ListPendingClaims returns all claims awaiting reconciliation, newest first.
func (s *Service) ListPendingClaims(ctx context.Context, admin AdminActor) ([]models.PaymentClaim, error) {
	if !admin.IsAdmin {
		return nil, ErrForbidden
	}
	return s.repo.ListPendingClaims(ctx)
}

// ClaimHistory pages through every claim, newest first.
func (s *Service) ClaimHistory(ctx context.Context, page, perPage int, admin AdminActor) (*ClaimPage, error) {
	if !admin.IsAdmin {
		return nil, ErrForbidden
	}
	page, perPage = normalizePage(page, perPage)

	claims, total, err := s.repo.ListClaims(ctx, (page-1)*perPage, perPage)
	if err != nil {
		return nil, err
	}
	return &ClaimPage{
		Claims:      claims,
		Total:       total,
		Pages:       pageCount(total, perPage),
		CurrentPage: page,
	}, nil
}

// LookupPaymentCode finds the subscriber behind a bank reference and their
// pending claim, if any.
func (s *Service) LookupPaymentCode(ctx context.Context, code string, admin AdminActor) (*PaymentCodeLookup, error) {
	if !admin.IsAdmin {
		return nil, ErrForbidden
	}
	code = normalizePaymentCode(code)
	if code == "" {
		return nil, ErrPaymentCodeRequired
	}

	sub, err := s.repo.GetSubscriberByPaymentCode(ctx, code)
	if err != nil {
		return nil, mapNotFound(err, ErrSubscriberNotFound)
	}

	result := &PaymentCodeLookup{Subscriber: sub}
	pending, err := s.repo.FindPendingClaim(ctx, sub.ID)
	switch {
	case err == nil:
		result.PendingPayment = pending
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}
	return result, nil
}

func mapNotFound(err, notFound error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return err
}
