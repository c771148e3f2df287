// Package barcode runs the encode flow: entitlement and quota checks, GTIN
// assignment, element string composition, rendering, upload and the product
// record.
package barcode

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"

	"github.com/ManuelReschke/SupplierComply/app/models"
	"github.com/ManuelReschke/SupplierComply/internal/pkg/entitlements"
	"github.com/ManuelReschke/SupplierComply/internal/pkg/gs1"
	"github.com/ManuelReschke/SupplierComply/internal/pkg/quota"
)

var (
	ErrNameRequired = errors.New("product name is required")
	// ErrAccessDenied is returned when the subscriber's trial has lapsed or
	// a claim is pending.
	ErrAccessDenied = errors.New("subscription required")
)

const (
	defaultHistoryPerPage = 20
	maxHistoryPerPage     = 100
)

// ProductStore persists products. CreateWithActivity writes the product and
// its audit entry in one transaction.
type ProductStore interface {
	CreateWithActivity(ctx context.Context, product *models.Product, activity *models.Activity) error
	CountBySubscriber(ctx context.Context, subscriberID uint) (int64, error)
	ListBySubscriber(ctx context.Context, subscriberID uint, offset, limit int) ([]models.Product, int64, error)
}

// ObjectStore receives rendered images.
type ObjectStore interface {
	Put(ctx context.Context, key string, body []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

type EncodeRequest struct {
	Name     string
	GTIN     string // optional, generated when empty
	Batch    string
	Expiry   *time.Time
	Quantity *int
}

type EncodeResult struct {
	Product     *models.Product `json:"product"`
	Composition gs1.Composition `json:"composition"`
	Watermarked bool            `json:"watermarked"`
}

// Stats summarizes a subscriber's usage. Limit is nil for paid subscribers.
type Stats struct {
	Total     int64 `json:"total_barcodes"`
	ThisMonth int   `json:"this_month"`
	Limit     *int  `json:"limit"`
}

type History struct {
	Products    []models.Product `json:"products"`
	Total       int64            `json:"total"`
	Pages       int              `json:"pages"`
	CurrentPage int              `json:"current_page"`
}

type Service struct {
	subscribers quota.SubscriberSource
	quota       *quota.Enforcer
	products    ProductStore
	renderer    Renderer
	store       ObjectStore
	gtins       *gs1.Generator
	locker      quota.Locker
	now         func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLocker serializes encodes per subscriber so the quota ceiling holds
// under concurrency.
func WithLocker(l quota.Locker) Option {
	return func(s *Service) { s.locker = l }
}

func WithGenerator(g *gs1.Generator) Option {
	return func(s *Service) {
		if g != nil {
			s.gtins = g
		}
	}
}

func NewService(subscribers quota.SubscriberSource, enforcer *quota.Enforcer, products ProductStore, renderer Renderer, store ObjectStore, opts ...Option) *Service {
	s := &Service{
		subscribers: subscribers,
		quota:       enforcer,
		products:    products,
		renderer:    renderer,
		store:       store,
		gtins:       gs1.NewGenerator(gs1.StandardIndicator, nil),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ObjectKey is the storage key of a rendered barcode.
func ObjectKey(subscriberID uint, gtin string) string {
	return fmt.Sprintf("barcodes/user_%d/barcode_%s_%s.png", subscriberID, gtin, uuid.NewString()[:8])
}

// Encode produces one barcode for the subscriber. Nothing is persisted unless
// every step succeeds; an uploaded image is removed again when the product
// insert fails.
func (s *Service) Encode(ctx context.Context, subscriberID uint, req EncodeRequest) (*EncodeResult, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	if s.locker != nil {
		unlock, err := s.locker.Lock(ctx, subscriberID)
		if err != nil {
			return nil, fmt.Errorf("acquire quota lock: %w", err)
		}
		defer unlock()
	}

	sub, err := s.subscribers.Subscriber(ctx, subscriberID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if !entitlements.CanAccess(sub, now) {
		return nil, ErrAccessDenied
	}
	if err := s.quota.AdmitSubscriber(ctx, sub); err != nil {
		return nil, err
	}

	gtin := strings.TrimSpace(req.GTIN)
	if gtin == "" {
		gtin = s.gtins.Generate()
	} else if err := gs1.ValidateGTIN(gtin); err != nil {
		return nil, err
	}

	comp, err := gs1.Compose(gs1.ComposeRequest{
		GTIN:     gtin,
		Batch:    req.Batch,
		Expiry:   req.Expiry,
		Quantity: req.Quantity,
	}, now)
	if err != nil {
		return nil, err
	}

	watermark := entitlements.ShouldWatermark(sub, now)
	img, err := s.renderer.Render(comp.Payload, comp.Display, watermark)
	if err != nil {
		return nil, fmt.Errorf("render barcode: %w", err)
	}

	key := ObjectKey(subscriberID, gtin)
	url, err := s.store.Put(ctx, key, img, s.renderer.ContentType())
	if err != nil {
		return nil, fmt.Errorf("store barcode image: %w", err)
	}

	product := &models.Product{
		SubscriberID: subscriberID,
		Name:         name,
		BatchNumber:  strings.TrimSpace(req.Batch),
		ExpiryDate:   req.Expiry,
		Quantity:     req.Quantity,
		GTIN:         gtin,
		GS1String:    comp.Display,
		ObjectKey:    key,
		BarcodeURL:   url,
		Watermarked:  watermark,
	}
	activity := models.NewActivity(subscriberID, models.ACTIVITY_BARCODE_GENERATED,
		fmt.Sprintf("Generated barcode for %s (GTIN: %s)", name, gtin))

	if err := s.products.CreateWithActivity(ctx, product, activity); err != nil {
		if derr := s.store.Delete(context.WithoutCancel(ctx), key); derr != nil {
			log.Errorf("[Barcode] Failed to remove orphaned image %s: %v", key, derr)
		}
		return nil, fmt.Errorf("save product: %w", err)
	}

	log.Infof("[Barcode] Subscriber %d generated %s (watermarked=%t)", subscriberID, gtin, watermark)
	return &EncodeResult{Product: product, Composition: comp, Watermarked: watermark}, nil
}

// Stats returns total and this month's encode counts.
func (s *Service) Stats(ctx context.Context, subscriberID uint) (*Stats, error) {
	sub, err := s.subscribers.Subscriber(ctx, subscriberID)
	if err != nil {
		return nil, err
	}
	total, err := s.products.CountBySubscriber(ctx, subscriberID)
	if err != nil {
		return nil, err
	}
	month, err := s.quota.UsageThisPeriod(ctx, subscriberID)
	if err != nil {
		return nil, err
	}
	return &Stats{Total: total, ThisMonth: month, Limit: entitlements.MonthlyLimit(sub, s.now())}, nil
}

// History lists the subscriber's products, newest first.
func (s *Service) History(ctx context.Context, subscriberID uint, page, perPage int) (*History, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultHistoryPerPage
	}
	if perPage > maxHistoryPerPage {
		perPage = maxHistoryPerPage
	}

	products, total, err := s.products.ListBySubscriber(ctx, subscriberID, (page-1)*perPage, perPage)
	if err != nil {
		return nil, err
	}
	pages := int((total + int64(perPage) - 1) / int64(perPage))
	return &History{Products: products, Total: total, Pages: pages, CurrentPage: page}, nil
}
