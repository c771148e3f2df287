package controllers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/SupplierComply/app/models"
	"github.com/ManuelReschke/SupplierComply/app/repository"
	"github.com/ManuelReschke/SupplierComply/internal/pkg/entitlements"
	"github.com/ManuelReschke/SupplierComply/internal/pkg/usercontext"
)

const (
	defaultExpiringDays = 30
	maxExpiringDays     = 365
)

// productItem is a product row with its shelf-life bucket. ExpiryStatus is
// only filled for paid subscribers.
type productItem struct {
	models.Product
	ExpiryStatus    *string `json:"expiry_status"`
	DaysUntilExpiry *int    `json:"days_until_expiry"`
}

func newProductItems(products []models.Product, withExpiry bool) []productItem {
	t := now()
	items := make([]productItem, 0, len(products))
	for _, p := range products {
		item := productItem{Product: p}
		if withExpiry {
			status := p.ExpiryStatus(t)
			item.ExpiryStatus = &status
			if days, ok := p.DaysUntilExpiry(t); ok {
				item.DaysUntilExpiry = &days
			}
		}
		items = append(items, item)
	}
	return items
}

func upgradeRequired(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
		"success":          false,
		"error":            message,
		"upgrade_required": true,
	})
}

// HandleDashboardStats combines usage, payment status and, for paid
// subscribers, expiry alert counts.
func HandleDashboardStats(c *fiber.Ctx) error {
	svc := getServices()
	ctx := c.UserContext()
	id := usercontext.GetSubscriberID(c)

	sub, err := svc.Billing.Subscriber(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	stats, err := svc.Barcodes.Stats(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	status, err := svc.Billing.Status(ctx, id)
	if err != nil {
		return respondError(c, err)
	}

	var alerts fiber.Map
	t := now()
	if entitlements.CanUseExpiryAlerts(sub, t) {
		alerts = fiber.Map{}
		for _, w := range repository.ExpiryWindows {
			n, err := svc.Repos.Product.CountInWindow(ctx, id, w, t)
			if err != nil {
				return respondError(c, err)
			}
			alerts[string(w)] = n
		}
	}

	return c.JSON(fiber.Map{
		"success":         true,
		"total_barcodes":  stats.Total,
		"this_month":      stats.ThisMonth,
		"free_tier_limit": stats.Limit,
		"payment_status":  status,
		"expiry_alerts":   alerts,
	})
}

// HandleDashboardProducts lists products with search and, for paid
// subscribers, an expiry window filter.
func HandleDashboardProducts(c *fiber.Ctx) error {
	svc := getServices()
	ctx := c.UserContext()
	id := usercontext.GetSubscriberID(c)

	sub, err := svc.Billing.Subscriber(ctx, id)
	if err != nil {
		return respondError(c, err)
	}

	t := now()
	paid := entitlements.CanUseExpiryAlerts(sub, t)
	page, perPage := pagination(c, 20, 100)
	filter := repository.ProductFilter{
		SubscriberID: id,
		Search:       strings.TrimSpace(c.Query("search")),
		Today:        t,
		Offset:       (page - 1) * perPage,
		Limit:        perPage,
	}
	if raw := c.Query("expiry_filter"); raw != "" && paid {
		w, ok := repository.ParseExpiryWindow(raw)
		if !ok {
			return respondError(c, badRequest("unknown expiry_filter "+raw))
		}
		filter.Window = w
	}

	products, total, err := svc.Repos.Product.Search(ctx, filter)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"products":     newProductItems(products, paid),
		"total":        total,
		"pages":        pageCount(total, perPage),
		"current_page": page,
	})
}

// HandleExpiringProducts is a paid feature: products expiring within days.
func HandleExpiringProducts(c *fiber.Ctx) error {
	svc := getServices()
	ctx := c.UserContext()
	id := usercontext.GetSubscriberID(c)

	sub, err := svc.Billing.Subscriber(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	t := now()
	if !entitlements.CanUseExpiryAlerts(sub, t) {
		return upgradeRequired(c, "Expiry alerts are available on the paid plan.")
	}

	days := c.QueryInt("days", defaultExpiringDays)
	if days < 1 {
		days = defaultExpiringDays
	}
	if days > maxExpiringDays {
		days = maxExpiringDays
	}

	products, err := svc.Repos.Product.ListExpiring(ctx, id, t, days)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"days":     days,
		"products": newProductItems(products, true),
	})
}

func HandleDashboardActivities(c *fiber.Ctx) error {
	page, perPage := pagination(c, 20, 100)
	activities, total, err := getServices().Repos.Activity.ListBySubscriber(c.UserContext(), usercontext.GetSubscriberID(c), (page-1)*perPage, perPage)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success":      true,
		"activities":   activities,
		"total":        total,
		"pages":        pageCount(total, perPage),
		"current_page": page,
	})
}
