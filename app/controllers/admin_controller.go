package controllers

import (
	"context"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/SupplierComply/app/repository"
	"github.com/ManuelReschke/SupplierComply/internal/pkg/entitlements"
	"github.com/ManuelReschke/SupplierComply/internal/pkg/jobqueue"
)

const defaultTrialDays = 14

type confirmPaymentRequest struct {
	PaymentID uint `json:"payment_id" validate:"required"`
}

type setTrialRequest struct {
	SubscriberID uint `json:"user_id" validate:"required"`
	Days         *int `json:"days"`
}

func HandleAdminDashboard(c *fiber.Ctx) error {
	svc := getServices()
	stats, err := svc.Repos.Stats.AdminDashboard(c.UserContext(), now())
	if err != nil {
		return respondError(c, err)
	}

	resp := fiber.Map{"success": true, "stats": stats}
	if svc.MailQueue != nil {
		if backlog, err := mailBacklog(c.UserContext(), svc.MailQueue); err != nil {
			log.Warnf("[AdminController] Mail queue stats unavailable: %v", err)
		} else {
			resp["mail_queue"] = backlog
		}
	}
	return c.JSON(resp)
}

func mailBacklog(ctx context.Context, q MailBacklog) (fiber.Map, error) {
	pending, err := q.GetQueueSize(ctx)
	if err != nil {
		return nil, err
	}
	processing, err := q.GetProcessingSize(ctx)
	if err != nil {
		return nil, err
	}
	stats, err := q.GetJobStats(ctx)
	if err != nil {
		return nil, err
	}
	return fiber.Map{
		"pending":    pending,
		"processing": processing,
		"failed":     stats[jobqueue.JobStatusFailed],
		"completed":  stats[jobqueue.JobStatusCompleted],
	}, nil
}

func HandleAdminPendingPayments(c *fiber.Ctx) error {
	claims, err := getServices().Billing.ListPendingClaims(c.UserContext(), adminActor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "payments": claims, "count": len(claims)})
}

func HandleAdminPaymentHistory(c *fiber.Ctx) error {
	page, perPage := pagination(c, 50, 200)
	result, err := getServices().Billing.ClaimHistory(c.UserContext(), page, perPage, adminActor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success":      true,
		"payments":     result.Claims,
		"total":        result.Total,
		"pages":        result.Pages,
		"current_page": result.CurrentPage,
	})
}

// HandleAdminConfirmPayment reconciles a pending claim against the bank
// statement and activates the subscription.
func HandleAdminConfirmPayment(c *fiber.Ctx) error {
	var req confirmPaymentRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	admin := adminActor(c)
	sub, err := getServices().Billing.ConfirmPayment(c.UserContext(), req.PaymentID, admin)
	if err != nil {
		return respondError(c, err)
	}
	log.Infof("[Admin] Admin %d confirmed payment %d for subscriber %d", admin.ID, req.PaymentID, sub.ID)

	return c.JSON(fiber.Map{
		"success":    true,
		"message":    fmt.Sprintf("Payment confirmed for %s", sub.Email),
		"paid_until": formatTimePtr(sub.PaidUntil),
	})
}

func HandleAdminSetTrial(c *fiber.Ctx) error {
	var req setTrialRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	days := defaultTrialDays
	if req.Days != nil {
		days = *req.Days
	}

	sub, err := getServices().Billing.SetTrial(c.UserContext(), req.SubscriberID, days, adminActor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success":       true,
		"message":       fmt.Sprintf("Trial set to %d days for %s", days, sub.Email),
		"trial_ends_at": formatTimePtr(sub.TrialEndsAt),
	})
}

func HandleAdminSearchPaymentCode(c *fiber.Ctx) error {
	result, err := getServices().Billing.LookupPaymentCode(c.UserContext(), c.Query("code"), adminActor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success":         true,
		"user":            result.Subscriber,
		"pending_payment": result.PendingPayment,
	})
}

func HandleAdminActivities(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	if limit < 1 || limit > 200 {
		limit = 50
	}
	activities, err := getServices().Repos.Activity.ListRecent(c.UserContext(), limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "activities": activities})
}

// HandleAdminUsers lists subscribers with search, tier filter and barcode counts.
func HandleAdminUsers(c *fiber.Ctx) error {
	page, perPage := pagination(c, 20, 100)
	filter := repository.SubscriberFilter{
		Search: strings.TrimSpace(c.Query("search")),
		Offset: (page - 1) * perPage,
		Limit:  perPage,
	}
	if status := strings.TrimSpace(c.Query("status")); status != "" {
		switch entitlements.Tier(status) {
		case entitlements.TierFreeTrial, entitlements.TierPending, entitlements.TierPaid:
			filter.Tier = status
		default:
			return respondError(c, badRequest("unknown status "+status))
		}
	}

	users, total, err := getServices().Repos.Subscriber.ListWithStats(c.UserContext(), filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success":      true,
		"users":        users,
		"total":        total,
		"pages":        pageCount(total, perPage),
		"current_page": page,
	})
}

