package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/SupplierComply/internal/pkg/billing"
	"github.com/ManuelReschke/SupplierComply/internal/pkg/entitlements"
	"github.com/ManuelReschke/SupplierComply/internal/pkg/usercontext"
)

type claimPaymentRequest struct {
	ConfirmationCode string `json:"confirmation_code"`
}

func HandlePaymentStatus(c *fiber.Ctx) error {
	status, err := getServices().Billing.Status(c.UserContext(), usercontext.GetSubscriberID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"status":  status,
		"amount":  entitlements.MonthlyPrice,
	})
}

// HandleClaimPayment records "I have paid" and moves the subscriber to pending.
func HandleClaimPayment(c *fiber.Ctx) error {
	var req claimPaymentRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	claim, err := getServices().Billing.ClaimPayment(c.UserContext(), usercontext.GetSubscriberID(c), billing.ClaimRequest{
		ConfirmationCode: req.ConfirmationCode,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Payment submitted. We will confirm it shortly.",
		"payment": claim,
	})
}

func HandleCancelPending(c *fiber.Ctx) error {
	if err := getServices().Billing.CancelPending(c.UserContext(), usercontext.GetSubscriberID(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Pending payment cancelled"})
}
