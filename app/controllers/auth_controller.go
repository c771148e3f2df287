package controllers

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/ManuelReschke/SupplierComply/app/models"
	"github.com/ManuelReschke/SupplierComply/internal/pkg/billing"
	"github.com/ManuelReschke/SupplierComply/internal/pkg/entitlements"
	"github.com/ManuelReschke/SupplierComply/internal/pkg/session"
	"github.com/ManuelReschke/SupplierComply/internal/pkg/usercontext"
)

type registerRequest struct {
	Email       string `json:"email" validate:"required,email,max=200"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
	CompanyName string `json:"company_name" validate:"required,min=2,max=200"`
	Phone       string `json:"phone" validate:"max=50"`
	Captcha     string `json:"h-captcha-response"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type forgotPasswordRequest struct {
	Email   string `json:"email" validate:"required,email"`
	Captcha string `json:"h-captcha-response"`
}

type resetPasswordRequest struct {
	SubscriberID uint   `json:"user_id" validate:"required"`
	Token        string `json:"token" validate:"required"`
	Password     string `json:"password" validate:"required,min=8,max=72"`
}

type profileRequest struct {
	CompanyName string `json:"company_name" validate:"required,min=2,max=200"`
	Phone       string `json:"phone" validate:"max=50"`
}

// profileView is the account as shown to its owner.
func profileView(sub *models.Subscriber) fiber.Map {
	t := now()
	view := fiber.Map{
		"id":              sub.ID,
		"email":           sub.Email,
		"company_name":    sub.CompanyName,
		"phone":           sub.Phone,
		"role":            sub.Role,
		"payment_code":    sub.PaymentCode,
		"payment_status":  sub.Tier,
		"trial_ends_at":   formatTimePtr(sub.TrialEndsAt),
		"paid_until":      formatTimePtr(sub.PaidUntil),
		"is_paid":         entitlements.IsPaid(sub, t),
		"is_trial_active": entitlements.IsTrialActive(sub, t),
		"can_access":      entitlements.CanAccess(sub, t),
		"last_login_at":   formatTimePtr(sub.LastLoginAt),
		"created_at":      formatTimePtr(&sub.CreatedAt),
	}
	if entitlements.IsPaid(sub, t) || entitlements.IsTrialActive(sub, t) {
		view["days_remaining"] = entitlements.DaysRemaining(sub, t)
	} else {
		view["days_remaining"] = nil
	}
	return view
}

func verifyCaptcha(c *fiber.Ctx, token string) error {
	verifier := getServices().Captcha
	if verifier == nil {
		return nil
	}
	if err := verifier.Verify(c.UserContext(), token); err != nil {
		log.Warnf("[Auth] Captcha rejected for %s: %v", c.IP(), err)
		return badRequest("captcha verification failed")
	}
	return nil
}

func appendActivity(c *fiber.Ctx, subscriberID uint, action, details string) {
	if err := getServices().Repos.Activity.Append(c.UserContext(), models.NewActivity(subscriberID, action, details)); err != nil {
		log.Warnf("[Activity] Failed to record %s for subscriber %d: %v", action, subscriberID, err)
	}
}

// HandleRegister creates a free-trial subscriber and logs them in.
func HandleRegister(c *fiber.Ctx) error {
	var req registerRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	if err := verifyCaptcha(c, req.Captcha); err != nil {
		return respondError(c, err)
	}

	sub, err := getServices().Billing.Register(c.UserContext(), billing.RegisterRequest{
		Email:       req.Email,
		Password:    req.Password,
		CompanyName: req.CompanyName,
		Phone:       req.Phone,
	})
	if err != nil {
		return respondError(c, err)
	}

	if err := session.Login(c, sub.ID, sub.Email, sub.IsAdmin()); err != nil {
		log.Warnf("[Auth] Registered subscriber %d but session failed: %v", sub.ID, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": fmt.Sprintf("Registration successful. Your payment code is %s.", sub.PaymentCode),
		"user":    profileView(sub),
	})
}

// HandleLogin authenticates by email and password. Subscribers whose trial
// or subscription has lapsed are refused unless a claim is pending.
func HandleLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	svc := getServices()
	sub, err := svc.Repos.Subscriber.GetByEmail(c.UserContext(), req.Email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return respondError(c, err)
	}
	if sub == nil || !sub.CheckPassword(req.Password) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid email or password",
		})
	}

	t := now()
	if !sub.IsAdmin() && !entitlements.CanAccess(sub, t) && entitlements.NormalizeTier(sub.Tier) != entitlements.TierPending {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success":          false,
			"error":            "Your trial has ended. Please complete payment to continue.",
			"upgrade_required": true,
			"payment_code":     sub.PaymentCode,
		})
	}

	if err := session.Login(c, sub.ID, sub.Email, sub.IsAdmin()); err != nil {
		return respondError(c, err)
	}
	if err := svc.Repos.Subscriber.TouchLastLogin(c.UserContext(), sub.ID, t); err != nil {
		log.Warnf("[Auth] Failed to update last login for subscriber %d: %v", sub.ID, err)
	}
	sub.LastLoginAt = &t
	appendActivity(c, sub.ID, models.ACTIVITY_USER_LOGIN, "Logged in")

	return c.JSON(fiber.Map{"success": true, "user": profileView(sub)})
}

func HandleLogout(c *fiber.Ctx) error {
	uc := usercontext.GetUserContext(c)
	if uc.IsLoggedIn {
		appendActivity(c, uc.SubscriberID, models.ACTIVITY_USER_LOGOUT, "Logged out")
	}
	if err := session.Logout(c); err != nil {
		log.Warnf("[Auth] Logout failed: %v", err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Logged out"})
}

// HandleForgotPassword always reports success so accounts cannot be probed.
func HandleForgotPassword(c *fiber.Ctx) error {
	var req forgotPasswordRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	if err := verifyCaptcha(c, req.Captcha); err != nil {
		return respondError(c, err)
	}

	svc := getServices()
	sub, err := svc.Repos.Subscriber.GetByEmail(c.UserContext(), req.Email)
	switch {
	case err == nil:
		token, err := svc.Resets.Issue(c.UserContext(), sub.ID)
		if err != nil {
			log.Errorf("[Auth] Failed to issue reset token for subscriber %d: %v", sub.ID, err)
			break
		}
		svc.Mailer.PasswordReset(sub, resetURL(svc.BaseURL, sub.ID, token), svc.Resets.TTL())
	case !errors.Is(err, gorm.ErrRecordNotFound):
		log.Errorf("[Auth] Password reset lookup failed: %v", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "If the email is registered, a reset link has been sent.",
	})
}

func resetURL(base string, subscriberID uint, token string) string {
	q := url.Values{}
	q.Set("id", fmt.Sprint(subscriberID))
	q.Set("token", token)
	return strings.TrimRight(base, "/") + "/reset-password?" + q.Encode()
}

func HandleResetPassword(c *fiber.Ctx) error {
	var req resetPasswordRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	svc := getServices()
	ctx := c.UserContext()
	if err := svc.Resets.Verify(ctx, req.SubscriberID, req.Token); err != nil {
		return respondError(c, err)
	}

	hash, err := models.HashPassword(req.Password)
	if err != nil {
		return respondError(c, err)
	}
	if err := svc.Repos.Subscriber.UpdatePassword(ctx, req.SubscriberID, hash); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respondError(c, billing.ErrSubscriberNotFound)
		}
		return respondError(c, err)
	}
	if err := svc.Resets.Consume(ctx, req.SubscriberID); err != nil {
		log.Warnf("[Auth] Failed to delete reset token for subscriber %d: %v", req.SubscriberID, err)
	}
	appendActivity(c, req.SubscriberID, models.ACTIVITY_PASSWORD_RESET, "Password reset via email link")

	return c.JSON(fiber.Map{"success": true, "message": "Password updated. Please log in."})
}

func HandleGetProfile(c *fiber.Ctx) error {
	sub, err := getServices().Billing.Subscriber(c.UserContext(), usercontext.GetSubscriberID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "user": profileView(sub)})
}

// HandleUpdateProfile changes company name and phone only.
func HandleUpdateProfile(c *fiber.Ctx) error {
	var req profileRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	svc := getServices()
	id := usercontext.GetSubscriberID(c)
	if err := svc.Repos.Subscriber.UpdateProfile(c.UserContext(), id, strings.TrimSpace(req.CompanyName), strings.TrimSpace(req.Phone)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respondError(c, billing.ErrSubscriberNotFound)
		}
		return respondError(c, err)
	}

	sub, err := svc.Billing.Subscriber(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "user": profileView(sub)})
}
