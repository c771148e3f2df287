package controllers

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/ManuelReschke/SupplierComply/internal/pkg/barcode"
	"github.com/ManuelReschke/SupplierComply/internal/pkg/billing"
	"github.com/ManuelReschke/SupplierComply/internal/pkg/gs1"
	"github.com/ManuelReschke/SupplierComply/internal/pkg/passwordreset"
	"github.com/ManuelReschke/SupplierComply/internal/pkg/quota"
	"github.com/ManuelReschke/SupplierComply/internal/pkg/usercontext"
)

var validate = validator.New()

// parseBody decodes the JSON body into dst and runs struct validation. The
// returned error is ready for respondError.
func parseBody(c *fiber.Ctx, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return badRequest("invalid request body")
	}
	if err := validate.Struct(dst); err != nil {
		return badRequest(validationMessage(err))
	}
	return nil
}

// validationMessage turns the first field error into a readable sentence.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return "invalid email address"
	case "min":
		return field + " must be at least " + fe.Param() + " characters"
	case "max":
		return field + " must be at most " + fe.Param() + " characters"
	default:
		return field + " is invalid"
	}
}

type httpError struct {
	status  int
	message string
}

func (e *httpError) Error() string { return e.message }

func badRequest(message string) error {
	return &httpError{status: fiber.StatusBadRequest, message: message}
}

// respondError maps domain errors to HTTP responses.
func respondError(c *fiber.Ctx, err error) error {
	var (
		exceeded  *quota.ExceededError
		verrs     validator.ValidationErrors
		formatErr *gs1.FormatError
		checksum  *gs1.ChecksumMismatchError
		expired   *gs1.ExpiredDateError
		fieldErr  *gs1.FieldError
		he        *httpError
	)

	switch {
	case errors.As(err, &he):
		return c.Status(he.status).JSON(fiber.Map{"success": false, "error": he.message})
	case errors.As(err, &exceeded):
		return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{
			"success":          false,
			"error":            "Monthly barcode limit reached. Upgrade to continue.",
			"upgrade_required": true,
			"limit":            exceeded.Limit,
			"used":             exceeded.Used,
		})
	case errors.Is(err, barcode.ErrAccessDenied):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success":          false,
			"error":            "Your trial has ended. Please complete payment to continue.",
			"upgrade_required": true,
		})
	case errors.Is(err, billing.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"success": false, "error": err.Error()})
	case errors.Is(err, billing.ErrSubscriberNotFound), errors.Is(err, billing.ErrClaimNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": err.Error()})
	case errors.Is(err, billing.ErrEmailTaken),
		errors.Is(err, billing.ErrDuplicatePendingClaim),
		errors.Is(err, billing.ErrAlreadyPaid),
		errors.Is(err, billing.ErrClaimNotPending):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"success": false, "error": err.Error()})
	case errors.As(err, &verrs):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": validationMessage(err)})
	case errors.As(err, &formatErr), errors.As(err, &checksum), errors.As(err, &expired), errors.As(err, &fieldErr),
		errors.Is(err, gs1.ErrInvalidInput),
		errors.Is(err, barcode.ErrNameRequired),
		errors.Is(err, billing.ErrEmptyConfirmationCode),
		errors.Is(err, billing.ErrConfirmationCodeTooLong),
		errors.Is(err, billing.ErrInvalidTrialDays),
		errors.Is(err, billing.ErrPaymentCodeRequired),
		errors.Is(err, passwordreset.ErrInvalidToken):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": err.Error()})
	}

	log.Errorf("[HTTP] %s %s failed: %v", c.Method(), c.Path(), err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "internal server error"})
}

// adminActor derives the reconciliation capability from the session.
func adminActor(c *fiber.Ctx) billing.AdminActor {
	uc := usercontext.GetUserContext(c)
	return billing.AdminActor{ID: uc.SubscriberID, IsAdmin: uc.IsLoggedIn && uc.IsAdmin}
}

// pagination reads page and per_page, clamping per_page to maxPerPage.
func pagination(c *fiber.Ctx, defaultPerPage, maxPerPage int) (page, perPage int) {
	page = c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	perPage = c.QueryInt("per_page", defaultPerPage)
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return page, perPage
}

func pageCount(total int64, perPage int) int {
	if perPage <= 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(perPage)))
}

func formatTimePtr(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

// parseDate accepts YYYY-MM-DD and returns nil for an empty string.
func parseDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(time.DateOnly, value, time.UTC)
	if err != nil {
		return nil, errors.New("dates must use the format YYYY-MM-DD")
	}
	return &t, nil
}
