package apiv1

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/SupplierComply/internal/pkg/gs1"
)

var validate = validator.New()

// APIServer implements the ServerInterface
type APIServer struct {
	generator *gs1.Generator
	now       func() time.Time
}

// NewAPIServer creates a new API server instance. A nil generator uses the
// standard indicator.
func NewAPIServer(generator *gs1.Generator) *APIServer {
	if generator == nil {
		generator = gs1.NewGenerator(gs1.StandardIndicator, nil)
	}
	return &APIServer{generator: generator, now: time.Now}
}

// GetPing handles the ping endpoint
func (s *APIServer) GetPing(c *fiber.Ctx) error {
	response := Pong{
		Ping: "pong",
	}

	return c.Status(fiber.StatusOK).JSON(response)
}

// GetGtinGenerate returns a random GTIN-14. The optional indicator overrides
// the server default for this call.
func (s *APIServer) GetGtinGenerate(c *fiber.Ctx, params GetGtinGenerateParams) error {
	generator := s.generator
	if params.Indicator != nil {
		if *params.Indicator < 0 || *params.Indicator > 9 {
			return c.Status(fiber.StatusBadRequest).JSON(Error{Error: "bad_request", Message: "indicator must be a single digit"})
		}
		generator = gs1.NewGenerator(*params.Indicator, nil)
	}
	return c.JSON(GTIN{Gtin: generator.Generate()})
}

func (s *APIServer) GetGtinValidate(c *fiber.Ctx, gtin string) error {
	result := GTINValidation{Gtin: gtin, Valid: true}
	if err := gs1.ValidateGTIN(gtin); err != nil {
		msg := err.Error()
		result.Valid = false
		result.Error = &msg

		var mismatch *gs1.ChecksumMismatchError
		if errors.As(err, &mismatch) {
			result.ExpectedCheckDigit = &mismatch.Expected
		}
	}
	return c.JSON(result)
}

// PostGs1Compose builds the element string without rendering or storing anything.
func (s *APIServer) PostGs1Compose(c *fiber.Ctx) error {
	var body ComposeRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(Error{Error: "bad_request", Message: "invalid request body"})
	}
	if err := validate.Struct(body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(Error{Error: "bad_request", Message: err.Error()})
	}

	req := gs1.ComposeRequest{GTIN: body.Gtin, Quantity: body.Quantity}
	if body.Batch != nil {
		req.Batch = *body.Batch
	}
	if body.ExpiryDate != nil && *body.ExpiryDate != "" {
		expiry, err := time.ParseInLocation(time.DateOnly, *body.ExpiryDate, time.UTC)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(Error{Error: "bad_request", Message: "expiry_date must use the format YYYY-MM-DD"})
		}
		req.Expiry = &expiry
	}

	comp, err := gs1.Compose(req, s.now())
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(Error{Error: "invalid_element", Message: err.Error()})
	}
	return c.JSON(Composition{Display: comp.Display, Payload: comp.Payload})
}
