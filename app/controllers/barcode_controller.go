package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/SupplierComply/internal/pkg/barcode"
	"github.com/ManuelReschke/SupplierComply/internal/pkg/gs1"
	"github.com/ManuelReschke/SupplierComply/internal/pkg/usercontext"
)

type generateRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	GTIN        string `json:"gtin"`
	BatchNumber string `json:"batch_number" validate:"max=20"`
	ExpiryDate  string `json:"expiry_date"`
	Quantity    *int   `json:"quantity"`
}

type validateRequest struct {
	GTIN string `json:"gtin" validate:"required"`
}

// HandleGenerateBarcode encodes one product for the logged-in subscriber.
func HandleGenerateBarcode(c *fiber.Ctx) error {
	var req generateRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	expiry, err := parseDate(req.ExpiryDate)
	if err != nil {
		return respondError(c, badRequest(err.Error()))
	}

	result, err := getServices().Barcodes.Encode(c.UserContext(), usercontext.GetSubscriberID(c), barcode.EncodeRequest{
		Name:     req.Name,
		GTIN:     req.GTIN,
		Batch:    req.BatchNumber,
		Expiry:   expiry,
		Quantity: req.Quantity,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":     true,
		"product":     result.Product,
		"gtin":        result.Product.GTIN,
		"gs1_string":  result.Composition.Display,
		"barcode_url": result.Product.BarcodeURL,
		"watermarked": result.Watermarked,
	})
}

func HandleBarcodeHistory(c *fiber.Ctx) error {
	page, perPage := pagination(c, 20, 100)
	history, err := getServices().Barcodes.History(c.UserContext(), usercontext.GetSubscriberID(c), page, perPage)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success":      true,
		"products":     history.Products,
		"total":        history.Total,
		"pages":        history.Pages,
		"current_page": history.CurrentPage,
	})
}

func HandleBarcodeStats(c *fiber.Ctx) error {
	stats, err := getServices().Barcodes.Stats(c.UserContext(), usercontext.GetSubscriberID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success":        true,
		"total_barcodes": stats.Total,
		"this_month":     stats.ThisMonth,
		"limit":          stats.Limit,
	})
}

// HandleValidateGTIN answers 200 for both outcomes; valid tells them apart.
func HandleValidateGTIN(c *fiber.Ctx) error {
	var req validateRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	return c.JSON(GTINValidation(req.GTIN))
}

// GTINValidation describes the outcome of gs1.ValidateGTIN.
func GTINValidation(gtin string) fiber.Map {
	err := gs1.ValidateGTIN(gtin)
	if err == nil {
		return fiber.Map{"success": true, "gtin": gtin, "valid": true}
	}

	result := fiber.Map{"success": true, "gtin": gtin, "valid": false, "error": err.Error()}
	var mismatch *gs1.ChecksumMismatchError
	if errors.As(err, &mismatch) {
		result["expected_check_digit"] = mismatch.Expected
	}
	return result
}
