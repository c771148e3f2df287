package controllers

import (
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/SupplierComply/app/models"
)

func TestGenerateBarcode_Trial(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.register(t, "trial@example.com")

	status, body, _ := env.do(t, fiber.MethodPost, "/barcode/generate", fiber.Map{
		"name":         "Maize Flour 2kg",
		"gtin":         "10012345678902",
		"batch_number": "LOT42",
		"expiry_date":  "2026-12-31",
		"quantity":     24,
	}, cookie)
	require.Equal(t, fiber.StatusCreated, status, body)

	assert.Equal(t, "10012345678902", body["gtin"])
	assert.Equal(t, "(01)10012345678902(10)LOT42(17)261231(30)24", body["gs1_string"])
	assert.Equal(t, true, body["watermarked"])
	assert.Contains(t, body["barcode_url"], "/uploads/barcodes/barcodes/user_")

	status, body, _ = env.do(t, fiber.MethodGet, "/barcode/stats", nil, cookie)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(1), body["total_barcodes"])
	assert.Equal(t, float64(1), body["this_month"])
	assert.Equal(t, float64(10), body["limit"])

	status, body, _ = env.do(t, fiber.MethodGet, "/barcode/history", nil, cookie)
	require.Equal(t, fiber.StatusOK, status)
	products := body["products"].([]interface{})
	require.Len(t, products, 1)
	assert.Equal(t, "Maize Flour 2kg", products[0].(map[string]interface{})["name"])
}

func TestGenerateBarcode_Rejections(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.register(t, "bad@example.com")

	tests := []struct {
		name string
		body fiber.Map
	}{
		{"missing name", fiber.Map{"gtin": "10012345678902"}},
		{"bad check digit", fiber.Map{"name": "Tea", "gtin": "10012345678901"}},
		{"short gtin", fiber.Map{"name": "Tea", "gtin": "123"}},
		{"past expiry", fiber.Map{"name": "Tea", "expiry_date": "2026-05-19"}},
		{"bad date format", fiber.Map{"name": "Tea", "expiry_date": "31/12/2026"}},
		{"batch too long", fiber.Map{"name": "Tea", "batch_number": "ABCDEFGHIJKLMNOPQRSTU"}},
		{"zero quantity", fiber.Map{"name": "Tea", "quantity": 0}},
		{"batch with accented letter", fiber.Map{"name": "Gloves", "batch_number": "LOTé1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body, _ := env.do(t, fiber.MethodPost, "/barcode/generate", tt.body, cookie)
			assert.Equal(t, fiber.StatusBadRequest, status, body)
			assert.Equal(t, false, body["success"])
		})
	}

	var count int64
	require.NoError(t, env.db.Model(&models.Product{}).Count(&count).Error)
	assert.Zero(t, count, "rejected encodes leave no product behind")
}

func TestGenerateBarcode_QuotaExceeded(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.register(t, "busy@example.com")
	sub := env.subscriberByEmail(t, "busy@example.com")

	for i := 0; i < 10; i++ {
		require.NoError(t, env.db.Create(&models.Product{
			SubscriberID: sub.ID,
			Name:         fmt.Sprintf("Product %d", i),
			GTIN:         "10012345678902",
		}).Error)
	}

	status, body, _ := env.do(t, fiber.MethodPost, "/barcode/generate", fiber.Map{"name": "One too many"}, cookie)
	assert.Equal(t, fiber.StatusPaymentRequired, status)
	assert.Equal(t, true, body["upgrade_required"])
	assert.Equal(t, float64(10), body["limit"])
	assert.Equal(t, float64(10), body["used"])
}

func TestGenerateBarcode_LapsedTrial(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.register(t, "late@example.com")
	sub := env.subscriberByEmail(t, "late@example.com")
	require.NoError(t, env.db.Model(sub).Update("trial_ends_at", testNow.Add(-1)).Error)

	status, body, _ := env.do(t, fiber.MethodPost, "/barcode/generate", fiber.Map{"name": "Tea"}, cookie)
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, true, body["upgrade_required"])
}

func TestValidateGTIN(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.register(t, "check@example.com")

	status, body, _ := env.do(t, fiber.MethodPost, "/barcode/validate", fiber.Map{"gtin": "10012345678902"}, cookie)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["valid"])

	status, body, _ = env.do(t, fiber.MethodPost, "/barcode/validate", fiber.Map{"gtin": "10012345678901"}, cookie)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, false, body["valid"])
	assert.Equal(t, float64(2), body["expected_check_digit"])

	status, _, _ = env.do(t, fiber.MethodPost, "/barcode/validate", fiber.Map{}, cookie)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestGTINValidation_Format(t *testing.T) {
	result := GTINValidation("12AB")
	assert.Equal(t, false, result["valid"])
	assert.NotContains(t, result, "expected_check_digit")
}
