package apiv1

import (
	"encoding/json"
	"math/rand/v2"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/SupplierComply/internal/pkg/gs1"
)

func newTestApp() *fiber.App {
	server := NewAPIServer(gs1.NewGenerator(5, rand.New(rand.NewPCG(1, 2))))
	server.now = func() time.Time { return time.Date(2026, 5, 20, 10, 0, 0, 0, time.UTC) }

	app := fiber.New()
	RegisterHandlers(app.Group("/api/v1"), server)
	return app
}

func call(t *testing.T, app *fiber.App, method, path, body string, out interface{}) int {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestGetPing(t *testing.T) {
	var pong Pong
	status := call(t, newTestApp(), fiber.MethodGet, "/api/v1/ping", "", &pong)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "pong", pong.Ping)
}

func TestGetGtinGenerate(t *testing.T) {
	app := newTestApp()

	var out GTIN
	require.Equal(t, fiber.StatusOK, call(t, app, fiber.MethodGet, "/api/v1/gtin/generate", "", &out))
	assert.NoError(t, gs1.ValidateGTIN(out.Gtin))
	assert.Equal(t, byte('5'), out.Gtin[0])

	require.Equal(t, fiber.StatusOK, call(t, app, fiber.MethodGet, "/api/v1/gtin/generate?indicator=3", "", &out))
	assert.Equal(t, byte('3'), out.Gtin[0])

	assert.Equal(t, fiber.StatusBadRequest, call(t, app, fiber.MethodGet, "/api/v1/gtin/generate?indicator=12", "", nil))
}

func TestGetGtinValidate(t *testing.T) {
	app := newTestApp()

	var ok GTINValidation
	require.Equal(t, fiber.StatusOK, call(t, app, fiber.MethodGet, "/api/v1/gtin/validate/10012345678902", "", &ok))
	assert.True(t, ok.Valid)
	assert.Nil(t, ok.Error)

	var bad GTINValidation
	require.Equal(t, fiber.StatusOK, call(t, app, fiber.MethodGet, "/api/v1/gtin/validate/10012345678909", "", &bad))
	assert.False(t, bad.Valid)
	require.NotNil(t, bad.ExpectedCheckDigit)
	assert.Equal(t, 2, *bad.ExpectedCheckDigit)
}

func TestPostGs1Compose(t *testing.T) {
	app := newTestApp()

	var comp Composition
	status := call(t, app, fiber.MethodPost, "/api/v1/gs1/compose",
		`{"gtin":"10012345678902","batch":"LOT1","expiry_date":"2026-12-31","quantity":6}`, &comp)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "(01)10012345678902(10)LOT1(17)261231(30)6", comp.Display)
	assert.Equal(t, "10012345678902LOT12612316", comp.Payload)

	var e Error
	status = call(t, app, fiber.MethodPost, "/api/v1/gs1/compose", `{"gtin":"10012345678902","expiry_date":"2020-01-01"}`, &e)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Equal(t, "invalid_element", e.Error)

	e = Error{}
	status = call(t, app, fiber.MethodPost, "/api/v1/gs1/compose", `{"gtin":"10012345678902","batch":"LOTé1"}`, &e)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Equal(t, "invalid_element", e.Error)

	assert.Equal(t, fiber.StatusBadRequest, call(t, app, fiber.MethodPost, "/api/v1/gs1/compose", `{}`, nil))
	assert.Equal(t, fiber.StatusBadRequest, call(t, app, fiber.MethodPost, "/api/v1/gs1/compose", `{"gtin":"10012345678902","expiry_date":"tomorrow"}`, nil))
}
