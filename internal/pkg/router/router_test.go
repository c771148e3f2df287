package router

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	fibersession "github.com/gofiber/fiber/v2/middleware/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/SupplierComply/internal/pkg/session"
)

func TestInstallRouter_Routes(t *testing.T) {
	session.UseStore(fibersession.New())
	t.Cleanup(func() { session.UseStore(nil) })

	app := fiber.New()
	InstallRouter(app, nil)

	registered := map[string]bool{}
	for _, r := range app.GetRoutes(true) {
		registered[r.Method+" "+r.Path] = true
	}
	for _, route := range []string{
		"POST /auth/register",
		"POST /auth/login",
		"POST /auth/logout",
		"POST /auth/forgot-password",
		"POST /auth/reset-password",
		"GET /auth/profile",
		"PUT /auth/profile",
		"POST /barcode/generate",
		"GET /barcode/history",
		"GET /barcode/stats",
		"POST /barcode/validate",
		"GET /payment/api/status",
		"POST /payment/api/i-have-paid",
		"POST /payment/api/cancel-pending",
		"GET /dashboard/api/stats",
		"GET /dashboard/api/products",
		"GET /dashboard/api/expiring",
		"GET /dashboard/api/activities",
		"GET /admin/api/dashboard",
		"GET /admin/api/users",
		"POST /admin/api/users/set-trial",
		"GET /admin/api/payments/pending",
		"GET /admin/api/payments/history",
		"POST /admin/api/payments/confirm",
		"GET /admin/api/search-payment-code",
		"GET /admin/api/activities",
		"GET /api/v1/ping",
		"GET /api/v1/gtin/generate",
		"GET /api/v1/gtin/validate/:gtin",
		"POST /api/v1/gs1/compose",
		"GET /health",
	} {
		assert.True(t, registered[route], "missing route %s", route)
	}
}

func TestInstallRouter_GuardsAdmin(t *testing.T) {
	session.UseStore(fibersession.New())
	t.Cleanup(func() { session.UseStore(nil) })

	app := fiber.New()
	InstallRouter(app, nil)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/admin/api/dashboard", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/api/v1/ping", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
