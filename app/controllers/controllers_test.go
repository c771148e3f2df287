package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	fibersession "github.com/gofiber/fiber/v2/middleware/session"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ManuelReschke/SupplierComply/app/models"
	"github.com/ManuelReschke/SupplierComply/app/repository"
	"github.com/ManuelReschke/SupplierComply/internal/pkg/barcode"
	"github.com/ManuelReschke/SupplierComply/internal/pkg/billing"
	"github.com/ManuelReschke/SupplierComply/internal/pkg/jobqueue"
	"github.com/ManuelReschke/SupplierComply/internal/pkg/middleware"
	"github.com/ManuelReschke/SupplierComply/internal/pkg/passwordreset"
	"github.com/ManuelReschke/SupplierComply/internal/pkg/quota"
	"github.com/ManuelReschke/SupplierComply/internal/pkg/session"
	"github.com/ManuelReschke/SupplierComply/internal/pkg/storage"
	"github.com/ManuelReschke/SupplierComply/internal/pkg/testutil"
)

var testNow = time.Date(2026, 5, 20, 10, 0, 0, 0, time.UTC)

type fakeResets struct {
	tokens map[uint]string
}

func (f *fakeResets) Issue(ctx context.Context, id uint) (string, error) {
	token := "token-" + time.Now().Format("150405.000000000")
	f.tokens[id] = token
	return token, nil
}

func (f *fakeResets) Verify(ctx context.Context, id uint, token string) error {
	if stored, ok := f.tokens[id]; !ok || stored != token {
		return passwordreset.ErrInvalidToken
	}
	return nil
}

func (f *fakeResets) Consume(ctx context.Context, id uint) error {
	delete(f.tokens, id)
	return nil
}

func (f *fakeResets) TTL() time.Duration { return time.Hour }

type sentReset struct {
	email string
	url   string
}

type fakeResetMailer struct {
	sent []sentReset
}

func (f *fakeResetMailer) PasswordReset(sub *models.Subscriber, resetURL string, ttl time.Duration) {
	f.sent = append(f.sent, sentReset{email: sub.Email, url: resetURL})
}

type testEnv struct {
	app    *fiber.App
	db     *gorm.DB
	resets *fakeResets
	mailer *fakeResetMailer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.NewSQLiteDB(t)
	db.NowFunc = func() time.Time { return testNow }
	clock := func() time.Time { return testNow }

	repos := repository.NewRepositories(db)
	store, err := storage.NewLocalStore(t.TempDir(), "/uploads/barcodes")
	require.NoError(t, err)

	enforcer := quota.NewEnforcer(repos.Product, repos.Subscriber, quota.WithClock(clock))
	env := &testEnv{
		db:     db,
		resets: &fakeResets{tokens: map[uint]string{}},
		mailer: &fakeResetMailer{},
	}
	Setup(&Services{
		Billing:  billing.NewServiceFromDB(db, billing.WithClock(clock)),
		Barcodes: barcode.NewService(repos.Subscriber, enforcer, repos.Product, barcode.NewCode128Renderer(), store, barcode.WithClock(clock)),
		Repos:    repos,
		Resets:   env.resets,
		Mailer:   env.mailer,
		BaseURL:  "https://app.example.com/",
	})
	session.UseStore(fibersession.New())
	t.Cleanup(func() {
		services = nil
		session.UseStore(nil)
	})

	app := fiber.New()
	app.Use(middleware.UserContextMiddleware)

	auth := app.Group("/auth")
	auth.Post("/register", HandleRegister)
	auth.Post("/login", HandleLogin)
	auth.Post("/logout", HandleLogout)
	auth.Post("/forgot-password", HandleForgotPassword)
	auth.Post("/reset-password", HandleResetPassword)
	auth.Get("/profile", middleware.RequireAuth, HandleGetProfile)
	auth.Put("/profile", middleware.RequireAuth, HandleUpdateProfile)

	bc := app.Group("/barcode", middleware.RequireAuth)
	bc.Post("/generate", HandleGenerateBarcode)
	bc.Get("/history", HandleBarcodeHistory)
	bc.Get("/stats", HandleBarcodeStats)
	bc.Post("/validate", HandleValidateGTIN)

	pay := app.Group("/payment/api", middleware.RequireAuth)
	pay.Get("/status", HandlePaymentStatus)
	pay.Post("/i-have-paid", HandleClaimPayment)
	pay.Post("/cancel-pending", HandleCancelPending)

	dash := app.Group("/dashboard/api", middleware.RequireAuth)
	dash.Get("/stats", HandleDashboardStats)
	dash.Get("/products", HandleDashboardProducts)
	dash.Get("/expiring", HandleExpiringProducts)
	dash.Get("/activities", HandleDashboardActivities)

	admin := app.Group("/admin/api", middleware.RequireAdmin)
	admin.Get("/dashboard", HandleAdminDashboard)
	admin.Get("/users", HandleAdminUsers)
	admin.Get("/payments/pending", HandleAdminPendingPayments)
	admin.Get("/payments/history", HandleAdminPaymentHistory)
	admin.Post("/payments/confirm", HandleAdminConfirmPayment)
	admin.Post("/users/set-trial", HandleAdminSetTrial)
	admin.Get("/search-payment-code", HandleAdminSearchPaymentCode)
	admin.Get("/activities", HandleAdminActivities)

	env.app = app
	return env
}

// do sends a JSON request and decodes the JSON response.
func (e *testEnv) do(t *testing.T, method, path string, body interface{}, cookie *http.Cookie) (int, map[string]interface{}, *http.Response) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)

	var out map[string]interface{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out, resp
}

func sessionCookie(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()
	for _, ck := range resp.Cookies() {
		if ck.Name == "session_id" {
			return ck
		}
	}
	t.Fatal("response carries no session cookie")
	return nil
}

func (e *testEnv) register(t *testing.T, email string) *http.Cookie {
	t.Helper()
	status, body, resp := e.do(t, fiber.MethodPost, "/auth/register", fiber.Map{
		"email":        email,
		"password":     "supersecret",
		"company_name": "Acme Supplies",
		"phone":        "+254700000000",
	}, nil)
	require.Equal(t, fiber.StatusCreated, status, body)
	return sessionCookie(t, resp)
}

func (e *testEnv) createAdmin(t *testing.T) *http.Cookie {
	t.Helper()
	sub, err := models.NewSubscriber("admin@example.com", "adminsecret", "SupplierComply", "")
	require.NoError(t, err)
	paidUntil := testNow.AddDate(1, 0, 0)
	sub.Role = models.ROLE_ADMIN
	sub.Tier = "paid"
	sub.PaymentCode = "ADMIN"
	sub.PaidUntil = &paidUntil
	require.NoError(t, e.db.Create(sub).Error)

	status, body, resp := e.do(t, fiber.MethodPost, "/auth/login", fiber.Map{
		"email":    "admin@example.com",
		"password": "adminsecret",
	}, nil)
	require.Equal(t, fiber.StatusOK, status, body)
	return sessionCookie(t, resp)
}

func (e *testEnv) subscriberByEmail(t *testing.T, email string) *models.Subscriber {
	t.Helper()
	sub, err := models.FindSubscriberByEmail(e.db, email)
	require.NoError(t, err)
	return sub
}

type fakeMailBacklog struct {
	pending, processing int64
	stats               map[jobqueue.JobStatus]int64
	err                 error
}

func (f fakeMailBacklog) GetQueueSize(context.Context) (int64, error) { return f.pending, f.err }
func (f fakeMailBacklog) GetProcessingSize(context.Context) (int64, error) {
	return f.processing, f.err
}
func (f fakeMailBacklog) GetJobStats(context.Context) (map[jobqueue.JobStatus]int64, error) {
	return f.stats, f.err
}
