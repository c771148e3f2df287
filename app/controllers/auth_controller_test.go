package controllers

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/SupplierComply/app/models"
)

func TestRegister_StartsTrialAndLogsIn(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.register(t, "Buyer@Example.com")

	status, body, _ := env.do(t, fiber.MethodGet, "/auth/profile", nil, cookie)
	require.Equal(t, fiber.StatusOK, status, body)

	user := body["user"].(map[string]interface{})
	assert.Equal(t, "buyer@example.com", user["email"])
	assert.Equal(t, "SC001", user["payment_code"])
	assert.Equal(t, "free_trial", user["payment_status"])
	assert.Equal(t, true, user["is_trial_active"])
	assert.Equal(t, float64(14), user["days_remaining"])
}

func TestRegister_Rejections(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "taken@example.com")

	tests := []struct {
		name   string
		body   fiber.Map
		status int
	}{
		{"duplicate email", fiber.Map{"email": "taken@example.com", "password": "supersecret", "company_name": "Acme"}, fiber.StatusConflict},
		{"short password", fiber.Map{"email": "new@example.com", "password": "short", "company_name": "Acme"}, fiber.StatusBadRequest},
		{"invalid email", fiber.Map{"email": "nope", "password": "supersecret", "company_name": "Acme"}, fiber.StatusBadRequest},
		{"missing company", fiber.Map{"email": "new@example.com", "password": "supersecret"}, fiber.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body, _ := env.do(t, fiber.MethodPost, "/auth/register", tt.body, nil)
			assert.Equal(t, tt.status, status, body)
			assert.Equal(t, false, body["success"])
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "user@example.com")

	status, _, _ := env.do(t, fiber.MethodPost, "/auth/login", fiber.Map{"email": "user@example.com", "password": "wrongpass"}, nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _, _ = env.do(t, fiber.MethodPost, "/auth/login", fiber.Map{"email": "ghost@example.com", "password": "supersecret"}, nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, body, resp := env.do(t, fiber.MethodPost, "/auth/login", fiber.Map{"email": "user@example.com", "password": "supersecret"}, nil)
	require.Equal(t, fiber.StatusOK, status, body)
	cookie := sessionCookie(t, resp)

	sub := env.subscriberByEmail(t, "user@example.com")
	require.NotNil(t, sub.LastLoginAt)
	assert.True(t, sub.LastLoginAt.Equal(testNow))

	var actions []string
	require.NoError(t, env.db.Model(&models.Activity{}).Where("subscriber_id = ?", sub.ID).Order("id").Pluck("action", &actions).Error)
	assert.Equal(t, []string{models.ACTIVITY_USER_REGISTERED, models.ACTIVITY_USER_LOGIN}, actions)

	status, _, _ = env.do(t, fiber.MethodPost, "/auth/logout", nil, cookie)
	assert.Equal(t, fiber.StatusOK, status)
	status, _, _ = env.do(t, fiber.MethodGet, "/auth/profile", nil, cookie)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestLogin_LapsedTrialRefused(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "lapsed@example.com")

	sub := env.subscriberByEmail(t, "lapsed@example.com")
	past := testNow.AddDate(0, 0, -1)
	require.NoError(t, env.db.Model(sub).Update("trial_ends_at", past).Error)

	status, body, _ := env.do(t, fiber.MethodPost, "/auth/login", fiber.Map{"email": "lapsed@example.com", "password": "supersecret"}, nil)
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, true, body["upgrade_required"])
	assert.Equal(t, sub.PaymentCode, body["payment_code"])
}

func TestLogin_PendingAllowed(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "pending@example.com")

	sub := env.subscriberByEmail(t, "pending@example.com")
	require.NoError(t, env.db.Model(sub).Updates(map[string]interface{}{"tier": "pending", "trial_ends_at": nil}).Error)

	status, body, _ := env.do(t, fiber.MethodPost, "/auth/login", fiber.Map{"email": "pending@example.com", "password": "supersecret"}, nil)
	assert.Equal(t, fiber.StatusOK, status, body)
}

func TestPasswordReset(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "forgetful@example.com")
	sub := env.subscriberByEmail(t, "forgetful@example.com")

	status, body, _ := env.do(t, fiber.MethodPost, "/auth/forgot-password", fiber.Map{"email": "unknown@example.com"}, nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["success"])
	assert.Empty(t, env.mailer.sent)

	status, _, _ = env.do(t, fiber.MethodPost, "/auth/forgot-password", fiber.Map{"email": "forgetful@example.com"}, nil)
	assert.Equal(t, fiber.StatusOK, status)
	require.Len(t, env.mailer.sent, 1)

	link, err := url.Parse(env.mailer.sent[0].url)
	require.NoError(t, err)
	assert.Equal(t, "app.example.com", link.Host)
	assert.Equal(t, "/reset-password", link.Path)
	token := link.Query().Get("token")
	require.NotEmpty(t, token)

	status, _, _ = env.do(t, fiber.MethodPost, "/auth/reset-password", fiber.Map{"user_id": sub.ID, "token": "bogus", "password": "brandnewpass"}, nil)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _, _ = env.do(t, fiber.MethodPost, "/auth/reset-password", fiber.Map{"user_id": sub.ID, "token": token, "password": "short"}, nil)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, body, _ = env.do(t, fiber.MethodPost, "/auth/reset-password", fiber.Map{"user_id": sub.ID, "token": token, "password": "brandnewpass"}, nil)
	require.Equal(t, fiber.StatusOK, status, body)

	status, _, _ = env.do(t, fiber.MethodPost, "/auth/reset-password", fiber.Map{"user_id": sub.ID, "token": token, "password": "anotherpass"}, nil)
	assert.Equal(t, fiber.StatusBadRequest, status, "tokens are single use")

	status, _, _ = env.do(t, fiber.MethodPost, "/auth/login", fiber.Map{"email": "forgetful@example.com", "password": "brandnewpass"}, nil)
	assert.Equal(t, fiber.StatusOK, status)
}

func TestUpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.register(t, "profile@example.com")

	status, body, _ := env.do(t, fiber.MethodPut, "/auth/profile", fiber.Map{
		"company_name": "  New Name Ltd ",
		"phone":        "0711",
		"email":        "hijack@example.com",
	}, cookie)
	require.Equal(t, fiber.StatusOK, status, body)

	user := body["user"].(map[string]interface{})
	assert.Equal(t, "New Name Ltd", user["company_name"])
	assert.Equal(t, "0711", user["phone"])
	assert.Equal(t, "profile@example.com", user["email"])
}

func TestRequiresLogin(t *testing.T) {
	env := newTestEnv(t)
	for _, path := range []string{"/auth/profile", "/barcode/stats", "/payment/api/status", "/dashboard/api/stats"} {
		status, body, _ := env.do(t, fiber.MethodGet, path, nil, nil)
		assert.Equal(t, fiber.StatusUnauthorized, status, path)
		assert.Equal(t, false, body["success"], path)
	}
}

type fakeCaptcha struct{}

func (fakeCaptcha) Verify(ctx context.Context, token string) error {
	if token != "human" {
		return errors.New("hCaptcha validation failed")
	}
	return nil
}

func TestRegister_Captcha(t *testing.T) {
	env := newTestEnv(t)
	getServices().Captcha = fakeCaptcha{}

	body := fiber.Map{"email": "bot@example.com", "password": "supersecret", "company_name": "Bots Inc"}
	status, _, _ := env.do(t, fiber.MethodPost, "/auth/register", body, nil)
	assert.Equal(t, fiber.StatusBadRequest, status)

	body["h-captcha-response"] = "human"
	status, resp, _ := env.do(t, fiber.MethodPost, "/auth/register", body, nil)
	assert.Equal(t, fiber.StatusCreated, status, resp)
}
