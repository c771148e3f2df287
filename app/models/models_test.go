package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSubscriber(t *testing.T) {
	sub, err := NewSubscriber("  Owner@Example.COM ", "longenough", " Acme Ltd ", "")
	require.NoError(t, err)

	assert.Equal(t, "owner@example.com", sub.Email)
	assert.Equal(t, "Acme Ltd", sub.CompanyName)
	assert.Equal(t, ROLE_USER, sub.Role)
	assert.NotEqual(t, "longenough", sub.Password)
	assert.True(t, sub.CheckPassword("longenough"))
	assert.False(t, sub.CheckPassword("wrong"))
	assert.False(t, sub.IsAdmin())
}

func TestNewSubscriber_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		company  string
	}{
		{"short password", "a@example.com", "short", "Acme"},
		{"bad email", "not-an-email", "longenough", "Acme"},
		{"missing company", "a@example.com", "longenough", " "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSubscriber(tt.email, tt.password, tt.company, "")
			assert.Error(t, err)
		})
	}
}

func TestProduct_ExpiryStatus(t *testing.T) {
	now := time.Date(2026, 5, 20, 18, 30, 0, 0, time.UTC)
	day := func(offset int) *time.Time {
		d := time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
		return &d
	}

	tests := []struct {
		expiry *time.Time
		want   string
	}{
		{nil, EXPIRY_UNKNOWN},
		{day(-1), EXPIRY_EXPIRED},
		{day(0), EXPIRY_CRITICAL},
		{day(30), EXPIRY_CRITICAL},
		{day(31), EXPIRY_WARNING},
		{day(60), EXPIRY_WARNING},
		{day(90), EXPIRY_ATTENTION},
		{day(91), EXPIRY_GOOD},
	}
	for _, tt := range tests {
		p := Product{ExpiryDate: tt.expiry}
		assert.Equal(t, tt.want, p.ExpiryStatus(now))
	}

	days, ok := (&Product{ExpiryDate: day(12)}).DaysUntilExpiry(now)
	assert.True(t, ok)
	assert.Equal(t, 12, days)
}

func TestPaymentClaim_IsPending(t *testing.T) {
	assert.True(t, (&PaymentClaim{Status: CLAIM_STATUS_PENDING}).IsPending())
	assert.False(t, (&PaymentClaim{Status: CLAIM_STATUS_CONFIRMED}).IsPending())
}
