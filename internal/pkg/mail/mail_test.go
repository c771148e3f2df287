package mail

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWelcomeMessage(t *testing.T) {
	trialEnd := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	msg := WelcomeMessage("a@example.com", "Acme <Pharma>", "SC007", trialEnd)

	assert.Equal(t, "a@example.com", msg.To)
	assert.Contains(t, msg.Subject, "SC007")
	assert.Contains(t, msg.HTML, "Acme &lt;Pharma&gt;")
	assert.Contains(t, msg.HTML, "15 Mar 2026")
	assert.Contains(t, msg.Text, "KES 15000")
	assert.Contains(t, msg.Text, "Acme <Pharma>")
}

func TestAdminPendingMessage(t *testing.T) {
	msg := AdminPendingMessage("admin@example.com", "a@example.com", "Acme", "SC001", "QAB12XYZ99", 15000)
	assert.Contains(t, msg.Subject, "SC001")
	assert.Contains(t, msg.Text, "QAB12XYZ99")
	assert.Contains(t, msg.HTML, "KES 15000")
}

func TestPasswordResetMessage(t *testing.T) {
	msg := PasswordResetMessage("a@example.com", "https://app/reset?token=x&id=1", time.Hour)
	assert.Contains(t, msg.HTML, "token=x&amp;id=1")
	assert.Contains(t, msg.Text, "60 minutes")
}

func TestBuildMessage(t *testing.T) {
	cfg := SMTPConfig{Sender: "no-reply@example.com", FromName: "SupplierComply"}
	gm := buildMessage(cfg, PaymentConfirmedMessage("a@example.com", "Acme", time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)))

	var buf bytes.Buffer
	_, err := gm.WriteTo(&buf)
	require.NoError(t, err)
	raw := buf.String()
	assert.Contains(t, raw, "To: a@example.com")
	assert.Contains(t, raw, "text/plain")
	assert.Contains(t, raw, "text/html")
}

func TestSMTPMailer_RequiresRecipient(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{Host: "localhost", Port: 25})
	err := m.Send(context.Background(), Message{Subject: "x"})
	assert.ErrorIs(t, err, ErrNoRecipient)
}
