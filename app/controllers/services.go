package controllers

import (
	"context"
	"time"

	"github.com/ManuelReschke/SupplierComply/app/models"
	"github.com/ManuelReschke/SupplierComply/app/repository"
	"github.com/ManuelReschke/SupplierComply/internal/pkg/barcode"
	"github.com/ManuelReschke/SupplierComply/internal/pkg/billing"
	"github.com/ManuelReschke/SupplierComply/internal/pkg/jobqueue"
)

// ResetTokens issues and checks password reset tokens.
type ResetTokens interface {
	Issue(ctx context.Context, subscriberID uint) (string, error)
	Verify(ctx context.Context, subscriberID uint, token string) error
	Consume(ctx context.Context, subscriberID uint) error
	TTL() time.Duration
}

// ResetMailer delivers reset links.
type ResetMailer interface {
	PasswordReset(sub *models.Subscriber, resetURL string, ttl time.Duration)
}

// CaptchaVerifier checks a human-verification token.
type CaptchaVerifier interface {
	Verify(ctx context.Context, token string) error
}

// MailBacklog reports the state of the outgoing mail queue.
type MailBacklog interface {
	GetQueueSize(ctx context.Context) (int64, error)
	GetProcessingSize(ctx context.Context) (int64, error)
	GetJobStats(ctx context.Context) (map[jobqueue.JobStatus]int64, error)
}

// Services bundles what the handlers need. It is wired once in main.
// BaseURL prefixes links in outgoing mail. Captcha is optional; nil skips the
// check on register and forgot-password. Without MailQueue the admin
// dashboard leaves out the mail backlog.
type Services struct {
	Billing   *billing.Service
	Barcodes  *barcode.Service
	Repos     *repository.Repositories
	Resets    ResetTokens
	Mailer    ResetMailer
	Captcha   CaptchaVerifier
	MailQueue MailBacklog
	BaseURL   string
}

var services *Services

func Setup(s *Services) {
	services = s
}

func getServices() *Services {
	if services == nil {
		panic("controllers: Setup was not called")
	}
	return services
}

func now() time.Time {
	return getServices().Billing.Now()
}
