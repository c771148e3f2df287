// Package notify turns entitlement events into queued mails.
package notify

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/SupplierComply/app/models"
	"github.com/ManuelReschke/SupplierComply/internal/pkg/mail"
)

// EmailQueue accepts mails for asynchronous delivery.
type EmailQueue interface {
	EnqueueEmail(ctx context.Context, msg mail.Message) error
}

// QueueNotifier implements billing.Notifier on top of the job queue. Enqueue
// failures are logged and dropped.
type QueueNotifier struct {
	queue      EmailQueue
	adminEmail string
	timeout    time.Duration
}

func NewQueueNotifier(queue EmailQueue, adminEmail string) *QueueNotifier {
	return &QueueNotifier{queue: queue, adminEmail: adminEmail, timeout: 5 * time.Second}
}

func (n *QueueNotifier) SubscriberRegistered(sub *models.Subscriber) {
	var trialEnds time.Time
	if sub.TrialEndsAt != nil {
		trialEnds = *sub.TrialEndsAt
	}
	n.enqueue(mail.WelcomeMessage(sub.Email, sub.CompanyName, sub.PaymentCode, trialEnds))
}

func (n *QueueNotifier) PaymentClaimed(sub *models.Subscriber, claim *models.PaymentClaim) {
	if n.adminEmail == "" {
		log.Warnf("[Notify] ADMIN_NOTIFY_EMAIL not set, skipping pending claim mail for %s", sub.PaymentCode)
		return
	}
	n.enqueue(mail.AdminPendingMessage(n.adminEmail, sub.Email, sub.CompanyName, claim.PaymentCode, claim.ConfirmationCode, claim.Amount))
}

func (n *QueueNotifier) PaymentConfirmed(sub *models.Subscriber, claim *models.PaymentClaim) {
	var paidUntil time.Time
	if sub.PaidUntil != nil {
		paidUntil = *sub.PaidUntil
	}
	n.enqueue(mail.PaymentConfirmedMessage(sub.Email, sub.CompanyName, paidUntil))
}

// PasswordReset queues the reset link mail.
func (n *QueueNotifier) PasswordReset(sub *models.Subscriber, resetURL string, ttl time.Duration) {
	n.enqueue(mail.PasswordResetMessage(sub.Email, resetURL, ttl))
}

func (n *QueueNotifier) enqueue(msg mail.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
	defer cancel()
	if err := n.queue.EnqueueEmail(ctx, msg); err != nil {
		log.Errorf("[Notify] Failed to queue %q for %s: %v", msg.Subject, msg.To, err)
		return
	}
	log.Debugf("[Notify] Queued %q for %s", msg.Subject, msg.To)
}
