package mail

import (
	"fmt"
	"html"
	"time"

	"github.com/ManuelReschke/SupplierComply/internal/pkg/entitlements"
)

const dateLayout = "02 Jan 2006"

// WelcomeMessage greets a new subscriber and tells them their payment code.
func WelcomeMessage(to, companyName, paymentCode string, trialEndsAt time.Time) Message {
	company := html.EscapeString(companyName)
	return Message{
		To:      to,
		Subject: "Welcome to SupplierComply - your payment code " + paymentCode,
		HTML: fmt.Sprintf(`<html><body>
<h2>Welcome, %s!</h2>
<p>Your free trial runs until <strong>%s</strong>.</p>
<p>To upgrade, pay KES %d and use this payment code as reference:</p>
<p style="font-size:20px"><strong>%s</strong></p>
<p>Then click "I have paid" in your dashboard and enter the confirmation code you received.</p>
</body></html>`, company, trialEndsAt.Format(dateLayout), entitlements.MonthlyPrice, paymentCode),
		Text: fmt.Sprintf(`Welcome, %s!

Your free trial runs until %s.
To upgrade, pay KES %d and use this payment code as reference: %s
Then click "I have paid" in your dashboard and enter the confirmation code you received.
`, companyName, trialEndsAt.Format(dateLayout), entitlements.MonthlyPrice, paymentCode),
	}
}

// AdminPendingMessage tells the admin mailbox that a claim waits for review.
func AdminPendingMessage(to, subscriberEmail, companyName, paymentCode, confirmationCode string, amount int64) Message {
	return Message{
		To:      to,
		Subject: fmt.Sprintf("Payment claim %s needs confirmation", paymentCode),
		HTML: fmt.Sprintf(`<html><body>
<h2>New payment claim</h2>
<ul>
<li>Subscriber: %s (%s)</li>
<li>Payment code: %s</li>
<li>Confirmation code: %s</li>
<li>Amount: KES %d</li>
</ul>
</body></html>`, html.EscapeString(companyName), html.EscapeString(subscriberEmail), paymentCode, html.EscapeString(confirmationCode), amount),
		Text: fmt.Sprintf("New payment claim\nSubscriber: %s (%s)\nPayment code: %s\nConfirmation code: %s\nAmount: KES %d\n",
			companyName, subscriberEmail, paymentCode, confirmationCode, amount),
	}
}

// PaymentConfirmedMessage tells the subscriber their paid period started.
func PaymentConfirmedMessage(to, companyName string, paidUntil time.Time) Message {
	return Message{
		To:      to,
		Subject: "Your SupplierComply payment was confirmed",
		HTML: fmt.Sprintf(`<html><body>
<h2>Thank you, %s!</h2>
<p>Your payment was confirmed. Unlimited, watermark-free barcodes are active until <strong>%s</strong>.</p>
</body></html>`, html.EscapeString(companyName), paidUntil.Format(dateLayout)),
		Text: fmt.Sprintf("Thank you, %s!\n\nYour payment was confirmed. Unlimited, watermark-free barcodes are active until %s.\n",
			companyName, paidUntil.Format(dateLayout)),
	}
}

// PasswordResetMessage carries the reset link.
func PasswordResetMessage(to, resetURL string, ttl time.Duration) Message {
	return Message{
		To:      to,
		Subject: "Reset your SupplierComply password",
		HTML: fmt.Sprintf(`<html><body>
<h2>Password reset</h2>
<p><a href="%s">Reset your password</a></p>
<p>Or copy this URL into your browser: %s</p>
<p>The link expires in %d minutes. If you did not ask for this, ignore this mail.</p>
</body></html>`, html.EscapeString(resetURL), html.EscapeString(resetURL), int(ttl.Minutes())),
		Text: fmt.Sprintf("Password reset\n\nVisit %s to reset your password.\nThe link expires in %d minutes. If you did not ask for this, ignore this mail.\n",
			resetURL, int(ttl.Minutes())),
	}
}
