package gs1

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// Application Identifiers supported by the composer.
const (
	AIGTIN     = "01"
	AIBatchLot = "10"
	AIExpiry   = "17"
	AICount    = "30"
)

// ExpiryLayout is the YYMMDD date format of AI (17).
const ExpiryLayout = "060102"

const (
	maxBatchLength    = 20
	maxQuantityDigits = 8
)

// ExpiredDateError is returned when an expiry date lies before the
// composition date.
type ExpiredDateError struct {
	Expiry time.Time
	Today  time.Time
}

func (e *ExpiredDateError) Error() string {
	return fmt.Sprintf("gs1: expiry date %s is before %s", e.Expiry.Format(time.DateOnly), e.Today.Format(time.DateOnly))
}

// FieldError reports an optional element that cannot be encoded.
type FieldError struct {
	AI     string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("gs1: AI (%s): %s", e.AI, e.Reason)
}

// ComposeRequest holds the element values of one GS1 element string.
// Nil or empty optional fields are left out.
type ComposeRequest struct {
	GTIN     string
	Batch    string
	Expiry   *time.Time
	Quantity *int
}

// Composition is the composed element string in two forms.
type Composition struct {
	// Display carries the AI tags, e.g. (01)10012345678902(10)LOT1.
	Display string `json:"display"`
	// Payload is the same data without tags, in the same order.
	Payload string `json:"payload"`
}

// Compose validates req against now and builds the display and payload strings.
func Compose(req ComposeRequest, now time.Time) (Composition, error) {
	if err := ValidateGTIN(req.GTIN); err != nil {
		return Composition{}, err
	}

	var display, payload strings.Builder
	add := func(ai, value string) {
		display.WriteString("(" + ai + ")" + value)
		payload.WriteString(value)
	}

	add(AIGTIN, req.GTIN)

	if batch := strings.TrimSpace(req.Batch); batch != "" {
		if utf8.RuneCountInString(batch) > maxBatchLength {
			return Composition{}, &FieldError{AI: AIBatchLot, Reason: fmt.Sprintf("longer than %d characters", maxBatchLength)}
		}
		if i := strings.IndexFunc(batch, func(r rune) bool { return !isCSet82(r) }); i >= 0 {
			r, _ := utf8.DecodeRuneInString(batch[i:])
			return Composition{}, &FieldError{AI: AIBatchLot, Reason: fmt.Sprintf("character %q is not allowed", r)}
		}
		add(AIBatchLot, batch)
	}

	if req.Expiry != nil {
		if dateOnly(*req.Expiry).Before(dateOnly(now)) {
			return Composition{}, &ExpiredDateError{Expiry: *req.Expiry, Today: now}
		}
		add(AIExpiry, req.Expiry.Format(ExpiryLayout))
	}

	if req.Quantity != nil {
		q := strconv.Itoa(*req.Quantity)
		if *req.Quantity <= 0 {
			return Composition{}, &FieldError{AI: AICount, Reason: "must be positive"}
		}
		if len(q) > maxQuantityDigits {
			return Composition{}, &FieldError{AI: AICount, Reason: fmt.Sprintf("more than %d digits", maxQuantityDigits)}
		}
		add(AICount, q)
	}

	return Composition{Display: display.String(), Payload: payload.String()}, nil
}

// isCSet82 reports whether r belongs to GS1 character set 82, the printable
// ASCII subset allowed in alphanumeric element values.
func isCSet82(r rune) bool {
	switch {
	case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		return true
	}
	return strings.ContainsRune(`!"%&'()*+,-./:;<=>?_`, r)
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
