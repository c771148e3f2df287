// Package gs1 implements the GS1 identifier rules used by the barcode engine:
// the Modulo-10 check digit, GTIN-14 generation and validation, and
// Application Identifier element strings.
package gs1

import "errors"

// PayloadLength is the number of digits the check digit is computed over.
const PayloadLength = 13

// ErrInvalidInput is returned when a check digit payload is not exactly
// 13 ASCII digits.
var ErrInvalidInput = errors.New("gs1: payload must be 13 numeric characters")

// CheckDigit computes the GS1 Modulo-10 check digit for a 13-digit payload.
// Digits at even positions (counted from the left, starting at 0) weigh 3,
// digits at odd positions weigh 1.
func CheckDigit(payload string) (int, error) {
	if len(payload) != PayloadLength || !isNumeric(payload) {
		return 0, ErrInvalidInput
	}

	sum := 0
	for i := 0; i < len(payload); i++ {
		d := int(payload[i] - '0')
		if i%2 == 0 {
			sum += d * 3
		} else {
			sum += d
		}
	}
	return (10 - sum%10) % 10, nil
}

func isNumeric(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
