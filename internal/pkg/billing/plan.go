package billing

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	paymentCodePrefix      = "SC"
	maxConfirmationCodeLen = 20
	defaultHistoryPerPage  = 50
	maxHistoryPerPage      = 200
)

// nextPaymentCode returns the code following last. An empty or unparsable
// last code starts the sequence at SC001.
func nextPaymentCode(last string) string {
	n := 0
	if digits, ok := strings.CutPrefix(strings.ToUpper(strings.TrimSpace(last)), paymentCodePrefix); ok {
		if v, err := strconv.Atoi(digits); err == nil && v > 0 {
			n = v
		}
	}
	return fmt.Sprintf("%s%03d", paymentCodePrefix, n+1)
}

func normalizeConfirmationCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func normalizePaymentCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func normalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultHistoryPerPage
	}
	if perPage > maxHistoryPerPage {
		perPage = maxHistoryPerPage
	}
	return page, perPage
}

func pageCount(total int64, perPage int) int {
	if total == 0 {
		return 0
	}
	return int((total + int64(perPage) - 1) / int64(perPage))
}
