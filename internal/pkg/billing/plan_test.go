package billing

import "testing"

func TestNextPaymentCode(t *testing.T) {
	tests := []struct {
		last string
		want string
	}{
		{last: "", want: "SC001"},
		{last: "SC001", want: "SC002"},
		{last: "sc009", want: "SC010"},
		{last: "SC099", want: "SC100"},
		{last: "SC999", want: "SC1000"},
		{last: "garbage", want: "SC001"},
	}

	for _, tt := range tests {
		if got := nextPaymentCode(tt.last); got != tt.want {
			t.Fatalf("nextPaymentCode(%q) = %q, want %q", tt.last, got, tt.want)
		}
	}
}

func TestNormalizeConfirmationCode(t *testing.T) {
	if got := normalizeConfirmationCode("  qab12xyz99 "); got != "QAB12XYZ99" {
		t.Fatalf("normalizeConfirmationCode = %q", got)
	}
}

func TestNormalizePage(t *testing.T) {
	page, perPage := normalizePage(0, 0)
	if page != 1 || perPage != defaultHistoryPerPage {
		t.Fatalf("normalizePage(0, 0) = %d, %d", page, perPage)
	}
	if _, perPage := normalizePage(2, 10000); perPage != maxHistoryPerPage {
		t.Fatalf("expected per_page to be capped, got %d", perPage)
	}
	if pageCount(101, 50) != 3 || pageCount(0, 50) != 0 || pageCount(50, 50) != 1 {
		t.Fatalf("unexpected page counts")
	}
}
