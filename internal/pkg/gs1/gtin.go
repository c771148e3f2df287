package gs1

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"
)

const (
	// GTINLength is the length of a GTIN-14.
	GTINLength = 14
	// StandardIndicator is the packaging indicator digit for a standard case.
	StandardIndicator = 1
)

// FormatError reports a GTIN that is not 14 numeric characters.
type FormatError struct {
	Value string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("gs1: invalid GTIN format %q: expected %d digits", e.Value, GTINLength)
}

// ChecksumMismatchError reports a GTIN whose last digit is not the check digit
// of the first 13.
type ChecksumMismatchError struct {
	Expected int
	Actual   int
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("gs1: check digit mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// Generator builds random GTIN-14 values behind a fixed indicator digit.
type Generator struct {
	indicator int

	mu  sync.Mutex
	rng *rand.Rand
}

// NewGenerator creates a generator. A nil rng uses a randomly seeded source.
// Indicators outside 0..9 fall back to StandardIndicator.
func NewGenerator(indicator int, rng *rand.Rand) *Generator {
	if indicator < 0 || indicator > 9 {
		indicator = StandardIndicator
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Generator{indicator: indicator, rng: rng}
}

// Generate returns a new GTIN-14: indicator, 12 random digits, check digit.
func (g *Generator) Generate() string {
	var b strings.Builder
	b.Grow(GTINLength)
	b.WriteByte(byte('0' + g.indicator))

	g.mu.Lock()
	for i := 0; i < PayloadLength-1; i++ {
		b.WriteByte(byte('0' + g.rng.IntN(10)))
	}
	g.mu.Unlock()

	payload := b.String()
	// payload is always 13 digits here
	digit, _ := CheckDigit(payload)
	return payload + strconv.Itoa(digit)
}

var defaultGenerator = NewGenerator(StandardIndicator, nil)

// GenerateGTIN returns a random standard-case GTIN-14.
func GenerateGTIN() string {
	return defaultGenerator.Generate()
}

// ValidateGTIN checks that gtin is 14 digits and ends in the correct check digit.
func ValidateGTIN(gtin string) error {
	if len(gtin) != GTINLength || !isNumeric(gtin) {
		return &FormatError{Value: gtin}
	}

	expected, err := CheckDigit(gtin[:PayloadLength])
	if err != nil {
		return &FormatError{Value: gtin}
	}
	actual := int(gtin[PayloadLength] - '0')
	if expected != actual {
		return &ChecksumMismatchError{Expected: expected, Actual: actual}
	}
	return nil
}
