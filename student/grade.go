package student

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrOutOfRange = errors.New("grade point out of range")
	ErrStep       = errors.New("grade point has more than two decimals")
	ErrMissing    = errors.New("value is required")
	ErrNotNumber  = errors.New("grade point is not a number")
)

var (
	MinGrade     = decimal.Zero
	MaxGrade     = decimal.NewFromInt(4)
	DefaultGrade = decimal.NewFromInt(3)
	GradeStep    = decimal.New(1, -2)
)

// gradePattern is plain decimal notation only. Exponents are refused before
// a decimal is built, since comparing one with a huge exponent allocates a
// number of that many digits.
var gradePattern = regexp.MustCompile(`^-?[0-9]{1,6}(\.[0-9]{1,6})?$`)

// maxExponent bounds the decimals CheckGrade will compare.
const maxExponent = 6

// ParseGrade accepts "3", "3.5", "3,50" and similar; the value must lie in
// [0.00, 4.00] and be a multiple of 0.01.
func ParseGrade(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(strings.Replace(raw, ",", ".", 1))
	if raw == "" {
		return decimal.Zero, ErrMissing
	}
	if !gradePattern.MatchString(raw) {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrNotNumber, truncate(raw))
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrNotNumber, truncate(raw))
	}
	return d, CheckGrade(d)
}

func CheckGrade(d decimal.Decimal) error {
	if exp := d.Exponent(); exp > maxExponent || exp < -maxExponent {
		return fmt.Errorf("%w: not in [%s, %s]", ErrOutOfRange, MinGrade.StringFixed(2), MaxGrade.StringFixed(2))
	}
	if d.LessThan(MinGrade) || d.GreaterThan(MaxGrade) {
		return fmt.Errorf("%w: %s not in [%s, %s]", ErrOutOfRange, d.String(), MinGrade.StringFixed(2), MaxGrade.StringFixed(2))
	}
	if !d.Mod(GradeStep).IsZero() {
		return fmt.Errorf("%w: %s", ErrStep, d.String())
	}
	return nil
}

func truncate(raw string) string {
	const limit = 16
	if len(raw) <= limit {
		return raw
	}
	return raw[:limit] + "..."
}
