package draft

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"invoicing/internal/model"

	"github.com/shopspring/decimal"
)

// MaxQuantity bounds a single line item's quantity.
const MaxQuantity = 1_000_000

// Plain positional notation only, as an <input type="number"> submits it.
// Exponents are not accepted.
var (
	intPrefix     = regexp.MustCompile(`^[+-]?\d+`)
	decimalPrefix = regexp.MustCompile(`^[+-]?(\d+)?(?:\.(\d*))?`)
)

// parseIntPrefix reads the leading integer of s, ignoring trailing garbage.
// ok is false when there is no leading integer; err is set when it is too large.
func parseIntPrefix(s string) (n int, ok bool, err error) {
	m := intPrefix.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0, false, nil
	}
	if len(strings.TrimLeft(strings.TrimLeft(m, "+-"), "0")) > len(strconv.Itoa(MaxQuantity)) {
		return 0, true, fmt.Errorf("%w: %q is too large", ErrInvalidValue, m)
	}
	n, err = strconv.Atoi(m)
	if err != nil {
		return 0, true, fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	return n, true, nil
}

// parseDecimalPrefix reads the leading decimal number of s, ignoring trailing
// garbage. Digit counts are checked on the text before anything is parsed.
func parseDecimalPrefix(s string) (d decimal.Decimal, ok bool, err error) {
	sub := decimalPrefix.FindStringSubmatch(strings.TrimSpace(s))
	if sub == nil || (sub[1] == "" && sub[2] == "") {
		return decimal.Zero, false, nil
	}
	intDigits := strings.TrimLeft(sub[1], "0")
	fracDigits := strings.TrimRight(sub[2], "0")
	if len(intDigits) > model.MaxIntegerDigits || len(fracDigits) > model.MaxFractionDigits {
		return decimal.Zero, true, fmt.Errorf("%w: %q is out of range", ErrInvalidValue, sub[0])
	}
	// rebuilt without padding zeros so the exponent stays within bounds
	text := intDigits
	if text == "" {
		text = "0"
	}
	if fracDigits != "" {
		text += "." + fracDigits
	}
	if strings.HasPrefix(sub[0], "-") {
		text = "-" + text
	}
	d, err = decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, false, nil
	}
	return d, true, nil
}

// coerceQuantity: non-numeric input is 0, numeric input is at least 1.
func coerceQuantity(s string) (int, error) {
	n, ok, err := parseIntPrefix(s)
	switch {
	case err != nil:
		return 0, err
	case !ok:
		return 0, nil
	case n < 1:
		return 1, nil
	case n > MaxQuantity:
		return 0, fmt.Errorf("%w: quantity above %d", ErrInvalidValue, MaxQuantity)
	}
	return n, nil
}

// coerceMoney: non-numeric or negative input is 0.
func coerceMoney(s string) (decimal.Decimal, error) {
	d, ok, err := parseDecimalPrefix(s)
	if err != nil {
		return decimal.Zero, err
	}
	if !ok || d.IsNegative() {
		return decimal.Zero, nil
	}
	return d, nil
}

// coerceRate parses a percentage without range checks; non-numeric input is 0.
func coerceRate(s string) (decimal.Decimal, error) {
	d, _, err := parseDecimalPrefix(s)
	return d, err
}
