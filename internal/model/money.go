package model

import "github.com/shopspring/decimal"

// Backends exchange money as JSON numbers, not quoted strings.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// Percent is the divisor turning a percentage rate into a fraction.
var Percent = decimal.NewFromInt(100)

// DecimalPtr is a convenience for populating optional rates.
func DecimalPtr(d decimal.Decimal) *decimal.Decimal {
	return &d
}

// Bounds on user-supplied numbers. Anything wider is refused before any
// arithmetic, since rescaling a decimal with a huge exponent never finishes.
const (
	MaxIntegerDigits  = 15
	MaxFractionDigits = 10
	MaxLineItems      = 100
)

// WithinBounds reports whether d has at most MaxIntegerDigits integer digits
// and MaxFractionDigits fraction digits. It only inspects the exponent and
// coefficient, so it is safe on adversarial values.
func WithinBounds(d decimal.Decimal) bool {
	exp := d.Exponent()
	if exp < -MaxFractionDigits || exp > MaxIntegerDigits {
		return false
	}
	coef := d.Coefficient()
	if coef.BitLen() > 128 {
		return false
	}
	return len(coef.Abs(coef).String())+int(exp) <= MaxIntegerDigits
}
