package web

import (
	"html/template"
	"strings"

	"invoicing/internal/model"
	"invoicing/internal/service"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const rupee = "₹"

// FuncMap returns the template helpers shared by every page.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"money":    formatMoney,
		"moneyRaw": formatMoneyRaw,
		"rate":     formatRate,
		"date":     formatDate,
		"words":    service.AmountInWords,
		"title":    titleCase,
		"add":      func(a, b int) int { return a + b },
		"isSplit":  func(m model.TaxMode) bool { return m == model.TaxModeSplit },
	}
}

// formatMoney renders an amount with the rupee sign, e.g. 123456.5 -> "₹1,23,456.50".
func formatMoney(v any) string {
	return rupee + formatMoneyRaw(v)
}

// formatMoneyRaw rounds to two places and groups digits the Indian way:
// the last three digits, then pairs.
func formatMoneyRaw(v any) string {
	d := toDecimal(v)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}

	intPart, decPart, _ := strings.Cut(d.StringFixed(service.DisplayPlaces), ".")

	var b strings.Builder
	head := len(intPart) - 3
	if head > 0 {
		for i, c := range intPart[:head] {
			if i > 0 && (head-i)%2 == 0 {
				b.WriteByte(',')
			}
			b.WriteRune(c)
		}
		b.WriteByte(',')
		b.WriteString(intPart[head:])
	} else {
		b.WriteString(intPart)
	}

	return sign + b.String() + "." + decPart
}

// formatRate prints a percentage without trailing zeros; nil prints as empty.
func formatRate(v *decimal.Decimal) string {
	if v == nil {
		return ""
	}
	return v.String()
}

func formatDate(v any) string {
	switch d := v.(type) {
	case model.Date:
		return d.String()
	case *model.Date:
		if d == nil {
			return ""
		}
		return d.String()
	default:
		return ""
	}
}

func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}

func toDecimal(v any) decimal.Decimal {
	switch d := v.(type) {
	case decimal.Decimal:
		return d
	case *decimal.Decimal:
		if d == nil {
			return decimal.Zero
		}
		return *d
	case int:
		return decimal.NewFromInt(int64(d))
	case int64:
		return decimal.NewFromInt(d)
	case float64:
		return decimal.NewFromFloat(d)
	case string:
		parsed, err := decimal.NewFromString(d)
		if err != nil {
			return decimal.Zero
		}
		return parsed
	default:
		return decimal.Zero
	}
}
