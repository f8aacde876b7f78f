package service

import (
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	onesWords = []string{
		"Zero", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine",
		"Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen", "Sixteen", "Seventeen", "Eighteen", "Nineteen",
	}
	tensWords = []string{"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy", "Eighty", "Ninety"}

	crore = big.NewInt(10000000)
)

// AmountInWords spells an amount in the Indian numbering system,
// e.g. 85900.50 -> "Eighty Five Thousand Nine Hundred Rupees and Fifty Paise Only".
func AmountInWords(amount decimal.Decimal) string {
	amount = amount.Round(2)

	var b strings.Builder
	if amount.IsNegative() {
		b.WriteString("Minus ")
		amount = amount.Abs()
	}

	whole := amount.Truncate(0)
	paise := amount.Sub(whole).Shift(2).IntPart()

	b.WriteString(integerWords(whole.BigInt()))
	b.WriteString(" Rupees")
	if paise > 0 {
		b.WriteString(" and ")
		b.WriteString(belowCrore(paise))
		b.WriteString(" Paise")
	}
	b.WriteString(" Only")
	return b.String()
}

// integerWords has no upper bound: anything above a crore recurses on the crore count.
func integerWords(n *big.Int) string {
	if n.Cmp(crore) < 0 {
		return belowCrore(n.Int64())
	}
	count, rest := new(big.Int).QuoRem(n, crore, new(big.Int))
	words := integerWords(count) + " Crore"
	if rest.Sign() > 0 {
		words += " " + belowCrore(rest.Int64())
	}
	return words
}

func belowCrore(n int64) string {
	if n == 0 {
		return onesWords[0]
	}

	var parts []string
	if lakh := n / 100000; lakh > 0 {
		parts = append(parts, belowHundred(lakh), "Lakh")
		n %= 100000
	}
	if thousand := n / 1000; thousand > 0 {
		parts = append(parts, belowHundred(thousand), "Thousand")
		n %= 1000
	}
	if hundred := n / 100; hundred > 0 {
		parts = append(parts, onesWords[hundred], "Hundred")
		n %= 100
	}
	if n > 0 {
		parts = append(parts, belowHundred(n))
	}
	return strings.Join(parts, " ")
}

func belowHundred(n int64) string {
	if n < 20 {
		return onesWords[n]
	}
	if n%10 == 0 {
		return tensWords[n/10]
	}
	return tensWords[n/10] + " " + onesWords[n%10]
}
