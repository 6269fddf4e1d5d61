package utils

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var grouping = message.NewPrinter(language.English)

// FormatCurrency renders whole dollars with thousands separators, e.g.
// "$1,234,568". Halves round to even. Nil renders "N/A".
func FormatCurrency(amount *float64) string {
	if amount == nil {
		return "N/A"
	}
	whole := decimal.NewFromFloat(*amount).RoundBank(0).IntPart()
	return "$" + grouping.Sprintf("%d", whole)
}

// FormatPercentage renders two decimals, e.g. "12.34%". Nil renders "N/A".
func FormatPercentage(rate *float64) string {
	if rate == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.2f%%", *rate)
}

// FormatMultiple renders an equity multiple, e.g. "2.98x".
func FormatMultiple(m *float64) string {
	if m == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.2fx", *m)
}

// Money is FormatCurrency for a plain value.
func Money(v float64) string { return FormatCurrency(&v) }
