package services

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
)

// FormatMoney formats an amount as dollars with thousands separators and
// exactly 2 decimal places, e.g. $1,234.56 or -$80.00. Rounding happens here,
// at render time only.
func FormatMoney(amount float64) string {
	amount = RoundMoney(finite(amount))
	if amount < 0 {
		return "-$" + humanize.FormatFloat("#,###.##", -amount)
	}
	return "$" + humanize.FormatFloat("#,###.##", amount)
}

// FormatPercent renders a markup percentage: whole numbers without decimals.
func FormatPercent(p float64) string {
	return formatQty(p) + "%"
}

// formatQty returns a string representation of the quantity value.
// Whole numbers are formatted without decimals; fractional values get 2 decimal places.
func formatQty(qty float64) string {
	if qty == math.Trunc(qty) {
		return fmt.Sprintf("%.0f", qty)
	}
	return fmt.Sprintf("%.2f", qty)
}

// FormatQty is the exported form of formatQty for views.
func FormatQty(qty float64) string {
	return formatQty(qty)
}
