// Package money holds the rounding and formatting rules shared by
// invoice computation and PDF rendering. Amounts are rounded to two
// decimals before formatting, never during intermediate arithmetic.
package money

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.French)

// Round2 rounds an amount to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Format renders an amount with the French locale and two decimals,
// e.g. 1234.5 -> "1 234,50".
func Format(v float64) string {
	return printer.Sprintf("%.2f", Round2(v))
}

// FormatEUR renders an amount followed by the euro sign.
func FormatEUR(v float64) string {
	return Format(v) + " €"
}
