package utils

import (
	"github.com/shopspring/decimal"
)

// DisplayPrecision is the number of decimal places shown for amounts.
const DisplayPrecision = 2

// FormatAmount renders an amount with two decimals, rounding half away from zero.
// Example: 2.345 returns "2.35", -2.345 returns "-2.35", 10 returns "10.00".
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(DisplayPrecision)
}
