package utils

import "github.com/shopspring/decimal"

// DisplayAmount rounds half away from zero to the given number of places.
// Use it only when rendering; accumulate with the unrounded values.
func DisplayAmount(amount decimal.Decimal, places int32) string {
	return amount.StringFixed(places)
}
