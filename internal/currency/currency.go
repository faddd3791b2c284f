// Package currency formats money amounts for display. Amounts flow
// through the system as float64 (matching the products API); formatting
// goes through decimals to avoid float artifacts like 0.1+0.2.
package currency

import "github.com/shopspring/decimal"

// Format renders an amount as a display string with two decimals.
func Format(amount float64) string {
	return "$" + decimal.NewFromFloat(amount).StringFixed(2)
}
