// Package core holds the ledger domain model and the input validators the
// CLI runs before touching the store.
//
// This file contains amount parsing. Amounts are shopspring decimals so sums
// and averages never pick up binary floating point drift.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount strictly parses a signed decimal number.
//
// Surrounding whitespace is ignored and exponent notation is accepted.
// Anything else, including NaN and infinities, is rejected.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34, true
//	ParseAmount("-4.50")  -> -4.5, true
//	ParseAmount("1e3")    -> 1000, true
//	ParseAmount("12,34")  -> 0, false
func ParseAmount(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
