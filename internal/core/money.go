// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing user-entered amounts and
// formatting decimal amounts for display.
package core

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a user-entered amount into a positive decimal.
//
// Both dot (12.34) and comma (12,34) decimal separators are accepted.
// Empty, non-numeric, zero and negative inputs return ErrInvalidAmount, as do
// values that overflow or underflow a float64 on the wire.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount("12,34") -> 12.34, nil
//	ParseAmount("-1")    -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	if f := d.InexactFloat64(); math.IsInf(f, 0) || f <= 0 {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// FormatAmount renders an amount with two decimals and the rupee sign.
func FormatAmount(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-₹" + d.Neg().StringFixed(2)
	}
	return "₹" + d.StringFixed(2)
}

// Sum totals the amounts of the given expenses.
func Sum(expenses []Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	return total
}
