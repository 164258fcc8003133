// Package core provides the domain model shared by every component:
// transactions, categories, money amounts, and the derived summary types.
//
// This file handles parsing and formatting of monetary amounts. Internal
// arithmetic is always integer cents; decimals appear only at the parse
// and render boundaries so totals reconcile exactly with their breakdowns.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a raw statement amount into signed cents.
//
// It tolerates the formats bank exports actually contain: a leading sign,
// currency symbols ($, €, £), thousands separators, surrounding whitespace,
// and accounting-style parentheses for negatives. Anything left that is not
// a plain decimal number is rejected with ErrInvalidAmount. The third and
// later fraction digits are rounded half away from zero.
//
// Examples:
//
//	ParseAmount("-45.67")      -> Money{-4567}
//	ParseAmount("$1,234.50")   -> Money{123450}
//	ParseAmount("(12.30)")     -> Money{-1230}
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}

	// Accounting notation: (12.34) means -12.34.
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	// Strip currency symbols and thousands separators.
	replacer := strings.NewReplacer("$", "", "€", "", "£", "", ",", "", " ", "")
	s = replacer.Replace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	if negative {
		d = d.Neg()
	}

	cents := d.Shift(2).Round(0).IntPart()
	return Money{Cents: cents}, nil
}

// Decimal returns the amount as an exact two-fraction-digit decimal.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// Float64 renders the amount for the JSON boundary. Cents always convert
// exactly, so the two-digit rounding guaranteed to API consumers holds.
func (m Money) Float64() float64 {
	f, _ := m.Decimal().Float64()
	return f
}

// Dollars formats the magnitude with a dollar sign for answer text,
// e.g. Money{-12345} -> "$123.45".
func (m Money) Dollars() string {
	return "$" + m.Magnitude().Decimal().StringFixed(2)
}
