// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts and rates from
// strings and for rendering euro amounts for display.
package core

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an amount in euro cents.
type Money struct {
	Cents int64
}

// ParseDecimalToCents converts a decimal string to cents with proper rounding.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and performs
// half-up rounding on the third decimal place. The result is always positive cents.
// Returns an error for invalid formats, negative values, or zero amounts.
//
// Examples:
//
//	ParseDecimalToCents("300000") -> 30000000, nil
//	ParseDecimalToCents("12,34") -> 1234, nil
//	ParseDecimalToCents("12.345") -> 1235, nil (rounds up)
//	ParseDecimalToCents("12.344") -> 1234, nil (rounds down)
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	// ASCII digits only: the fraction is read byte by byte below
	for _, r := range intPart + fracPart {
		if r < '0' || r > '9' {
			return 0, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	// Prevent overflow when multiplying by 100
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv >= maxSafeInt64 {
		return 0, ErrInvalidAmount
	}
	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	cents := iv*100 + fracCents
	if cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return cents, nil
}

// ParseRate parses an annual interest rate in percent. Zero is allowed,
// negative values are not. A trailing "%" is ignored.
func ParseRate(s string) (float64, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "%")
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return 0, ErrInvalidRate
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return 0, ErrInvalidRate
	}
	return d.InexactFloat64(), nil
}

// Euros returns the euro value as a float64 for the amortization engine.
func (m Money) Euros() float64 {
	return float64(m.Cents) / 100.0
}

// RoundCents rounds v to two decimals.
func RoundCents(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

// FormatEuros renders an amount in Dutch notation, e.g. "€1.432,25".
func FormatEuros(v float64) string {
	s := RoundCents(v).StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	intPart, fracPart, _ := strings.Cut(s, ".")
	out := groupThousands(intPart) + "," + fracPart
	if neg && out != "0,00" {
		return "-€" + out
	}
	return "€" + out
}

// FormatCompact renders an amount in a short form for chart axes:
// "€1.2m", "€300k", "€950".
func FormatCompact(v float64) string {
	neg := v < 0
	abs := v
	if neg {
		abs = -v
	}

	var formatted string
	switch {
	case abs >= 1_000_000:
		formatted = trimZeroDecimal(decimal.NewFromFloat(abs/1_000_000).StringFixed(1)) + "m"
	case abs >= 1_000:
		formatted = trimZeroDecimal(decimal.NewFromFloat(abs/1_000).StringFixed(1)) + "k"
	default:
		formatted = decimal.NewFromFloat(abs).Round(0).String()
	}

	if neg {
		return "-€" + formatted
	}
	return "€" + formatted
}

func trimZeroDecimal(s string) string {
	return strings.TrimSuffix(s, ".0")
}

func groupThousands(s string) string {
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "." + s[i:]
	}
	return s
}
