// Package utils provides number and date formatting shared by reports,
// the CLI and the API.
package utils

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// FormatFixed renders v with exactly places decimals, rounding half away
// from zero and without grouping. -0 renders as 0.
func FormatFixed(v float64, places int32) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Sprint(v)
	}
	d := decimal.NewFromFloat(v).Round(places)
	if d.IsZero() {
		d = decimal.Zero
	}
	return d.StringFixed(places)
}

// FormatNumber renders v with places decimals and comma thousands
// separators, e.g. -971600 → "-971,600.00" for places = 2.
func FormatNumber(v float64, places int32) string {
	s := FormatFixed(v, places)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return s
	}
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, hasFrac := strings.Cut(s, ".")
	out := sign + groupThousands(intPart)
	if hasFrac {
		out += "." + frac
	}
	return out
}

// FormatPct formats a percentage with sign and suffix.
// e.g., 2.45 → "+2.45%", -1.23 → "-1.23%"
func FormatPct(pct float64) string {
	s := FormatFixed(pct, 2)
	if !strings.HasPrefix(s, "-") {
		s = "+" + s
	}
	return s + "%"
}

// FormatPctPtr formats a ratio (0.0123 → "-1.23%") or "n/a" when nil.
func FormatPctPtr(ratio *float64) string {
	if ratio == nil {
		return "n/a"
	}
	return FormatPct(*ratio * 100)
}

// FormatCompact formats an amount with K/M/B suffixes.
// e.g., 1234 → "1.23K", -971600 → "-971.6K", 2500000000 → "2.5B"
func FormatCompact(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
	}
	a := math.Abs(amount)
	switch {
	case a >= 1e9:
		return sign + trimDecimals(a/1e9) + "B"
	case a >= 1e6:
		return sign + trimDecimals(a/1e6) + "M"
	case a >= 1e3:
		return sign + trimDecimals(a/1e3) + "K"
	default:
		return sign + trimDecimals(a)
	}
}

// groupThousands inserts commas every three digits from the right.
func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var sb strings.Builder
	head := len(digits) % 3
	if head > 0 {
		sb.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if sb.Len() > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(digits[i : i+3])
	}
	return sb.String()
}

// trimDecimals formats with up to 2 decimals, dropping trailing zeros.
func trimDecimals(n float64) string {
	s := FormatFixed(n, 2)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}
