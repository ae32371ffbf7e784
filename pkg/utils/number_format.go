// Package utils provides number formatting helpers shared by the gauge
// renderers, the API and the CLI.
package utils

import (
	"math"
	"math/big"
	"strconv"
	"strings"
)

// RoundHalfUp rounds x to the nearest integer, with halves rounding toward
// positive infinity (-2.5 → -2, 2.5 → 3). This is the rounding browsers
// apply to Math.round, which the percentage text of a gauge must match.
func RoundHalfUp(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	r := math.Floor(x)
	if x-r >= 0.5 {
		r++
	}
	return r
}

// ToFixed formats x with exactly digits decimals. Exact ties round away
// from zero (0.25 → "0.3"), unlike strconv which rounds them to even.
func ToFixed(x float64, digits int) string {
	switch {
	case math.IsNaN(x):
		return "NaN"
	case math.IsInf(x, 1):
		return "Infinity"
	case math.IsInf(x, -1):
		return "-Infinity"
	}
	if digits < 0 {
		digits = 0
	}

	if s, ok := tieAwayFromZero(x, digits); ok {
		return s
	}
	return strconv.FormatFloat(x, 'f', digits, 64)
}

// tieAwayFromZero handles the case where x·10^digits sits exactly halfway
// between two integers. It reports false for every other input.
func tieAwayFromZero(x float64, digits int) (string, bool) {
	neg := x < 0
	scaled := new(big.Float).SetPrec(256).SetFloat64(math.Abs(x))
	pow := new(big.Float).SetPrec(256).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil))
	scaled.Mul(scaled, pow)

	whole, _ := scaled.Int(nil)
	frac := new(big.Float).SetPrec(256).Sub(scaled, new(big.Float).SetPrec(256).SetInt(whole))
	if frac.Cmp(big.NewFloat(0.5)) != 0 {
		return "", false
	}

	whole.Add(whole, big.NewInt(1))
	s := whole.String()
	if digits > 0 {
		if len(s) <= digits {
			s = strings.Repeat("0", digits-len(s)+1) + s
		}
		s = s[:len(s)-digits] + "." + s[len(s)-digits:]
	}
	if neg {
		s = "-" + s
	}
	return s, true
}

// FormatPercent renders a fraction as a percentage: 0.5 → "50%" with zero
// decimals, "50.0%" with one.
func FormatPercent(fraction float64, decimals int) string {
	pct := fraction * 100
	if decimals <= 0 {
		r := RoundHalfUp(pct)
		if math.IsNaN(r) || math.IsInf(r, 0) {
			return ToFixed(r, 0) + "%"
		}
		return strconv.FormatInt(int64(r), 10) + "%"
	}
	return ToFixed(pct, decimals) + "%"
}

// FormatFloat trims a float to its shortest round-trip representation,
// used for query strings and cache keys.
func FormatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
