package render

import (
	"fmt"
	"math"
	"strconv"
)

const (
	kib = 1024.0
	mib = 1024.0 * 1024.0
	gib = 1024.0 * 1024.0 * 1024.0
)

// Sgn formats v with two decimals and an explicit sign: "+3.46", "-1.00".
func Sgn(v float64) string {
	if v == 0 {
		v = 0 // drop the sign of -0
	}
	return fmt.Sprintf("%+.2f", v)
}

// Rate formats a bytes-per-second value as B/s, K/s or M/s.
func Rate(n float64) string {
	switch {
	case n < kib:
		return fmt.Sprintf("%.0fB/s", n)
	case n < mib:
		return fmt.Sprintf("%.1fK/s", n/kib)
	default:
		return fmt.Sprintf("%.1fM/s", n/mib)
	}
}

// GB formats a byte count in GiB with one decimal.
func GB(n float64) string {
	return fmt.Sprintf("%.1f", n/gib)
}

// Degrees converts radians to degrees with one decimal.
func Degrees(rad float64) string {
	return fmt.Sprintf("%.1f", rad*180/math.Pi)
}

// Fixed formats v with dp decimals.
func Fixed(v float64, dp int) string {
	return strconv.FormatFloat(v, 'f', dp, 64)
}

// Percent formats a 0-100 value as "42.5%".
func Percent(v float64) string {
	return Fixed(v, 1) + "%"
}

// Code looks up an enumerated code, falling back to the raw number.
func Code(table map[int]string, code int) string {
	if name, ok := table[code]; ok {
		return name
	}
	return strconv.Itoa(code)
}
