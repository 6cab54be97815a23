package core

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

var ErrInvalidPercentage = errors.New("invalid percentage")

// RoundTenth rounds v to one decimal place, half away from zero, so 0.25
// becomes 0.3 and 12.45 becomes 12.5 (subject to the binary representation
// of the input). Percentages are carried rounded this way.
func RoundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}

// Share returns part/total*100 rounded to one decimal. A zero total yields 0.
func Share(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return RoundTenth(float64(part) / float64(total) * 100)
}

// FormatPercentage renders a percentage with exactly one decimal ("2.0", "64.1").
func FormatPercentage(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// ParsePercentage parses a decimal string into a percentage rounded to one decimal.
//
// Both dot and comma separators are accepted. Negative values, NaN and
// anything above 100 are rejected.
//
// Examples:
//   ParsePercentage("64.1") -> 64.1, nil
//   ParsePercentage("1,5")  -> 1.5, nil
//   ParsePercentage("-1")   -> 0, ErrInvalidPercentage
func ParsePercentage(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidPercentage
	}
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrInvalidPercentage
	}
	if v < 0 || v > 100 {
		return 0, ErrInvalidPercentage
	}
	return RoundTenth(v), nil
}
