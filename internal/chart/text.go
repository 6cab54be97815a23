package chart

import (
	"fmt"
	"unicode/utf8"
)

// Abbreviate shortens s to width runes, ending in "..", when it is longer.
func Abbreviate(s string, width int) string {
	if width < 3 || utf8.RuneCountInString(s) <= width {
		return s
	}
	r := []rune(s)
	return string(r[:width-2]) + ".."
}

// Thousands renders n as "3.6K" style text.
func Thousands(n int) string {
	return fmt.Sprintf("%.1fK", float64(n)/1000)
}
