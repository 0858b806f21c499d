package pkglog

import (
	"regexp"
	"strings"
)

// Runs of six or more digits are treated as card or account numbers.
var digitRun = regexp.MustCompile(`[0-9۰-۹٠-٩*]{6,}`)

// MaskDigits keeps the last four characters of every long digit run and
// replaces the rest with '*'. Amounts with grouping separators ("12,000")
// are short runs and stay readable.
func MaskDigits(s string) string {
	return digitRun.ReplaceAllStringFunc(s, func(run string) string {
		runes := []rune(run)
		return strings.Repeat("*", len(runes)-4) + string(runes[len(runes)-4:])
	})
}
