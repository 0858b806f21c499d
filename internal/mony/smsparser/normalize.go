package smsparser

import (
	"regexp"
	"strings"
)

const (
	rialArabic  = "ريال"
	rialPersian = "ریال"
)

var (
	// Unicode space separators plus tab, vertical tab and form feed. ZWNJ is
	// part of Persian spelling and is left alone.
	horizontalSpace = regexp.MustCompile(`[\t\v\f \x{00A0}\x{1680}\x{2000}-\x{200A}\x{202F}\x{205F}\x{3000}]+`)
	lineBreaks      = strings.NewReplacer("\r\n", "\n", "\r", "\n")
)

// Normalize canonicalizes digits, the currency word and whitespace.
// It is idempotent.
func Normalize(text string) string {
	text = strings.Map(asciiDigit, text)
	text = strings.ReplaceAll(text, rialArabic, rialPersian)
	text = lineBreaks.Replace(text)

	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(horizontalSpace.ReplaceAllString(line, " "))
		if line == "" {
			continue
		}
		kept = append(kept, line)
	}

	return strings.TrimSpace(strings.Join(kept, "\n"))
}

// asciiDigit maps Persian (U+06F0..U+06F9) and Arabic-Indic (U+0660..U+0669)
// digits to ASCII and leaves every other rune untouched.
func asciiDigit(r rune) rune {
	switch {
	case r >= '۰' && r <= '۹':
		return '0' + (r - '۰')
	case r >= '٠' && r <= '٩':
		return '0' + (r - '٠')
	default:
		return r
	}
}
