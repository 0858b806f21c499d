package smsparser

import (
	"strconv"
	"strings"
	"unicode"
)

const (
	arabicThousandsSep = '٬'
	arabicDecimalSep   = '٫'
)

// SanitizeNumber parses a numeric token such as "۴۵۰,۰۰۰", "-12,000" or
// "٤٥٠٬٠٠٠". Grouping and decimal separators and whitespace are dropped.
// It reports false when nothing parseable is left.
func SanitizeNumber(token string) (int64, bool) {
	cleaned := strings.Map(func(r rune) rune {
		if r == ',' || r == arabicThousandsSep || r == arabicDecimalSep || unicode.IsSpace(r) {
			return -1
		}
		return asciiDigit(r)
	}, token)

	if cleaned == "" {
		return 0, false
	}

	value, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil {
		return 0, false
	}

	return value, true
}
