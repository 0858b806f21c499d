package smsparser

import (
	"strings"

	"github.com/shandysiswandi/gomony/internal/mony/entity"
)

// Classify picks the template for already normalized text.
//
// Banking vocabularies overlap ("balance" and "withdraw" show up in several
// shapes), so the checks form a fixed priority cascade: TYPE_1, TYPE_2,
// TYPE_3, then FALLBACK. The first match wins.
func Classify(normalized string) entity.TemplateType {
	switch {
	case isType1(normalized):
		return entity.TemplateType1
	case isType2(normalized):
		return entity.TemplateType2
	case isType3(normalized):
		return entity.TemplateType3
	default:
		return entity.TemplateTypeFallback
	}
}

func isType1(text string) bool {
	if !containsAny(text, kwBalance, kwBalanceAlt) {
		return false
	}
	if len(signedNumbers(text)) == 0 {
		return false
	}

	return strings.Contains(text, kwAccount) || balancePattern.MatchString(text)
}

func isType2(text string) bool {
	return strings.Contains(text, kwAmount) && containsAny(text, kwTransfer, kwWithdraw)
}

func isType3(text string) bool {
	return strings.Contains(text, kwCurrency) &&
		strings.Contains(text, kwBalanceAlt) &&
		containsAny(text, kwCashOut, kwCashIn)
}

func containsAny(text string, needles ...string) bool {
	for _, needle := range needles {
		if strings.Contains(text, needle) {
			return true
		}
	}
	return false
}
