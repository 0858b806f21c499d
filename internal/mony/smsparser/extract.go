package smsparser

import (
	"errors"
	"strings"
	"time"

	"github.com/shandysiswandi/gomony/internal/mony/entity"
)

var ErrUnreadableAmount = errors.New("smsparser: signed amount does not fit int64")

// extractFunc builds a Transaction from normalized text. raw is copied into the
// record untouched. Missing optional fields are nil; an error means a field the
// template requires was present but unreadable.
type extractFunc func(normalized, raw string, now time.Time) (entity.Transaction, error)

func extractType1(normalized, raw string, now time.Time) (entity.Transaction, error) {
	amount, ok := firstSignedNumber(normalized)
	if !ok {
		return entity.Transaction{}, ErrUnreadableAmount
	}

	return entity.Transaction{
		Amount:            amount,
		Type:              entity.TxTypeFromSign(amount),
		Balance:           extractBalance(normalized),
		AccountNumber:     extractAccount(normalized),
		DateTime:          ResolveDateTime(normalized, now),
		RawMessage:        raw,
		NormalizedMessage: normalized,
		TemplateType:      entity.TemplateType1,
	}, nil
}

func extractType2(normalized, raw string, now time.Time) (entity.Transaction, error) {
	amount, ok := keywordAmount(normalized)
	if !ok {
		amount = firstNumber(normalized)
	}

	var txType entity.TxType
	switch {
	case containsAny(normalized, kwTransferTo, kwWithdrawFrom):
		txType = entity.TxTypeExpense
	case strings.Contains(normalized, kwDeposit):
		txType = entity.TxTypeIncome
	default:
		txType = entity.TxTypeUnknown
	}

	account := submatch(transferPattern, normalized)
	if account == nil {
		account = submatch(accountPattern, normalized)
	}

	return entity.Transaction{
		Amount:            amount,
		Type:              txType,
		AccountNumber:     account,
		DateTime:          ResolveDateTime(normalized, now),
		RawMessage:        raw,
		NormalizedMessage: normalized,
		TemplateType:      entity.TemplateType2,
	}, nil
}

func extractType3(normalized, raw string, now time.Time) (entity.Transaction, error) {
	var amount int64
	if token := submatch(rialPattern, normalized); token != nil {
		amount, _ = SanitizeNumber(*token)
	}

	var txType entity.TxType
	switch {
	case strings.Contains(normalized, kwWithdraw):
		txType = entity.TxTypeExpense
	case strings.Contains(normalized, kwDeposit):
		txType = entity.TxTypeIncome
	default:
		txType = entity.TxTypeUnknown
	}

	return entity.Transaction{
		Amount:            amount,
		Type:              txType,
		Balance:           extractBalance(normalized),
		AccountNumber:     extractAccount(normalized),
		DateTime:          ResolveDateTime(normalized, now),
		RawMessage:        raw,
		NormalizedMessage: normalized,
		TemplateType:      entity.TemplateType3,
	}, nil
}

func extractFallback(normalized, raw string, now time.Time) (entity.Transaction, error) {
	amount, _ := firstSignedNumber(normalized)

	return entity.Transaction{
		Amount:            amount,
		Type:              entity.TxTypeFromSign(amount),
		AccountNumber:     extractAccount(normalized),
		DateTime:          ResolveDateTime(normalized, now),
		RawMessage:        raw,
		NormalizedMessage: normalized,
		TemplateType:      entity.TemplateTypeFallback,
	}, nil
}

// firstSignedNumber returns the first readable signed number. It reports
// false when there is none, including when every signed token overflows.
func firstSignedNumber(text string) (int64, bool) {
	for _, token := range signedNumbers(text) {
		if value, ok := SanitizeNumber(token); ok {
			return value, true
		}
	}
	return 0, false
}

func firstNumber(text string) int64 {
	for _, token := range anyNumberPattern.FindAllString(text, -1) {
		if value, ok := SanitizeNumber(token); ok {
			return value
		}
	}
	return 0
}

// keywordAmount reads the number after the amount keyword. A sign written
// before or right after the digits ("500,000+") is applied.
func keywordAmount(text string) (int64, bool) {
	m := amountPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}

	value, ok := SanitizeNumber(m[2])
	if !ok {
		return 0, false
	}

	sign := m[1]
	if sign == "" {
		sign = m[3]
	}
	if sign == "-" {
		value = -value
	}

	return value, true
}

func extractBalance(text string) *int64 {
	token := submatch(balancePattern, text)
	if token == nil {
		return nil
	}

	value, ok := SanitizeNumber(*token)
	if !ok {
		return nil
	}
	return &value
}

// extractAccount looks after the account keyword first, then after a
// transfer, withdrawal or deposit phrase.
func extractAccount(text string) *string {
	if account := submatch(accountPattern, text); account != nil {
		return account
	}
	return submatch(transferPattern, text)
}
