package smsparser

import "regexp"

// Keywords as they appear after Normalize.
const (
	kwAccount      = "حساب"
	kwBalance      = "مانده"
	kwBalanceAlt   = "موجودی"
	kwAmount       = "مبلغ"
	kwTransfer     = "انتقال"
	kwWithdraw     = "برداشت"
	kwDeposit      = "واریز"
	kwCurrency     = rialPersian
	kwTransferTo   = "انتقال به"
	kwWithdrawFrom = "برداشت از"
	kwCashOut      = "برداشت پول"
	kwCashIn       = "واریز پول"
)

// A number token is a digit followed by digits and separators. Patterns run on
// normalized text so `\d` only needs ASCII.
const numberToken = `\d[\d,٬٫]*`

var (
	// Use signedNumbers rather than matching this directly.
	signedNumberPattern = regexp.MustCompile(`[+-][ \t]*` + numberToken)
	anyNumberPattern    = regexp.MustCompile(numberToken)

	accountPattern  = regexp.MustCompile(kwAccount + `\s*[:：]?\s*([\d*]+)`)
	transferPattern = regexp.MustCompile(`(?:انتقال\s*به|برداشت\s*از|واریز\s*به)\s*[:：]?\s*([\d*]+)`)
	balancePattern  = regexp.MustCompile(`(?:مانده|موجودی)\s*[:：]?\s*([+-]?[ \t]*` + numberToken + `)`)
	amountPattern   = regexp.MustCompile(kwAmount + `\s*[:：]?\s*([+-]?)[ \t]*(` + numberToken + `)([+-]?)`)
	rialPattern     = regexp.MustCompile(`([+-]?[ \t]*` + numberToken + `)\s*` + kwCurrency)
)

// signedNumbers returns the explicitly signed number tokens in text. A sign
// directly after a digit is skipped, which keeps date dashes (1403-10-20)
// from reading as negative amounts.
func signedNumbers(text string) []string {
	var tokens []string
	for _, loc := range signedNumberPattern.FindAllStringIndex(text, -1) {
		if start := loc[0]; start > 0 && isASCIIDigit(text[start-1]) {
			continue
		}
		tokens = append(tokens, text[loc[0]:loc[1]])
	}
	return tokens
}

func isASCIIDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// submatch returns the first capture group of the leftmost match.
func submatch(re *regexp.Regexp, text string) *string {
	m := re.FindStringSubmatch(text)
	if len(m) < 2 || m[1] == "" {
		return nil
	}
	value := m[1]
	return &value
}
