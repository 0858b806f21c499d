package entity

import "cloud.google.com/go/civil"

// Transaction is the record extracted from one bank message.
//
// Optional fields are nil when the message does not carry them.
type Transaction struct {
	Amount            int64
	Type              TxType
	Balance           *int64
	AccountNumber     *string
	DateTime          *civil.DateTime
	RawMessage        string
	NormalizedMessage string
	TemplateType      TemplateType
}

// Actionable reports whether the transaction is worth surfacing to the user.
func (t Transaction) Actionable() bool {
	return t.TemplateType != TemplateTypeFallback &&
		t.Amount != 0 &&
		t.Type != TxTypeUnknown
}
