package entity

type TxType string

const (
	TxTypeIncome  TxType = "INCOME"
	TxTypeExpense TxType = "EXPENSE"
	TxTypeUnknown TxType = "UNKNOWN"
)

// TxTypeFromSign maps a signed amount to its transaction type.
func TxTypeFromSign(amount int64) TxType {
	switch {
	case amount < 0:
		return TxTypeExpense
	case amount > 0:
		return TxTypeIncome
	default:
		return TxTypeUnknown
	}
}

// TemplateType is the message shape chosen by the classifier.
type TemplateType string

const (
	TemplateType1        TemplateType = "TYPE_1"
	TemplateType2        TemplateType = "TYPE_2"
	TemplateType3        TemplateType = "TYPE_3"
	TemplateTypeFallback TemplateType = "FALLBACK"
)

type EntryKind string

const (
	EntryKindExpense EntryKind = "EXPENSE"
	EntryKindIncome  EntryKind = "INCOME"
)
