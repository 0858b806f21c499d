package entity

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

type PendingTransaction struct {
	ID              string
	Amount          int64
	Type            TxType
	TemplateType    TemplateType
	AccountNumber   string
	DateTime        *civil.DateTime
	RawMessage      string
	CreatedAtMillis int64
}

type DetectedTxEvent struct {
	EventID   string
	PendingID string
	Amount    int64
	Type      TxType
	DeepLink  string
}

type Alert struct {
	Title    string
	Body     string
	DeepLink string
}

// BookkeepingEntry is what a confirmed pending transaction turns into.
type BookkeepingEntry struct {
	PendingID string
	Kind      EntryKind
	Title     string
	Amount    decimal.Decimal
	Date      civil.Date
}
