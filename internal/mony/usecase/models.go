package usecase

import "github.com/shandysiswandi/gomony/internal/mony/entity"

type NotificationInput struct {
	Title   string
	Text    string
	BigText string
}

type SMSInput struct {
	Sender string
	Body   string
}

type ParseResult struct {
	Transaction entity.Transaction
	Actionable  bool
	Diagnostic  string
}

// IngestResult carries the pending id when the message was actionable.
type IngestResult struct {
	ParseResult
	PendingID string
	Duplicate bool
}

type BatchItem struct {
	Result *IngestResult
	Error  string
}

type BatchResult struct {
	Items    []BatchItem
	Detected int
	Failed   int
}

type PendingResult struct {
	Items    []entity.PendingTransaction
	Page     int
	PageSize int
	Total    int
}
