package inbound

import (
	"net/http"

	"github.com/shandysiswandi/gomony/internal/mony/entity"
	"github.com/shandysiswandi/gomony/internal/mony/usecase"
	"github.com/shopspring/decimal"
)

type ParseRequest struct {
	Message string `json:"message" validate:"required,max=4096"`
}

type NotificationRequest struct {
	Title   string `json:"title" validate:"max=512"`
	Text    string `json:"text" validate:"max=4096"`
	BigText string `json:"big_text" validate:"max=4096"`
}

type SMSRequest struct {
	Sender string `json:"sender" validate:"max=64"`
	Body   string `json:"body" validate:"required,max=4096"`
}

type BatchRequest struct {
	Messages []string `json:"messages" validate:"required,min=1,dive,max=4096"`
}

type ConfirmRequest struct {
	Title string `json:"title" validate:"max=256"`
}

type Transaction struct {
	Amount            int64               `json:"amount"`
	Type              entity.TxType       `json:"type"`
	Balance           *int64              `json:"balance"`
	AccountNumber     *string             `json:"account_number"`
	DateTime          *string             `json:"date_time"`
	TemplateType      entity.TemplateType `json:"template_type"`
	RawMessage        string              `json:"raw_message"`
	NormalizedMessage string              `json:"normalized_message"`
}

type ParseResponse struct {
	Transaction Transaction `json:"transaction"`
	Actionable  bool        `json:"actionable"`
	Diagnostic  string      `json:"diagnostic"`
}

type IngestResponse struct {
	ParseResponse
	PendingID string `json:"pending_id,omitempty"`
	Duplicate bool   `json:"duplicate"`
}

func (r IngestResponse) StatusCode() int {
	if r.PendingID != "" && !r.Duplicate {
		return http.StatusCreated
	}
	return http.StatusOK
}

func (r IngestResponse) Message() string {
	switch {
	case r.Duplicate:
		return "message already pending"
	case r.PendingID != "":
		return "transaction detected"
	default:
		return "message processed"
	}
}

type BatchItem struct {
	Index  int             `json:"index"`
	Result *IngestResponse `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

type BatchResponse struct {
	Items    []BatchItem `json:"items"`
	detected int
	failed   int
}

func (r BatchResponse) Meta() map[string]any {
	return map[string]any{
		"total":    len(r.Items),
		"detected": r.detected,
		"failed":   r.failed,
	}
}

type Pending struct {
	ID              string              `json:"id"`
	Amount          int64               `json:"amount"`
	Type            entity.TxType       `json:"type"`
	TemplateType    entity.TemplateType `json:"template_type"`
	AccountNumber   string              `json:"account_number,omitempty"`
	DateTime        *string             `json:"date_time"`
	RawMessage      string              `json:"raw_message"`
	CreatedAtMillis int64               `json:"created_at_millis"`
}

type PendingListResponse struct {
	Items    []Pending `json:"items"`
	page     int
	pageSize int
	total    int
}

func (r PendingListResponse) Meta() map[string]any {
	return map[string]any{
		"page":      r.page,
		"page_size": r.pageSize,
		"total":     r.total,
	}
}

type ConfirmResponse struct {
	PendingID string           `json:"pending_id"`
	Kind      entity.EntryKind `json:"kind"`
	Title     string           `json:"title"`
	Amount    decimal.Decimal  `json:"amount"`
	Date      string           `json:"date"`
}

func (ConfirmResponse) Message() string {
	return "transaction recorded"
}

func toParseResponse(r usecase.ParseResult) ParseResponse {
	tx := r.Transaction
	out := ParseResponse{
		Transaction: Transaction{
			Amount:            tx.Amount,
			Type:              tx.Type,
			Balance:           tx.Balance,
			AccountNumber:     tx.AccountNumber,
			TemplateType:      tx.TemplateType,
			RawMessage:        tx.RawMessage,
			NormalizedMessage: tx.NormalizedMessage,
		},
		Actionable: r.Actionable,
		Diagnostic: r.Diagnostic,
	}
	if tx.DateTime != nil {
		s := tx.DateTime.String()
		out.Transaction.DateTime = &s
	}

	return out
}

func toIngestResponse(r usecase.IngestResult) IngestResponse {
	return IngestResponse{
		ParseResponse: toParseResponse(r.ParseResult),
		PendingID:     r.PendingID,
		Duplicate:     r.Duplicate,
	}
}

func toHTTPPending(p entity.PendingTransaction) Pending {
	out := Pending{
		ID:              p.ID,
		Amount:          p.Amount,
		Type:            p.Type,
		TemplateType:    p.TemplateType,
		AccountNumber:   p.AccountNumber,
		RawMessage:      p.RawMessage,
		CreatedAtMillis: p.CreatedAtMillis,
	}
	if p.DateTime != nil {
		s := p.DateTime.String()
		out.DateTime = &s
	}

	return out
}
