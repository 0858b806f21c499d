package inbound

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/shandysiswandi/gomony/internal/mony/entity"
	"github.com/shandysiswandi/gomony/internal/mony/usecase"
	"github.com/shandysiswandi/gomony/internal/pkg/pkgrouter"
	"github.com/ulule/limiter/v3"
)

type uc interface {
	Parse(ctx context.Context, message string) (usecase.ParseResult, error)
	IngestNotification(ctx context.Context, in usecase.NotificationInput) (usecase.IngestResult, error)
	IngestSMS(ctx context.Context, in usecase.SMSInput) (usecase.IngestResult, error)
	IngestBatch(ctx context.Context, messages []string) (usecase.BatchResult, error)
	ListPending(ctx context.Context, page, pageSize int) (usecase.PendingResult, error)
	ConfirmPending(ctx context.Context, id, title string) (entity.BookkeepingEntry, error)
	DismissPending(ctx context.Context, id string) error
}

// RegisterHTTPEndpoint mounts the message and pending routes. Message ingest
// routes share the given limiter; nil leaves them unlimited.
func RegisterHTTPEndpoint(r *pkgrouter.Router, uc uc, limit *limiter.Limiter) {
	end := &HTTPEndpoint{
		uc:       uc,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
	rl := pkgrouter.MiddlewareRateLimit(limit)

	r.POST("/messages/parse", end.ParseMessage, rl)
	r.POST("/messages/batch", end.IngestBatch, rl)
	r.POST("/notifications", end.IngestNotification, rl)
	r.POST("/sms", end.IngestSMS, rl)

	r.GET("/pending", end.ListPending) // ?page=&page_size=
	r.POST("/pending/:id/confirm", end.ConfirmPending)
	r.DELETE("/pending/:id", end.DismissPending)
}
