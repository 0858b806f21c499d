package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/shandysiswandi/gomony/internal/mony/entity"
	"github.com/shandysiswandi/gomony/internal/mony/smsparser"
	"github.com/shandysiswandi/gomony/internal/pkg/pkgerror"
	"github.com/shandysiswandi/gomony/internal/pkg/pkglog"
	"github.com/shandysiswandi/gomony/internal/pkg/pkgroutine"
	"github.com/shandysiswandi/gomony/internal/pkg/pkguid"
)

const (
	defaultBatchWorkers = 4
	defaultMaxBatch     = 100
)

type Parser interface {
	ParseDetailed(raw string) smsparser.Result
}

type Store interface {
	AddPending(ctx context.Context, item entity.PendingTransaction) error
	GetPending(ctx context.Context, id string) (entity.PendingTransaction, error)
	ListPending(ctx context.Context, page, pageSize int) ([]entity.PendingTransaction, int, error)
	RemovePending(ctx context.Context, id string) error
	AddPendingUnlessRecent(ctx context.Context, item entity.PendingTransaction, sinceMillis int64) (entity.PendingTransaction, bool, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event entity.DetectedTxEvent) error
}

type Bookkeeper interface {
	Record(ctx context.Context, entry entity.BookkeepingEntry) error
}

type Clock interface {
	Now() time.Time
}

type Dependency struct {
	Parser     Parser
	Store      Store
	Events     EventPublisher
	Bookkeeper Bookkeeper
	Clock      Clock
	ID         pkguid.StringID
	EventID    pkguid.StringID

	// DedupWindow drops a message identical to a pending one created within
	// the window. Zero disables deduplication.
	DedupWindow  time.Duration
	BatchWorkers int
	MaxBatch     int
}

type Usecase struct {
	parser       Parser
	store        Store
	events       EventPublisher
	bookkeeper   Bookkeeper
	clock        Clock
	id           pkguid.StringID
	eventID      pkguid.StringID
	dedupWindow  time.Duration
	batchWorkers int
	maxBatch     int
}

func New(dep Dependency) *Usecase {
	clock := dep.Clock
	if clock == nil {
		clock = realClock{}
	}

	parser := dep.Parser
	if parser == nil {
		parser = smsparser.New(clock)
	}

	eventID := dep.EventID
	if eventID == nil {
		eventID = dep.ID
	}

	batchWorkers := dep.BatchWorkers
	if batchWorkers < 1 {
		batchWorkers = defaultBatchWorkers
	}

	maxBatch := dep.MaxBatch
	if maxBatch < 1 {
		maxBatch = defaultMaxBatch
	}

	return &Usecase{
		parser:       parser,
		store:        dep.Store,
		events:       dep.Events,
		bookkeeper:   dep.Bookkeeper,
		clock:        clock,
		id:           dep.ID,
		eventID:      eventID,
		dedupWindow:  dep.DedupWindow,
		batchWorkers: batchWorkers,
		maxBatch:     maxBatch,
	}
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

// Parse runs the engine without side effects.
func (u *Usecase) Parse(ctx context.Context, message string) (ParseResult, error) {
	if strings.TrimSpace(message) == "" {
		return ParseResult{}, pkgerror.NewInvalidInput(errors.New("message is required"))
	}

	return u.parse(ctx, message), nil
}

func (u *Usecase) IngestNotification(ctx context.Context, in NotificationInput) (IngestResult, error) {
	raw := ComposeNotification(in.Title, in.BigText, in.Text)
	if raw == "" {
		return IngestResult{}, pkgerror.NewInvalidInput(errors.New("notification has no text"))
	}

	return u.ingest(ctx, raw)
}

func (u *Usecase) IngestSMS(ctx context.Context, in SMSInput) (IngestResult, error) {
	if strings.TrimSpace(in.Body) == "" {
		return IngestResult{}, pkgerror.NewInvalidInput(errors.New("sms body is required"))
	}

	slog.DebugContext(ctx, "sms received", "sender", in.Sender)

	return u.ingest(ctx, in.Body)
}

// IngestBatch ingests every message with bounded concurrency. A failing
// message is reported in its own slot and does not fail the batch.
func (u *Usecase) IngestBatch(ctx context.Context, messages []string) (BatchResult, error) {
	if len(messages) == 0 {
		return BatchResult{}, pkgerror.NewInvalidInput(errors.New("messages is required"))
	}
	if len(messages) > u.maxBatch {
		return BatchResult{}, pkgerror.NewInvalidInput(fmt.Errorf("at most %d messages per batch", u.maxBatch))
	}

	items, err := pkgroutine.Map(ctx, u.batchWorkers, messages, func(ctx context.Context, _ int, msg string) (BatchItem, error) {
		if strings.TrimSpace(msg) == "" {
			return BatchItem{Error: "message is empty"}, nil
		}

		res, err := u.ingest(ctx, msg)
		if err != nil {
			return BatchItem{}, err
		}
		return BatchItem{Result: &res}, nil
	})
	if err != nil {
		slog.WarnContext(ctx, "batch ingest finished with errors", "error", err)
	}

	out := BatchResult{Items: items}
	for i := range out.Items {
		item := &out.Items[i]
		switch {
		case item.Result == nil && item.Error == "":
			item.Error = "failed to ingest message"
			out.Failed++
		case item.Error != "":
			out.Failed++
		case item.Result.PendingID != "" && !item.Result.Duplicate:
			out.Detected++
		}
	}

	return out, nil
}

func (u *Usecase) ingest(ctx context.Context, raw string) (IngestResult, error) {
	if u.store == nil || u.id == nil {
		return IngestResult{}, pkgerror.NewServer(errors.New("missing dependency"))
	}

	parsed := u.parse(ctx, raw)
	result := IngestResult{ParseResult: parsed}
	if !parsed.Actionable {
		return result, nil
	}

	now := u.clock.Now()
	tx := parsed.Transaction
	item := entity.PendingTransaction{
		ID:              u.id.Generate(),
		Amount:          tx.Amount,
		Type:            tx.Type,
		TemplateType:    tx.TemplateType,
		DateTime:        tx.DateTime,
		RawMessage:      raw,
		CreatedAtMillis: now.UnixMilli(),
	}
	if tx.AccountNumber != nil {
		item.AccountNumber = *tx.AccountNumber
	}

	if u.dedupWindow > 0 {
		since := now.Add(-u.dedupWindow).UnixMilli()
		existing, added, err := u.store.AddPendingUnlessRecent(ctx, item, since)
		if err != nil {
			return IngestResult{}, normalizeErr(err)
		}
		if !added {
			slog.InfoContext(ctx, "skip repeated bank message", "pending_id", existing.ID)
			result.PendingID = existing.ID
			result.Duplicate = true
			return result, nil
		}
	} else if err := u.store.AddPending(ctx, item); err != nil {
		return IngestResult{}, normalizeErr(err)
	}
	result.PendingID = item.ID

	u.publishDetected(ctx, item)

	return result, nil
}

func (u *Usecase) publishDetected(ctx context.Context, item entity.PendingTransaction) {
	if u.events == nil {
		return
	}

	event := entity.DetectedTxEvent{
		EventID:   u.eventID.Generate(),
		PendingID: item.ID,
		Amount:    item.Amount,
		Type:      item.Type,
		DeepLink:  DeepLink(item),
	}
	if err := u.events.Publish(ctx, event); err != nil {
		slog.WarnContext(ctx, "failed to publish event", "pending_id", item.ID, "event_id", event.EventID, "error", err)
	}
}

func (u *Usecase) parse(ctx context.Context, raw string) ParseResult {
	res := u.parser.ParseDetailed(raw)
	tx := res.Transaction

	if res.Diagnostic != smsparser.DiagnosticNone {
		slog.WarnContext(ctx, "bank message fell back to default",
			"diagnostic", res.Diagnostic.String(),
			"template", tx.TemplateType,
			"error", res.Err,
			"message", pkglog.MaskDigits(tx.NormalizedMessage),
		)
	}

	return ParseResult{
		Transaction: tx,
		Actionable:  tx.Actionable(),
		Diagnostic:  res.Diagnostic.String(),
	}
}

// DeepLink opens the app's new-transaction screen prefilled from item.
func DeepLink(item entity.PendingTransaction) string {
	return fmt.Sprintf("mony://transaction/new?amount=%d&type=%s&pending_id=%s",
		item.Amount, item.Type, url.QueryEscape(item.ID))
}

// ComposeNotification joins the non-blank notification fields in order,
// skipping exact repeats.
func ComposeNotification(fields ...string) string {
	parts := make([]string, 0, len(fields))
	seen := make(map[string]struct{}, len(fields))

	for _, field := range fields {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		if _, ok := seen[field]; ok {
			continue
		}
		seen[field] = struct{}{}
		parts = append(parts, field)
	}

	return strings.Join(parts, "\n")
}

func mapStoreErr(err error) error {
	if errors.Is(err, pkgerror.ErrNotFound) {
		return pkgerror.NewNotFound("pending transaction not found")
	}
	return normalizeErr(err)
}

func normalizeErr(err error) error {
	var perr *pkgerror.Error
	if errors.As(err, &perr) {
		return perr
	}
	return pkgerror.NewServer(err)
}
