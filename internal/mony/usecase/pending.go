package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/shandysiswandi/gomony/internal/mony/entity"
	"github.com/shandysiswandi/gomony/internal/pkg/pkgerror"
	"github.com/shopspring/decimal"
)

func (u *Usecase) ListPending(ctx context.Context, page, pageSize int) (PendingResult, error) {
	if page < 1 || pageSize < 1 {
		return PendingResult{}, pkgerror.NewInvalidInput(errors.New("invalid pagination"))
	}

	items, total, err := u.store.ListPending(ctx, page, pageSize)
	if err != nil {
		return PendingResult{}, normalizeErr(err)
	}

	return PendingResult{
		Items:    items,
		Page:     page,
		PageSize: pageSize,
		Total:    total,
	}, nil
}

// ConfirmPending records the pending item as a bookkeeping entry and removes
// it. An empty title falls back to the first line of the raw message.
func (u *Usecase) ConfirmPending(ctx context.Context, id, title string) (entity.BookkeepingEntry, error) {
	if strings.TrimSpace(id) == "" {
		return entity.BookkeepingEntry{}, pkgerror.NewInvalidInput(errors.New("id is required"))
	}
	if u.bookkeeper == nil {
		return entity.BookkeepingEntry{}, pkgerror.NewServer(errors.New("missing dependency"))
	}

	item, err := u.store.GetPending(ctx, id)
	if err != nil {
		return entity.BookkeepingEntry{}, mapStoreErr(err)
	}

	entry, err := u.toEntry(item, title)
	if err != nil {
		return entity.BookkeepingEntry{}, err
	}

	if err := u.bookkeeper.Record(ctx, entry); err != nil {
		return entity.BookkeepingEntry{}, normalizeErr(err)
	}

	if err := u.store.RemovePending(ctx, id); err != nil {
		// The entry is recorded already.
		slog.WarnContext(ctx, "failed to remove confirmed pending transaction", "pending_id", id, "error", err)
	}

	return entry, nil
}

func (u *Usecase) DismissPending(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return pkgerror.NewInvalidInput(errors.New("id is required"))
	}

	if err := u.store.RemovePending(ctx, id); err != nil {
		return mapStoreErr(err)
	}

	return nil
}

func (u *Usecase) toEntry(item entity.PendingTransaction, title string) (entity.BookkeepingEntry, error) {
	var kind entity.EntryKind
	switch item.Type {
	case entity.TxTypeExpense:
		kind = entity.EntryKindExpense
	case entity.TxTypeIncome:
		kind = entity.EntryKindIncome
	default:
		return entity.BookkeepingEntry{}, pkgerror.NewBusiness("pending transaction has no direction", pkgerror.CodeConflict)
	}

	title = strings.TrimSpace(title)
	if title == "" {
		title = firstLine(item.RawMessage)
	}

	date := civil.DateOf(u.clock.Now())
	if item.DateTime != nil {
		date = item.DateTime.Date
	}

	return entity.BookkeepingEntry{
		PendingID: item.ID,
		Kind:      kind,
		Title:     title,
		Amount:    decimal.NewFromInt(item.Amount).Abs(),
		Date:      date,
	}, nil
}

func firstLine(s string) string {
	for line := range strings.Lines(s) {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}
