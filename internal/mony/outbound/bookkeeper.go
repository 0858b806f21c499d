package outbound

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/gomony/internal/mony/entity"
	"github.com/shandysiswandi/gomony/internal/pkg/pkglog"
)

var ErrInvalidEntry = errors.New("bookkeeping entry is incomplete")

// LogBookkeeper records confirmed entries to the structured log. It takes the
// place of the app's transaction ledger.
type LogBookkeeper struct{}

func NewLogBookkeeper() *LogBookkeeper {
	return &LogBookkeeper{}
}

func (*LogBookkeeper) Record(ctx context.Context, entry entity.BookkeepingEntry) error {
	if entry.PendingID == "" || !entry.Amount.IsPositive() || !entry.Date.IsValid() {
		return ErrInvalidEntry
	}

	slog.InfoContext(ctx, "bookkeeping entry recorded",
		"pending_id", entry.PendingID,
		"kind", entry.Kind,
		"title", pkglog.MaskDigits(entry.Title),
		"amount", entry.Amount.StringFixed(0),
		"date", entry.Date.String(),
	)

	return nil
}
