package event

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shandysiswandi/gomony/internal/mony/entity"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	alertTitle  = "Transaction detected"
	rialSymbol  = "﷼"
	thousand    = 1_000
	million     = 1_000_000
	billion     = 1_000_000_000
	maxCompact  = 99
	maxThousand = 999
)

var ErrMissingPendingID = errors.New("detection event has no pending id")

// LogAlerter renders the user-facing alert and writes it to the log. It stands
// in for a push channel.
type LogAlerter struct{}

func (LogAlerter) Alert(ctx context.Context, event entity.DetectedTxEvent) error {
	if event.PendingID == "" {
		return ErrMissingPendingID
	}

	alert := BuildAlert(event)
	slog.InfoContext(ctx, "transaction detected alert",
		"event_id", event.EventID,
		"pending_id", event.PendingID,
		"title", alert.Title,
		"body", alert.Body,
		"deep_link", alert.DeepLink,
	)

	return nil
}

// BuildAlert renders the alert shown for a detected transaction.
func BuildAlert(event entity.DetectedTxEvent) entity.Alert {
	return entity.Alert{
		Title:    alertTitle,
		Body:     fmt.Sprintf("Detected %s. Tap to review and save", FormatRial(event.Amount)),
		DeepLink: event.DeepLink,
	}
}

// FormatRial renders the absolute value of amount, using a compact scale
// ("250 Thousand", "1.5 Million", "12 Billion") when it is exact and
// thousands-grouped digits otherwise.
func FormatRial(amount int64) string {
	if amount < 0 {
		amount = -amount
	}

	compact, ok := compactScale(amount)
	if !ok {
		compact = message.NewPrinter(language.English).Sprintf("%d", amount)
	}

	return rialSymbol + " " + compact
}

func compactScale(n int64) (string, bool) {
	if n == 0 {
		return "", false
	}

	if s, ok := compactUnit(n, billion, "Billion"); ok {
		return s, true
	}
	if s, ok := compactUnit(n, million, "Million"); ok {
		return s, true
	}
	if n%thousand == 0 && n/thousand <= maxThousand {
		return fmt.Sprintf("%d Thousand", n/thousand), true
	}

	return "", false
}

// compactUnit allows at most one decimal digit: 1..99 whole units or
// 1.0..9.9 units.
func compactUnit(n, unit int64, label string) (string, bool) {
	if n%unit == 0 {
		whole := n / unit
		if whole >= 1 && whole <= maxCompact {
			return fmt.Sprintf("%d %s", whole, label), true
		}
		return "", false
	}

	tenth := unit / 10
	if n%tenth == 0 {
		scaled := n / tenth
		if scaled >= 10 && scaled <= maxCompact {
			return fmt.Sprintf("%d.%d %s", scaled/10, scaled%10, label), true
		}
	}

	return "", false
}
