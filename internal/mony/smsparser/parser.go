package smsparser

import (
	"errors"
	"fmt"
	"time"

	"github.com/shandysiswandi/gomony/internal/mony/entity"
)

var (
	ErrUnknownTemplate = errors.New("smsparser: unknown template type")
	ErrInconsistent    = errors.New("smsparser: inconsistent transaction")
)

// Diagnostic tells which step, if any, forced the safe default record.
type Diagnostic int

const (
	DiagnosticNone Diagnostic = iota
	DiagnosticUnknownTemplate
	DiagnosticExtractFailed
	DiagnosticInconsistent
	DiagnosticPanic
)

func (d Diagnostic) String() string {
	switch d {
	case DiagnosticNone:
		return "NONE"
	case DiagnosticUnknownTemplate:
		return "UNKNOWN_TEMPLATE"
	case DiagnosticExtractFailed:
		return "EXTRACT_FAILED"
	case DiagnosticInconsistent:
		return "INCONSISTENT"
	case DiagnosticPanic:
		return "PANIC"
	default:
		return "UNSPECIFIED"
	}
}

// Result is a parse outcome with the reason a default was substituted.
type Result struct {
	Transaction entity.Transaction
	Diagnostic  Diagnostic
	Err         error
}

type Clock interface {
	Now() time.Time
}

type wallClock struct{}

func (wallClock) Now() time.Time {
	return time.Now()
}

// Parser only carries the clock used for messages that omit the year.
type Parser struct {
	clock Clock
}

// New returns a Parser. A nil clock means the wall clock.
func New(clock Clock) *Parser {
	if clock == nil {
		clock = wallClock{}
	}
	return &Parser{clock: clock}
}

//nolint:gochecknoglobals // stateless default
var defaultParser = New(nil)

// Parse runs the default wall-clock parser.
func Parse(raw string) entity.Transaction {
	return defaultParser.Parse(raw)
}

// Parse never fails; see ParseDetailed for the diagnostic.
func (p *Parser) Parse(raw string) entity.Transaction {
	return p.ParseDetailed(raw).Transaction
}

// ParseDetailed normalizes, classifies and extracts. When a step fails the
// returned Transaction is the UNKNOWN/FALLBACK default and Diagnostic names
// the failing step.
func (p *Parser) ParseDetailed(raw string) (res Result) {
	normalized := Normalize(raw)

	defer func() {
		if rvr := recover(); rvr != nil {
			res = failed(raw, normalized, DiagnosticPanic, fmt.Errorf("smsparser: panic: %v", rvr))
		}
	}()

	template := Classify(normalized)

	extract, err := extractorFor(template)
	if err != nil {
		return failed(raw, normalized, DiagnosticUnknownTemplate, err)
	}

	tx, err := extract(normalized, raw, p.clock.Now())
	if err != nil {
		return failed(raw, normalized, DiagnosticExtractFailed, err)
	}

	if err := verify(tx, template); err != nil {
		return failed(raw, normalized, DiagnosticInconsistent, err)
	}

	return Result{Transaction: tx, Diagnostic: DiagnosticNone}
}

func extractorFor(template entity.TemplateType) (extractFunc, error) {
	switch template {
	case entity.TemplateType1:
		return extractType1, nil
	case entity.TemplateType2:
		return extractType2, nil
	case entity.TemplateType3:
		return extractType3, nil
	case entity.TemplateTypeFallback:
		return extractFallback, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTemplate, template)
	}
}

// verify checks the record invariants an extractor must hold.
func verify(tx entity.Transaction, template entity.TemplateType) error {
	if tx.TemplateType != template {
		return fmt.Errorf("%w: template %s, extracted as %s", ErrInconsistent, template, tx.TemplateType)
	}

	switch template {
	case entity.TemplateType1, entity.TemplateTypeFallback:
		if want := entity.TxTypeFromSign(tx.Amount); tx.Type != want {
			return fmt.Errorf("%w: amount %d typed %s", ErrInconsistent, tx.Amount, tx.Type)
		}
	case entity.TemplateType2:
		if tx.Balance != nil {
			return fmt.Errorf("%w: type 2 carries a balance", ErrInconsistent)
		}
	}

	if tx.DateTime != nil && !tx.DateTime.IsValid() {
		return fmt.Errorf("%w: invalid date time %s", ErrInconsistent, tx.DateTime)
	}

	return nil
}

func failed(raw, normalized string, diag Diagnostic, err error) Result {
	return Result{
		Transaction: entity.Transaction{
			Amount:            0,
			Type:              entity.TxTypeUnknown,
			RawMessage:        raw,
			NormalizedMessage: normalized,
			TemplateType:      entity.TemplateTypeFallback,
		},
		Diagnostic: diag,
		Err:        err,
	}
}
