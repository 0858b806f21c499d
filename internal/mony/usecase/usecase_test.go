package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shandysiswandi/gomony/internal/mony/entity"
	"github.com/shandysiswandi/gomony/internal/mony/smsparser"
	"github.com/shandysiswandi/gomony/internal/pkg/pkgerror"
	"github.com/shopspring/decimal"
)

const (
	type1Message = "بانک نمونه\nحساب 12345678\n-12,000\nمانده 40,000\n1403/10/20"
	type2Message = "انتقال به 99887766\nمبلغ: 150000"
	otpMessage   = "رمز پویا 123456"
)

type testStore struct {
	mu    sync.RWMutex
	items []entity.PendingTransaction
	delay time.Duration
}

func (s *testStore) AddPending(ctx context.Context, item entity.PendingTransaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append([]entity.PendingTransaction{item}, s.items...)
	return nil
}

func (s *testStore) GetPending(ctx context.Context, id string) (entity.PendingTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, item := range s.items {
		if item.ID == id {
			return item, nil
		}
	}
	return entity.PendingTransaction{}, pkgerror.ErrNotFound
}

func (s *testStore) ListPending(ctx context.Context, page, pageSize int) ([]entity.PendingTransaction, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	start := (page - 1) * pageSize
	if start >= len(s.items) {
		return nil, len(s.items), nil
	}
	end := min(start+pageSize, len(s.items))
	return s.items[start:end], len(s.items), nil
}

func (s *testStore) RemovePending(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, item := range s.items {
		if item.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return pkgerror.ErrNotFound
}

func (s *testStore) AddPendingUnlessRecent(ctx context.Context, item entity.PendingTransaction, sinceMillis int64) (entity.PendingTransaction, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	time.Sleep(s.delay)
	for _, existing := range s.items {
		if existing.RawMessage == item.RawMessage && existing.CreatedAtMillis >= sinceMillis {
			return existing, false, nil
		}
	}
	s.items = append([]entity.PendingTransaction{item}, s.items...)
	return item, true, nil
}

func (s *testStore) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

type testPublisher struct {
	mu     sync.Mutex
	events []entity.DetectedTxEvent
	err    error
}

func (p *testPublisher) Publish(ctx context.Context, event entity.DetectedTxEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

type testBookkeeper struct {
	entries []entity.BookkeepingEntry
	err     error
}

func (b *testBookkeeper) Record(ctx context.Context, entry entity.BookkeepingEntry) error {
	if b.err != nil {
		return b.err
	}
	b.entries = append(b.entries, entry)
	return nil
}

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type seqID struct {
	mu     sync.Mutex
	prefix string
	n      int
}

func (s *seqID) Generate() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("%s-%d", s.prefix, s.n)
}

type fixture struct {
	uc     *Usecase
	store  *testStore
	events *testPublisher
	books  *testBookkeeper
	clock  *fixedClock
}

func newFixture(dedup time.Duration) fixture {
	f := fixture{
		store:  &testStore{},
		events: &testPublisher{},
		books:  &testBookkeeper{},
		clock:  &fixedClock{now: time.Date(2026, time.October, 17, 9, 30, 0, 0, time.UTC)},
	}
	f.uc = New(Dependency{
		Store:        f.store,
		Events:       f.events,
		Bookkeeper:   f.books,
		Clock:        f.clock,
		ID:           &seqID{prefix: "p"},
		EventID:      &seqID{prefix: "evt"},
		DedupWindow:  dedup,
		BatchWorkers: 2,
		MaxBatch:     5,
	})
	return f
}

func assertCode(t *testing.T, err error, code pkgerror.Code) {
	t.Helper()
	var perr *pkgerror.Error
	if !errors.As(err, &perr) {
		t.Fatalf("expected pkgerror.Error, got %T (%v)", err, err)
	}
	if perr.Code() != code {
		t.Fatalf("error code = %v, want %v", perr.Code(), code)
	}
}

func TestUsecase_Parse(t *testing.T) {
	f := newFixture(10 * time.Second)

	res, err := f.uc.Parse(context.Background(), type1Message)
	if err != nil {
		t.Fatalf("Parse() err = %v", err)
	}
	if !res.Actionable || res.Transaction.Amount != -12000 || res.Diagnostic != "NONE" {
		t.Fatalf("Parse() = %+v", res)
	}
	if f.store.len() != 0 || len(f.events.events) != 0 {
		t.Fatal("Parse() must not have side effects")
	}

	_, err = f.uc.Parse(context.Background(), "  \n ")
	assertCode(t, err, pkgerror.CodeInvalidInput)
}

func TestUsecase_IngestSMS_CreatesPendingAndEvent(t *testing.T) {
	f := newFixture(10 * time.Second)

	res, err := f.uc.IngestSMS(context.Background(), SMSInput{Sender: "BANK", Body: type1Message})
	if err != nil {
		t.Fatalf("IngestSMS() err = %v", err)
	}
	if res.PendingID != "p-1" || res.Duplicate {
		t.Fatalf("IngestSMS() = %+v", res)
	}

	item, err := f.store.GetPending(context.Background(), "p-1")
	if err != nil {
		t.Fatalf("GetPending() err = %v", err)
	}
	if item.Amount != -12000 || item.Type != entity.TxTypeExpense || item.AccountNumber != "12345678" {
		t.Fatalf("pending = %+v", item)
	}
	if item.CreatedAtMillis != f.clock.Now().UnixMilli() {
		t.Fatalf("CreatedAtMillis = %d", item.CreatedAtMillis)
	}

	if len(f.events.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(f.events.events))
	}
	ev := f.events.events[0]
	if ev.EventID != "evt-1" || ev.PendingID != "p-1" {
		t.Fatalf("event = %+v", ev)
	}
	if ev.DeepLink != "mony://transaction/new?amount=-12000&type=EXPENSE&pending_id=p-1" {
		t.Fatalf("DeepLink = %q", ev.DeepLink)
	}
}

func TestUsecase_IngestSMS_NotActionable(t *testing.T) {
	f := newFixture(10 * time.Second)

	res, err := f.uc.IngestSMS(context.Background(), SMSInput{Body: otpMessage})
	if err != nil {
		t.Fatalf("IngestSMS() err = %v", err)
	}
	if res.Actionable || res.PendingID != "" {
		t.Fatalf("IngestSMS() = %+v", res)
	}
	if res.Transaction.TemplateType != entity.TemplateTypeFallback {
		t.Fatalf("TemplateType = %s", res.Transaction.TemplateType)
	}
	if f.store.len() != 0 {
		t.Fatal("non actionable message must not be stored")
	}

	_, err = f.uc.IngestSMS(context.Background(), SMSInput{Body: " "})
	assertCode(t, err, pkgerror.CodeInvalidInput)
}

func TestUsecase_Ingest_DedupWindow(t *testing.T) {
	f := newFixture(10 * time.Second)
	ctx := context.Background()

	first, err := f.uc.IngestSMS(ctx, SMSInput{Body: type2Message})
	if err != nil {
		t.Fatalf("IngestSMS() err = %v", err)
	}

	f.clock.advance(5 * time.Second)
	second, err := f.uc.IngestSMS(ctx, SMSInput{Body: type2Message})
	if err != nil {
		t.Fatalf("IngestSMS() err = %v", err)
	}
	if !second.Duplicate || second.PendingID != first.PendingID {
		t.Fatalf("expected duplicate of %s, got %+v", first.PendingID, second)
	}

	f.clock.advance(6 * time.Second)
	third, err := f.uc.IngestSMS(ctx, SMSInput{Body: type2Message})
	if err != nil {
		t.Fatalf("IngestSMS() err = %v", err)
	}
	if third.Duplicate || third.PendingID == first.PendingID {
		t.Fatalf("expected new pending after window, got %+v", third)
	}
	if f.store.len() != 2 || len(f.events.events) != 2 {
		t.Fatalf("store = %d, events = %d, want 2/2", f.store.len(), len(f.events.events))
	}
}

func TestUsecase_Ingest_DedupDisabled(t *testing.T) {
	f := newFixture(0)
	ctx := context.Background()

	for range 2 {
		if _, err := f.uc.IngestSMS(ctx, SMSInput{Body: type2Message}); err != nil {
			t.Fatalf("IngestSMS() err = %v", err)
		}
	}
	if f.store.len() != 2 {
		t.Fatalf("store = %d, want 2", f.store.len())
	}
}

func TestUsecase_IngestBatch_DedupConcurrent(t *testing.T) {
	f := newFixture(time.Minute)
	f.store.delay = time.Millisecond

	res, err := f.uc.IngestBatch(context.Background(), []string{type1Message, type1Message, type1Message, type1Message})
	if err != nil {
		t.Fatalf("IngestBatch() err = %v", err)
	}
	if res.Detected != 1 {
		t.Fatalf("detected = %d, want 1", res.Detected)
	}
	if f.store.len() != 1 || len(f.events.events) != 1 {
		t.Fatalf("store = %d, events = %d, want 1/1", f.store.len(), len(f.events.events))
	}

	pendingID := f.store.items[0].ID
	for i, item := range res.Items {
		if item.Result == nil || item.Result.PendingID != pendingID {
			t.Fatalf("item %d = %+v, want pending %s", i, item, pendingID)
		}
	}
}

func TestUsecase_Ingest_PublishFailureKeepsPending(t *testing.T) {
	f := newFixture(10 * time.Second)
	f.events.err = errors.New("bus closed")

	res, err := f.uc.IngestSMS(context.Background(), SMSInput{Body: type1Message})
	if err != nil {
		t.Fatalf("IngestSMS() err = %v", err)
	}
	if res.PendingID == "" || f.store.len() != 1 {
		t.Fatalf("expected pending to be stored, got %+v", res)
	}
}

func TestUsecase_IngestNotification(t *testing.T) {
	f := newFixture(10 * time.Second)

	res, err := f.uc.IngestNotification(context.Background(), NotificationInput{
		Title:   "بانک نمونه",
		Text:    "حساب 12345678",
		BigText: "حساب 12345678\n-12,000\nمانده 40,000",
	})
	if err != nil {
		t.Fatalf("IngestNotification() err = %v", err)
	}
	if res.Transaction.TemplateType != entity.TemplateType1 || res.Transaction.Amount != -12000 {
		t.Fatalf("IngestNotification() = %+v", res.Transaction)
	}
	if res.Transaction.RawMessage != "بانک نمونه\nحساب 12345678\n-12,000\nمانده 40,000\nحساب 12345678" {
		t.Fatalf("RawMessage = %q", res.Transaction.RawMessage)
	}

	_, err = f.uc.IngestNotification(context.Background(), NotificationInput{Title: " ", Text: "\n"})
	assertCode(t, err, pkgerror.CodeInvalidInput)
}

func TestComposeNotification(t *testing.T) {
	tests := []struct {
		name   string
		fields []string
		want   string
	}{
		{name: "all blank", fields: []string{"", " ", "\n"}, want: ""},
		{name: "order kept", fields: []string{"title", "big", "text"}, want: "title\nbig\ntext"},
		{name: "duplicates dropped", fields: []string{"same", " same ", "other"}, want: "same\nother"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComposeNotification(tt.fields...); got != tt.want {
				t.Fatalf("ComposeNotification() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUsecase_IngestBatch(t *testing.T) {
	f := newFixture(0)

	res, err := f.uc.IngestBatch(context.Background(), []string{type1Message, otpMessage, "", type2Message})
	if err != nil {
		t.Fatalf("IngestBatch() err = %v", err)
	}
	if len(res.Items) != 4 {
		t.Fatalf("items = %d, want 4", len(res.Items))
	}
	if res.Detected != 2 || res.Failed != 1 {
		t.Fatalf("detected/failed = %d/%d, want 2/1", res.Detected, res.Failed)
	}
	if res.Items[0].Result == nil || res.Items[0].Result.Transaction.TemplateType != entity.TemplateType1 {
		t.Fatalf("item 0 = %+v", res.Items[0])
	}
	if res.Items[1].Result == nil || res.Items[1].Result.Actionable {
		t.Fatalf("item 1 = %+v", res.Items[1])
	}
	if res.Items[2].Error == "" {
		t.Fatalf("item 2 should carry an error")
	}
	if res.Items[3].Result == nil || res.Items[3].Result.Transaction.TemplateType != entity.TemplateType2 {
		t.Fatalf("item 3 = %+v", res.Items[3])
	}
}

func TestUsecase_IngestBatch_Limits(t *testing.T) {
	f := newFixture(0)

	_, err := f.uc.IngestBatch(context.Background(), nil)
	assertCode(t, err, pkgerror.CodeInvalidInput)

	_, err = f.uc.IngestBatch(context.Background(), make([]string, 6))
	assertCode(t, err, pkgerror.CodeInvalidInput)
}

func TestUsecase_ListPending(t *testing.T) {
	f := newFixture(0)
	ctx := context.Background()

	for range 3 {
		if _, err := f.uc.IngestSMS(ctx, SMSInput{Body: type2Message}); err != nil {
			t.Fatalf("IngestSMS() err = %v", err)
		}
	}

	res, err := f.uc.ListPending(ctx, 1, 2)
	if err != nil {
		t.Fatalf("ListPending() err = %v", err)
	}
	if res.Total != 3 || len(res.Items) != 2 || res.Items[0].ID != "p-3" {
		t.Fatalf("ListPending() = %+v", res)
	}

	_, err = f.uc.ListPending(ctx, 0, 10)
	assertCode(t, err, pkgerror.CodeInvalidInput)
}

func TestUsecase_ConfirmPending(t *testing.T) {
	f := newFixture(0)
	ctx := context.Background()

	if _, err := f.uc.IngestSMS(ctx, SMSInput{Body: type1Message}); err != nil {
		t.Fatalf("IngestSMS() err = %v", err)
	}

	entry, err := f.uc.ConfirmPending(ctx, "p-1", "")
	if err != nil {
		t.Fatalf("ConfirmPending() err = %v", err)
	}

	if entry.Kind != entity.EntryKindExpense {
		t.Fatalf("Kind = %s", entry.Kind)
	}
	if !entry.Amount.Equal(decimal.NewFromInt(12000)) {
		t.Fatalf("Amount = %s", entry.Amount)
	}
	if entry.Title != "بانک نمونه" {
		t.Fatalf("Title = %q", entry.Title)
	}
	if entry.Date != (civil.Date{Year: 1403, Month: time.October, Day: 20}) {
		t.Fatalf("Date = %s", entry.Date)
	}
	if len(f.books.entries) != 1 {
		t.Fatalf("expected 1 recorded entry, got %d", len(f.books.entries))
	}
	if f.store.len() != 0 {
		t.Fatal("confirmed pending must be removed")
	}

	_, err = f.uc.ConfirmPending(ctx, "p-1", "")
	assertCode(t, err, pkgerror.CodeNotFound)
}

func TestUsecase_ConfirmPending_TitleAndDateDefaults(t *testing.T) {
	f := newFixture(0)
	ctx := context.Background()

	if _, err := f.uc.IngestSMS(ctx, SMSInput{Body: type2Message}); err != nil {
		t.Fatalf("IngestSMS() err = %v", err)
	}

	entry, err := f.uc.ConfirmPending(ctx, "p-1", "  Rent  ")
	if err != nil {
		t.Fatalf("ConfirmPending() err = %v", err)
	}
	if entry.Title != "Rent" {
		t.Fatalf("Title = %q", entry.Title)
	}
	if entry.Date != civil.DateOf(f.clock.Now()) {
		t.Fatalf("Date = %s, want confirmation date", entry.Date)
	}
}

func TestUsecase_ConfirmPending_RecordFailureKeepsPending(t *testing.T) {
	f := newFixture(0)
	ctx := context.Background()
	f.books.err = errors.New("sink down")

	if _, err := f.uc.IngestSMS(ctx, SMSInput{Body: type1Message}); err != nil {
		t.Fatalf("IngestSMS() err = %v", err)
	}

	_, err := f.uc.ConfirmPending(ctx, "p-1", "")
	assertCode(t, err, pkgerror.CodeInternal)
	if f.store.len() != 1 {
		t.Fatal("pending must stay when recording fails")
	}
}

func TestUsecase_DismissPending(t *testing.T) {
	f := newFixture(0)
	ctx := context.Background()

	if _, err := f.uc.IngestSMS(ctx, SMSInput{Body: type1Message}); err != nil {
		t.Fatalf("IngestSMS() err = %v", err)
	}

	if err := f.uc.DismissPending(ctx, "p-1"); err != nil {
		t.Fatalf("DismissPending() err = %v", err)
	}
	if len(f.books.entries) != 0 {
		t.Fatal("dismiss must not record")
	}

	assertCode(t, f.uc.DismissPending(ctx, "p-1"), pkgerror.CodeNotFound)
	assertCode(t, f.uc.DismissPending(ctx, ""), pkgerror.CodeInvalidInput)
}

type panicParser struct{}

func (panicParser) ParseDetailed(raw string) smsparser.Result {
	return smsparser.Result{
		Transaction: entity.Transaction{Type: entity.TxTypeUnknown, TemplateType: entity.TemplateTypeFallback, RawMessage: raw},
		Diagnostic:  smsparser.DiagnosticPanic,
		Err:         errors.New("boom"),
	}
}

func TestUsecase_ParseDiagnosticSurfaced(t *testing.T) {
	uc := New(Dependency{Parser: panicParser{}, Store: &testStore{}, ID: &seqID{prefix: "p"}})

	res, err := uc.Parse(context.Background(), type1Message)
	if err != nil {
		t.Fatalf("Parse() err = %v", err)
	}
	if res.Diagnostic != "PANIC" || res.Actionable {
		t.Fatalf("Parse() = %+v", res)
	}
}

func TestDeepLinkEscapesID(t *testing.T) {
	got := DeepLink(entity.PendingTransaction{ID: "a b&c", Amount: 5, Type: entity.TxTypeIncome})
	if got != "mony://transaction/new?amount=5&type=INCOME&pending_id=a+b%26c" {
		t.Fatalf("DeepLink() = %q", got)
	}
}
