package inbound

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shandysiswandi/gomony/internal/mony/entity"
	"github.com/shandysiswandi/gomony/internal/mony/event"
	"github.com/shandysiswandi/gomony/internal/mony/outbound"
	"github.com/shandysiswandi/gomony/internal/mony/store"
	"github.com/shandysiswandi/gomony/internal/mony/usecase"
	"github.com/shandysiswandi/gomony/internal/pkg/pkgrouter"
	"github.com/shandysiswandi/gomony/internal/pkg/pkguid"
	"github.com/shopspring/decimal"
	"github.com/ulule/limiter/v3"
)

const smsBody = "بانک نمونه\nحساب 12345678\n-12,000\nمانده 40,000\n1403/10/20"

type envelope[T any] struct {
	Message string         `json:"message"`
	Data    T              `json:"data"`
	Meta    map[string]any `json:"meta,omitempty"`
}

func newTestRouter(t *testing.T, limit *limiter.Limiter) http.Handler {
	t.Helper()

	bus := event.NewBus(10)
	consumer := event.NewDetectionConsumer(bus, event.LogAlerter{}, event.ConsumerConfig{Workers: 1})
	consumer.Start()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = consumer.Stop(ctx)
	})

	uc := usecase.New(usecase.Dependency{
		Store:       store.NewInMemoryStore(),
		Events:      bus,
		Bookkeeper:  outbound.NewLogBookkeeper(),
		ID:          pkguid.NewUUID(),
		DedupWindow: time.Minute,
	})

	router := pkgrouter.NewRouter(pkguid.NewUUID())
	RegisterHTTPEndpoint(router, uc, limit)

	return router
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) envelope[T] {
	t.Helper()

	var env envelope[T]
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return env
}

func TestIngestListConfirm(t *testing.T) {
	router := newTestRouter(t, nil)

	rec := do(t, router, http.MethodPost, "/sms", SMSRequest{Sender: "BANK", Body: smsBody})
	if rec.Code != http.StatusCreated {
		t.Fatalf("ingest status = %d, body = %s", rec.Code, rec.Body.String())
	}
	ingested := decode[IngestResponse](t, rec)
	if ingested.Data.PendingID == "" || ingested.Message != "transaction detected" {
		t.Fatalf("ingest = %+v", ingested)
	}
	if ingested.Data.Transaction.Amount != -12000 || ingested.Data.Transaction.TemplateType != entity.TemplateType1 {
		t.Fatalf("transaction = %+v", ingested.Data.Transaction)
	}
	if ingested.Data.Transaction.DateTime == nil || *ingested.Data.Transaction.DateTime != "1403-10-20T00:00:00" {
		t.Fatalf("date_time = %v", ingested.Data.Transaction.DateTime)
	}

	rec = do(t, router, http.MethodPost, "/sms", SMSRequest{Body: smsBody})
	if rec.Code != http.StatusOK {
		t.Fatalf("repeat status = %d", rec.Code)
	}
	if repeat := decode[IngestResponse](t, rec); !repeat.Data.Duplicate || repeat.Data.PendingID != ingested.Data.PendingID {
		t.Fatalf("repeat = %+v", repeat.Data)
	}

	rec = do(t, router, http.MethodGet, "/pending?page=1&page_size=5", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	list := decode[PendingListResponse](t, rec)
	if len(list.Data.Items) != 1 || list.Data.Items[0].ID != ingested.Data.PendingID {
		t.Fatalf("list = %+v", list.Data)
	}
	if list.Meta["total"] != float64(1) {
		t.Fatalf("meta = %v", list.Meta)
	}

	rec = do(t, router, http.MethodPost, "/pending/"+ingested.Data.PendingID+"/confirm", ConfirmRequest{Title: "Groceries"})
	if rec.Code != http.StatusOK {
		t.Fatalf("confirm status = %d, body = %s", rec.Code, rec.Body.String())
	}
	confirmed := decode[ConfirmResponse](t, rec)
	if !confirmed.Data.Amount.Equal(decimal.NewFromInt(12000)) || confirmed.Data.Kind != entity.EntryKindExpense {
		t.Fatalf("confirm = %+v", confirmed.Data)
	}
	if confirmed.Data.Title != "Groceries" || confirmed.Data.Date != "1403-10-20" {
		t.Fatalf("confirm = %+v", confirmed.Data)
	}

	rec = do(t, router, http.MethodDelete, "/pending/"+ingested.Data.PendingID, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("dismiss after confirm status = %d", rec.Code)
	}
}

func TestNotificationAndDismiss(t *testing.T) {
	router := newTestRouter(t, nil)

	rec := do(t, router, http.MethodPost, "/notifications", NotificationRequest{
		Title:   "بانک نمونه",
		BigText: "انتقال به 99887766\nمبلغ: 150000",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("notification status = %d, body = %s", rec.Code, rec.Body.String())
	}
	ingested := decode[IngestResponse](t, rec)

	rec = do(t, router, http.MethodDelete, "/pending/"+ingested.Data.PendingID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("dismiss status = %d", rec.Code)
	}

	rec = do(t, router, http.MethodPost, "/notifications", NotificationRequest{Title: " "})
	if rec.Code != http.StatusBadRequest && rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("blank notification status = %d", rec.Code)
	}
}

func TestParseMessage(t *testing.T) {
	router := newTestRouter(t, nil)

	rec := do(t, router, http.MethodPost, "/messages/parse", ParseRequest{Message: "رمز پویا 123456"})
	if rec.Code != http.StatusOK {
		t.Fatalf("parse status = %d", rec.Code)
	}
	parsed := decode[ParseResponse](t, rec)
	if parsed.Data.Actionable || parsed.Data.Transaction.TemplateType != entity.TemplateTypeFallback {
		t.Fatalf("parse = %+v", parsed.Data)
	}
	if parsed.Data.Transaction.Balance != nil || parsed.Data.Transaction.DateTime != nil {
		t.Fatalf("expected null optional fields, got %+v", parsed.Data.Transaction)
	}

	rec = do(t, router, http.MethodPost, "/messages/parse", ParseRequest{})
	if rec.Code < 400 || rec.Code >= 500 {
		t.Fatalf("missing message status = %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/messages/parse", strings.NewReader("{not json"))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code < 400 || rr.Code >= 500 {
		t.Fatalf("malformed body status = %d", rr.Code)
	}
}

func TestIngestBatch(t *testing.T) {
	router := newTestRouter(t, nil)

	rec := do(t, router, http.MethodPost, "/messages/batch", BatchRequest{Messages: []string{
		smsBody,
		"رمز پویا 123456",
		"انتقال به 99887766\nمبلغ: 150000",
	}})
	if rec.Code != http.StatusOK {
		t.Fatalf("batch status = %d, body = %s", rec.Code, rec.Body.String())
	}

	batch := decode[BatchResponse](t, rec)
	if len(batch.Data.Items) != 3 {
		t.Fatalf("items = %d", len(batch.Data.Items))
	}
	if batch.Meta["detected"] != float64(2) || batch.Meta["failed"] != float64(0) {
		t.Fatalf("meta = %v", batch.Meta)
	}
	for i, item := range batch.Data.Items {
		if item.Index != i || item.Result == nil {
			t.Fatalf("item %d = %+v", i, item)
		}
	}
}

func TestIngestRateLimited(t *testing.T) {
	limit, err := pkgrouter.NewRateLimiter("2-M")
	if err != nil {
		t.Fatalf("NewRateLimiter: %v", err)
	}
	router := newTestRouter(t, limit)

	codes := make([]int, 0, 3)
	for range 3 {
		rec := do(t, router, http.MethodPost, "/messages/parse", ParseRequest{Message: smsBody})
		codes = append(codes, rec.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("codes = %v", codes)
	}

	if rec := do(t, router, http.MethodGet, "/pending", nil); rec.Code != http.StatusOK {
		t.Fatalf("pending route must not be limited, got %d", rec.Code)
	}
}
