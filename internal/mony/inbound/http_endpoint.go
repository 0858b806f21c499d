package inbound

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shandysiswandi/gomony/internal/mony/usecase"
	"github.com/shandysiswandi/gomony/internal/pkg/pkgerror"
	"github.com/shandysiswandi/gomony/internal/pkg/pkgrouter"
)

const maxBodyBytes = 1 << 20

type HTTPEndpoint struct {
	uc       uc
	validate *validator.Validate
}

func (h *HTTPEndpoint) ParseMessage(ctx context.Context, r *http.Request) (any, error) {
	var req ParseRequest
	if err := h.decode(r, &req); err != nil {
		return nil, err
	}

	result, err := h.uc.Parse(ctx, req.Message)
	if err != nil {
		return nil, err
	}

	return toParseResponse(result), nil
}

func (h *HTTPEndpoint) IngestNotification(ctx context.Context, r *http.Request) (any, error) {
	var req NotificationRequest
	if err := h.decode(r, &req); err != nil {
		return nil, err
	}

	result, err := h.uc.IngestNotification(ctx, usecase.NotificationInput{
		Title:   req.Title,
		Text:    req.Text,
		BigText: req.BigText,
	})
	if err != nil {
		return nil, err
	}

	return toIngestResponse(result), nil
}

func (h *HTTPEndpoint) IngestSMS(ctx context.Context, r *http.Request) (any, error) {
	var req SMSRequest
	if err := h.decode(r, &req); err != nil {
		return nil, err
	}

	result, err := h.uc.IngestSMS(ctx, usecase.SMSInput{Sender: req.Sender, Body: req.Body})
	if err != nil {
		return nil, err
	}

	return toIngestResponse(result), nil
}

func (h *HTTPEndpoint) IngestBatch(ctx context.Context, r *http.Request) (any, error) {
	var req BatchRequest
	if err := h.decode(r, &req); err != nil {
		return nil, err
	}

	result, err := h.uc.IngestBatch(ctx, req.Messages)
	if err != nil {
		return nil, err
	}

	items := make([]BatchItem, 0, len(result.Items))
	for i, item := range result.Items {
		out := BatchItem{Index: i, Error: item.Error}
		if item.Result != nil {
			resp := toIngestResponse(*item.Result)
			out.Result = &resp
		}
		items = append(items, out)
	}

	return BatchResponse{
		Items:    items,
		detected: result.Detected,
		failed:   result.Failed,
	}, nil
}

func (h *HTTPEndpoint) ListPending(ctx context.Context, r *http.Request) (any, error) {
	query := r.URL.Query()
	page, pageSize, err := parsePagination(query.Get("page"), query.Get("page_size"))
	if err != nil {
		return nil, err
	}

	result, err := h.uc.ListPending(ctx, page, pageSize)
	if err != nil {
		return nil, err
	}

	items := make([]Pending, 0, len(result.Items))
	for _, item := range result.Items {
		items = append(items, toHTTPPending(item))
	}

	return PendingListResponse{
		Items:    items,
		page:     result.Page,
		pageSize: result.PageSize,
		total:    result.Total,
	}, nil
}

func (h *HTTPEndpoint) ConfirmPending(ctx context.Context, r *http.Request) (any, error) {
	var req ConfirmRequest
	if r.ContentLength != 0 {
		if err := h.decode(r, &req); err != nil {
			return nil, err
		}
	}

	entry, err := h.uc.ConfirmPending(ctx, pkgrouter.GetParam(ctx, "id"), req.Title)
	if err != nil {
		return nil, err
	}

	return ConfirmResponse{
		PendingID: entry.PendingID,
		Kind:      entry.Kind,
		Title:     entry.Title,
		Amount:    entry.Amount,
		Date:      entry.Date.String(),
	}, nil
}

func (h *HTTPEndpoint) DismissPending(ctx context.Context, r *http.Request) (any, error) {
	if err := h.uc.DismissPending(ctx, pkgrouter.GetParam(ctx, "id")); err != nil {
		return nil, err
	}

	return nil, nil
}

func (h *HTTPEndpoint) decode(r *http.Request, dst any) error {
	if r.Body == nil {
		return pkgerror.NewInvalidInput(errors.New("empty request body"))
	}

	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return pkgerror.NewInvalidInput(errors.New("empty request body"))
		}
		return pkgerror.NewInvalidFormat()
	}

	if err := h.validate.Struct(dst); err != nil {
		return pkgerror.NewInvalidInput(err)
	}

	return nil
}

func parsePagination(pageRaw, sizeRaw string) (int, int, error) {
	page := 1
	pageSize := 10

	if pageRaw != "" {
		value, err := strconv.Atoi(strings.TrimSpace(pageRaw))
		if err != nil || value < 1 {
			return 0, 0, pkgerror.NewInvalidInput(errors.New("invalid page"))
		}
		page = value
	}

	if sizeRaw != "" {
		value, err := strconv.Atoi(strings.TrimSpace(sizeRaw))
		if err != nil || value < 1 {
			return 0, 0, pkgerror.NewInvalidInput(errors.New("invalid page_size"))
		}
		pageSize = min(value, 100)
	}

	return page, pageSize, nil
}
