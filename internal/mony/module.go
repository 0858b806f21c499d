package mony

import (
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/gomony/internal/mony/event"
	"github.com/shandysiswandi/gomony/internal/mony/inbound"
	"github.com/shandysiswandi/gomony/internal/mony/outbound"
	"github.com/shandysiswandi/gomony/internal/mony/smsparser"
	"github.com/shandysiswandi/gomony/internal/mony/store"
	"github.com/shandysiswandi/gomony/internal/mony/usecase"
	"github.com/shandysiswandi/gomony/internal/pkg/pkgconfig"
	"github.com/shandysiswandi/gomony/internal/pkg/pkgrouter"
	"github.com/shandysiswandi/gomony/internal/pkg/pkguid"
	"github.com/ulule/limiter/v3"
)

type Dependency struct {
	Config  pkgconfig.Config
	Router  *pkgrouter.Router
	ID      pkguid.StringID
	EventID pkguid.StringID
}

func New(dep Dependency) (func(context.Context) error, error) {
	cfg := dep.Config

	var limit *limiter.Limiter
	if rate := cfg.GetString("modules.mony.rate_limit"); rate != "" {
		l, err := pkgrouter.NewRateLimiter(rate)
		if err != nil {
			return nil, err
		}
		limit = l
	}

	if dep.ID == nil {
		dep.ID = pkguid.NewUUID()
	}
	if dep.EventID == nil {
		sf, err := pkguid.NewSnowflake()
		if err != nil {
			return nil, err
		}
		dep.EventID = sf
	}

	storage := store.NewInMemoryStore()
	bus := event.NewBus(int(cfg.GetInt("modules.mony.alert.bus_buffer")))
	consumer := event.NewDetectionConsumer(bus, event.LogAlerter{}, event.ConsumerConfig{
		Workers:     int(cfg.GetInt("modules.mony.alert.workers")),
		MaxRetries:  int(cfg.GetInt("modules.mony.alert.max_retries")),
		BaseBackoff: time.Duration(cfg.GetInt("modules.mony.alert.base_backoff_ms")) * time.Millisecond,
	})
	consumer.Start()

	uc := usecase.New(usecase.Dependency{
		Parser:       smsparser.New(nil),
		Store:        storage,
		Events:       bus,
		Bookkeeper:   outbound.NewLogBookkeeper(),
		ID:           dep.ID,
		EventID:      dep.EventID,
		DedupWindow:  time.Duration(cfg.GetInt("modules.mony.dedup_window_ms")) * time.Millisecond,
		BatchWorkers: int(cfg.GetInt("modules.mony.batch.workers")),
		MaxBatch:     int(cfg.GetInt("modules.mony.batch.max_messages")),
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc, limit)

	slog.Info("module mony initialized", "rate_limit", cfg.GetString("modules.mony.rate_limit"))

	return consumer.Stop, nil
}
