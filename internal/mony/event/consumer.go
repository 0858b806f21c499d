package event

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/shandysiswandi/gomony/internal/mony/entity"
)

// Alerter surfaces a detected transaction to the user.
type Alerter interface {
	Alert(ctx context.Context, event entity.DetectedTxEvent) error
}

type ConsumerConfig struct {
	Workers     int
	MaxRetries  int
	BaseBackoff time.Duration
}

// DetectionConsumer drains the bus and hands every event to the Alerter,
// retrying failures with exponential backoff. An event ID is alerted at most
// once.
type DetectionConsumer struct {
	bus         *Bus
	alerter     Alerter
	workers     int
	maxRetries  int
	baseBackoff time.Duration
	seen        sync.Map
	wg          sync.WaitGroup
	stop        chan struct{}
	stopOnce    sync.Once
}

func NewDetectionConsumer(bus *Bus, alerter Alerter, cfg ConsumerConfig) *DetectionConsumer {
	workers := cfg.Workers
	if workers < 1 {
		workers = 2
	}

	maxRetries := max(cfg.MaxRetries, 0)

	baseBackoff := cfg.BaseBackoff
	if baseBackoff <= 0 {
		baseBackoff = 100 * time.Millisecond
	}

	return &DetectionConsumer{
		bus:         bus,
		alerter:     alerter,
		workers:     workers,
		maxRetries:  maxRetries,
		baseBackoff: baseBackoff,
		stop:        make(chan struct{}),
	}
}

func (c *DetectionConsumer) Start() {
	for range c.workers {
		c.wg.Add(1)
		go c.worker()
	}
}

// Stop closes the bus and waits for the workers to drain it. When ctx ends
// first, pending backoffs are abandoned.
func (c *DetectionConsumer) Stop(ctx context.Context) error {
	if c.bus != nil {
		c.bus.Close()
	}

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		c.stopOnce.Do(func() { close(c.stop) })
		return ctx.Err()
	}
}

func (c *DetectionConsumer) worker() {
	defer c.wg.Done()

	for event := range c.bus.Subscribe() {
		c.processEvent(event)
	}
}

func (c *DetectionConsumer) processEvent(event entity.DetectedTxEvent) {
	if c.alerter == nil {
		return
	}

	if event.EventID != "" {
		if _, loaded := c.seen.LoadOrStore(event.EventID, struct{}{}); loaded {
			slog.Info("skip duplicate detection event", "event_id", event.EventID, "pending_id", event.PendingID)
			return
		}
	}

	backoff := c.baseBackoff
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		err := c.alerter.Alert(context.Background(), event)
		if err == nil {
			return
		}

		if attempt == c.maxRetries {
			slog.Error("failed to alert detected transaction after retries",
				"event_id", event.EventID, "pending_id", event.PendingID, "attempts", attempt+1, "error", err)
			return
		}

		slog.Warn("alert attempt failed", "event_id", event.EventID, "attempt", attempt+1, "error", err)
		if !c.sleepBackoff(backoff) {
			return
		}
		backoff *= 2
	}
}

func (c *DetectionConsumer) sleepBackoff(d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-c.stop:
		return false
	}
}
