package monitor

import (
	"context"
	"log"
	"sync"
	"time"

	"solana-price-sentinel/internal/domain"
	"solana-price-sentinel/internal/observability"
	"solana-price-sentinel/internal/storage"
)

// Default configuration values.
const (
	DefaultFlushInterval = 10 * time.Second
	DefaultMaxBuffer     = 1000
)

// Archiver subscribes to price_update events and batches the observed
// prices into the tick archive. Archiving is best-effort: a failed
// flush is logged and the batch dropped, never propagated back to the
// scheduler.
type Archiver struct {
	store         storage.PriceTickStore
	logger        *log.Logger
	flushInterval time.Duration
	maxBuffer     int

	mu      sync.Mutex
	buffer  []*domain.PriceTick
	flushCh chan []*domain.PriceTick
}

// ArchiverOptions contains configuration for creating an Archiver.
type ArchiverOptions struct {
	Store         storage.PriceTickStore
	FlushInterval time.Duration // Default: 10s
	MaxBuffer     int           // Default: 1000 ticks, flushes early when full
	Logger        *log.Logger
}

// NewArchiver creates a price tick archiver.
func NewArchiver(opts ArchiverOptions) *Archiver {
	flushInterval := opts.FlushInterval
	if flushInterval == 0 {
		flushInterval = DefaultFlushInterval
	}

	maxBuffer := opts.MaxBuffer
	if maxBuffer == 0 {
		maxBuffer = DefaultMaxBuffer
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Archiver{
		store:         opts.Store,
		logger:        logger,
		flushInterval: flushInterval,
		maxBuffer:     maxBuffer,
		flushCh:       make(chan []*domain.PriceTick, 1),
	}
}

var _ EventSink = (*Archiver)(nil)

// Publish buffers the campaign snapshot of a price_update event.
// Other event types are ignored.
func (a *Archiver) Publish(env domain.Envelope) {
	if env.Type != domain.EventPriceUpdate {
		return
	}
	c, ok := env.Data.(*domain.Campaign)
	if !ok || c.CurrentPrice == nil || c.ChangePercent == nil {
		return
	}

	tick := &domain.PriceTick{
		CampaignID:    c.ID,
		TimestampMs:   c.LastUpdatedAt,
		PriceSOL:      *c.CurrentPrice,
		ChangePercent: *c.ChangePercent,
	}
	if c.CurrentPriceUSD != nil {
		usd := *c.CurrentPriceUSD
		tick.PriceUSD = &usd
	}

	a.mu.Lock()
	a.buffer = append(a.buffer, tick)
	var batch []*domain.PriceTick
	if len(a.buffer) >= a.maxBuffer {
		batch = a.buffer
		a.buffer = nil
	}
	a.mu.Unlock()
	if batch == nil {
		return
	}

	// Hand the full batch to the Run loop so a slow insert never stalls
	// the publishing goroutine. If a batch is already pending, re-buffer
	// and let the next flush pick everything up.
	select {
	case a.flushCh <- batch:
	default:
		a.mu.Lock()
		a.buffer = append(batch, a.buffer...)
		a.mu.Unlock()
	}
}

// Run flushes the buffer on a fixed cadence until the context is
// cancelled, then performs a final flush.
func (a *Archiver) Run(ctx context.Context) error {
	ticker := time.NewTicker(a.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.Flush(context.Background())
			return ctx.Err()
		case batch := <-a.flushCh:
			a.write(ctx, batch)
		case <-ticker.C:
			a.Flush(ctx)
		}
	}
}

// Flush writes the buffered ticks, plus any batch already handed off,
// in one insert.
func (a *Archiver) Flush(ctx context.Context) {
	a.mu.Lock()
	batch := a.buffer
	a.buffer = nil
	a.mu.Unlock()

	select {
	case pending := <-a.flushCh:
		batch = append(pending, batch...)
	default:
	}

	a.write(ctx, batch)
}

func (a *Archiver) write(ctx context.Context, batch []*domain.PriceTick) {
	if len(batch) == 0 {
		return
	}

	start := time.Now()
	err := a.store.InsertBulk(ctx, batch)
	observability.RecordDBQuery("clickhouse", "insert_ticks", time.Since(start).Seconds(), err)
	if err != nil {
		a.logger.Printf("archive flush failed, dropping %d ticks: %v", len(batch), err)
		return
	}
	observability.RecordTicksArchived(len(batch))
}
