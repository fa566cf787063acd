package monitor

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"solana-price-sentinel/internal/campaign"
	"solana-price-sentinel/internal/domain"
	"solana-price-sentinel/internal/observability"
	"solana-price-sentinel/internal/pricefeed"
)

// Default configuration values.
const (
	DefaultPollInterval = 2 * time.Second
	DefaultFetchTimeout = 5 * time.Second
)

// Scheduler polls every active campaign on a fixed cadence, applies
// price updates, evaluates alerts, and fans out events. Campaigns are
// polled independently within a tick: a slow or failing feed lookup for
// one token never stalls the others, and a lookup still in flight when
// a newer tick starts has its result discarded on arrival.
type Scheduler struct {
	store      *campaign.Store
	feed       pricefeed.Feed
	dispatcher TriggerDispatcher
	sinks      []EventSink
	logger     *log.Logger

	pollInterval time.Duration
	fetchTimeout time.Duration

	tickGen atomic.Int64
	wg      sync.WaitGroup
}

// SchedulerOptions contains configuration for creating a Scheduler.
type SchedulerOptions struct {
	Store        *campaign.Store
	Feed         pricefeed.Feed
	Dispatcher   TriggerDispatcher // may be nil; fired alerts are then broadcast only
	Sinks        []EventSink
	PollInterval time.Duration // Default: 2s
	FetchTimeout time.Duration // Default: 5s per price lookup
	Logger       *log.Logger
}

// NewScheduler creates a polling scheduler.
func NewScheduler(opts SchedulerOptions) *Scheduler {
	pollInterval := opts.PollInterval
	if pollInterval == 0 {
		pollInterval = DefaultPollInterval
	}

	fetchTimeout := opts.FetchTimeout
	if fetchTimeout == 0 {
		fetchTimeout = DefaultFetchTimeout
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Scheduler{
		store:        opts.Store,
		feed:         opts.Feed,
		dispatcher:   opts.Dispatcher,
		sinks:        opts.Sinks,
		logger:       logger,
		pollInterval: pollInterval,
		fetchTimeout: fetchTimeout,
	}
}

// Subscribe registers an event sink. Not safe to call after Run starts.
func (s *Scheduler) Subscribe(sink EventSink) {
	s.sinks = append(s.sinks, sink)
}

// Run starts the polling loop. It blocks until the context is cancelled,
// then waits for in-flight campaign work to finish.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Printf("scheduler started, poll interval %v, fetch timeout %v", s.pollInterval, s.fetchTimeout)

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.wg.Wait()
			s.logger.Println("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// tick snapshots the active campaigns and polls each in its own
// goroutine so the next tick is never blocked on a slow feed.
func (s *Scheduler) tick(ctx context.Context) {
	gen := s.tickGen.Add(1)
	campaigns := s.store.GetActiveCampaigns()
	observability.RecordTick(len(campaigns))

	for _, c := range campaigns {
		s.wg.Add(1)
		go func(c *domain.Campaign) {
			defer s.wg.Done()
			defer func() {
				if r := recover(); r != nil {
					s.logger.Printf("panic polling campaign %s: %v", c.ID, r)
				}
			}()
			s.pollCampaign(ctx, gen, c)
		}(c)
	}
}

// pollCampaign fetches the latest price for one campaign and applies it.
// Any failure skips the campaign for this tick without touching state.
func (s *Scheduler) pollCampaign(ctx context.Context, gen int64, c *domain.Campaign) {
	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	start := time.Now()
	quote, err := s.feed.LatestPrice(fetchCtx, c.PoolAddress)
	observability.RecordPriceFetch(err == nil, time.Since(start))
	if err != nil {
		s.logger.Printf("price fetch failed for campaign %s (pool %s): %v", c.ID[:8], c.PoolAddress, err)
		return
	}

	// A newer tick has started since this lookup went out: the result
	// is stale and must not clobber fresher state.
	if s.tickGen.Load() != gen {
		return
	}

	snap, err := s.store.RecordPrice(c.ID, quote)
	if err != nil {
		// Campaign stopped or removed mid-tick, discard.
		return
	}

	s.publish(domain.Envelope{Type: domain.EventPriceUpdate, Data: snap})

	s.evaluateAlerts(snap)
}

// evaluateAlerts walks the snapshot's alerts in insertion order. Every
// satisfied alert is fired independently; one firing never suppresses
// evaluation of the rest.
func (s *Scheduler) evaluateAlerts(snap *domain.Campaign) {
	for _, a := range snap.Alerts {
		if !ShouldFire(a, snap) {
			continue
		}

		firedAt := time.Now().UnixMilli()
		if !s.store.MarkAlertFired(snap.ID, a.ID, firedAt) {
			// Lost the race to another tick, or the campaign stopped.
			continue
		}
		observability.RecordAlertFired()

		fired := a.Clone()
		fired.Fired = true
		fired.FiredAt = &firedAt

		ev := &domain.TriggerEvent{
			CampaignID:    snap.ID,
			TokenMint:     snap.TokenMint,
			PoolAddress:   snap.PoolAddress,
			PriceSOL:      *snap.CurrentPrice,
			PriceUSD:      snap.CurrentPriceUSD,
			ChangePercent: *snap.ChangePercent,
			Alert:         fired,
			FiredAt:       firedAt,
		}

		s.logger.Printf("alert triggered: campaign=%s alert=%s %s %s target=%.12g observed price=%.12g change=%.4f%%",
			snap.ID[:8], a.ID[:8], a.Direction, a.PriceType, a.Target, ev.PriceSOL, ev.ChangePercent)

		s.publish(domain.Envelope{Type: domain.EventAlertTriggered, Data: ev})

		if s.dispatcher != nil {
			// Action execution runs outside the polling path so a slow
			// webhook or trade call cannot delay the next tick.
			s.wg.Add(1)
			go func(ev *domain.TriggerEvent) {
				defer s.wg.Done()
				defer func() {
					if r := recover(); r != nil {
						s.logger.Printf("panic dispatching alert %s: %v", ev.Alert.ID, r)
					}
				}()
				s.dispatcher.Dispatch(ev)
			}(ev)
		}
	}
}

func (s *Scheduler) publish(env domain.Envelope) {
	for _, sink := range s.sinks {
		sink.Publish(env)
	}
}
