// Package campaign holds the in-memory registry of active price
// monitoring campaigns. State lives for the process lifetime; only
// trigger history is durable.
package campaign

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"solana-price-sentinel/internal/domain"
	"solana-price-sentinel/internal/idhash"
	"solana-price-sentinel/internal/pricefeed"
	"solana-price-sentinel/internal/solana"
)

// Sentinel errors surfaced by store operations.
var (
	ErrNotFound     = errors.New("campaign not found")
	ErrInvalidInput = errors.New("invalid input")
)

// Store is the authoritative map of campaign ID to Campaign. All reads
// return deep copies so callers never share memory with the scheduler.
type Store struct {
	feed   pricefeed.Feed
	logger *log.Logger

	mu         sync.RWMutex
	campaigns  map[string]*domain.Campaign
	alertIndex map[string]string // alert ID -> campaign ID
}

// NewStore creates a campaign store. The feed is used to capture the
// baseline price when a campaign starts.
func NewStore(feed pricefeed.Feed, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.New(os.Stdout, "[campaign] ", log.LstdFlags)
	}
	return &Store{
		feed:       feed,
		logger:     logger,
		campaigns:  make(map[string]*domain.Campaign),
		alertIndex: make(map[string]string),
	}
}

// StartCampaign validates the addresses, captures the current on-chain
// price as baseline, and registers a fresh campaign. When the feed
// cannot return a price the campaign is not created and the error wraps
// pricefeed.ErrUnavailable. Two calls with the same token create two
// independent campaigns.
func (s *Store) StartCampaign(ctx context.Context, tokenMint, poolAddress string) (*domain.Campaign, error) {
	if err := solana.ValidateAddress(tokenMint); err != nil {
		return nil, fmt.Errorf("%w: token mint: %v", ErrInvalidInput, err)
	}
	if err := solana.ValidateAddress(poolAddress); err != nil {
		return nil, fmt.Errorf("%w: pool address: %v", ErrInvalidInput, err)
	}

	quote, err := s.feed.LatestPrice(ctx, poolAddress)
	if err != nil {
		return nil, fmt.Errorf("fetch baseline price for pool %s: %w", poolAddress, err)
	}
	// A zero baseline would make every later change computation divide
	// by zero.
	if quote.PriceSOL <= 0 {
		return nil, fmt.Errorf("baseline price %.12g for pool %s: %w", quote.PriceSOL, poolAddress, pricefeed.ErrUnavailable)
	}

	now := time.Now().UnixMilli()
	c := &domain.Campaign{
		ID:            idhash.ComputeCampaignID(tokenMint, poolAddress, now),
		TokenMint:     tokenMint,
		PoolAddress:   poolAddress,
		BaselinePrice: quote.PriceSOL,
		Status:        domain.CampaignStatusActive,
		CreatedAt:     now,
		LastUpdatedAt: now,
	}

	s.mu.Lock()
	s.campaigns[c.ID] = c
	s.mu.Unlock()

	s.logger.Printf("campaign started: id=%s mint=%s pool=%s baseline=%.12g",
		c.ID[:8], tokenMint, poolAddress, c.BaselinePrice)

	return c.Clone(), nil
}

// StopCampaign marks the campaign stopped, excluding it from polling.
// Returns ErrNotFound when the campaign is unknown.
func (s *Store) StopCampaign(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.campaigns[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	c.Status = domain.CampaignStatusStopped
	c.LastUpdatedAt = time.Now().UnixMilli()

	s.logger.Printf("campaign stopped: id=%s", id[:8])
	return nil
}

// ResetCampaign re-captures the baseline from the latest known price,
// re-arms every attached alert, and recomputes change percent. An
// unknown campaign is a logged no-op, not an error.
func (s *Store) ResetCampaign(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.campaigns[id]
	if !ok {
		s.logger.Printf("reset ignored, unknown campaign: id=%s", id)
		return
	}

	if c.CurrentPrice != nil {
		c.BaselinePrice = *c.CurrentPrice
		zero := 0.0
		c.ChangePercent = &zero
	} else {
		c.ChangePercent = nil
	}
	for _, a := range c.Alerts {
		a.Fired = false
		a.FiredAt = nil
	}
	c.LastUpdatedAt = time.Now().UnixMilli()

	s.logger.Printf("campaign reset: id=%s baseline=%.12g alerts=%d",
		id[:8], c.BaselinePrice, len(c.Alerts))
}

// GetCampaign returns a copy of the campaign, or nil if unknown.
func (s *Store) GetCampaign(id string) *domain.Campaign {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.campaigns[id]
	if !ok {
		return nil
	}
	return c.Clone()
}

// GetActiveCampaigns returns copies of every campaign with status active.
func (s *Store) GetActiveCampaigns() []*domain.Campaign {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Campaign
	for _, c := range s.campaigns {
		if c.Status == domain.CampaignStatusActive {
			result = append(result, c.Clone())
		}
	}
	return result
}

// AddAlert attaches a new alert to a campaign. Returns nil (no error)
// when the campaign does not exist so the caller can surface a 404.
// An empty action list defaults to a single notification action.
func (s *Store) AddAlert(campaignID string, target float64, direction domain.Direction, priceType domain.PriceType, actions []domain.Action) (*domain.Alert, error) {
	if !domain.ValidDirection(direction) {
		return nil, fmt.Errorf("%w: direction %q", ErrInvalidInput, direction)
	}
	if !domain.ValidPriceType(priceType) {
		return nil, fmt.Errorf("%w: price type %q", ErrInvalidInput, priceType)
	}
	if len(actions) == 0 {
		actions = []domain.Action{domain.NotificationAction()}
	}
	for _, a := range actions {
		if err := a.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.campaigns[campaignID]
	if !ok {
		return nil, nil
	}

	now := time.Now().UnixMilli()
	alert := &domain.Alert{
		ID:         idhash.ComputeAlertID(campaignID, string(direction), string(priceType), target, now, len(c.Alerts)),
		CampaignID: campaignID,
		Direction:  direction,
		PriceType:  priceType,
		Target:     target,
		Actions:    actions,
		IsActive:   true,
		CreatedAt:  now,
	}
	c.Alerts = append(c.Alerts, alert)
	s.alertIndex[alert.ID] = campaignID

	s.logger.Printf("alert added: campaign=%s alert=%s %s %s target=%.12g actions=%d",
		campaignID[:8], alert.ID[:8], direction, priceType, target, len(actions))

	return alert.Clone(), nil
}

// UpdateAlertActions replaces the action list of an alert. Returns
// false when the alert is unknown or an action fails validation.
func (s *Store) UpdateAlertActions(alertID string, actions []domain.Action) bool {
	if len(actions) == 0 {
		actions = []domain.Action{domain.NotificationAction()}
	}
	for _, a := range actions {
		if err := a.Validate(); err != nil {
			s.logger.Printf("update alert %s rejected: %v", alertID, err)
			return false
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	alert := s.findAlertLocked(alertID)
	if alert == nil {
		return false
	}
	alert.Actions = append([]domain.Action(nil), actions...)
	return true
}

// DeleteAlert removes an alert from its campaign. Returns false when unknown.
func (s *Store) DeleteAlert(alertID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	campaignID, ok := s.alertIndex[alertID]
	if !ok {
		return false
	}
	c, ok := s.campaigns[campaignID]
	if !ok {
		delete(s.alertIndex, alertID)
		return false
	}

	for i, a := range c.Alerts {
		if a.ID == alertID {
			c.Alerts = append(c.Alerts[:i], c.Alerts[i+1:]...)
			break
		}
	}
	delete(s.alertIndex, alertID)
	return true
}

// GetAlerts returns copies of a campaign's alerts in insertion order.
func (s *Store) GetAlerts(campaignID string) []*domain.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.campaigns[campaignID]
	if !ok {
		return nil
	}
	result := make([]*domain.Alert, len(c.Alerts))
	for i, a := range c.Alerts {
		result[i] = a.Clone()
	}
	return result
}

// RecordPrice applies a successful poll result to a campaign and
// returns the updated snapshot. Returns ErrNotFound when the campaign
// is unknown or no longer active, so a late in-flight lookup for a
// stopped campaign is discarded instead of mutating state.
func (s *Store) RecordPrice(id string, quote *pricefeed.Quote) (*domain.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quote.PriceSOL <= 0 {
		return nil, fmt.Errorf("price %.12g for campaign %s: %w", quote.PriceSOL, id, pricefeed.ErrUnavailable)
	}

	c, ok := s.campaigns[id]
	if !ok || c.Status != domain.CampaignStatusActive {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	price := quote.PriceSOL
	c.CurrentPrice = &price
	c.CurrentPriceUSD = nil
	if quote.PriceUSD != nil {
		usd := *quote.PriceUSD
		c.CurrentPriceUSD = &usd
	}
	change := (price - c.BaselinePrice) / c.BaselinePrice * 100
	c.ChangePercent = &change
	c.LastUpdatedAt = time.Now().UnixMilli()

	return c.Clone(), nil
}

// MarkAlertFired sets the fired flag on an alert, enforcing at-most-once
// firing. Returns false when the alert is unknown, inactive, already
// fired, or its campaign is no longer active.
func (s *Store) MarkAlertFired(campaignID, alertID string, firedAt int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.campaigns[campaignID]
	if !ok || c.Status != domain.CampaignStatusActive {
		return false
	}
	for _, a := range c.Alerts {
		if a.ID != alertID {
			continue
		}
		if !a.IsActive || a.Fired {
			return false
		}
		a.Fired = true
		a.FiredAt = &firedAt
		return true
	}
	return false
}

// findAlertLocked returns the live alert for an ID. Caller holds s.mu.
func (s *Store) findAlertLocked(alertID string) *domain.Alert {
	campaignID, ok := s.alertIndex[alertID]
	if !ok {
		return nil
	}
	c, ok := s.campaigns[campaignID]
	if !ok {
		return nil
	}
	for _, a := range c.Alerts {
		if a.ID == alertID {
			return a
		}
	}
	return nil
}
