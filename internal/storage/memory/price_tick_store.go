package memory

import (
	"context"
	"sort"
	"sync"

	"solana-price-sentinel/internal/domain"
	"solana-price-sentinel/internal/storage"
)

type tickKey struct {
	campaignID  string
	timestampMs int64
}

// PriceTickStore is an in-memory implementation of storage.PriceTickStore.
type PriceTickStore struct {
	mu   sync.RWMutex
	data map[tickKey]*domain.PriceTick
}

// NewPriceTickStore creates a new in-memory price tick store.
func NewPriceTickStore() *PriceTickStore {
	return &PriceTickStore{
		data: make(map[tickKey]*domain.PriceTick),
	}
}

var _ storage.PriceTickStore = (*PriceTickStore)(nil)

// InsertBulk adds multiple ticks. Fails entire batch on duplicate
// (campaign_id, timestamp_ms).
func (s *PriceTickStore) InsertBulk(_ context.Context, ticks []*domain.PriceTick) error {
	if len(ticks) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// First pass: check for duplicates (existing + intra-batch)
	batchKeys := make(map[tickKey]struct{}, len(ticks))
	for _, p := range ticks {
		if p == nil || p.CampaignID == "" {
			return storage.ErrInvalidInput
		}

		k := tickKey{p.CampaignID, p.TimestampMs}
		if _, exists := s.data[k]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[k]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[k] = struct{}{}
	}

	// Second pass: insert all
	for _, p := range ticks {
		copy := *p
		s.data[tickKey{p.CampaignID, p.TimestampMs}] = &copy
	}

	return nil
}

// GetByCampaignID retrieves all ticks for a campaign, ordered by timestamp ASC.
func (s *PriceTickStore) GetByCampaignID(_ context.Context, campaignID string) ([]*domain.PriceTick, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.PriceTick
	for _, p := range s.data {
		if p.CampaignID == campaignID {
			copy := *p
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].TimestampMs < result[j].TimestampMs
	})

	return result, nil
}

// GetByTimeRange retrieves ticks for a campaign within [start, end] (inclusive).
func (s *PriceTickStore) GetByTimeRange(_ context.Context, campaignID string, start, end int64) ([]*domain.PriceTick, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.PriceTick
	for _, p := range s.data {
		if p.CampaignID == campaignID && p.TimestampMs >= start && p.TimestampMs <= end {
			copy := *p
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].TimestampMs < result[j].TimestampMs
	})

	return result, nil
}
