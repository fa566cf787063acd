package memory

import (
	"context"
	"sort"
	"sync"

	"solana-price-sentinel/internal/domain"
	"solana-price-sentinel/internal/storage"
)

// TriggerHistoryStore is an in-memory implementation of storage.TriggerHistoryStore.
type TriggerHistoryStore struct {
	mu   sync.RWMutex
	data map[string]*domain.TriggerRecord // keyed by trigger_id
}

// NewTriggerHistoryStore creates a new in-memory trigger history store.
func NewTriggerHistoryStore() *TriggerHistoryStore {
	return &TriggerHistoryStore{
		data: make(map[string]*domain.TriggerRecord),
	}
}

var _ storage.TriggerHistoryStore = (*TriggerHistoryStore)(nil)

// Append adds a new trigger record. Returns ErrDuplicateKey if trigger_id exists.
func (s *TriggerHistoryStore) Append(_ context.Context, r *domain.TriggerRecord) error {
	if r == nil || r.TriggerID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[r.TriggerID]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *r
	s.data[r.TriggerID] = &copy
	return nil
}

// GetByCampaignID retrieves all records for a campaign, ordered by fired_at ASC.
func (s *TriggerHistoryStore) GetByCampaignID(_ context.Context, campaignID string) ([]*domain.TriggerRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.TriggerRecord
	for _, r := range s.data {
		if r.CampaignID == campaignID {
			copy := *r
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].FiredAt != result[j].FiredAt {
			return result[i].FiredAt < result[j].FiredAt
		}
		return result[i].TriggerID < result[j].TriggerID
	})

	return result, nil
}

// GetRecent retrieves up to limit records, ordered by fired_at DESC.
func (s *TriggerHistoryStore) GetRecent(_ context.Context, limit int) ([]*domain.TriggerRecord, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.TriggerRecord, 0, len(s.data))
	for _, r := range s.data {
		copy := *r
		result = append(result, &copy)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].FiredAt != result[j].FiredAt {
			return result[i].FiredAt > result[j].FiredAt
		}
		return result[i].TriggerID < result[j].TriggerID
	})

	if len(result) > limit {
		result = result[:limit]
	}

	return result, nil
}
