package memory

import (
	"context"
	"sort"
	"sync"

	"solana-price-sentinel/internal/domain"
	"solana-price-sentinel/internal/storage"
)

// WalletStore is an in-memory implementation of storage.WalletStore.
type WalletStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Wallet // keyed by wallet_id
}

// NewWalletStore creates a new in-memory wallet store.
func NewWalletStore() *WalletStore {
	return &WalletStore{
		data: make(map[string]*domain.Wallet),
	}
}

var _ storage.WalletStore = (*WalletStore)(nil)

// Insert adds a new wallet. Returns ErrDuplicateKey if wallet_id exists.
func (s *WalletStore) Insert(_ context.Context, w *domain.Wallet) error {
	if w == nil || w.WalletID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[w.WalletID]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *w
	s.data[w.WalletID] = &copy
	return nil
}

// GetByID retrieves a wallet by its ID. Returns ErrNotFound if not exists.
func (s *WalletStore) GetByID(_ context.Context, walletID string) (*domain.Wallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, exists := s.data[walletID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	copy := *w
	return &copy, nil
}

// GetByOwner retrieves all wallets for an owner, ordered by created_at ASC.
func (s *WalletStore) GetByOwner(_ context.Context, ownerUserID string) ([]*domain.Wallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Wallet
	for _, w := range s.data {
		if w.OwnerUserID == ownerUserID {
			copy := *w
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt != result[j].CreatedAt {
			return result[i].CreatedAt < result[j].CreatedAt
		}
		return result[i].WalletID < result[j].WalletID
	})

	return result, nil
}
