package postgres

import (
	"context"
	"fmt"

	"solana-price-sentinel/internal/domain"
	"solana-price-sentinel/internal/storage"
)

// WalletStore implements storage.WalletStore using PostgreSQL.
type WalletStore struct {
	pool *Pool
}

// NewWalletStore creates a new WalletStore.
func NewWalletStore(pool *Pool) *WalletStore {
	return &WalletStore{pool: pool}
}

// Compile-time interface check.
var _ storage.WalletStore = (*WalletStore)(nil)

// Insert adds a new wallet. Returns ErrDuplicateKey if wallet_id exists.
func (s *WalletStore) Insert(ctx context.Context, w *domain.Wallet) error {
	query := `
		INSERT INTO wallets (wallet_id, address, owner_user_id, label, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := s.pool.Exec(ctx, query, w.WalletID, w.Address, w.OwnerUserID, w.Label, w.CreatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert wallet: %w", err)
	}
	return nil
}

// GetByID retrieves a wallet by its ID. Returns ErrNotFound if not exists.
func (s *WalletStore) GetByID(ctx context.Context, walletID string) (*domain.Wallet, error) {
	query := `
		SELECT wallet_id, address, owner_user_id, label, created_at
		FROM wallets
		WHERE wallet_id = $1
	`

	var w domain.Wallet
	err := s.pool.QueryRow(ctx, query, walletID).Scan(
		&w.WalletID, &w.Address, &w.OwnerUserID, &w.Label, &w.CreatedAt,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get wallet by id: %w", err)
	}
	return &w, nil
}

// GetByOwner retrieves all wallets for an owner, ordered by created_at ASC.
func (s *WalletStore) GetByOwner(ctx context.Context, ownerUserID string) ([]*domain.Wallet, error) {
	query := `
		SELECT wallet_id, address, owner_user_id, label, created_at
		FROM wallets
		WHERE owner_user_id = $1
		ORDER BY created_at ASC, wallet_id ASC
	`

	rows, err := s.pool.Query(ctx, query, ownerUserID)
	if err != nil {
		return nil, fmt.Errorf("get wallets by owner: %w", err)
	}
	defer rows.Close()

	var wallets []*domain.Wallet
	for rows.Next() {
		var w domain.Wallet
		if err := rows.Scan(&w.WalletID, &w.Address, &w.OwnerUserID, &w.Label, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan wallet row: %w", err)
		}
		wallets = append(wallets, &w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wallet rows: %w", err)
	}

	return wallets, nil
}
