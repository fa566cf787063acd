package storage

import (
	"context"

	"solana-price-sentinel/internal/domain"
)

// TriggerHistoryStore provides access to trigger_history storage.
// Rows are append-only: one per alert firing, never updated.
type TriggerHistoryStore interface {
	// Append adds a new trigger record. Returns ErrDuplicateKey if trigger_id exists.
	Append(ctx context.Context, r *domain.TriggerRecord) error

	// GetByCampaignID retrieves all records for a campaign, ordered by fired_at ASC.
	GetByCampaignID(ctx context.Context, campaignID string) ([]*domain.TriggerRecord, error)

	// GetRecent retrieves up to limit records, ordered by fired_at DESC.
	GetRecent(ctx context.Context, limit int) ([]*domain.TriggerRecord, error)
}

// WalletStore provides access to wallets storage.
type WalletStore interface {
	// Insert adds a new wallet. Returns ErrDuplicateKey if wallet_id exists.
	Insert(ctx context.Context, w *domain.Wallet) error

	// GetByID retrieves a wallet by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, walletID string) (*domain.Wallet, error)

	// GetByOwner retrieves all wallets for an owner, ordered by created_at ASC.
	GetByOwner(ctx context.Context, ownerUserID string) ([]*domain.Wallet, error)
}

// PriceTickStore provides access to the price_ticks archive.
type PriceTickStore interface {
	// InsertBulk adds multiple ticks. Fails entire batch on duplicate
	// (campaign_id, timestamp_ms).
	InsertBulk(ctx context.Context, ticks []*domain.PriceTick) error

	// GetByCampaignID retrieves all ticks for a campaign, ordered by timestamp ASC.
	GetByCampaignID(ctx context.Context, campaignID string) ([]*domain.PriceTick, error)

	// GetByTimeRange retrieves ticks for a campaign within [start, end] (inclusive).
	GetByTimeRange(ctx context.Context, campaignID string, start, end int64) ([]*domain.PriceTick, error)
}
