package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"solana-price-sentinel/internal/domain"
	"solana-price-sentinel/internal/storage"
)

// TriggerHistoryStore implements storage.TriggerHistoryStore using PostgreSQL.
type TriggerHistoryStore struct {
	pool *Pool
}

// NewTriggerHistoryStore creates a new TriggerHistoryStore.
func NewTriggerHistoryStore(pool *Pool) *TriggerHistoryStore {
	return &TriggerHistoryStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TriggerHistoryStore = (*TriggerHistoryStore)(nil)

// Append adds a new trigger record. Returns ErrDuplicateKey if trigger_id exists.
func (s *TriggerHistoryStore) Append(ctx context.Context, r *domain.TriggerRecord) error {
	query := `
		INSERT INTO trigger_history (
			trigger_id, campaign_id, alert_id, token_mint, pool_address,
			price_sol, price_usd, change_percent, condition, actions_json, fired_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9, $10, $11
		)
	`

	_, err := s.pool.Exec(ctx, query,
		r.TriggerID, r.CampaignID, r.AlertID, r.TokenMint, r.PoolAddress,
		r.PriceSOL, r.PriceUSD, r.ChangePercent, r.Condition, r.ActionsJSON, r.FiredAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("append trigger record: %w", err)
	}
	return nil
}

// GetByCampaignID retrieves all records for a campaign, ordered by fired_at ASC.
func (s *TriggerHistoryStore) GetByCampaignID(ctx context.Context, campaignID string) ([]*domain.TriggerRecord, error) {
	query := `
		SELECT
			trigger_id, campaign_id, alert_id, token_mint, pool_address,
			price_sol, price_usd, change_percent, condition, actions_json, fired_at
		FROM trigger_history
		WHERE campaign_id = $1
		ORDER BY fired_at ASC, trigger_id ASC
	`

	rows, err := s.pool.Query(ctx, query, campaignID)
	if err != nil {
		return nil, fmt.Errorf("get trigger records by campaign id: %w", err)
	}
	defer rows.Close()

	return scanTriggerRecords(rows)
}

// GetRecent retrieves up to limit records, ordered by fired_at DESC.
func (s *TriggerHistoryStore) GetRecent(ctx context.Context, limit int) ([]*domain.TriggerRecord, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidInput
	}

	query := `
		SELECT
			trigger_id, campaign_id, alert_id, token_mint, pool_address,
			price_sol, price_usd, change_percent, condition, actions_json, fired_at
		FROM trigger_history
		ORDER BY fired_at DESC, trigger_id ASC
		LIMIT $1
	`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("get recent trigger records: %w", err)
	}
	defer rows.Close()

	return scanTriggerRecords(rows)
}

// scanTriggerRecords scans multiple rows into a slice of TriggerRecord.
func scanTriggerRecords(rows pgx.Rows) ([]*domain.TriggerRecord, error) {
	var records []*domain.TriggerRecord

	for rows.Next() {
		var r domain.TriggerRecord

		err := rows.Scan(
			&r.TriggerID, &r.CampaignID, &r.AlertID, &r.TokenMint, &r.PoolAddress,
			&r.PriceSOL, &r.PriceUSD, &r.ChangePercent, &r.Condition, &r.ActionsJSON, &r.FiredAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan trigger record row: %w", err)
		}

		records = append(records, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trigger record rows: %w", err)
	}

	return records, nil
}
