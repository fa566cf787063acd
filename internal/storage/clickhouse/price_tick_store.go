package clickhouse

import (
	"context"
	"fmt"

	"solana-price-sentinel/internal/domain"
	"solana-price-sentinel/internal/storage"
)

// PriceTickStore implements storage.PriceTickStore using ClickHouse.
type PriceTickStore struct {
	conn *Conn
}

// NewPriceTickStore creates a new PriceTickStore.
func NewPriceTickStore(conn *Conn) *PriceTickStore {
	return &PriceTickStore{conn: conn}
}

// Compile-time interface check.
var _ storage.PriceTickStore = (*PriceTickStore)(nil)

// InsertBulk adds multiple ticks. Fails the entire batch when it contains
// duplicate (campaign_id, timestamp_ms) keys.
func (s *PriceTickStore) InsertBulk(ctx context.Context, ticks []*domain.PriceTick) error {
	if len(ticks) == 0 {
		return nil
	}

	// Check for intra-batch duplicates
	type key struct {
		campaignID  string
		timestampMs int64
	}
	seen := make(map[key]struct{})
	for _, p := range ticks {
		k := key{p.CampaignID, p.TimestampMs}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO price_ticks (
			campaign_id, timestamp_ms, price_sol, price_usd, change_percent
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, p := range ticks {
		err = batch.Append(
			p.CampaignID, uint64(p.TimestampMs), p.PriceSOL, p.PriceUSD, p.ChangePercent,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByCampaignID retrieves all ticks for a campaign, ordered by timestamp ASC.
func (s *PriceTickStore) GetByCampaignID(ctx context.Context, campaignID string) ([]*domain.PriceTick, error) {
	query := `
		SELECT campaign_id, timestamp_ms, price_sol, price_usd, change_percent
		FROM price_ticks
		WHERE campaign_id = ?
		ORDER BY timestamp_ms ASC
	`

	rows, err := s.conn.Query(ctx, query, campaignID)
	if err != nil {
		return nil, fmt.Errorf("get ticks by campaign id: %w", err)
	}
	defer rows.Close()

	return scanPriceTicks(rows)
}

// GetByTimeRange retrieves ticks for a campaign within [start, end] (inclusive).
func (s *PriceTickStore) GetByTimeRange(ctx context.Context, campaignID string, start, end int64) ([]*domain.PriceTick, error) {
	query := `
		SELECT campaign_id, timestamp_ms, price_sol, price_usd, change_percent
		FROM price_ticks
		WHERE campaign_id = ? AND timestamp_ms >= ? AND timestamp_ms <= ?
		ORDER BY timestamp_ms ASC
	`

	rows, err := s.conn.Query(ctx, query, campaignID, uint64(start), uint64(end))
	if err != nil {
		return nil, fmt.Errorf("get ticks by time range: %w", err)
	}
	defer rows.Close()

	return scanPriceTicks(rows)
}

type tickRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanPriceTicks(rows tickRows) ([]*domain.PriceTick, error) {
	var ticks []*domain.PriceTick

	for rows.Next() {
		var (
			t           domain.PriceTick
			timestampMs uint64
		)
		if err := rows.Scan(&t.CampaignID, &timestampMs, &t.PriceSOL, &t.PriceUSD, &t.ChangePercent); err != nil {
			return nil, fmt.Errorf("scan price tick row: %w", err)
		}
		t.TimestampMs = int64(timestampMs)
		ticks = append(ticks, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate price tick rows: %w", err)
	}

	return ticks, nil
}
