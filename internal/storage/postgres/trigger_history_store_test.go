package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-price-sentinel/internal/domain"
	"solana-price-sentinel/internal/storage"
)

func createTestTriggerRecord(triggerID, campaignID string, firedAt int64) *domain.TriggerRecord {
	return &domain.TriggerRecord{
		TriggerID:     triggerID,
		CampaignID:    campaignID,
		AlertID:       "alert-001",
		TokenMint:     "MintAddr111",
		PoolAddress:   "PoolAddr222",
		PriceSOL:      0.00065,
		PriceUSD:      ptr(0.12),
		ChangePercent: 62.5,
		Condition:     "above 50.00% from baseline",
		ActionsJSON:   `[{"kind":"notification"}]`,
		FiredAt:       firedAt,
	}
}

func TestTriggerHistoryStore_AppendAndGetByCampaignID(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewTriggerHistoryStore(pool)

	rec := createTestTriggerRecord("trig-001", "camp-001", 1000)
	require.NoError(t, store.Append(ctx, rec))

	got, err := store.GetByCampaignID(ctx, "camp-001")
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, rec.TriggerID, got[0].TriggerID)
	assert.Equal(t, rec.AlertID, got[0].AlertID)
	assert.Equal(t, rec.TokenMint, got[0].TokenMint)
	assert.Equal(t, rec.PoolAddress, got[0].PoolAddress)
	assert.InDelta(t, rec.PriceSOL, got[0].PriceSOL, 0.0000001)
	require.NotNil(t, got[0].PriceUSD)
	assert.InDelta(t, *rec.PriceUSD, *got[0].PriceUSD, 0.0001)
	assert.InDelta(t, rec.ChangePercent, got[0].ChangePercent, 0.0001)
	assert.Equal(t, rec.Condition, got[0].Condition)
	assert.Equal(t, rec.ActionsJSON, got[0].ActionsJSON)
	assert.Equal(t, rec.FiredAt, got[0].FiredAt)
}

func TestTriggerHistoryStore_AppendDuplicate(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewTriggerHistoryStore(pool)

	rec := createTestTriggerRecord("trig-001", "camp-001", 1000)
	require.NoError(t, store.Append(ctx, rec))

	err := store.Append(ctx, rec)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestTriggerHistoryStore_NullPriceUSD(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewTriggerHistoryStore(pool)

	rec := createTestTriggerRecord("trig-002", "camp-001", 2000)
	rec.PriceUSD = nil
	require.NoError(t, store.Append(ctx, rec))

	got, err := store.GetByCampaignID(ctx, "camp-001")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Nil(t, got[0].PriceUSD)
}

func TestTriggerHistoryStore_GetRecent(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewTriggerHistoryStore(pool)

	require.NoError(t, store.Append(ctx, createTestTriggerRecord("trig-a", "camp-1", 1000)))
	require.NoError(t, store.Append(ctx, createTestTriggerRecord("trig-b", "camp-1", 2000)))
	require.NoError(t, store.Append(ctx, createTestTriggerRecord("trig-c", "camp-2", 3000)))

	got, err := store.GetRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "trig-c", got[0].TriggerID)
	assert.Equal(t, "trig-b", got[1].TriggerID)
}
