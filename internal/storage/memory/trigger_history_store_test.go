package memory

import (
	"context"
	"errors"
	"testing"

	"solana-price-sentinel/internal/domain"
	"solana-price-sentinel/internal/storage"
)

func TestTriggerHistoryStore_AppendAndGet(t *testing.T) {
	store := NewTriggerHistoryStore()
	ctx := context.Background()

	rec := &domain.TriggerRecord{
		TriggerID:     "trig1",
		CampaignID:    "camp1",
		AlertID:       "alert1",
		TokenMint:     "MintA",
		PoolAddress:   "PoolA",
		PriceSOL:      0.0005,
		ChangePercent: 60.0,
		Condition:     "above 50.00% from baseline",
		ActionsJSON:   `[{"kind":"notification"}]`,
		FiredAt:       1000,
	}

	if err := store.Append(ctx, rec); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	got, err := store.GetByCampaignID(ctx, "camp1")
	if err != nil {
		t.Fatalf("GetByCampaignID failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(got))
	}
	if got[0].ChangePercent != 60.0 {
		t.Errorf("ChangePercent mismatch: got %f, want 60.0", got[0].ChangePercent)
	}
}

func TestTriggerHistoryStore_DuplicateKey(t *testing.T) {
	store := NewTriggerHistoryStore()
	ctx := context.Background()

	rec := &domain.TriggerRecord{TriggerID: "trig1", CampaignID: "camp1", FiredAt: 1000}

	if err := store.Append(ctx, rec); err != nil {
		t.Fatalf("First append failed: %v", err)
	}

	err := store.Append(ctx, rec)
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestTriggerHistoryStore_GetByCampaignID_Ordering(t *testing.T) {
	store := NewTriggerHistoryStore()
	ctx := context.Background()

	for _, r := range []*domain.TriggerRecord{
		{TriggerID: "c", CampaignID: "camp1", FiredAt: 3000},
		{TriggerID: "a", CampaignID: "camp1", FiredAt: 1000},
		{TriggerID: "b", CampaignID: "camp1", FiredAt: 2000},
		{TriggerID: "other", CampaignID: "camp2", FiredAt: 500},
	} {
		if err := store.Append(ctx, r); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	got, err := store.GetByCampaignID(ctx, "camp1")
	if err != nil {
		t.Fatalf("GetByCampaignID failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(got))
	}
	for i, want := range []int64{1000, 2000, 3000} {
		if got[i].FiredAt != want {
			t.Errorf("Record %d: FiredAt = %d, want %d", i, got[i].FiredAt, want)
		}
	}
}

func TestTriggerHistoryStore_GetRecent(t *testing.T) {
	store := NewTriggerHistoryStore()
	ctx := context.Background()

	for _, r := range []*domain.TriggerRecord{
		{TriggerID: "a", CampaignID: "camp1", FiredAt: 1000},
		{TriggerID: "b", CampaignID: "camp1", FiredAt: 2000},
		{TriggerID: "c", CampaignID: "camp2", FiredAt: 3000},
	} {
		if err := store.Append(ctx, r); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	got, err := store.GetRecent(ctx, 2)
	if err != nil {
		t.Fatalf("GetRecent failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(got))
	}
	if got[0].TriggerID != "c" || got[1].TriggerID != "b" {
		t.Errorf("Unexpected order: %s, %s", got[0].TriggerID, got[1].TriggerID)
	}

	if _, err := store.GetRecent(ctx, 0); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for limit 0, got %v", err)
	}
}
