package memory

import (
	"context"
	"errors"
	"testing"

	"solana-price-sentinel/internal/domain"
	"solana-price-sentinel/internal/storage"
)

func TestWalletStore_InsertAndGet(t *testing.T) {
	store := NewWalletStore()
	ctx := context.Background()

	w := &domain.Wallet{
		WalletID:    "wallet1",
		Address:     "So11111111111111111111111111111111111111112",
		OwnerUserID: "user1",
		Label:       "main",
		CreatedAt:   1000,
	}

	if err := store.Insert(ctx, w); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := store.GetByID(ctx, "wallet1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Address != w.Address {
		t.Errorf("Address mismatch: got %s, want %s", got.Address, w.Address)
	}
	if got.OwnerUserID != "user1" {
		t.Errorf("OwnerUserID mismatch: got %s", got.OwnerUserID)
	}
}

func TestWalletStore_NotFound(t *testing.T) {
	store := NewWalletStore()

	_, err := store.GetByID(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestWalletStore_GetByOwner(t *testing.T) {
	store := NewWalletStore()
	ctx := context.Background()

	for _, w := range []*domain.Wallet{
		{WalletID: "w2", Address: "B", OwnerUserID: "user1", CreatedAt: 2000},
		{WalletID: "w1", Address: "A", OwnerUserID: "user1", CreatedAt: 1000},
		{WalletID: "w3", Address: "C", OwnerUserID: "user2", CreatedAt: 500},
	} {
		if err := store.Insert(ctx, w); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	got, err := store.GetByOwner(ctx, "user1")
	if err != nil {
		t.Fatalf("GetByOwner failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 wallets, got %d", len(got))
	}
	if got[0].WalletID != "w1" || got[1].WalletID != "w2" {
		t.Errorf("Unexpected order: %s, %s", got[0].WalletID, got[1].WalletID)
	}
}
