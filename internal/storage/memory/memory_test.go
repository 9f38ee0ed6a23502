package memory

import (
	"context"
	"testing"

	"github.com/sirosfoundation/go-wallet-registry/internal/storage"
)

const testAddress = "0xabcdef0000000000000000000000000000000001"

func TestNewStore(t *testing.T) {
	store := NewStore()

	if store == nil {
		t.Fatal("NewStore() returned nil")
	}

	if store.wallets == nil {
		t.Error("NewStore() wallet store not initialized")
	}
}

func TestWalletStore_UpsertConnection_Create(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	record, created, err := store.Wallets().UpsertConnection(ctx, testAddress, "Ethereum Mainnet")
	if err != nil {
		t.Fatalf("UpsertConnection() error = %v", err)
	}
	if !created {
		t.Error("UpsertConnection() created = false, want true")
	}
	if record.Address != testAddress {
		t.Errorf("Address = %q, want %q", record.Address, testAddress)
	}
	if record.ConnectionCount != 1 {
		t.Errorf("ConnectionCount = %d, want 1", record.ConnectionCount)
	}
	if !record.IsActive {
		t.Error("IsActive = false, want true")
	}
	if record.LastConnected.Before(record.ConnectedAt) {
		t.Error("LastConnected is before ConnectedAt")
	}
}

func TestWalletStore_UpsertConnection_Reconnect(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	first, _, err := store.Wallets().UpsertConnection(ctx, testAddress, "Ethereum Mainnet")
	if err != nil {
		t.Fatalf("UpsertConnection() error = %v", err)
	}

	second, created, err := store.Wallets().UpsertConnection(ctx, testAddress, "Polygon Mainnet")
	if err != nil {
		t.Fatalf("UpsertConnection() error = %v", err)
	}
	if created {
		t.Error("UpsertConnection() created = true on reconnect, want false")
	}
	if second.ConnectionCount != 2 {
		t.Errorf("ConnectionCount = %d, want 2", second.ConnectionCount)
	}
	if second.Network != "Polygon Mainnet" {
		t.Errorf("Network = %q, want overwrite to %q", second.Network, "Polygon Mainnet")
	}
	if second.ConnectedAt != first.ConnectedAt {
		t.Error("ConnectedAt changed on reconnect")
	}
	if second.LastConnected.Before(first.LastConnected) {
		t.Error("LastConnected went backwards on reconnect")
	}
}

func TestWalletStore_UpsertConnection_Reactivates(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	if _, _, err := store.Wallets().UpsertConnection(ctx, testAddress, "Ethereum Mainnet"); err != nil {
		t.Fatalf("UpsertConnection() error = %v", err)
	}
	if _, err := store.Wallets().Deactivate(ctx, testAddress); err != nil {
		t.Fatalf("Deactivate() error = %v", err)
	}

	record, created, err := store.Wallets().UpsertConnection(ctx, testAddress, "Ethereum Mainnet")
	if err != nil {
		t.Fatalf("UpsertConnection() error = %v", err)
	}
	if created {
		t.Error("reconnect of a deactivated wallet reported created = true")
	}
	if !record.IsActive {
		t.Error("IsActive = false after reconnect, want true")
	}
	if record.ConnectionCount != 2 {
		t.Errorf("ConnectionCount = %d, want 2 (counter continues, not reset)", record.ConnectionCount)
	}
}

func TestWalletStore_ListActive(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	addresses := []string{
		"0x0000000000000000000000000000000000000001",
		"0x0000000000000000000000000000000000000002",
		"0x0000000000000000000000000000000000000003",
	}
	for _, address := range addresses {
		if _, _, err := store.Wallets().UpsertConnection(ctx, address, "Ethereum Mainnet"); err != nil {
			t.Fatalf("UpsertConnection(%s) error = %v", address, err)
		}
	}
	if _, err := store.Wallets().Deactivate(ctx, addresses[1]); err != nil {
		t.Fatalf("Deactivate() error = %v", err)
	}

	records, err := store.Wallets().ListActive(ctx)
	if err != nil {
		t.Fatalf("ListActive() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("ListActive() returned %d records, want 2", len(records))
	}
	for _, record := range records {
		if !record.IsActive {
			t.Errorf("ListActive() returned inactive record %s", record.Address)
		}
		if record.Address == addresses[1] {
			t.Error("ListActive() returned a deactivated wallet")
		}
	}
	// Most recently connected first.
	if records[0].LastConnected.Before(records[1].LastConnected) {
		t.Error("ListActive() not sorted by last_connected descending")
	}
}

func TestWalletStore_GetActiveByAddress(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	if _, err := store.Wallets().GetActiveByAddress(ctx, testAddress); err != storage.ErrNotFound {
		t.Errorf("GetActiveByAddress(unknown) error = %v, want ErrNotFound", err)
	}

	if _, _, err := store.Wallets().UpsertConnection(ctx, testAddress, "Ethereum Mainnet"); err != nil {
		t.Fatalf("UpsertConnection() error = %v", err)
	}

	record, err := store.Wallets().GetActiveByAddress(ctx, testAddress)
	if err != nil {
		t.Fatalf("GetActiveByAddress() error = %v", err)
	}
	if record.Address != testAddress {
		t.Errorf("Address = %q, want %q", record.Address, testAddress)
	}

	// Deactivated records are hidden from active lookup.
	if _, err := store.Wallets().Deactivate(ctx, testAddress); err != nil {
		t.Fatalf("Deactivate() error = %v", err)
	}
	if _, err := store.Wallets().GetActiveByAddress(ctx, testAddress); err != storage.ErrNotFound {
		t.Errorf("GetActiveByAddress(deactivated) error = %v, want ErrNotFound", err)
	}
}

func TestWalletStore_Deactivate(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	if _, err := store.Wallets().Deactivate(ctx, testAddress); err != storage.ErrNotFound {
		t.Errorf("Deactivate(unknown) error = %v, want ErrNotFound", err)
	}

	if _, _, err := store.Wallets().UpsertConnection(ctx, testAddress, "Ethereum Mainnet"); err != nil {
		t.Fatalf("UpsertConnection() error = %v", err)
	}

	record, err := store.Wallets().Deactivate(ctx, testAddress)
	if err != nil {
		t.Fatalf("Deactivate() error = %v", err)
	}
	if record.IsActive {
		t.Error("IsActive = true after Deactivate")
	}

	// Idempotent: deactivating again succeeds.
	record, err = store.Wallets().Deactivate(ctx, testAddress)
	if err != nil {
		t.Fatalf("second Deactivate() error = %v", err)
	}
	if record.IsActive {
		t.Error("IsActive = true after second Deactivate")
	}
}

func TestWalletStore_CopySemantics(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	record, _, err := store.Wallets().UpsertConnection(ctx, testAddress, "Ethereum Mainnet")
	if err != nil {
		t.Fatalf("UpsertConnection() error = %v", err)
	}

	record.Network = "mutated"

	got, err := store.Wallets().GetActiveByAddress(ctx, testAddress)
	if err != nil {
		t.Fatalf("GetActiveByAddress() error = %v", err)
	}
	if got.Network != "Ethereum Mainnet" {
		t.Error("mutating a returned record leaked into the store")
	}
}
