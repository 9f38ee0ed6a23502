package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sirosfoundation/go-wallet-registry/internal/domain"
	"github.com/sirosfoundation/go-wallet-registry/internal/storage"
)

// Store implements an in-memory storage
type Store struct {
	wallets *WalletStore
}

// NewStore creates a new in-memory store
func NewStore() *Store {
	return &Store{
		wallets: &WalletStore{data: make(map[string]*domain.WalletRecord)},
	}
}

func (s *Store) Wallets() storage.WalletStore   { return s.wallets }
func (s *Store) Close() error                   { return nil }
func (s *Store) Ping(ctx context.Context) error { return nil }

// WalletStore implements in-memory wallet storage
type WalletStore struct {
	mu   sync.RWMutex
	data map[string]*domain.WalletRecord // key: lowercase address
}

func (s *WalletStore) UpsertConnection(ctx context.Context, address, network string) (*domain.WalletRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()

	if record, exists := s.data[address]; exists {
		record.ConnectionCount++
		record.LastConnected = now
		record.Network = network
		record.IsActive = true
		return copyRecord(record), false, nil
	}

	record := &domain.WalletRecord{
		Address:         address,
		Network:         network,
		ConnectedAt:     now,
		LastConnected:   now,
		ConnectionCount: 1,
		IsActive:        true,
	}
	s.data[address] = record
	return copyRecord(record), true, nil
}

func (s *WalletStore) ListActive(ctx context.Context) ([]*domain.WalletRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]*domain.WalletRecord, 0, len(s.data))
	for _, record := range s.data {
		if record.IsActive {
			records = append(records, copyRecord(record))
		}
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].LastConnected.After(records[j].LastConnected)
	})
	return records, nil
}

func (s *WalletStore) GetActiveByAddress(ctx context.Context, address string) (*domain.WalletRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, exists := s.data[address]
	if !exists || !record.IsActive {
		return nil, storage.ErrNotFound
	}
	return copyRecord(record), nil
}

func (s *WalletStore) Deactivate(ctx context.Context, address string) (*domain.WalletRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, exists := s.data[address]
	if !exists {
		return nil, storage.ErrNotFound
	}

	record.IsActive = false
	return copyRecord(record), nil
}

// copyRecord returns a copy so callers cannot mutate stored state.
func copyRecord(record *domain.WalletRecord) *domain.WalletRecord {
	out := *record
	return &out
}
