package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sirosfoundation/go-wallet-registry/internal/domain"
	"github.com/sirosfoundation/go-wallet-registry/internal/storage"
	"github.com/sirosfoundation/go-wallet-registry/pkg/config"
)

// Store implements MongoDB storage
type Store struct {
	client   *mongo.Client
	database *mongo.Database
	cfg      *config.MongoDBConfig

	wallets *WalletStore
}

// NewStore creates a new MongoDB store
func NewStore(ctx context.Context, cfg *config.MongoDBConfig) (*Store, error) {
	clientOptions := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(time.Duration(cfg.Timeout) * time.Second)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	database := client.Database(cfg.Database)

	s := &Store{
		client:   client,
		database: database,
		cfg:      cfg,
		wallets:  &WalletStore{collection: database.Collection("wallets")},
	}

	if err := s.createIndexes(ctx); err != nil {
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}

	return s, nil
}

func (s *Store) createIndexes(ctx context.Context) error {
	// Unique index on address makes duplicate creation impossible under
	// concurrent first-connects; connected_at index serves the list scan.
	_, err := s.wallets.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "address", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "connected_at", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create wallet indexes: %w", err)
	}
	return nil
}

func (s *Store) Wallets() storage.WalletStore { return s.wallets }

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// WalletStore implements MongoDB wallet storage
type WalletStore struct {
	collection *mongo.Collection
}

func (s *WalletStore) UpsertConnection(ctx context.Context, address, network string) (*domain.WalletRecord, bool, error) {
	now := time.Now()

	// Single conditional update instead of find-then-insert so concurrent
	// first-connects from the same address cannot race past the unique index.
	filter := bson.M{"address": address}
	update := bson.M{
		"$inc": bson.M{"connection_count": 1},
		"$set": bson.M{
			"network":        network,
			"last_connected": now,
			"is_active":      true,
		},
		"$setOnInsert": bson.M{
			"address":      address,
			"connected_at": now,
		},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var record domain.WalletRecord
	if err := s.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&record); err != nil {
		return nil, false, fmt.Errorf("failed to upsert wallet: %w", err)
	}

	return &record, record.ConnectionCount == 1, nil
}

func (s *WalletStore) ListActive(ctx context.Context) ([]*domain.WalletRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "last_connected", Value: -1}})

	cursor, err := s.collection.Find(ctx, bson.M{"is_active": true}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list wallets: %w", err)
	}
	defer cursor.Close(ctx)

	records := make([]*domain.WalletRecord, 0)
	for cursor.Next(ctx) {
		var record domain.WalletRecord
		if err := cursor.Decode(&record); err != nil {
			return nil, fmt.Errorf("failed to decode wallet: %w", err)
		}
		records = append(records, &record)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate wallets: %w", err)
	}
	return records, nil
}

func (s *WalletStore) GetActiveByAddress(ctx context.Context, address string) (*domain.WalletRecord, error) {
	var record domain.WalletRecord
	err := s.collection.FindOne(ctx, bson.M{"address": address, "is_active": true}).Decode(&record)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	return &record, nil
}

func (s *WalletStore) Deactivate(ctx context.Context, address string) (*domain.WalletRecord, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var record domain.WalletRecord
	err := s.collection.FindOneAndUpdate(ctx,
		bson.M{"address": address},
		bson.M{"$set": bson.M{"is_active": false}},
		opts,
	).Decode(&record)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to deactivate wallet: %w", err)
	}
	return &record, nil
}
