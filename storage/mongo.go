package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/openrp/fuel-stations/game/world"
)

const (
	vehicleCollectionName   = "vehicles"
	characterCollectionName = "characters"

	mongoOperationTimeout = 5 * time.Second
)

// MongoStore persists fuel records in the vehicles collection and cash in
// the characters collection.
type MongoStore struct {
	client     *mongo.Client
	vehicles   *mongo.Collection
	characters *mongo.Collection
	log        zerolog.Logger
}

type characterDocument struct {
	PlayerID world.PlayerID `bson:"player_id"`
	Cash     float64        `bson:"cash"`
}

// ConnectMongo connects to MongoDB, verifies the connection, and ensures the
// unique indexes the store relies on.
func ConnectMongo(ctx context.Context, uri, database string, log zerolog.Logger) (*MongoStore, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	db := client.Database(database)
	store := &MongoStore{
		client:     client,
		vehicles:   db.Collection(vehicleCollectionName),
		characters: db.Collection(characterCollectionName),
		log:        log,
	}

	for _, idx := range []struct {
		coll *mongo.Collection
		key  string
		name string
	}{
		{store.vehicles, "vehicle_id", "vehicles_vehicle_id_unique"},
		{store.characters, "player_id", "characters_player_id_unique"},
	} {
		_, err := idx.coll.Indexes().CreateOne(connectCtx, mongo.IndexModel{
			Keys:    bson.D{{Key: idx.key, Value: 1}},
			Options: options.Index().SetUnique(true).SetName(idx.name),
		})
		if err != nil {
			_ = client.Disconnect(context.Background())
			return nil, fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}

	log.Info().Str("database", database).Msg("connected to mongo")
	return store, nil
}

// Close disconnects the underlying client.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// FuelRecord implements Ledger.
func (s *MongoStore) FuelRecord(ctx context.Context, id world.VehicleID) (FuelRecord, bool, error) {
	opCtx, cancel := context.WithTimeout(ctx, mongoOperationTimeout)
	defer cancel()

	var rec FuelRecord
	err := s.vehicles.FindOne(opCtx, bson.M{"vehicle_id": id}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return FuelRecord{}, false, nil
	}
	if err != nil {
		return FuelRecord{}, false, fmt.Errorf("fuel record query failed: %w", err)
	}
	return rec, true, nil
}

// SetFuel implements Ledger with an upsert on the vehicle document.
func (s *MongoStore) SetFuel(ctx context.Context, id world.VehicleID, fuel float64) error {
	opCtx, cancel := context.WithTimeout(ctx, mongoOperationTimeout)
	defer cancel()

	start := time.Now()
	_, err := s.vehicles.UpdateOne(opCtx,
		bson.M{"vehicle_id": id},
		bson.M{"$set": bson.M{"fuel": fuel}},
		options.Update().SetUpsert(true),
	)
	s.log.Debug().Str("vehicle", string(id)).Dur("took", time.Since(start)).Msg("fuel persisted")
	if err != nil {
		return fmt.Errorf("fuel record write failed: %w", err)
	}
	return nil
}

// Balance implements Wallet. Unknown players hold zero.
func (s *MongoStore) Balance(ctx context.Context, id world.PlayerID) (float64, error) {
	opCtx, cancel := context.WithTimeout(ctx, mongoOperationTimeout)
	defer cancel()

	var doc characterDocument
	err := s.characters.FindOne(opCtx, bson.M{"player_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("balance query failed: %w", err)
	}
	return doc.Cash, nil
}

// Debit implements Wallet. The balance check and decrement run as a single
// conditional update so concurrent debits never overdraw.
func (s *MongoStore) Debit(ctx context.Context, id world.PlayerID, amount float64) error {
	opCtx, cancel := context.WithTimeout(ctx, mongoOperationTimeout)
	defer cancel()

	res, err := s.characters.UpdateOne(opCtx,
		bson.M{"player_id": id, "cash": bson.M{"$gte": amount}},
		bson.M{"$inc": bson.M{"cash": -amount}},
	)
	if err != nil {
		return fmt.Errorf("debit failed: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrInsufficientFunds
	}
	return nil
}

// Credit implements Wallet with an upsert.
func (s *MongoStore) Credit(ctx context.Context, id world.PlayerID, amount float64) error {
	opCtx, cancel := context.WithTimeout(ctx, mongoOperationTimeout)
	defer cancel()

	_, err := s.characters.UpdateOne(opCtx,
		bson.M{"player_id": id},
		bson.M{"$inc": bson.M{"cash": amount}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("credit failed: %w", err)
	}
	return nil
}
