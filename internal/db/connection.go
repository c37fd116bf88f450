package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/besuhoff/skyline-blaster-go/internal/config"
)

const (
	mongoDatabase   = "skyline_blaster"
	leaderboardName = "leaderboard"
)

// MongoStore keeps the leaderboard in a MongoDB collection
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// ConnectMongo establishes a connection to MongoDB and prepares the
// leaderboard collection
func ConnectMongo(ctx context.Context, mongoURL string) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURL))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("pinging mongodb: %w", err)
	}

	store := &MongoStore{
		client:     client,
		collection: client.Database(mongoDatabase).Collection(leaderboardName),
	}

	if err := store.createIndexes(ctx); err != nil {
		slog.Warn("failed to create leaderboard indexes", "error", err)
	}

	return store, nil
}

func (s *MongoStore) createIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "score", Value: -1}},
		},
	})
	return err
}

func (s *MongoStore) RecordKill(ctx context.Context, shooter, victim string) error {
	for _, delta := range killDeltas(shooter, victim, config.KillScore) {
		if err := s.apply(ctx, delta); err != nil {
			return err
		}
	}
	return nil
}

func (s *MongoStore) RecordBuildingDestroyed(ctx context.Context, shooter string) error {
	return s.apply(ctx, statDelta{name: shooter, score: config.BuildingScore, buildings: 1})
}

func (s *MongoStore) apply(ctx context.Context, delta statDelta) error {
	update := bson.M{
		"$inc": bson.M{
			"score":     delta.score,
			"kills":     delta.kills,
			"buildings": delta.buildings,
			"deaths":    delta.deaths,
		},
		"$set": bson.M{
			"updated_at": time.Now(),
		},
	}

	opts := options.Update().SetUpsert(true)
	if _, err := s.collection.UpdateOne(ctx, bson.M{"name": delta.name}, update, opts); err != nil {
		return fmt.Errorf("updating leaderboard entry %q: %w", delta.name, err)
	}
	return nil
}

// TopScores returns the top N entries
func (s *MongoStore) TopScores(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "score", Value: -1}, {Key: "name", Value: 1}}).
		SetLimit(int64(limit))
	cursor, err := s.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("querying leaderboard: %w", err)
	}
	defer cursor.Close(ctx)

	entries := []LeaderboardEntry{}
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("decoding leaderboard: %w", err)
	}
	return entries, nil
}

// Close disconnects the client
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
