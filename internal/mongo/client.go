package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	roomsCollection        = "rooms"
	participantsCollection = "participants"
)

type Config struct {
	URI      string
	Database string
	Timeout  time.Duration // connect + ping
	AppName  string        // пусто — не выставлять
}

// Connect — создаёт клиента, проверяет Ping() и возвращает БД из конфига.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	opts := options.Client().ApplyURI(cfg.URI).SetServerSelectionTimeout(timeout)
	if cfg.AppName != "" {
		opts.SetAppName(cfg.AppName)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, err
	}

	return client, client.Database(cfg.Database), nil
}

// EnsureIndexes — неуникальные индексы под выборки по комнате и пользователю.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	if _, err := db.Collection(roomsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "roomId", Value: 1}},
	}); err != nil {
		return err
	}

	_, err := db.Collection(participantsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "roomId", Value: 1},
			{Key: "userId", Value: 1},
			{Key: "joinedAt", Value: -1},
		},
	})

	return err
}
