package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cwrk-planet/room-broker/config"
	"github.com/cwrk-planet/room-broker/internal/mongo"
	"github.com/cwrk-planet/room-broker/internal/postgres"
	"github.com/cwrk-planet/room-broker/internal/service"
)

type storage struct {
	rooms        service.RoomStore
	participants service.ParticipantStore
	close        func()
}

func openStorage(ctx context.Context, cfg *config.Config) (*storage, error) {
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, postgres.Config{
			DSN:             cfg.Storage.Postgres.DSN,
			ApplicationName: cfg.Logging.Service,
		})
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("postgres migrate: %w", err)
		}
		return &storage{
			rooms:        postgres.NewRoomRepository(pool),
			participants: postgres.NewParticipantRepository(pool),
			close:        pool.Close,
		}, nil

	default:
		client, db, err := mongo.Connect(ctx, mongo.Config{
			URI:      cfg.Storage.Mongo.URI,
			Database: cfg.Storage.Mongo.Database,
			Timeout:  cfg.Storage.Mongo.Timeout,
			AppName:  cfg.Logging.Service,
		})
		if err != nil {
			return nil, fmt.Errorf("mongo: %w", err)
		}
		if err := mongo.EnsureIndexes(ctx, db); err != nil {
			slog.Warn("mongo ensure indexes", "err", err)
		}
		return &storage{
			rooms:        mongo.NewRoomRepository(db),
			participants: mongo.NewParticipantRepository(db),
			close: func() {
				if err := client.Disconnect(context.Background()); err != nil {
					slog.Warn("mongo disconnect", "err", err)
				}
			},
		}, nil
	}
}
