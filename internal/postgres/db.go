package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Config struct {
	DSN             string
	MaxConns        int32
	MaxConnIdleTime time.Duration
	ApplicationName string // пусто — не устанавливать
}

// NewPool — *pgxpool.Pool с настройками из конфига и проверкой Ping().
func NewPool(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, err
	}
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	if cfg.MaxConnIdleTime > 0 {
		pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	if cfg.ApplicationName != "" {
		if pc.ConnConfig.RuntimeParams == nil {
			pc.ConnConfig.RuntimeParams = map[string]string{}
		}
		pc.ConnConfig.RuntimeParams["application_name"] = cfg.ApplicationName
	}

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS rooms (
	room_id           TEXT PRIMARY KEY,
	name              TEXT NOT NULL DEFAULT '',
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
	participant_count BIGINT NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS participants (
	id        BIGSERIAL PRIMARY KEY,
	user_id   TEXT NOT NULL,
	room_id   TEXT NOT NULL,
	token     TEXT NOT NULL DEFAULT '',
	joined_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	left_at   TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS participants_room_user_joined_idx
	ON participants (room_id, user_id, joined_at DESC);
`

func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schema)
	return err
}
