package postgres

import (
	"context"
	"errors"

	"github.com/cwrk-planet/room-broker/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RoomRepository struct {
	db *pgxpool.Pool
}

func NewRoomRepository(db *pgxpool.Pool) *RoomRepository {
	return &RoomRepository{db: db}
}

func (r *RoomRepository) Create(ctx context.Context, room *domain.Room) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO rooms (room_id, name, created_at, participant_count)
		VALUES ($1, $2, $3, $4)`,
		room.RoomID, room.Name, room.CreatedAt, room.ParticipantCount)
	return err
}

func (r *RoomRepository) Get(ctx context.Context, roomID string) (*domain.Room, error) {
	var rm domain.Room
	err := r.db.QueryRow(ctx,
		`SELECT room_id, name, created_at, participant_count FROM rooms WHERE room_id=$1`, roomID).
		Scan(&rm.RoomID, &rm.Name, &rm.CreatedAt, &rm.ParticipantCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRoomNotFound
		}
		return nil, err
	}
	return &rm, nil
}

func (r *RoomRepository) List(ctx context.Context) ([]domain.Room, error) {
	rows, err := r.db.Query(ctx,
		`SELECT room_id, name, created_at, participant_count FROM rooms ORDER BY created_at, room_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rooms := make([]domain.Room, 0)
	for rows.Next() {
		var rm domain.Room
		if err := rows.Scan(&rm.RoomID, &rm.Name, &rm.CreatedAt, &rm.ParticipantCount); err != nil {
			return nil, err
		}
		rooms = append(rooms, rm)
	}
	return rooms, rows.Err()
}

// AddParticipants — дельта одним UPDATE, без чтения в приложение.
func (r *RoomRepository) AddParticipants(ctx context.Context, roomID string, delta int64) error {
	_, err := r.db.Exec(ctx,
		`UPDATE rooms SET participant_count = participant_count + $2 WHERE room_id=$1`,
		roomID, delta)
	return err
}
