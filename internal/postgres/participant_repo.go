package postgres

import (
	"context"
	"time"

	"github.com/cwrk-planet/room-broker/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type ParticipantRepository struct {
	db *pgxpool.Pool
}

func NewParticipantRepository(db *pgxpool.Pool) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

func (r *ParticipantRepository) Create(ctx context.Context, p *domain.Participant) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO participants (user_id, room_id, token, joined_at)
		VALUES ($1, $2, $3, $4)`,
		p.UserID, p.RoomID, p.Token, p.JoinedAt)
	return err
}

// MarkLeft закрывает последнюю открытую сессию пользователя в комнате.
func (r *ParticipantRepository) MarkLeft(ctx context.Context, roomID, userID string, at time.Time) (bool, error) {
	cmd, err := r.db.Exec(ctx, `
		UPDATE participants SET left_at = $3
		WHERE id = (
			SELECT id FROM participants
			WHERE room_id=$1 AND user_id=$2 AND left_at IS NULL
			ORDER BY joined_at DESC, id DESC
			LIMIT 1
		)`, roomID, userID, at)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}
