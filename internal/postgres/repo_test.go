package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/cwrk-planet/room-broker/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// Интеграционный тест; без TEST_DATABASE_URL пропускается.
func TestRepositories(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	pool, err := NewPool(ctx, Config{DSN: dsn, ApplicationName: "room-broker-test"})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, Migrate(ctx, pool))

	rooms := NewRoomRepository(pool)
	parts := NewParticipantRepository(pool)

	roomID := uuid.NewString()
	require.NoError(t, rooms.Create(ctx, &domain.Room{RoomID: roomID, Name: "it", CreatedAt: time.Now()}))

	_, err = rooms.Get(ctx, uuid.NewString())
	require.ErrorIs(t, err, domain.ErrRoomNotFound)

	now := time.Now()
	require.NoError(t, parts.Create(ctx, &domain.Participant{UserID: "u1", RoomID: roomID, JoinedAt: now.Add(-time.Minute)}))
	require.NoError(t, parts.Create(ctx, &domain.Participant{UserID: "u1", RoomID: roomID, JoinedAt: now}))
	require.NoError(t, rooms.AddParticipants(ctx, roomID, 2))

	ok, err := parts.MarkLeft(ctx, roomID, "u1", now.Add(time.Second))
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, rooms.AddParticipants(ctx, roomID, -1))

	ok, err = parts.MarkLeft(ctx, roomID, "ghost", now)
	require.NoError(t, err)
	require.False(t, ok)

	// закрыта только последняя сессия
	var open, closed int
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT count(*) FILTER (WHERE left_at IS NULL), count(*) FILTER (WHERE left_at IS NOT NULL)
		 FROM participants WHERE room_id=$1`, roomID).Scan(&open, &closed))
	require.Equal(t, 1, open)
	require.Equal(t, 1, closed)

	var newestLeft bool
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT left_at IS NOT NULL FROM participants WHERE room_id=$1 ORDER BY joined_at DESC LIMIT 1`,
		roomID).Scan(&newestLeft))
	require.True(t, newestLeft)

	rm, err := rooms.Get(ctx, roomID)
	require.NoError(t, err)
	require.EqualValues(t, 1, rm.ParticipantCount)
	require.Equal(t, "it", rm.Name)
}
