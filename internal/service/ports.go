package service

import (
	"context"
	"time"

	"github.com/cwrk-planet/room-broker/internal/domain"
	"github.com/cwrk-planet/room-broker/internal/provider"
)

type RoomStore interface {
	Create(ctx context.Context, room *domain.Room) error
	Get(ctx context.Context, roomID string) (*domain.Room, error)
	List(ctx context.Context) ([]domain.Room, error)
	AddParticipants(ctx context.Context, roomID string, delta int64) error
}

type ParticipantStore interface {
	Create(ctx context.Context, p *domain.Participant) error
	MarkLeft(ctx context.Context, roomID, userID string, at time.Time) (bool, error)
}

type RoomProvider interface {
	CreateRoom(ctx context.Context, name string) (*provider.Room, error)
}

type TokenSigner interface {
	SignRoomToken(roomID, role string, now time.Time) (string, error)
}
