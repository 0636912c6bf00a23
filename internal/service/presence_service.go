package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cwrk-planet/room-broker/internal/domain"
	"github.com/cwrk-planet/room-broker/internal/metrics"
)

const (
	EventJoin  = "join"
	EventLeave = "leave"
)

type PresenceService struct {
	roomRepo        RoomStore
	participantRepo ParticipantStore
	metrics         *metrics.Metrics
	now             func() time.Time
}

func NewPresenceService(roomRepo RoomStore, participantRepo ParticipantStore, m *metrics.Metrics) *PresenceService {
	return &PresenceService{
		roomRepo:        roomRepo,
		participantRepo: participantRepo,
		metrics:         m,
		now:             time.Now,
	}
}

// Join — новая запись участника и +1 к счётчику комнаты.
// Повторный join создаёт ещё одну запись.
func (s *PresenceService) Join(ctx context.Context, roomID, userID string) error {
	if err := validateIDs(roomID, userID); err != nil {
		return err
	}

	p := &domain.Participant{
		UserID:   userID,
		RoomID:   roomID,
		JoinedAt: s.now().UTC(),
	}
	if err := s.participantRepo.Create(ctx, p); err != nil {
		return fmt.Errorf("%w: participantRepo.Create: %w", domain.ErrStorage, err)
	}
	if err := s.roomRepo.AddParticipants(ctx, roomID, 1); err != nil {
		return fmt.Errorf("%w: roomRepo.AddParticipants: %w", domain.ErrStorage, err)
	}
	s.metrics.PresenceEvent(EventJoin)

	return nil
}

// Leave закрывает последнюю открытую сессию и уменьшает счётчик.
// Счётчик уменьшается даже без открытой сессии и может стать отрицательным.
func (s *PresenceService) Leave(ctx context.Context, roomID, userID string) error {
	if err := validateIDs(roomID, userID); err != nil {
		return err
	}

	found, err := s.participantRepo.MarkLeft(ctx, roomID, userID, s.now().UTC())
	if err != nil {
		return fmt.Errorf("%w: participantRepo.MarkLeft: %w", domain.ErrStorage, err)
	}
	if !found {
		slog.DebugContext(ctx, "presence leave without open session", "room", roomID, "user", userID)
	}
	if err := s.roomRepo.AddParticipants(ctx, roomID, -1); err != nil {
		return fmt.Errorf("%w: roomRepo.AddParticipants: %w", domain.ErrStorage, err)
	}
	s.metrics.PresenceEvent(EventLeave)

	return nil
}

func validateIDs(roomID, userID string) error {
	if strings.TrimSpace(roomID) == "" || strings.TrimSpace(userID) == "" {
		return fmt.Errorf("%w: roomId and userId are required", domain.ErrInvalidInput)
	}
	return nil
}
