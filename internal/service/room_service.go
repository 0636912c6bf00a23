package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cwrk-planet/room-broker/internal/domain"
	"github.com/cwrk-planet/room-broker/internal/metrics"
)

type RoomService struct {
	provider RoomProvider
	roomRepo RoomStore
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewRoomService(p RoomProvider, roomRepo RoomStore, m *metrics.Metrics) *RoomService {
	return &RoomService{
		provider: p,
		roomRepo: roomRepo,
		metrics:  m,
		now:      time.Now,
	}
}

type CreateRoomResult struct {
	Room    domain.Room
	Payload json.RawMessage // ответ провайдера без изменений
}

// CreateRoom создаёт комнату у провайдера и сохраняет её локально.
// При ошибке провайдера ничего не сохраняется.
func (s *RoomService) CreateRoom(ctx context.Context, name string) (*CreateRoomResult, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: empty room name", domain.ErrInvalidInput)
	}

	pr, err := s.provider.CreateRoom(ctx, name)
	if err != nil {
		s.metrics.ProviderError()
		if !errors.Is(err, domain.ErrProvider) {
			err = fmt.Errorf("%w: %w", domain.ErrProvider, err)
		}
		return nil, err
	}

	room := domain.Room{
		RoomID:           pr.ID,
		Name:             name,
		CreatedAt:        s.now().UTC(),
		ParticipantCount: 0,
	}
	if err := s.roomRepo.Create(ctx, &room); err != nil {
		return nil, fmt.Errorf("%w: roomRepo.Create: %w", domain.ErrStorage, err)
	}
	s.metrics.RoomCreated()

	return &CreateRoomResult{Room: room, Payload: pr.Raw}, nil
}

// GetRoom возвращает комнату по ID провайдера.
func (s *RoomService) GetRoom(ctx context.Context, roomID string) (*domain.Room, error) {
	room, err := s.roomRepo.Get(ctx, roomID)
	if err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			return nil, domain.ErrRoomNotFound
		}
		return nil, fmt.Errorf("%w: roomRepo.Get: %w", domain.ErrStorage, err)
	}
	return room, nil
}

// ListRooms — все комнаты в порядке хранилища.
func (s *RoomService) ListRooms(ctx context.Context) ([]domain.Room, error) {
	rooms, err := s.roomRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: roomRepo.List: %w", domain.ErrStorage, err)
	}
	if rooms == nil {
		rooms = []domain.Room{}
	}
	return rooms, nil
}
