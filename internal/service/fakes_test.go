package service

import (
	"context"
	"sync"
	"time"

	"github.com/cwrk-planet/room-broker/internal/domain"
	"github.com/cwrk-planet/room-broker/internal/provider"
)

type fakeRooms struct {
	mu     sync.Mutex
	rooms  []domain.Room
	err    error // для всех операций
	incErr error
}

func (f *fakeRooms) Create(_ context.Context, room *domain.Room) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.rooms = append(f.rooms, *room)
	return nil
}

func (f *fakeRooms) Get(_ context.Context, roomID string) (*domain.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, r := range f.rooms {
		if r.RoomID == roomID {
			r := r
			return &r, nil
		}
	}
	return nil, domain.ErrRoomNotFound
}

func (f *fakeRooms) List(context.Context) ([]domain.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]domain.Room(nil), f.rooms...), nil
}

func (f *fakeRooms) AddParticipants(_ context.Context, roomID string, delta int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.incErr != nil {
		return f.incErr
	}
	for i := range f.rooms {
		if f.rooms[i].RoomID == roomID {
			f.rooms[i].ParticipantCount += delta
		}
	}
	return nil
}

func (f *fakeRooms) count(roomID string) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rooms {
		if r.RoomID == roomID {
			return r.ParticipantCount
		}
	}
	return 0
}

type fakeParticipants struct {
	mu   sync.Mutex
	list []domain.Participant
	err  error
}

func (f *fakeParticipants) Create(_ context.Context, p *domain.Participant) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.list = append(f.list, *p)
	return nil
}

func (f *fakeParticipants) MarkLeft(_ context.Context, roomID, userID string, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	idx := -1
	for i, p := range f.list {
		if p.RoomID != roomID || p.UserID != userID || p.LeftAt != nil {
			continue
		}
		if idx == -1 || !p.JoinedAt.Before(f.list[idx].JoinedAt) {
			idx = i
		}
	}
	if idx == -1 {
		return false, nil
	}
	f.list[idx].LeftAt = &at
	return true, nil
}

type fakeProvider struct {
	room  *provider.Room
	err   error
	calls int
}

func (f *fakeProvider) CreateRoom(context.Context, string) (*provider.Room, error) {
	f.calls++
	return f.room, f.err
}

type fakeSigner struct {
	err      error
	roomID   string
	role     string
	signedAt time.Time
}

func (f *fakeSigner) SignRoomToken(roomID, role string, now time.Time) (string, error) {
	f.roomID, f.role, f.signedAt = roomID, role, now
	if f.err != nil {
		return "", f.err
	}
	return "signed." + roomID + "." + role, nil
}
