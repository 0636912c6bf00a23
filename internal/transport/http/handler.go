package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/cwrk-planet/room-broker/internal/domain"
	"github.com/cwrk-planet/room-broker/internal/service"
	"github.com/cwrk-planet/room-broker/pkg/httputil"
	"github.com/cwrk-planet/room-broker/pkg/logger"

	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 1 << 20

type RoomSvc interface {
	CreateRoom(ctx context.Context, name string) (*service.CreateRoomResult, error)
	GetRoom(ctx context.Context, roomID string) (*domain.Room, error)
	ListRooms(ctx context.Context) ([]domain.Room, error)
}

type TokenSvc interface {
	IssueToken(ctx context.Context, roomID, role string) (string, error)
}

type Handler struct {
	roomSvc  RoomSvc
	tokenSvc TokenSvc
}

func NewHandler(room RoomSvc, token TokenSvc) *Handler {
	return &Handler{
		roomSvc:  room,
		tokenSvc: token,
	}
}

// decodeJSON — пустое тело не ошибка.
func decodeJSON(r *http.Request, dst any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// POST /rooms
func (h *Handler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req CreateRoomRequest
	if err := decodeJSON(r, &req); err != nil {
		log.Warn("handler.CreateRoom.Decode", "err", err)
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	res, err := h.roomSvc.CreateRoom(r.Context(), req.RoomName)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			httputil.Error(w, http.StatusBadRequest, "roomName is required")
		case errors.Is(err, domain.ErrProvider):
			log.Error("handler.CreateRoom: provider", "err", err)
			httputil.Error(w, http.StatusBadGateway, "Failed to create room")
		default:
			log.Error("handler.CreateRoom", "err", err)
			httputil.Error(w, http.StatusInternalServerError, "Failed to create room")
		}
		return
	}

	if len(res.Payload) > 0 {
		httputil.RawJSON(w, http.StatusCreated, res.Payload)
		return
	}
	httputil.JSON(w, http.StatusCreated, toRoomItem(res.Room))
}

// POST /rooms/{roomId}/token
func (h *Handler) IssueToken(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	roomID := chi.URLParam(r, "roomId")

	var req TokenRequest
	if err := decodeJSON(r, &req); err != nil {
		log.Warn("handler.IssueToken.Decode", "err", err)
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	tok, err := h.tokenSvc.IssueToken(r.Context(), roomID, req.Role)
	if err != nil {
		if errors.Is(err, domain.ErrRoleNotAllowed) {
			httputil.Error(w, http.StatusBadRequest, "role not allowed")
			return
		}
		log.Error("handler.IssueToken", "room", roomID, "err", err)
		httputil.Error(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	httputil.JSON(w, http.StatusOK, TokenResponse{Token: tok})
}

// GET /rooms
func (h *Handler) ListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.roomSvc.ListRooms(r.Context())
	if err != nil {
		logger.FromContext(r.Context()).Error("handler.ListRooms", "err", err)
		httputil.Error(w, http.StatusInternalServerError, "Failed to list rooms")
		return
	}

	resp := RoomsListResponse{Rooms: make([]RoomItem, 0, len(rooms))}
	for _, rm := range rooms {
		resp.Rooms = append(resp.Rooms, toRoomItem(rm))
	}

	httputil.JSON(w, http.StatusOK, resp)
}

// GET /rooms/{roomId}
func (h *Handler) GetRoom(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomId")

	room, err := h.roomSvc.GetRoom(r.Context(), roomID)
	if err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			httputil.Error(w, http.StatusNotFound, "room not found")
			return
		}
		logger.FromContext(r.Context()).Error("handler.GetRoom", "room", roomID, "err", err)
		httputil.Error(w, http.StatusInternalServerError, "Failed to get room")
		return
	}

	httputil.JSON(w, http.StatusOK, toRoomItem(*room))
}

func toRoomItem(rm domain.Room) RoomItem {
	return RoomItem{
		RoomID:           rm.RoomID,
		Name:             rm.Name,
		CreatedAt:        rm.CreatedAt,
		ParticipantCount: rm.ParticipantCount,
	}
}
