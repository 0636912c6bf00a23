package http

import "time"

type CreateRoomRequest struct {
	RoomName string `json:"roomName"`
}

type TokenRequest struct {
	Role string `json:"role"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

type RoomItem struct {
	RoomID           string    `json:"roomId"`
	Name             string    `json:"name"`
	CreatedAt        time.Time `json:"createdAt"`
	ParticipantCount int64     `json:"participantCount"`
}

type RoomsListResponse struct {
	Rooms []RoomItem `json:"rooms"`
}
