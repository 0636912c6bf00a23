package domain

import "time"

// Room — комната у провайдера видеоконференций.
// ParticipantCount меняется только атомарной дельтой из presence и может уйти в минус.
type Room struct {
	RoomID           string    `bson:"roomId" json:"roomId"`
	Name             string    `bson:"name" json:"name"`
	CreatedAt        time.Time `bson:"createdAt" json:"createdAt"`
	ParticipantCount int64     `bson:"participantCount" json:"participantCount"`
}
