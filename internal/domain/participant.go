package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Participant — одна сессия пользователя в комнате (запись на каждый join).
type Participant struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	UserID   string             `bson:"userId" json:"userId"`
	RoomID   string             `bson:"roomId" json:"roomId"`
	Token    string             `bson:"token,omitempty" json:"token,omitempty"`
	JoinedAt time.Time          `bson:"joinedAt" json:"joinedAt"`
	LeftAt   *time.Time         `bson:"leftAt" json:"leftAt,omitempty"`
}
