package mongo

import (
	"context"
	"errors"

	"github.com/cwrk-planet/room-broker/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type RoomRepository struct {
	coll *mongo.Collection
}

func NewRoomRepository(db *mongo.Database) *RoomRepository {
	return &RoomRepository{coll: db.Collection(roomsCollection)}
}

func (r *RoomRepository) Create(ctx context.Context, room *domain.Room) error {
	_, err := r.coll.InsertOne(ctx, room)
	return err
}

func (r *RoomRepository) Get(ctx context.Context, roomID string) (*domain.Room, error) {
	var rm domain.Room
	err := r.coll.FindOne(ctx, bson.M{"roomId": roomID}).Decode(&rm)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRoomNotFound
		}
		return nil, err
	}
	return &rm, nil
}

// List — все комнаты в естественном порядке коллекции.
func (r *RoomRepository) List(ctx context.Context) ([]domain.Room, error) {
	cur, err := r.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	rooms := make([]domain.Room, 0)
	if err := cur.All(ctx, &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

// AddParticipants — атомарный $inc счётчика. Несуществующая комната не ошибка.
func (r *RoomRepository) AddParticipants(ctx context.Context, roomID string, delta int64) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"roomId": roomID},
		bson.M{"$inc": bson.M{"participantCount": delta}},
	)
	return err
}
