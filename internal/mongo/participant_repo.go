package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/cwrk-planet/room-broker/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ParticipantRepository struct {
	coll *mongo.Collection
}

func NewParticipantRepository(db *mongo.Database) *ParticipantRepository {
	return &ParticipantRepository{coll: db.Collection(participantsCollection)}
}

func (r *ParticipantRepository) Create(ctx context.Context, p *domain.Participant) error {
	res, err := r.coll.InsertOne(ctx, p)
	if err != nil {
		return err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		p.ID = id
	}
	return nil
}

// MarkLeft проставляет leftAt у самой свежей открытой сессии.
// false — открытой сессии не нашлось.
func (r *ParticipantRepository) MarkLeft(ctx context.Context, roomID, userID string, at time.Time) (bool, error) {
	filter := bson.M{"roomId": roomID, "userId": userID, "leftAt": nil}
	update := bson.M{"$set": bson.M{"leftAt": at}}
	opts := options.FindOneAndUpdate().SetSort(bson.D{{Key: "joinedAt", Value: -1}})

	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
