package repository

import (
	"context"
	"errors"

	"github.com/minutesdesk/minutes-manager/internal/apperr"
	"github.com/minutesdesk/minutes-manager/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MinuteRepository is the read-only view of the meeting-minute records the
// deadline engine hangs off. Minutes are owned elsewhere; the engine only
// checks existence and reads display fields for reminder messages.
type MinuteRepository struct {
	collection *mongo.Collection
}

func NewMinuteRepository(db *mongo.Database) *MinuteRepository {
	return &MinuteRepository{
		collection: db.Collection("minutes"),
	}
}

// FindByID fetches a minute by its ID.
func (r *MinuteRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Minute, error) {
	var minute models.Minute
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&minute)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &minute, nil
}
