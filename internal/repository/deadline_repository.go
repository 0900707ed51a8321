package repository

import (
	"context"
	"errors"
	"time"

	"github.com/minutesdesk/minutes-manager/internal/apperr"
	"github.com/minutesdesk/minutes-manager/internal/models"
	"github.com/minutesdesk/minutes-manager/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DeadlineRepository handles database operations related to deadlines.
type DeadlineRepository struct {
	collection *mongo.Collection
}

// NewDeadlineRepository creates a new instance of DeadlineRepository.
func NewDeadlineRepository(db *mongo.Database) *DeadlineRepository {
	return &DeadlineRepository{
		collection: db.Collection("deadlines"),
	}
}

// Insert persists a new deadline.
func (r *DeadlineRepository) Insert(ctx context.Context, deadline *models.Deadline) (*models.Deadline, error) {
	deadline.CreatedAt = time.Now()
	deadline.UpdatedAt = deadline.CreatedAt

	result, err := r.collection.InsertOne(ctx, deadline)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to insert deadline")
		return nil, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		logger.Log.Error("Failed to cast inserted deadline ID")
		return nil, errors.New("unexpected inserted ID type")
	}
	deadline.ID = insertedID

	logger.Log.WithField("deadline_id", deadline.ID.Hex()).Info("Deadline created successfully")
	return deadline, nil
}

// FindByID fetches a deadline by its ID.
func (r *DeadlineRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Deadline, error) {
	var deadline models.Deadline

	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&deadline)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.ErrNotFound
		}
		logger.Log.WithError(err).WithField("deadline_id", id.Hex()).Error("Failed to find deadline by ID")
		return nil, err
	}

	return &deadline, nil
}

// Update applies a partial update to a deadline and returns the new document.
func (r *DeadlineRepository) Update(ctx context.Context, id primitive.ObjectID, set bson.M, unset bson.M) (*models.Deadline, error) {
	set["updated_at"] = time.Now()

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var deadline models.Deadline
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&deadline)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.ErrNotFound
		}
		logger.Log.WithError(err).WithField("deadline_id", id.Hex()).Error("Failed to update deadline")
		return nil, err
	}

	return &deadline, nil
}

// Delete removes a deadline by its ID.
func (r *DeadlineRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		logger.Log.WithError(err).WithField("deadline_id", id.Hex()).Error("Failed to delete deadline")
		return err
	}
	if result.DeletedCount == 0 {
		return apperr.ErrNotFound
	}

	logger.Log.WithField("deadline_id", id.Hex()).Info("Deadline deleted successfully")
	return nil
}

// FindDueBefore returns every deadline due strictly before the given midnight
// that is not done yet. Feeds the overdue sweep.
func (r *DeadlineRepository) FindDueBefore(ctx context.Context, before time.Time) ([]models.Deadline, error) {
	filter := bson.M{
		"due_date": bson.M{"$lt": before},
		"status":   bson.M{"$ne": models.StatusDone},
	}
	return r.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "due_date", Value: 1}}))
}

// FindDueBetween returns open deadlines with from <= due_date <= to.
func (r *DeadlineRepository) FindDueBetween(ctx context.Context, from, to time.Time) ([]models.Deadline, error) {
	filter := bson.M{
		"due_date":  bson.M{"$gte": from, "$lte": to},
		"completed": false,
		"status":    bson.M{"$ne": models.StatusDone},
	}
	return r.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "due_date", Value: 1}}))
}

// FindByMinute returns all deadlines attached to a minute, soonest first.
func (r *DeadlineRepository) FindByMinute(ctx context.Context, minuteID primitive.ObjectID) ([]models.Deadline, error) {
	return r.find(ctx, bson.M{"minute_id": minuteID}, options.Find().SetSort(bson.D{{Key: "due_date", Value: 1}}))
}

// FindByCreator returns all deadlines created by a user, soonest first.
func (r *DeadlineRepository) FindByCreator(ctx context.Context, creatorID primitive.ObjectID) ([]models.Deadline, error) {
	return r.find(ctx, bson.M{"creator_id": creatorID}, options.Find().SetSort(bson.D{{Key: "due_date", Value: 1}}))
}

// SetStatus persists a status transition.
func (r *DeadlineRepository) SetStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"status": status, "updated_at": time.Now()},
	})
	if err != nil {
		logger.Log.WithError(err).WithField("deadline_id", id.Hex()).Error("Failed to set deadline status")
	}
	return err
}

func (r *DeadlineRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Deadline, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to query deadlines")
		return nil, err
	}
	defer cursor.Close(ctx)

	var deadlines []models.Deadline
	if err := cursor.All(ctx, &deadlines); err != nil {
		logger.Log.WithError(err).Error("Failed to decode deadlines")
		return nil, err
	}
	return deadlines, nil
}
