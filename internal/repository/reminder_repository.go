package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/minutesdesk/minutes-manager/internal/apperr"
	"github.com/minutesdesk/minutes-manager/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ReminderRepository owns the reminder rows. The delivery write also touches
// the deadline counters, so it holds both collections and the client for
// transactions.
type ReminderRepository struct {
	client     *mongo.Client
	collection *mongo.Collection
	deadlines  *mongo.Collection
}

func NewReminderRepository(db *mongo.Database) *ReminderRepository {
	return &ReminderRepository{
		client:     db.Client(),
		collection: db.Collection("reminders"),
		deadlines:  db.Collection("deadlines"),
	}
}

// Deliver persists a reminder marked as delivered and bumps the deadline's
// reminder counters. The reminder insert, the counter increment and the
// last-reminder timestamp are one transaction: a crash must not leave a
// delivered reminder unaccounted for.
func (r *ReminderRepository) Deliver(ctx context.Context, reminder *models.Reminder) (*models.Reminder, error) {
	now := time.Now()
	reminder.CreatedAt = now
	reminder.Delivered = true
	reminder.DeliveredAt = &now

	session, err := r.client.StartSession()
	if err != nil {
		return nil, fmt.Errorf("failed to start session: %v", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		result, err := r.collection.InsertOne(sc, reminder)
		if err != nil {
			return nil, err
		}
		insertedID, ok := result.InsertedID.(primitive.ObjectID)
		if !ok {
			return nil, errors.New("unexpected inserted ID type")
		}
		reminder.ID = insertedID

		_, err = r.deadlines.UpdateOne(sc, bson.M{"_id": reminder.DeadlineID}, bson.M{
			"$inc": bson.M{"reminder_count": 1},
			"$set": bson.M{"last_reminder_at": now, "updated_at": now},
		})
		return nil, err
	})
	if err != nil {
		logrus.WithError(err).WithField("deadline_id", reminder.DeadlineID.Hex()).Error("Failed to deliver reminder")
		return nil, err
	}

	return reminder, nil
}

// HasDeliveredSince reports whether a delivered reminder already exists for
// the deadline/recipient pair on or after the given instant. This is the
// dedup guard's lookup.
func (r *ReminderRepository) HasDeliveredSince(ctx context.Context, deadlineID, recipientID primitive.ObjectID, since time.Time) (bool, error) {
	filter := bson.M{
		"deadline_id":  deadlineID,
		"recipient_id": recipientID,
		"delivered":    true,
		"delivered_at": bson.M{"$gte": since},
	}

	err := r.collection.FindOne(ctx, filter).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check delivered reminders: %v", err)
	}
	return true, nil
}

// FindByRecipient returns a recipient's reminders, newest first. When
// delivered is non-nil the result is filtered on delivery state.
func (r *ReminderRepository) FindByRecipient(ctx context.Context, recipientID primitive.ObjectID, delivered *bool) ([]models.Reminder, error) {
	filter := bson.M{"recipient_id": recipientID}
	if delivered != nil {
		filter["delivered"] = *delivered
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reminders: %v", err)
	}
	defer cursor.Close(ctx)

	var reminders []models.Reminder
	if err := cursor.All(ctx, &reminders); err != nil {
		return nil, fmt.Errorf("failed to decode reminders: %v", err)
	}
	return reminders, nil
}

// MarkAcknowledged flags a reminder as read by its recipient.
func (r *ReminderRepository) MarkAcknowledged(ctx context.Context, id primitive.ObjectID) error {
	now := time.Now()
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"acknowledged": true, "acknowledged_at": now},
	})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// DeleteByDeadline removes every reminder of a deadline. Called when the
// deadline itself is removed so no orphan rows stay queryable.
func (r *ReminderRepository) DeleteByDeadline(ctx context.Context, deadlineID primitive.ObjectID) error {
	result, err := r.collection.DeleteMany(ctx, bson.M{"deadline_id": deadlineID})
	if err != nil {
		return fmt.Errorf("failed to delete reminders of deadline: %v", err)
	}
	if result.DeletedCount > 0 {
		logrus.Infof("Deleted %d reminders of removed deadline %s", result.DeletedCount, deadlineID.Hex())
	}
	return nil
}
