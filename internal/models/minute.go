package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Minute is the parent meeting-minute record a deadline hangs off. The
// engine never owns minutes; it only checks existence and reads the display
// fields used in reminder messages.
type Minute struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Number    string             `bson:"number" json:"number"`
	Title     string             `bson:"title" json:"title"`
	CreatorID primitive.ObjectID `bson:"creator_id" json:"creator_id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
