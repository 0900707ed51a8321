package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Reminder escalation tiers.
const (
	TierOverdue   = "overdue"
	TierThreeDays = "three_days"
	TierOneDay    = "one_day"
	TierToday     = "today"
)

// Reminder is a single notification attempt for a deadline. Delivery state
// and read state are independent flags: the dedup guard keys off Delivered,
// Acknowledged is set by the recipient.
type Reminder struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	DeadlineID     primitive.ObjectID `bson:"deadline_id" json:"deadline_id"`
	RecipientID    primitive.ObjectID `bson:"recipient_id" json:"recipient_id"`
	Tier           string             `bson:"tier" json:"tier"`
	Message        string             `bson:"message" json:"message"`
	Delivered      bool               `bson:"delivered" json:"delivered"`
	DeliveredAt    *time.Time         `bson:"delivered_at,omitempty" json:"delivered_at,omitempty"`
	Acknowledged   bool               `bson:"acknowledged" json:"acknowledged"`
	AcknowledgedAt *time.Time         `bson:"acknowledged_at,omitempty" json:"acknowledged_at,omitempty"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
}
