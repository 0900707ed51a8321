package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuditEntry records who did what to which deadline.
type AuditEntry struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ActorID   primitive.ObjectID `bson:"actor_id" json:"actor_id"`
	Action    string             `bson:"action" json:"action"` // e.g. "deadline_created", "deadline_removed"
	TargetID  primitive.ObjectID `bson:"target_id" json:"target_id"`
	Detail    string             `bson:"detail" json:"detail"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
