package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Deadline statuses. A deadline is "completed" exactly when its status is done.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusOverdue    = "overdue"
	StatusDone       = "done"
)

// Deadline is a time-bound action item attached to a meeting minute.
type Deadline struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	MinuteID       primitive.ObjectID `bson:"minute_id" json:"minute_id"`
	Title          string             `bson:"title" json:"title"`
	Description    string             `bson:"description,omitempty" json:"description,omitempty"`
	DueDate        time.Time          `bson:"due_date" json:"due_date"` // truncated to midnight
	Status         string             `bson:"status" json:"status"`
	Completed      bool               `bson:"completed" json:"completed"`
	CompletionDate *time.Time         `bson:"completion_date,omitempty" json:"completion_date,omitempty"`
	CreatorID      primitive.ObjectID `bson:"creator_id" json:"creator_id"`
	ReminderCount  int                `bson:"reminder_count" json:"reminder_count"`
	LastReminderAt *time.Time         `bson:"last_reminder_at,omitempty" json:"last_reminder_at,omitempty"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updated_at"`
}

// DeadlineUpdate carries the optional fields of a deadline edit. Nil means
// "leave unchanged".
type DeadlineUpdate struct {
	Title          *string    `json:"title,omitempty"`
	Description    *string    `json:"description,omitempty"`
	DueDate        *time.Time `json:"due_date,omitempty"`
	Status         *string    `json:"status,omitempty"`
	Completed      *bool      `json:"completed,omitempty"`
	CompletionDate *time.Time `json:"completion_date,omitempty"`
}
