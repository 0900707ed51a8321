package services

import (
	"context"

	"github.com/minutesdesk/minutes-manager/internal/models"
	"github.com/minutesdesk/minutes-manager/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReminderService exposes the recipient-facing reminder queries. Emission
// itself lives in the dispatch engine.
type ReminderService struct {
	repo *repository.ReminderRepository
}

func NewReminderService(repo *repository.ReminderRepository) *ReminderService {
	return &ReminderService{repo: repo}
}

// ListByRecipient returns a recipient's reminders, optionally filtered by
// delivery state.
func (s *ReminderService) ListByRecipient(ctx context.Context, recipientID primitive.ObjectID, delivered *bool) ([]models.Reminder, error) {
	return s.repo.FindByRecipient(ctx, recipientID, delivered)
}

// MarkRead flags a reminder as acknowledged by its recipient. Delivery state
// is untouched so the dedup guard keeps its meaning.
func (s *ReminderService) MarkRead(ctx context.Context, reminderID primitive.ObjectID) error {
	return s.repo.MarkAcknowledged(ctx, reminderID)
}
