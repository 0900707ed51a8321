package services

import (
	"context"

	"github.com/minutesdesk/minutes-manager/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuditStore is the persistence surface of the audit trail.
type AuditStore interface {
	Insert(ctx context.Context, entry *models.AuditEntry) error
	FindByActor(ctx context.Context, actorID primitive.ObjectID, limit int) ([]models.AuditEntry, error)
}

type AuditService struct {
	repo AuditStore
}

func NewAuditService(repo AuditStore) *AuditService {
	return &AuditService{repo: repo}
}

// Record appends an audit entry for a deadline action. Audit failures are
// logged and swallowed; they never fail the action itself.
func (s *AuditService) Record(ctx context.Context, actorID primitive.ObjectID, action string, targetID primitive.ObjectID, detail string) error {
	entry := &models.AuditEntry{
		ActorID:  actorID,
		Action:   action,
		TargetID: targetID,
		Detail:   detail,
	}

	if err := s.repo.Insert(ctx, entry); err != nil {
		logrus.WithError(err).Error("Failed to record audit entry")
		return err
	}

	logrus.WithFields(logrus.Fields{
		"actor_id": actorID.Hex(),
		"action":   action,
	}).Info("Audit entry recorded")
	return nil
}

// ListByActor fetches the most recent entries of a user. A non-positive
// limit falls back to the default page size.
func (s *AuditService) ListByActor(ctx context.Context, actorID primitive.ObjectID, limit int) ([]models.AuditEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.repo.FindByActor(ctx, actorID, limit)
}
