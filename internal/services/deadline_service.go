package services

import (
	"context"
	"fmt"
	"time"

	"github.com/minutesdesk/minutes-manager/internal/apperr"
	"github.com/minutesdesk/minutes-manager/internal/models"
	"github.com/minutesdesk/minutes-manager/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReminderWindowDays is how far ahead the upcoming sweep looks.
const ReminderWindowDays = 3

// DeadlineStore is the persistence surface the lifecycle manager needs.
type DeadlineStore interface {
	Insert(ctx context.Context, deadline *models.Deadline) (*models.Deadline, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Deadline, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M, unset bson.M) (*models.Deadline, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	FindDueBefore(ctx context.Context, before time.Time) ([]models.Deadline, error)
	FindDueBetween(ctx context.Context, from, to time.Time) ([]models.Deadline, error)
	FindByMinute(ctx context.Context, minuteID primitive.ObjectID) ([]models.Deadline, error)
	FindByCreator(ctx context.Context, creatorID primitive.ObjectID) ([]models.Deadline, error)
	SetStatus(ctx context.Context, id primitive.ObjectID, status string) error
}

// MinuteStore resolves parent minutes for existence checks.
type MinuteStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Minute, error)
}

// ReminderCleaner removes the reminders of a deleted deadline.
type ReminderCleaner interface {
	DeleteByDeadline(ctx context.Context, deadlineID primitive.ObjectID) error
}

// DeadlineService owns the deadline lifecycle: initial status at creation,
// date validation, completion, and the overdue sweep transition.
type DeadlineService struct {
	store     DeadlineStore
	minutes   MinuteStore
	reminders ReminderCleaner

	// Now is injectable for tests.
	Now func() time.Time
}

func NewDeadlineService(store DeadlineStore, minutes MinuteStore, reminders ReminderCleaner) *DeadlineService {
	return &DeadlineService{
		store:     store,
		minutes:   minutes,
		reminders: reminders,
		Now:       time.Now,
	}
}

// CreateDeadlineInput carries the caller-supplied fields of a new deadline.
type CreateDeadlineInput struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DueDate     time.Time `json:"due_date"`
	Status      string    `json:"status"` // optional explicit override
}

// Create validates the parent minute and the due date, computes the initial
// status and persists the deadline.
func (s *DeadlineService) Create(ctx context.Context, minuteID primitive.ObjectID, input CreateDeadlineInput, creatorID primitive.ObjectID) (*models.Deadline, error) {
	if input.Title == "" {
		return nil, fmt.Errorf("%w: title is required", apperr.ErrInvalidArgument)
	}

	if _, err := s.minutes.FindByID(ctx, minuteID); err != nil {
		logger.Log.WithField("minute_id", minuteID.Hex()).WithError(err).Warn("Parent minute not found during deadline creation")
		return nil, fmt.Errorf("%w: minute %s", apperr.ErrNotFound, minuteID.Hex())
	}

	today := Midnight(s.Now())
	due := Midnight(input.DueDate)
	if due.Before(today) {
		return nil, fmt.Errorf("%w: due date cannot be in the past", apperr.ErrInvalidArgument)
	}

	status := classifyStatus(due, today)
	if input.Status != "" {
		// Explicit override, validated for spelling only.
		if !validStatus(input.Status) {
			return nil, fmt.Errorf("%w: unknown status %q", apperr.ErrInvalidArgument, input.Status)
		}
		status = input.Status
	}

	deadline := &models.Deadline{
		MinuteID:    minuteID,
		Title:       input.Title,
		Description: input.Description,
		DueDate:     due,
		Status:      status,
		Completed:   status == models.StatusDone,
		CreatorID:   creatorID,
	}

	created, err := s.store.Insert(ctx, deadline)
	if err != nil {
		return nil, fmt.Errorf("failed to create deadline: %v", err)
	}

	logger.Log.WithFields(map[string]interface{}{
		"deadline_id": created.ID.Hex(),
		"minute_id":   minuteID.Hex(),
		"status":      created.Status,
	}).Info("Deadline created in service layer")
	return created, nil
}

// Get fetches a single deadline.
func (s *DeadlineService) Get(ctx context.Context, id primitive.ObjectID) (*models.Deadline, error) {
	return s.store.FindByID(ctx, id)
}

// Update applies a partial edit. Editing the due date re-validates it against
// today and reclassifies the status with the same rule used at creation, so a
// caller never observes a status that contradicts the date. Setting completed
// forces the status/completed invariant in both directions.
func (s *DeadlineService) Update(ctx context.Context, id primitive.ObjectID, upd models.DeadlineUpdate) (*models.Deadline, error) {
	existing, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	today := Midnight(s.Now())
	set := bson.M{}
	unset := bson.M{}

	if upd.Title != nil {
		set["title"] = *upd.Title
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}

	due := Midnight(existing.DueDate)
	if upd.DueDate != nil {
		due = Midnight(*upd.DueDate)
		if due.Before(today) {
			return nil, fmt.Errorf("%w: due date cannot be in the past", apperr.ErrInvalidArgument)
		}
		set["due_date"] = due
		if existing.Status != models.StatusDone {
			set["status"] = classifyStatus(due, today)
		}
	}

	if upd.Status != nil {
		if !validStatus(*upd.Status) {
			return nil, fmt.Errorf("%w: unknown status %q", apperr.ErrInvalidArgument, *upd.Status)
		}
		set["status"] = *upd.Status
	}

	if upd.Completed != nil {
		set["completed"] = *upd.Completed
		if *upd.Completed {
			set["status"] = models.StatusDone
			completion := s.Now()
			if upd.CompletionDate != nil {
				completion = *upd.CompletionDate
			}
			set["completion_date"] = completion
		} else {
			set["status"] = classifyStatus(due, today)
			unset["completion_date"] = ""
		}
	} else if upd.CompletionDate != nil {
		set["completion_date"] = *upd.CompletionDate
	}

	updated, err := s.store.Update(ctx, id, set, unset)
	if err != nil {
		return nil, err
	}

	logger.Log.WithField("deadline_id", id.Hex()).Info("Deadline updated in service layer")
	return updated, nil
}

// Remove hard-deletes a deadline and cascades to its reminders. Only the
// creator may remove.
func (s *DeadlineService) Remove(ctx context.Context, id, requesterID primitive.ObjectID) error {
	deadline, err := s.store.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if deadline.CreatorID != requesterID {
		return fmt.Errorf("%w: only the creator can remove a deadline", apperr.ErrPermissionDenied)
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.reminders.DeleteByDeadline(ctx, id); err != nil {
		logger.Log.WithField("deadline_id", id.Hex()).WithError(err).Warn("Failed to cascade-delete reminders")
	}

	logger.Log.WithField("deadline_id", id.Hex()).Info("Deadline removed in service layer")
	return nil
}

// SweepOverdue transitions every open deadline with a past due date to
// overdue and returns the full matching set, including deadlines that were
// overdue already. Idempotent: repeated calls with no time change write each
// transition once.
func (s *DeadlineService) SweepOverdue(ctx context.Context) ([]models.Deadline, error) {
	today := Midnight(s.Now())

	deadlines, err := s.store.FindDueBefore(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("failed to query overdue deadlines: %v", err)
	}

	for i := range deadlines {
		if deadlines[i].Status == models.StatusOverdue {
			continue
		}
		if err := s.store.SetStatus(ctx, deadlines[i].ID, models.StatusOverdue); err != nil {
			logger.Log.WithField("deadline_id", deadlines[i].ID.Hex()).WithError(err).Error("Failed to mark deadline overdue")
			continue
		}
		deadlines[i].Status = models.StatusOverdue
	}

	return deadlines, nil
}

// SweepUpcoming returns open deadlines due between today and today plus
// windowDays, inclusive. Pure read, no mutation.
func (s *DeadlineService) SweepUpcoming(ctx context.Context, windowDays int) ([]models.Deadline, error) {
	today := Midnight(s.Now())
	until := today.AddDate(0, 0, windowDays)

	deadlines, err := s.store.FindDueBetween(ctx, today, until)
	if err != nil {
		return nil, fmt.Errorf("failed to query upcoming deadlines: %v", err)
	}
	return deadlines, nil
}

// ListByMinute returns all deadlines of a minute.
func (s *DeadlineService) ListByMinute(ctx context.Context, minuteID primitive.ObjectID) ([]models.Deadline, error) {
	return s.store.FindByMinute(ctx, minuteID)
}

// ListByCreator returns all deadlines created by a user.
func (s *DeadlineService) ListByCreator(ctx context.Context, creatorID primitive.ObjectID) ([]models.Deadline, error) {
	return s.store.FindByCreator(ctx, creatorID)
}

// Midnight truncates a timestamp to local midnight. All due-date comparisons
// run on midnights.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func classifyStatus(due, today time.Time) string {
	switch {
	case due.Before(today):
		return models.StatusOverdue
	case due.Equal(today):
		return models.StatusInProgress
	default:
		return models.StatusPending
	}
}

func validStatus(status string) bool {
	switch status {
	case models.StatusPending, models.StatusInProgress, models.StatusOverdue, models.StatusDone:
		return true
	}
	return false
}
