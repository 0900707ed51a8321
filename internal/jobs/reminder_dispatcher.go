package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/minutesdesk/minutes-manager/internal/models"
	"github.com/minutesdesk/minutes-manager/internal/services"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Lifecycle is the slice of the deadline lifecycle manager the dispatcher
// drives.
type Lifecycle interface {
	SweepOverdue(ctx context.Context) ([]models.Deadline, error)
	SweepUpcoming(ctx context.Context, windowDays int) ([]models.Deadline, error)
}

// ReminderStore persists reminders and answers the dedup guard lookup.
type ReminderStore interface {
	Deliver(ctx context.Context, reminder *models.Reminder) (*models.Reminder, error)
	HasDeliveredSince(ctx context.Context, deadlineID, recipientID primitive.ObjectID, since time.Time) (bool, error)
}

// MinuteReader resolves the parent minute's display fields for messages.
type MinuteReader interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Minute, error)
}

// RecipientReader resolves the reminder recipient's address.
type RecipientReader interface {
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// Notifier hands a rendered reminder to the outbound transport. Delivery is
// best-effort: the reminder row is the source of truth, not the send.
type Notifier interface {
	Send(to, subject, body string) error
}

// LogNotifier is the transport stub used when no SMTP relay is configured.
type LogNotifier struct{}

func (LogNotifier) Send(to, subject, body string) error {
	logrus.WithFields(logrus.Fields{
		"to":      to,
		"subject": subject,
	}).Info("Reminder delivery stub (no SMTP configured)")
	return nil
}

// SweepReport summarizes one dispatch run.
type SweepReport struct {
	Overdue int `json:"overdue"` // deadlines found past due
	Emitted int `json:"emitted"` // reminders persisted
	Skipped int `json:"skipped"` // suppressed by the dedup guard
	Failed  int `json:"failed"`  // per-deadline failures, logged and isolated
}

// ReminderDispatcher computes which deadlines need which reminder tier and
// emits them. One sweep: overdue escalation first (never deduped, by design),
// then a single pass over the upcoming window keyed on days remaining.
type ReminderDispatcher struct {
	lifecycle Lifecycle
	reminders ReminderStore
	minutes   MinuteReader
	users     RecipientReader
	notifier  Notifier

	// Now is injectable for tests.
	Now func() time.Time
}

func NewReminderDispatcher(lifecycle Lifecycle, reminders ReminderStore, minutes MinuteReader, users RecipientReader, notifier Notifier) *ReminderDispatcher {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &ReminderDispatcher{
		lifecycle: lifecycle,
		reminders: reminders,
		minutes:   minutes,
		users:     users,
		notifier:  notifier,
		Now:       time.Now,
	}
}

// RunDailySweep runs one full dispatch pass. Safe to invoke on demand; the
// dedup guard keeps overlapping runs from double-sending non-overdue tiers.
// A failure of either window query aborts the sweep; per-deadline failures
// are logged and skipped.
func (d *ReminderDispatcher) RunDailySweep(ctx context.Context) (*SweepReport, error) {
	today := services.Midnight(d.Now())
	report := &SweepReport{}

	logrus.Info("Reminder sweep started")

	overdue, err := d.lifecycle.SweepOverdue(ctx)
	if err != nil {
		return nil, fmt.Errorf("overdue sweep failed: %v", err)
	}
	for i := range overdue {
		report.Overdue++
		// Overdue escalation is intentionally re-sent on every sweep.
		d.emit(ctx, &overdue[i], models.TierOverdue, today, report)
	}

	upcoming, err := d.lifecycle.SweepUpcoming(ctx, services.ReminderWindowDays)
	if err != nil {
		return report, fmt.Errorf("upcoming sweep failed: %v", err)
	}
	for i := range upcoming {
		// Ceiling, not truncation: with local-time midnights a DST gap makes
		// the difference fall short of a whole day and would shift the tier.
		diff := services.Midnight(upcoming[i].DueDate).Sub(today)
		daysRemaining := int((diff + 24*time.Hour - 1) / (24 * time.Hour))

		var tier string
		switch daysRemaining {
		case 3:
			tier = models.TierThreeDays
		case 1:
			tier = models.TierOneDay
		case 0:
			tier = models.TierToday
		default:
			continue
		}
		d.emit(ctx, &upcoming[i], tier, today, report)
	}

	logrus.WithFields(logrus.Fields{
		"overdue": report.Overdue,
		"emitted": report.Emitted,
		"skipped": report.Skipped,
		"failed":  report.Failed,
	}).Info("Reminder sweep completed")
	return report, nil
}

// emit applies the dedup guard (except for the overdue tier), renders the
// message, persists the reminder and hands it to the transport. Every failure
// is contained to this deadline.
func (d *ReminderDispatcher) emit(ctx context.Context, deadline *models.Deadline, tier string, today time.Time, report *SweepReport) {
	log := logrus.WithFields(logrus.Fields{
		"deadline_id": deadline.ID.Hex(),
		"tier":        tier,
	})

	if tier != models.TierOverdue {
		delivered, err := d.reminders.HasDeliveredSince(ctx, deadline.ID, deadline.CreatorID, today)
		if err != nil {
			log.WithError(err).Error("Dedup check failed, skipping deadline")
			report.Failed++
			return
		}
		if delivered {
			report.Skipped++
			return
		}
	}

	minuteRef := deadline.MinuteID.Hex()
	if minute, err := d.minutes.FindByID(ctx, deadline.MinuteID); err == nil {
		minuteRef = minute.Number
	} else {
		log.WithError(err).Warn("Parent minute not resolvable, using raw ID in message")
	}

	reminder := &models.Reminder{
		DeadlineID:  deadline.ID,
		RecipientID: deadline.CreatorID,
		Tier:        tier,
		Message:     renderMessage(tier, deadline, minuteRef),
	}

	created, err := d.reminders.Deliver(ctx, reminder)
	if err != nil {
		log.WithError(err).Error("Failed to persist reminder")
		report.Failed++
		return
	}
	report.Emitted++
	log.Info("Reminder emitted")

	// Outbound transport is best-effort; a send failure never fails the emit.
	user, err := d.users.GetUserByID(ctx, deadline.CreatorID)
	if err != nil {
		log.WithError(err).Warn("Recipient not resolvable, skipping transport")
		return
	}
	subject := fmt.Sprintf("Deadline reminder: %s", deadline.Title)
	if err := d.notifier.Send(user.Email, subject, created.Message); err != nil {
		log.WithError(err).Error("Failed to hand reminder to transport")
	}
}

func renderMessage(tier string, deadline *models.Deadline, minuteRef string) string {
	dueDate := deadline.DueDate.Format("Jan 2, 2006")

	switch tier {
	case models.TierOverdue:
		return fmt.Sprintf("⚠️ Deadline OVERDUE: %q from minute %s. Due date: %s", deadline.Title, minuteRef, dueDate)
	case models.TierThreeDays:
		return fmt.Sprintf("📅 Reminder: the deadline %q from minute %s is due in 3 days (%s)", deadline.Title, minuteRef, dueDate)
	case models.TierOneDay:
		return fmt.Sprintf("⏰ URGENT: the deadline %q from minute %s is due TOMORROW (%s)", deadline.Title, minuteRef, dueDate)
	default:
		return fmt.Sprintf("🔔 ATTENTION: the deadline %q from minute %s is due TODAY (%s)", deadline.Title, minuteRef, dueDate)
	}
}
