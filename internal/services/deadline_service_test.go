package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/minutesdesk/minutes-manager/internal/apperr"
	"github.com/minutesdesk/minutes-manager/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeDeadlineStore struct {
	deadlines    map[primitive.ObjectID]*models.Deadline
	statusWrites int
	failFind     bool
}

func newFakeDeadlineStore() *fakeDeadlineStore {
	return &fakeDeadlineStore{deadlines: make(map[primitive.ObjectID]*models.Deadline)}
}

func (f *fakeDeadlineStore) Insert(_ context.Context, d *models.Deadline) (*models.Deadline, error) {
	d.ID = primitive.NewObjectID()
	d.CreatedAt = time.Now()
	d.UpdatedAt = d.CreatedAt
	copied := *d
	f.deadlines[d.ID] = &copied
	return d, nil
}

func (f *fakeDeadlineStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Deadline, error) {
	d, ok := f.deadlines[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	copied := *d
	return &copied, nil
}

func (f *fakeDeadlineStore) Update(_ context.Context, id primitive.ObjectID, set bson.M, unset bson.M) (*models.Deadline, error) {
	d, ok := f.deadlines[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	for key, value := range set {
		switch key {
		case "title":
			d.Title = value.(string)
		case "description":
			d.Description = value.(string)
		case "due_date":
			d.DueDate = value.(time.Time)
		case "status":
			d.Status = value.(string)
		case "completed":
			d.Completed = value.(bool)
		case "completion_date":
			t := value.(time.Time)
			d.CompletionDate = &t
		case "updated_at":
			d.UpdatedAt = value.(time.Time)
		}
	}
	for key := range unset {
		if key == "completion_date" {
			d.CompletionDate = nil
		}
	}
	copied := *d
	return &copied, nil
}

func (f *fakeDeadlineStore) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := f.deadlines[id]; !ok {
		return apperr.ErrNotFound
	}
	delete(f.deadlines, id)
	return nil
}

func (f *fakeDeadlineStore) FindDueBefore(_ context.Context, before time.Time) ([]models.Deadline, error) {
	if f.failFind {
		return nil, errors.New("store unavailable")
	}
	var out []models.Deadline
	for _, d := range f.deadlines {
		if d.DueDate.Before(before) && d.Status != models.StatusDone {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (f *fakeDeadlineStore) FindDueBetween(_ context.Context, from, to time.Time) ([]models.Deadline, error) {
	if f.failFind {
		return nil, errors.New("store unavailable")
	}
	var out []models.Deadline
	for _, d := range f.deadlines {
		if !d.DueDate.Before(from) && !d.DueDate.After(to) && !d.Completed && d.Status != models.StatusDone {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (f *fakeDeadlineStore) FindByMinute(_ context.Context, minuteID primitive.ObjectID) ([]models.Deadline, error) {
	var out []models.Deadline
	for _, d := range f.deadlines {
		if d.MinuteID == minuteID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (f *fakeDeadlineStore) FindByCreator(_ context.Context, creatorID primitive.ObjectID) ([]models.Deadline, error) {
	var out []models.Deadline
	for _, d := range f.deadlines {
		if d.CreatorID == creatorID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (f *fakeDeadlineStore) SetStatus(_ context.Context, id primitive.ObjectID, status string) error {
	d, ok := f.deadlines[id]
	if !ok {
		return apperr.ErrNotFound
	}
	d.Status = status
	f.statusWrites++
	return nil
}

type fakeMinuteStore struct {
	minutes map[primitive.ObjectID]*models.Minute
}

func newFakeMinuteStore() *fakeMinuteStore {
	return &fakeMinuteStore{minutes: make(map[primitive.ObjectID]*models.Minute)}
}

func (f *fakeMinuteStore) add() primitive.ObjectID {
	id := primitive.NewObjectID()
	f.minutes[id] = &models.Minute{ID: id, Number: "ATA-042", Title: "Quarterly review"}
	return id
}

func (f *fakeMinuteStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Minute, error) {
	m, ok := f.minutes[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return m, nil
}

type fakeReminderCleaner struct {
	deleted []primitive.ObjectID
}

func (f *fakeReminderCleaner) DeleteByDeadline(_ context.Context, deadlineID primitive.ObjectID) error {
	f.deleted = append(f.deleted, deadlineID)
	return nil
}

func newTestService(now time.Time) (*DeadlineService, *fakeDeadlineStore, *fakeMinuteStore, *fakeReminderCleaner) {
	store := newFakeDeadlineStore()
	minutes := newFakeMinuteStore()
	cleaner := &fakeReminderCleaner{}
	svc := NewDeadlineService(store, minutes, cleaner)
	svc.Now = func() time.Time { return now }
	return svc, store, minutes, cleaner
}

var testNow = time.Date(2026, 8, 28, 10, 30, 0, 0, time.UTC)

func TestCreate_StatusClassification(t *testing.T) {
	svc, _, minutes, _ := newTestService(testNow)
	minuteID := minutes.add()
	creator := primitive.NewObjectID()

	tests := []struct {
		name       string
		dueDate    time.Time
		wantStatus string
	}{
		{"due in the future", testNow.AddDate(0, 0, 5), models.StatusPending},
		{"due today", testNow, models.StatusInProgress},
		{"due today with time of day", testNow.Add(8 * time.Hour), models.StatusInProgress},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			created, err := svc.Create(context.Background(), minuteID, CreateDeadlineInput{
				Title:   "Send report",
				DueDate: tt.dueDate,
			}, creator)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, created.Status)
			assert.False(t, created.Completed)
			assert.Equal(t, 0, created.ReminderCount)
			assert.Equal(t, Midnight(tt.dueDate), created.DueDate)
		})
	}
}

func TestCreate_PastDueDateRejected(t *testing.T) {
	svc, store, minutes, _ := newTestService(testNow)
	minuteID := minutes.add()

	_, err := svc.Create(context.Background(), minuteID, CreateDeadlineInput{
		Title:   "Too late",
		DueDate: testNow.AddDate(0, 0, -1),
	}, primitive.NewObjectID())

	require.ErrorIs(t, err, apperr.ErrInvalidArgument)
	assert.Empty(t, store.deadlines, "no row should be persisted")
}

func TestCreate_UnknownMinuteRejected(t *testing.T) {
	svc, _, _, _ := newTestService(testNow)

	_, err := svc.Create(context.Background(), primitive.NewObjectID(), CreateDeadlineInput{
		Title:   "Orphan",
		DueDate: testNow.AddDate(0, 0, 1),
	}, primitive.NewObjectID())

	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCreate_ExplicitStatusOverride(t *testing.T) {
	svc, _, minutes, _ := newTestService(testNow)
	minuteID := minutes.add()

	created, err := svc.Create(context.Background(), minuteID, CreateDeadlineInput{
		Title:   "Already started",
		DueDate: testNow.AddDate(0, 0, 5),
		Status:  models.StatusInProgress,
	}, primitive.NewObjectID())
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, created.Status)

	_, err = svc.Create(context.Background(), minuteID, CreateDeadlineInput{
		Title:   "Bad status",
		DueDate: testNow.AddDate(0, 0, 5),
		Status:  "paused",
	}, primitive.NewObjectID())
	require.ErrorIs(t, err, apperr.ErrInvalidArgument)
}

func TestUpdate_CompletionInvariant(t *testing.T) {
	svc, _, minutes, _ := newTestService(testNow)
	minuteID := minutes.add()
	created, err := svc.Create(context.Background(), minuteID, CreateDeadlineInput{
		Title:   "Close the books",
		DueDate: testNow.AddDate(0, 0, 2),
	}, primitive.NewObjectID())
	require.NoError(t, err)

	completed := true
	updated, err := svc.Update(context.Background(), created.ID, models.DeadlineUpdate{Completed: &completed})
	require.NoError(t, err)
	assert.Equal(t, models.StatusDone, updated.Status)
	assert.True(t, updated.Completed)
	require.NotNil(t, updated.CompletionDate)

	// Reopening clears the completion date and reclassifies from the date.
	completed = false
	updated, err = svc.Update(context.Background(), created.ID, models.DeadlineUpdate{Completed: &completed})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, updated.Status)
	assert.False(t, updated.Completed)
	assert.Nil(t, updated.CompletionDate)
}

func TestUpdate_DueDateReclassifiesStatus(t *testing.T) {
	svc, _, minutes, _ := newTestService(testNow)
	minuteID := minutes.add()
	created, err := svc.Create(context.Background(), minuteID, CreateDeadlineInput{
		Title:   "Review contract",
		DueDate: testNow.AddDate(0, 0, 5),
	}, primitive.NewObjectID())
	require.NoError(t, err)
	require.Equal(t, models.StatusPending, created.Status)

	due := testNow
	updated, err := svc.Update(context.Background(), created.ID, models.DeadlineUpdate{DueDate: &due})
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, updated.Status, "moving the due date to today must reclassify immediately")

	past := testNow.AddDate(0, 0, -3)
	_, err = svc.Update(context.Background(), created.ID, models.DeadlineUpdate{DueDate: &past})
	require.ErrorIs(t, err, apperr.ErrInvalidArgument)
}

func TestUpdate_UnknownDeadline(t *testing.T) {
	svc, _, _, _ := newTestService(testNow)
	title := "whatever"
	_, err := svc.Update(context.Background(), primitive.NewObjectID(), models.DeadlineUpdate{Title: &title})
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestRemove_CreatorOnly(t *testing.T) {
	svc, _, minutes, cleaner := newTestService(testNow)
	minuteID := minutes.add()
	creator := primitive.NewObjectID()
	created, err := svc.Create(context.Background(), minuteID, CreateDeadlineInput{
		Title:   "Archive minutes",
		DueDate: testNow.AddDate(0, 0, 1),
	}, creator)
	require.NoError(t, err)

	err = svc.Remove(context.Background(), created.ID, primitive.NewObjectID())
	require.ErrorIs(t, err, apperr.ErrPermissionDenied)

	// Still retrievable after the rejected removal.
	_, err = svc.Get(context.Background(), created.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Remove(context.Background(), created.ID, creator))
	_, err = svc.Get(context.Background(), created.ID)
	require.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Equal(t, []primitive.ObjectID{created.ID}, cleaner.deleted, "reminders must be cascade-deleted")
}

func TestSweepOverdue_TransitionsAndIsIdempotent(t *testing.T) {
	svc, store, minutes, _ := newTestService(testNow)
	minuteID := minutes.add()
	creator := primitive.NewObjectID()

	// Created due tomorrow, then time moves past it.
	created, err := svc.Create(context.Background(), minuteID, CreateDeadlineInput{
		Title:   "Yesterday's task",
		DueDate: testNow.AddDate(0, 0, 1),
	}, creator)
	require.NoError(t, err)

	svc.Now = func() time.Time { return testNow.AddDate(0, 0, 3) }

	swept, err := svc.SweepOverdue(context.Background())
	require.NoError(t, err)
	require.Len(t, swept, 1)
	assert.Equal(t, models.StatusOverdue, swept[0].Status)
	assert.Equal(t, 1, store.statusWrites)

	// Repeated sweeps return the same set without extra status writes.
	for i := 0; i < 3; i++ {
		swept, err = svc.SweepOverdue(context.Background())
		require.NoError(t, err)
		require.Len(t, swept, 1)
		assert.Equal(t, models.StatusOverdue, swept[0].Status)
	}
	assert.Equal(t, 1, store.statusWrites, "only the first transition may write")

	// Done deadlines are never swept.
	completed := true
	_, err = svc.Update(context.Background(), created.ID, models.DeadlineUpdate{Completed: &completed})
	require.NoError(t, err)
	swept, err = svc.SweepOverdue(context.Background())
	require.NoError(t, err)
	assert.Empty(t, swept)
}

func TestSweepUpcoming_WindowBounds(t *testing.T) {
	svc, _, minutes, _ := newTestService(testNow)
	minuteID := minutes.add()
	creator := primitive.NewObjectID()

	for _, days := range []int{0, 1, 2, 3, 4} {
		_, err := svc.Create(context.Background(), minuteID, CreateDeadlineInput{
			Title:   "task",
			DueDate: testNow.AddDate(0, 0, days),
		}, creator)
		require.NoError(t, err)
	}

	upcoming, err := svc.SweepUpcoming(context.Background(), ReminderWindowDays)
	require.NoError(t, err)
	assert.Len(t, upcoming, 4, "window covers today through today+3 inclusive")
}
