package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/minutesdesk/minutes-manager/internal/models"
	"github.com/minutesdesk/minutes-manager/internal/services"
	"github.com/minutesdesk/minutes-manager/pkg/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeAuditStore struct {
	entries   []models.AuditEntry
	lastLimit int
}

func (f *fakeAuditStore) Insert(_ context.Context, entry *models.AuditEntry) error {
	entry.ID = primitive.NewObjectID()
	entry.CreatedAt = time.Now()
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeAuditStore) FindByActor(_ context.Context, actorID primitive.ObjectID, limit int) ([]models.AuditEntry, error) {
	f.lastLimit = limit
	var out []models.AuditEntry
	for _, e := range f.entries {
		if e.ActorID == actorID {
			out = append(out, e)
		}
	}
	return out, nil
}

func TestListMyAuditHandler(t *testing.T) {
	const secret = "test-secret"
	actorID := primitive.NewObjectID()
	otherID := primitive.NewObjectID()

	store := &fakeAuditStore{}
	service := services.NewAuditService(store)
	require.NoError(t, service.Record(context.Background(), actorID, "deadline_created", primitive.NewObjectID(), "Created deadline: Submit audit report"))
	require.NoError(t, service.Record(context.Background(), otherID, "deadline_removed", primitive.NewObjectID(), "Removed deadline"))

	handler := middleware.AuthMiddleware(secret)(http.HandlerFunc(NewAuditHandler(service).ListMyAuditHandler))

	token, err := middleware.GenerateToken(secret, actorID.Hex(), "user", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/audit", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var entries []models.AuditEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 1, "only the requester's own entries")
	assert.Equal(t, "deadline_created", entries[0].Action)
	assert.Equal(t, 50, store.lastLimit, "omitted limit falls back to the default page size")

	// Explicit limit is passed through; a malformed one is rejected.
	req = httptest.NewRequest(http.MethodGet, "/audit?limit=5", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, store.lastLimit)

	req = httptest.NewRequest(http.MethodGet, "/audit?limit=nope", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
