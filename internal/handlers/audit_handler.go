package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/minutesdesk/minutes-manager/internal/services"
	"github.com/minutesdesk/minutes-manager/pkg/logger"
	"github.com/minutesdesk/minutes-manager/pkg/middleware"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AuditHandler struct {
	Service *services.AuditService
}

func NewAuditHandler(service *services.AuditService) *AuditHandler {
	return &AuditHandler{Service: service}
}

// GET /audit?limit= — the requester's own audit trail, newest first.
func (h *AuditHandler) ListMyAuditHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	actorID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusInternalServerError)
		return
	}

	limit := 0
	if param := r.URL.Query().Get("limit"); param != "" {
		limit, err = strconv.Atoi(param)
		if err != nil || limit < 0 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
	}

	entries, err := h.Service.ListByActor(r.Context(), actorID, limit)
	if err != nil {
		logger.Log.Errorf("Failed to fetch audit entries: %v", err)
		http.Error(w, "Failed to get audit entries", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entries)
}
