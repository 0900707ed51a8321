package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/minutesdesk/minutes-manager/internal/models"
	"github.com/minutesdesk/minutes-manager/internal/services"
	"github.com/minutesdesk/minutes-manager/pkg/middleware"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DeadlineHandler handles HTTP requests related to deadlines.
type DeadlineHandler struct {
	Service      *services.DeadlineService
	AuditService *services.AuditService
}

// NewDeadlineHandler creates a new instance of DeadlineHandler.
func NewDeadlineHandler(service *services.DeadlineService, auditService *services.AuditService) *DeadlineHandler {
	return &DeadlineHandler{
		Service:      service,
		AuditService: auditService,
	}
}

// CreateDeadlineHandler handles POST /minutes/{id}/deadlines.
func (h *DeadlineHandler) CreateDeadlineHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	minuteID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid minute ID", http.StatusBadRequest)
		return
	}

	creatorID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		logrus.WithError(err).Error("Failed to convert user ID")
		http.Error(w, "Invalid user ID", http.StatusInternalServerError)
		return
	}

	var input services.CreateDeadlineInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		logrus.WithError(err).Warn("Invalid request payload during deadline creation")
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	deadline, err := h.Service.Create(r.Context(), minuteID, input, creatorID)
	if err != nil {
		logrus.WithError(err).Warn("Failed to create deadline")
		writeServiceError(w, err, "Failed to create deadline")
		return
	}

	_ = h.AuditService.Record(r.Context(), creatorID, "deadline_created", deadline.ID, fmt.Sprintf("Created deadline: %s", deadline.Title))

	logrus.WithFields(logrus.Fields{
		"userID":     claims.UserID,
		"deadlineID": deadline.ID.Hex(),
	}).Info("Deadline successfully created")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(deadline)
}

// GetDeadlineHandler handles GET /deadlines/{id}.
func (h *DeadlineHandler) GetDeadlineHandler(w http.ResponseWriter, r *http.Request) {
	deadlineID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid deadline ID", http.StatusBadRequest)
		return
	}

	deadline, err := h.Service.Get(r.Context(), deadlineID)
	if err != nil {
		writeServiceError(w, err, "Failed to get deadline")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(deadline)
}

// UpdateDeadlineHandler handles PUT /deadlines/{id}.
func (h *DeadlineHandler) UpdateDeadlineHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	deadlineID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid deadline ID", http.StatusBadRequest)
		return
	}

	var upd models.DeadlineUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		logrus.WithError(err).Warn("Invalid update payload")
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	deadline, err := h.Service.Update(r.Context(), deadlineID, upd)
	if err != nil {
		writeServiceError(w, err, "Failed to update deadline")
		return
	}

	actorID, _ := primitive.ObjectIDFromHex(claims.UserID)
	_ = h.AuditService.Record(r.Context(), actorID, "deadline_updated", deadline.ID, fmt.Sprintf("Updated deadline: %s", deadline.Title))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(deadline)
}

// DeleteDeadlineHandler handles DELETE /deadlines/{id}. Creator-only.
func (h *DeadlineHandler) DeleteDeadlineHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	deadlineID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid deadline ID", http.StatusBadRequest)
		return
	}

	requesterID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusInternalServerError)
		return
	}

	if err := h.Service.Remove(r.Context(), deadlineID, requesterID); err != nil {
		logrus.WithError(err).WithField("deadlineID", deadlineID.Hex()).Warn("Failed to remove deadline")
		writeServiceError(w, err, "Failed to remove deadline")
		return
	}

	_ = h.AuditService.Record(r.Context(), requesterID, "deadline_removed", deadlineID, "Removed deadline")

	logrus.WithField("deadlineID", deadlineID.Hex()).Info("Deadline deleted successfully")
	w.WriteHeader(http.StatusNoContent)
}

// ListMinuteDeadlinesHandler handles GET /minutes/{id}/deadlines.
func (h *DeadlineHandler) ListMinuteDeadlinesHandler(w http.ResponseWriter, r *http.Request) {
	minuteID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid minute ID", http.StatusBadRequest)
		return
	}

	deadlines, err := h.Service.ListByMinute(r.Context(), minuteID)
	if err != nil {
		http.Error(w, "Failed to list deadlines", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(deadlines)
}

// ListMyDeadlinesHandler handles GET /deadlines for the requester.
func (h *DeadlineHandler) ListMyDeadlinesHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	creatorID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusInternalServerError)
		return
	}

	deadlines, err := h.Service.ListByCreator(r.Context(), creatorID)
	if err != nil {
		http.Error(w, "Failed to list deadlines", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(deadlines)
}
