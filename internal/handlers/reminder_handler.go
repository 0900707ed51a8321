package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/minutesdesk/minutes-manager/internal/jobs"
	"github.com/minutesdesk/minutes-manager/internal/services"
	"github.com/minutesdesk/minutes-manager/pkg/logger"
	"github.com/minutesdesk/minutes-manager/pkg/middleware"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ReminderHandler struct {
	Service    *services.ReminderService
	Dispatcher *jobs.ReminderDispatcher
}

func NewReminderHandler(service *services.ReminderService, dispatcher *jobs.ReminderDispatcher) *ReminderHandler {
	return &ReminderHandler{Service: service, Dispatcher: dispatcher}
}

// GET /reminders?delivered=
func (h *ReminderHandler) GetMyRemindersHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	recipientID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusInternalServerError)
		return
	}

	var delivered *bool
	if param := r.URL.Query().Get("delivered"); param != "" {
		value, err := strconv.ParseBool(param)
		if err != nil {
			http.Error(w, "Invalid delivered filter", http.StatusBadRequest)
			return
		}
		delivered = &value
	}

	reminders, err := h.Service.ListByRecipient(r.Context(), recipientID, delivered)
	if err != nil {
		logger.Log.Errorf("Failed to fetch reminders: %v", err)
		http.Error(w, "Failed to get reminders", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(reminders)
}

// POST /reminders/{id}/read
func (h *ReminderHandler) MarkAsReadHandler(w http.ResponseWriter, r *http.Request) {
	reminderID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid reminder ID", http.StatusBadRequest)
		return
	}

	if err := h.Service.MarkRead(r.Context(), reminderID); err != nil {
		logger.Log.Errorf("Failed to mark reminder as read: %v", err)
		writeServiceError(w, err, "Failed to mark as read")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Reminder marked as read"})
}

// POST /admin/sweep — on-demand dispatch run, same code path as the cron
// triggers.
func (h *ReminderHandler) RunSweepHandler(w http.ResponseWriter, r *http.Request) {
	report, err := h.Dispatcher.RunDailySweep(r.Context())
	if err != nil {
		logger.Log.Errorf("On-demand sweep failed: %v", err)
		http.Error(w, "Sweep failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}
