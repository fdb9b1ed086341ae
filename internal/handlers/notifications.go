package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Ghost247-bot/ulster-sub001/internal/middleware"
	"github.com/Ghost247-bot/ulster-sub001/internal/models"
)

type NotificationStore interface {
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Notification, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, notificationID, userID string) (int64, error)
	MarkAllRead(ctx context.Context, userID string) error
}

type NotificationHandler struct {
	notifications NotificationStore
}

func NewNotificationHandler(notifications NotificationStore) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	limit := parsePositiveInt(r.URL.Query().Get("limit"), 50)
	page := parsePositiveInt(r.URL.Query().Get("page"), 1)
	rows, err := h.notifications.ListByUser(r.Context(), userID, limit, (page-1)*limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list notifications")
		return
	}
	if rows == nil {
		rows = []models.Notification{}
	}
	respondJSON(w, http.StatusOK, rows)
}

func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	count, err := h.notifications.CountUnread(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to count notifications")
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"unread": count})
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	affected, err := h.notifications.MarkRead(r.Context(), chi.URLParam(r, "notificationID"), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to mark notification")
		return
	}
	if affected == 0 {
		respondError(w, http.StatusNotFound, "notification not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"is_read": true})
}

func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.notifications.MarkAllRead(r.Context(), userID); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to mark notifications")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
