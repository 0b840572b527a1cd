package handlers

import (
	"net/http"
	"strconv"

	"copier-backend/internal/models"
	"copier-backend/internal/notifications"
	"copier-backend/internal/services"
	"copier-backend/pkg/utils"

	"github.com/gorilla/mux"
)

type NotificationHandler struct {
	svc *services.NotificationService
	hub *notifications.Hub
}

func NewNotificationHandler(svc *services.NotificationService, hub *notifications.Hub) *NotificationHandler {
	return &NotificationHandler{svc: svc, hub: hub}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit := pagination(r, 50)
	unreadOnly := r.URL.Query().Get("unread") == "true"

	notes, err := h.svc.List(r.Context(), unreadOnly, page, limit)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to list notifications")
		return
	}
	if notes == nil {
		notes = []*models.Notification{}
	}
	utils.JSON(w, http.StatusOK, notes)
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid notification id")
		return
	}

	if err := h.svc.MarkRead(r.Context(), id); err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to mark notification read")
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"message": "marked read"})
}

func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.MarkAllRead(r.Context()); err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to mark notifications read")
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"message": "all marked read"})
}

// Stream upgrades to a websocket that receives new notifications
func (h *NotificationHandler) Stream(w http.ResponseWriter, r *http.Request) {
	h.hub.ServeWS(w, r)
}
