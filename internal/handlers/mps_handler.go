package handlers

import (
	"net/http"

	"copier-backend/internal/services"
	"copier-backend/pkg/utils"
)

type MpsHandler struct {
	svc *services.MpsService
}

func NewMpsHandler(svc *services.MpsService) *MpsHandler {
	return &MpsHandler{svc: svc}
}

// Sync pulls the current fleet counters and records meter readings
func (h *MpsHandler) Sync(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.SyncReadings(r.Context())
	if err != nil {
		utils.Error(w, http.StatusBadGateway, err.Error())
		return
	}
	utils.JSON(w, http.StatusOK, report)
}
