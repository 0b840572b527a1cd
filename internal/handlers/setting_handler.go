package handlers

import (
	"encoding/json"
	"net/http"

	"copier-backend/internal/cache"
	"copier-backend/internal/models"
	"copier-backend/internal/repositories"
	"copier-backend/pkg/utils"
)

type SettingHandler struct {
	settings *repositories.SettingRepository
}

func NewSettingHandler(settings *repositories.SettingRepository) *SettingHandler {
	return &SettingHandler{settings: settings}
}

func (h *SettingHandler) Get(w http.ResponseWriter, r *http.Request) {
	setting, err := h.settings.Get(r.Context())
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to load settings")
		return
	}
	utils.JSON(w, http.StatusOK, setting)
}

type updateSettingRequest struct {
	NotifyOnItem int     `json:"notify_on_item"`
	HstTax       float64 `json:"hst_tax"`
}

func (h *SettingHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateSettingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.HstTax < 0 || req.HstTax > 100 {
		utils.Error(w, http.StatusBadRequest, "hst_tax must be between 0 and 100")
		return
	}

	setting := &models.Setting{NotifyOnItem: req.NotifyOnItem, HstTax: req.HstTax}
	if err := h.settings.Update(r.Context(), setting); err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to update settings")
		return
	}
	cache.InvalidateSettings(r.Context())

	updated, err := h.settings.Get(r.Context())
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to load settings")
		return
	}
	utils.JSON(w, http.StatusOK, updated)
}
