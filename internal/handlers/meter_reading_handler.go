package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"copier-backend/internal/models"
	"copier-backend/internal/repositories"
	"copier-backend/pkg/utils"

	"github.com/gorilla/mux"
)

type MeterReadingHandler struct {
	meters *repositories.MeterReadingRepository
	assets *repositories.AssetRepository
}

func NewMeterReadingHandler(meters *repositories.MeterReadingRepository, assets *repositories.AssetRepository) *MeterReadingHandler {
	return &MeterReadingHandler{meters: meters, assets: assets}
}

type createReadingRequest struct {
	AssetID     int    `json:"asset_id"`
	AssetNumber string `json:"asset_number"`
	Mono        int    `json:"mono"`
	Color       int    `json:"color"`
}

// Create records a manually entered counter snapshot for an asset,
// identified by id or by the asset number printed on the machine
func (h *MeterReadingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createReadingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Mono < 0 || req.Color < 0 {
		utils.Error(w, http.StatusBadRequest, "counters cannot be negative")
		return
	}

	if req.AssetID == 0 && req.AssetNumber != "" {
		asset, err := h.assets.GetByAssetNumber(r.Context(), req.AssetNumber)
		if err != nil {
			utils.Error(w, http.StatusNotFound, "asset not found")
			return
		}
		req.AssetID = asset.ID
	} else if _, err := h.assets.Get(r.Context(), req.AssetID); err != nil {
		utils.Error(w, http.StatusNotFound, "asset not found")
		return
	}

	reading := &models.MeterReading{AssetID: req.AssetID, Mono: req.Mono, Color: req.Color}
	if err := h.meters.Create(r.Context(), reading); err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to store reading")
		return
	}
	utils.JSON(w, http.StatusCreated, reading)
}

func (h *MeterReadingHandler) ListByAsset(w http.ResponseWriter, r *http.Request) {
	assetID, err := strconv.Atoi(mux.Vars(r)["assetId"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid asset id")
		return
	}

	page, limit := pagination(r, 50)
	readings, err := h.meters.ListByAsset(r.Context(), assetID, page, limit)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to list readings")
		return
	}
	if readings == nil {
		readings = []*models.MeterReading{}
	}
	utils.JSON(w, http.StatusOK, readings)
}
