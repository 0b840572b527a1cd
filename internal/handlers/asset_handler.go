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

type AssetHandler struct {
	assets *repositories.AssetRepository
}

func NewAssetHandler(assets *repositories.AssetRepository) *AssetHandler {
	return &AssetHandler{assets: assets}
}

func (h *AssetHandler) Create(w http.ResponseWriter, r *http.Request) {
	var a models.Asset
	if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if a.AssetNumber == "" || a.CustomerID == 0 || a.ContractTypeID == 0 {
		utils.Error(w, http.StatusBadRequest, "asset_number, customer_id and contract_type_id are required")
		return
	}

	if err := h.assets.Create(r.Context(), &a); err != nil {
		utils.Error(w, http.StatusConflict, "asset already exists")
		return
	}
	utils.JSON(w, http.StatusCreated, a)
}

func (h *AssetHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid asset id")
		return
	}

	asset, err := h.assets.GetBilling(r.Context(), id)
	if err != nil {
		utils.Error(w, http.StatusNotFound, "asset not found")
		return
	}
	utils.JSON(w, http.StatusOK, asset)
}

func (h *AssetHandler) ListByCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, err := strconv.Atoi(mux.Vars(r)["customerId"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid customer id")
		return
	}

	assets, err := h.assets.ListByCustomer(r.Context(), customerID)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to list assets")
		return
	}
	if assets == nil {
		assets = []*models.Asset{}
	}
	utils.JSON(w, http.StatusOK, assets)
}

func (h *AssetHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid asset id")
		return
	}

	var a models.Asset
	if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	a.ID = id

	if err := h.assets.Update(r.Context(), &a); err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to update asset")
		return
	}
	utils.JSON(w, http.StatusOK, a)
}

func (h *AssetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid asset id")
		return
	}

	if err := h.assets.SoftDelete(r.Context(), id); err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to delete asset")
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"message": "asset deleted"})
}
