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

type ContractTypeHandler struct {
	types *repositories.ContractTypeRepository
}

func NewContractTypeHandler(types *repositories.ContractTypeRepository) *ContractTypeHandler {
	return &ContractTypeHandler{types: types}
}

func (h *ContractTypeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var ct models.ContractType
	if err := json.NewDecoder(r.Body).Decode(&ct); err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if ct.Name == "" {
		utils.Error(w, http.StatusBadRequest, "name is required")
		return
	}
	if ct.BillingMode == "" {
		ct.BillingMode = models.BillingModeItemized
	}
	if ct.BillingMode != models.BillingModeItemized && ct.BillingMode != models.BillingModeFlat {
		utils.Error(w, http.StatusBadRequest, "billing_mode must be itemized or flat")
		return
	}

	if err := h.types.Create(r.Context(), &ct); err != nil {
		utils.Error(w, http.StatusConflict, "contract type already exists")
		return
	}
	utils.JSON(w, http.StatusCreated, ct)
}

func (h *ContractTypeHandler) List(w http.ResponseWriter, r *http.Request) {
	types, err := h.types.List(r.Context())
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to list contract types")
		return
	}
	if types == nil {
		types = []*models.ContractType{}
	}
	utils.JSON(w, http.StatusOK, types)
}

func (h *ContractTypeHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid contract type id")
		return
	}

	var ct models.ContractType
	if err := json.NewDecoder(r.Body).Decode(&ct); err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	ct.ID = id

	if err := h.types.Update(r.Context(), &ct); err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to update contract type")
		return
	}
	utils.JSON(w, http.StatusOK, ct)
}
