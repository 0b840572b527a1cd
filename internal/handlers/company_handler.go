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

type CompanyHandler struct {
	companies *repositories.CompanyRepository
}

func NewCompanyHandler(companies *repositories.CompanyRepository) *CompanyHandler {
	return &CompanyHandler{companies: companies}
}

func (h *CompanyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var c models.Company
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if c.Name == "" {
		utils.Error(w, http.StatusBadRequest, "name is required")
		return
	}

	if err := h.companies.Create(r.Context(), &c); err != nil {
		utils.Error(w, http.StatusConflict, "company already exists")
		return
	}
	utils.JSON(w, http.StatusCreated, c)
}

func (h *CompanyHandler) List(w http.ResponseWriter, r *http.Request) {
	companies, err := h.companies.List(r.Context())
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to list companies")
		return
	}
	if companies == nil {
		companies = []*models.Company{}
	}
	utils.JSON(w, http.StatusOK, companies)
}

func (h *CompanyHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid company id")
		return
	}

	var c models.Company
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	c.ID = id

	if err := h.companies.Update(r.Context(), &c); err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to update company")
		return
	}
	utils.JSON(w, http.StatusOK, c)
}
