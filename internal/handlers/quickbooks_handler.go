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

type QuickBooksHandler struct {
	tokens *repositories.QuickBooksRepository
}

func NewQuickBooksHandler(tokens *repositories.QuickBooksRepository) *QuickBooksHandler {
	return &QuickBooksHandler{tokens: tokens}
}

type quickbooksConfigRequest struct {
	CompanyID        int    `json:"company_id"`
	RealmID          string `json:"realm_id"`
	ClientID         string `json:"client_id"`
	ClientSecret     string `json:"client_secret"`
	AccessToken      string `json:"access_token"`
	RefreshToken     string `json:"refresh_token"`
	ExpiresIn        int64  `json:"expires_in"`
	RefreshExpiresIn int64  `json:"refresh_expires_in"`
}

// Configure stores the OAuth credentials obtained out of band for a
// company realm. Called after the interactive authorization flow.
func (h *QuickBooksHandler) Configure(w http.ResponseWriter, r *http.Request) {
	var req quickbooksConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.CompanyID == 0 || req.RealmID == "" || req.ClientID == "" || req.ClientSecret == "" {
		utils.Error(w, http.StatusBadRequest, "company_id, realm_id, client_id and client_secret are required")
		return
	}

	token := &models.QuickBooksToken{
		CompanyID:        req.CompanyID,
		RealmID:          req.RealmID,
		ClientID:         req.ClientID,
		ClientSecret:     req.ClientSecret,
		AccessToken:      req.AccessToken,
		RefreshToken:     req.RefreshToken,
		ExpiresIn:        req.ExpiresIn,
		RefreshExpiresIn: req.RefreshExpiresIn,
	}
	if err := h.tokens.Upsert(r.Context(), token); err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to store credentials")
		return
	}
	utils.JSON(w, http.StatusOK, token)
}

// GetConfig returns the stored realm configuration for a company with the
// secrets blanked out
func (h *QuickBooksHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	companyID, err := strconv.Atoi(mux.Vars(r)["companyId"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid company id")
		return
	}

	token, err := h.tokens.GetByCompany(r.Context(), companyID)
	if err != nil {
		utils.Error(w, http.StatusNotFound, "no quickbooks configuration for company")
		return
	}

	token.ClientSecret = ""
	token.AccessToken = ""
	token.RefreshToken = ""
	utils.JSON(w, http.StatusOK, token)
}
