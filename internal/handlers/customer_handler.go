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

type CustomerHandler struct {
	customers *repositories.CustomerRepository
}

func NewCustomerHandler(customers *repositories.CustomerRepository) *CustomerHandler {
	return &CustomerHandler{customers: customers}
}

func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var c models.Customer
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if c.Name == "" || c.Username == "" {
		utils.Error(w, http.StatusBadRequest, "name and username are required")
		return
	}
	if c.BillingSchedule == "" {
		c.BillingSchedule = models.ScheduleMonthly
	}

	if err := h.customers.Create(r.Context(), &c); err != nil {
		utils.Error(w, http.StatusConflict, "customer already exists")
		return
	}
	utils.JSON(w, http.StatusCreated, c)
}

func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid customer id")
		return
	}

	customer, err := h.customers.Get(r.Context(), id)
	if err != nil {
		utils.Error(w, http.StatusNotFound, "customer not found")
		return
	}
	utils.JSON(w, http.StatusOK, customer)
}

func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit := pagination(r, 50)
	customers, err := h.customers.List(r.Context(), page, limit)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to list customers")
		return
	}
	if customers == nil {
		customers = []*models.Customer{}
	}
	utils.JSON(w, http.StatusOK, customers)
}

func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid customer id")
		return
	}

	var c models.Customer
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	c.ID = id

	if err := h.customers.Update(r.Context(), &c); err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to update customer")
		return
	}
	utils.JSON(w, http.StatusOK, c)
}
