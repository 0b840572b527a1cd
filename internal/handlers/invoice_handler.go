package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"copier-backend/internal/middleware"
	"copier-backend/internal/models"
	"copier-backend/internal/services"
	"copier-backend/pkg/utils"

	"github.com/gorilla/mux"
)

type InvoiceHandler struct {
	invoices   *services.InvoiceService
	billingSvc *services.BillingService
	qbSvc      *services.QuickBooksService
}

func NewInvoiceHandler(invoices *services.InvoiceService, billingSvc *services.BillingService,
	qbSvc *services.QuickBooksService) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices, billingSvc: billingSvc, qbSvc: qbSvc}
}

func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid invoice id")
		return
	}

	detail, err := h.invoices.GetWithTotals(r.Context(), id)
	if err != nil {
		utils.Error(w, http.StatusNotFound, "invoice not found")
		return
	}
	utils.JSON(w, http.StatusOK, detail)
}

func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit := pagination(r, 50)
	by := r.URL.Query().Get("by")
	value := r.URL.Query().Get("value")

	items, err := h.invoices.List(r.Context(), by, value, page, limit)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to list invoices")
		return
	}
	if items == nil {
		items = []*models.InvoiceListItem{}
	}
	utils.JSON(w, http.StatusOK, items)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *InvoiceHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid invoice id")
		return
	}

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.invoices.UpdateStatus(r.Context(), id, req.Status); err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"message": "status updated"})
}

func (h *InvoiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid invoice id")
		return
	}

	if err := h.invoices.Delete(r.Context(), id); err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to delete invoice")
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"message": "invoice deleted"})
}

type generateBillsRequest struct {
	CustomerIDs []int `json:"customer_ids"`
}

// GenerateBills kicks off a billing run, over every active customer or the
// explicit set named in the body.
func (h *InvoiceHandler) GenerateBills(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	var req generateBillsRequest
	if r.Body != nil {
		// body is optional; absent or empty means all customers
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	report, err := h.billingSvc.RunBillingCycle(r.Context(), req.CustomerIDs, userID)
	if err != nil {
		if errors.Is(err, services.ErrBillingLocked) {
			utils.Error(w, http.StatusConflict, err.Error())
			return
		}
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.JSON(w, http.StatusOK, report)
}

// GenerateForCustomer bills a single customer on demand
func (h *InvoiceHandler) GenerateForCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, err := strconv.Atoi(mux.Vars(r)["customerId"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid customer id")
		return
	}

	inv, err := h.billingSvc.GenerateInvoiceForCustomer(r.Context(), customerID)
	if err != nil {
		if errors.Is(err, services.ErrNothingToBill) {
			utils.Error(w, http.StatusConflict, err.Error())
			return
		}
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.JSON(w, http.StatusCreated, inv)
}

// Send emails the rendered invoice PDF to the customer
func (h *InvoiceHandler) Send(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid invoice id")
		return
	}

	if err := h.invoices.SendInvoice(r.Context(), id); err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"message": "invoice sent"})
}

// SyncToQuickBooks posts one invoice to the accounting system
func (h *InvoiceHandler) SyncToQuickBooks(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid invoice id")
		return
	}

	remoteID, err := h.qbSvc.SyncInvoice(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrAlreadySynced) {
			utils.Error(w, http.StatusConflict, err.Error())
			return
		}
		utils.Error(w, http.StatusBadGateway, err.Error())
		return
	}
	utils.JSON(w, http.StatusOK, map[string]int64{"quickbooks_invoice_id": remoteID})
}

// PostUnsynced posts every unposted tracked-company invoice
func (h *InvoiceHandler) PostUnsynced(w http.ResponseWriter, r *http.Request) {
	summary, err := h.qbSvc.PostUnsynced(r.Context())
	if err != nil {
		utils.Error(w, http.StatusBadGateway, err.Error())
		return
	}
	utils.JSON(w, http.StatusOK, summary)
}

// Reconcile pulls payment status from the accounting system
func (h *InvoiceHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	summary, err := h.qbSvc.ReconcileStatuses(r.Context())
	if err != nil {
		utils.Error(w, http.StatusBadGateway, err.Error())
		return
	}
	utils.JSON(w, http.StatusOK, summary)
}
