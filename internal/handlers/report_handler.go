package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"copier-backend/internal/models"
	"copier-backend/internal/services"
	"copier-backend/pkg/utils"

	"github.com/gorilla/mux"
)

type ReportHandler struct {
	reports *services.ReportService
}

func NewReportHandler(reports *services.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

func (h *ReportHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid report id")
		return
	}

	report, err := h.reports.GetRun(r.Context(), id)
	if err != nil {
		utils.Error(w, http.StatusNotFound, "report not found")
		return
	}
	utils.JSON(w, http.StatusOK, report)
}

func (h *ReportHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	page, limit := pagination(r, 50)
	reportType := r.URL.Query().Get("type")

	reports, err := h.reports.ListRuns(r.Context(), reportType, page, limit)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to list reports")
		return
	}
	if reports == nil {
		reports = []*models.BillingRunReport{}
	}
	utils.JSON(w, http.StatusOK, reports)
}

func (h *ReportHandler) ListAudits(w http.ResponseWriter, r *http.Request) {
	assetID, err := strconv.Atoi(mux.Vars(r)["assetId"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid asset id")
		return
	}

	page, limit := pagination(r, 50)
	audits, err := h.reports.ListAudits(r.Context(), assetID, page, limit)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to list audit reports")
		return
	}
	if audits == nil {
		audits = []*models.AuditReport{}
	}
	utils.JSON(w, http.StatusOK, audits)
}

// ExportAudits streams the audit history of an asset as CSV, or as PDF
// when ?format=pdf is given
func (h *ReportHandler) ExportAudits(w http.ResponseWriter, r *http.Request) {
	assetID, err := strconv.Atoi(mux.Vars(r)["assetId"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid asset id")
		return
	}

	if r.URL.Query().Get("format") == "pdf" {
		pdfData, err := h.reports.ExportAuditsPDF(r.Context(), assetID)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, "failed to export audit reports")
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf(`attachment; filename="audit-asset-%d.pdf"`, assetID))
		w.WriteHeader(http.StatusOK)
		w.Write(pdfData)
		return
	}

	csvData, err := h.reports.ExportAuditsCSV(r.Context(), assetID)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to export audit reports")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="audit-asset-%d.csv"`, assetID))
	w.WriteHeader(http.StatusOK)
	w.Write(csvData)
}
