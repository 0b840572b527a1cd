package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"

	"copier-backend/internal/models"
	"copier-backend/internal/repositories"

	"github.com/jung-kurt/gofpdf/v2"
)

// ReportService serves billing run reports and per-asset audit history
type ReportService struct {
	reports *repositories.ReportRepository
}

func NewReportService(reports *repositories.ReportRepository) *ReportService {
	return &ReportService{reports: reports}
}

func (s *ReportService) GetRun(ctx context.Context, id int) (*models.BillingRunReport, error) {
	return s.reports.GetRunReport(ctx, id)
}

func (s *ReportService) ListRuns(ctx context.Context, reportType string, page, limit int) ([]*models.BillingRunReport, error) {
	return s.reports.ListRunReports(ctx, reportType, page, limit)
}

func (s *ReportService) ListAudits(ctx context.Context, assetID, page, limit int) ([]*models.AuditReport, error) {
	return s.reports.ListAuditReports(ctx, assetID, page, limit)
}

// ExportAuditsCSV renders the audit history of an asset as CSV
func (s *ReportService) ExportAuditsCSV(ctx context.Context, assetID int) ([]byte, error) {
	audits, err := s.reports.ListAuditReports(ctx, assetID, 0, 10000)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"id", "asset_id", "company_id", "mono_begin", "mono_end",
		"color_begin", "color_end", "due_date", "created_at"}); err != nil {
		return nil, err
	}
	for _, a := range audits {
		due := ""
		if a.DueDate != nil {
			due = a.DueDate.Format("2006-01-02")
		}
		record := []string{
			strconv.Itoa(a.ID),
			strconv.Itoa(a.AssetID),
			strconv.Itoa(a.CompanyID),
			strconv.Itoa(a.MonoBegin),
			strconv.Itoa(a.MonoEnd),
			strconv.Itoa(a.ColorBegin),
			strconv.Itoa(a.ColorEnd),
			due,
			a.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportAuditsPDF renders the audit history of an asset as a PDF table
func (s *ReportService) ExportAuditsPDF(ctx context.Context, assetID int) ([]byte, error) {
	audits, err := s.reports.ListAuditReports(ctx, assetID, 0, 10000)
	if err != nil {
		return nil, err
	}

	doc := gofpdf.New("P", "mm", "A4", "")
	doc.AddPage()
	doc.SetFont("Arial", "B", 14)
	doc.Cell(0, 10, fmt.Sprintf("Billing Audit History - Asset %d", assetID))
	doc.Ln(12)

	doc.SetFont("Arial", "B", 9)
	doc.SetFillColor(230, 230, 230)
	headers := []string{"Date", "Mono Begin", "Mono End", "Color Begin", "Color End", "Due Date"}
	widths := []float64{34, 30, 30, 30, 30, 34}
	for i, h := range headers {
		doc.CellFormat(widths[i], 8, h, "1", 0, "C", true, 0, "")
	}
	doc.Ln(-1)

	doc.SetFont("Arial", "", 9)
	for _, a := range audits {
		due := ""
		if a.DueDate != nil {
			due = a.DueDate.Format("2006-01-02")
		}
		row := []string{
			a.CreatedAt.Format("2006-01-02"),
			strconv.Itoa(a.MonoBegin),
			strconv.Itoa(a.MonoEnd),
			strconv.Itoa(a.ColorBegin),
			strconv.Itoa(a.ColorEnd),
			due,
		}
		for i, cell := range row {
			doc.CellFormat(widths[i], 7, cell, "1", 0, "C", false, 0, "")
		}
		doc.Ln(-1)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
