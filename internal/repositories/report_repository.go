package repositories

import (
	"context"

	"copier-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ReportRepository struct {
	DB *pgxpool.Pool
}

func NewReportRepository(db *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{DB: db}
}

// InsertAuditReports batch-inserts the immutable billing audit rows
func (r *ReportRepository) InsertAuditReports(ctx context.Context, reports []models.AuditReport) error {
	if len(reports) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, rep := range reports {
		batch.Queue(
			`INSERT INTO audit_reports(asset_id, company_id, mono_begin, mono_end,
			     color_begin, color_end, due_date)
			 VALUES($1, $2, $3, $4, $5, $6, $7)`,
			rep.AssetID, rep.CompanyID, rep.MonoBegin, rep.MonoEnd,
			rep.ColorBegin, rep.ColorEnd, rep.DueDate)
	}
	results := r.DB.SendBatch(ctx, batch)
	defer results.Close()
	for range reports {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// ListAuditReports returns audit rows for an asset, newest first
func (r *ReportRepository) ListAuditReports(ctx context.Context, assetID, page, limit int) ([]*models.AuditReport, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, asset_id, company_id, mono_begin, mono_end, color_begin,
		     color_end, due_date, created_at
		 FROM audit_reports WHERE asset_id = $1
		 ORDER BY created_at DESC OFFSET $2 LIMIT $3`, assetID, page*limit, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []*models.AuditReport
	for rows.Next() {
		var rep models.AuditReport
		if err := rows.Scan(&rep.ID, &rep.AssetID, &rep.CompanyID, &rep.MonoBegin,
			&rep.MonoEnd, &rep.ColorBegin, &rep.ColorEnd, &rep.DueDate, &rep.CreatedAt); err != nil {
			return nil, err
		}
		reports = append(reports, &rep)
	}
	return reports, rows.Err()
}

func (r *ReportRepository) CreateRunReport(ctx context.Context, rep *models.BillingRunReport) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO billing_run_reports(type, success, failed, missing_in_mps, total)
		 VALUES($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		rep.Type, rep.Success, rep.Failed, rep.MissingInMps, rep.Total,
	).Scan(&rep.ID, &rep.CreatedAt)
}

func (r *ReportRepository) GetRunReport(ctx context.Context, id int) (*models.BillingRunReport, error) {
	var rep models.BillingRunReport
	err := r.DB.QueryRow(ctx,
		`SELECT id, type, success, failed, missing_in_mps, total, created_at
		 FROM billing_run_reports WHERE id = $1`, id,
	).Scan(&rep.ID, &rep.Type, &rep.Success, &rep.Failed, &rep.MissingInMps,
		&rep.Total, &rep.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &rep, nil
}

func (r *ReportRepository) ListRunReports(ctx context.Context, reportType string, page, limit int) ([]*models.BillingRunReport, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, type, success, failed, missing_in_mps, total, created_at
		 FROM billing_run_reports
		 WHERE ($1 = '' OR type = $1)
		 ORDER BY created_at DESC OFFSET $2 LIMIT $3`, reportType, page*limit, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []*models.BillingRunReport
	for rows.Next() {
		var rep models.BillingRunReport
		if err := rows.Scan(&rep.ID, &rep.Type, &rep.Success, &rep.Failed,
			&rep.MissingInMps, &rep.Total, &rep.CreatedAt); err != nil {
			return nil, err
		}
		reports = append(reports, &rep)
	}
	return reports, rows.Err()
}
