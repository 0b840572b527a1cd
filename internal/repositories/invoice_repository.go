package repositories

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"copier-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type InvoiceRepository struct {
	DB *pgxpool.Pool
}

func NewInvoiceRepository(db *pgxpool.Pool) *InvoiceRepository {
	return &InvoiceRepository{DB: db}
}

// CreateWithLines creates an invoice, its lines and consumes the meter
// readings they reference in a single transaction. The invoice number is
// drawn from the shared counter inside the same transaction so a failed
// insert rolls the counter back too.
// newInvoiceNo builds the printed invoice number from the shared counter
// value. Uniqueness comes from the monotonic sequence; the random suffix
// only makes numbers harder to guess.
func newInvoiceNo(seq int64) string {
	return fmt.Sprintf("INV%d-%d", seq, rand.Intn(8991)+1000)
}

func (r *InvoiceRepository) CreateWithLines(ctx context.Context, inv *models.ServiceInvoice, lines []models.InvoiceLine) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var seq int64
	if err := tx.QueryRow(ctx,
		`UPDATE invoice_counters SET invoice = invoice + 1 WHERE id = 1 RETURNING invoice`,
	).Scan(&seq); err != nil {
		return fmt.Errorf("increment invoice counter: %w", err)
	}
	inv.InvoiceNo = newInvoiceNo(seq)

	if inv.DueDate.IsZero() {
		inv.DueDate = time.Now().AddDate(0, 1, 0)
	}
	if inv.Status == "" {
		inv.Status = models.InvoiceStatusPending
	}

	if err := tx.QueryRow(ctx,
		`INSERT INTO service_invoices(invoice_no, customer_name, status, discount, due_date)
		 VALUES($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		inv.InvoiceNo, inv.CustomerName, inv.Status, inv.Discount, inv.DueDate,
	).Scan(&inv.ID, &inv.CreatedAt, &inv.UpdatedAt); err != nil {
		return fmt.Errorf("insert invoice: %w", err)
	}

	for i := range lines {
		lines[i].InvoiceID = inv.ID
		if err := tx.QueryRow(ctx,
			`INSERT INTO invoice_assets(invoice_id, asset_id, meter_id)
			 VALUES($1, $2, $3) RETURNING id`,
			inv.ID, lines[i].AssetID, lines[i].MeterID,
		).Scan(&lines[i].ID); err != nil {
			return fmt.Errorf("insert invoice line: %w", err)
		}
		if _, err := tx.Exec(ctx,
			`UPDATE meter_readings SET invoiced = TRUE, sent = 1 WHERE id = $1`,
			lines[i].MeterID); err != nil {
			return fmt.Errorf("mark reading invoiced: %w", err)
		}
	}
	inv.Assets = lines

	return tx.Commit(ctx)
}

func (r *InvoiceRepository) Get(ctx context.Context, id int) (*models.ServiceInvoice, error) {
	var inv models.ServiceInvoice
	err := r.DB.QueryRow(ctx,
		`SELECT id, invoice_no, customer_name, status, discount, due_date,
		     quickbooks_invoice_id, created_at, updated_at
		 FROM service_invoices WHERE id = $1`, id,
	).Scan(&inv.ID, &inv.InvoiceNo, &inv.CustomerName, &inv.Status, &inv.Discount,
		&inv.DueDate, &inv.QuickBooksInvoiceID, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return nil, err
	}

	lines, err := r.GetLines(ctx, id)
	if err != nil {
		return nil, err
	}
	inv.Assets = lines
	return &inv, nil
}

func (r *InvoiceRepository) GetLines(ctx context.Context, invoiceID int) ([]models.InvoiceLine, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, invoice_id, asset_id, meter_id
		 FROM invoice_assets WHERE invoice_id = $1 ORDER BY id`, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []models.InvoiceLine
	for rows.Next() {
		var l models.InvoiceLine
		if err := rows.Scan(&l.ID, &l.InvoiceID, &l.AssetID, &l.MeterID); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// List returns a page of invoices filtered by one optional criterion.
// Supported filters: invoice_no (prefix match), customer (username), status,
// company (name), unsynced (tracked-company invoices not yet posted).
func (r *InvoiceRepository) List(ctx context.Context, by, value string, page, limit int) ([]*models.InvoiceListItem, error) {
	query := `SELECT si.id, si.invoice_no, si.status, si.due_date, si.quickbooks_invoice_id,
	        si.customer_name, COALESCE(c.name, ''), COALESCE(co.name, ''), si.created_at
	    FROM service_invoices si
	    LEFT JOIN customers c ON c.username = si.customer_name
	    LEFT JOIN companies co ON c.company_id = co.id`

	args := []interface{}{}
	switch by {
	case "invoice_no":
		query += ` WHERE si.invoice_no ILIKE $1 || '%'`
		args = append(args, value)
	case "customer":
		query += ` WHERE si.customer_name = $1`
		args = append(args, value)
	case "status":
		query += ` WHERE si.status = $1`
		args = append(args, value)
	case "company":
		query += ` WHERE co.name = $1`
		args = append(args, value)
	case "unsynced":
		query += ` WHERE si.quickbooks_invoice_id IS NULL AND co.quickbooks_tracked = TRUE`
	}

	query += fmt.Sprintf(` ORDER BY si.created_at DESC OFFSET $%d LIMIT $%d`, len(args)+1, len(args)+2)
	args = append(args, page*limit, limit)

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.InvoiceListItem
	for rows.Next() {
		var it models.InvoiceListItem
		if err := rows.Scan(&it.ID, &it.InvoiceNo, &it.Status, &it.DueDate,
			&it.QuickBooksInvoiceID, &it.CustomerUsername, &it.CustomerName,
			&it.CompanyName, &it.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &it)
	}
	return items, rows.Err()
}

// ListUnsyncedTrackedIDs pages through invoice ids that belong to the
// accounting-tracked company and have not been posted yet.
func (r *InvoiceRepository) ListUnsyncedTrackedIDs(ctx context.Context, page, limit int) ([]int, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT si.id
		 FROM service_invoices si
		 JOIN customers c ON c.username = si.customer_name
		 JOIN companies co ON c.company_id = co.id
		 WHERE si.quickbooks_invoice_id IS NULL AND co.quickbooks_tracked = TRUE
		 ORDER BY si.id OFFSET $1 LIMIT $2`, page*limit, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListSyncedPending pages through posted invoices still pending locally,
// the candidates for payment reconciliation.
func (r *InvoiceRepository) ListSyncedPending(ctx context.Context, page, limit int) ([]*models.ServiceInvoice, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, invoice_no, customer_name, status, discount, due_date,
		     quickbooks_invoice_id, created_at, updated_at
		 FROM service_invoices
		 WHERE quickbooks_invoice_id IS NOT NULL AND status = 'pending'
		 ORDER BY id OFFSET $1 LIMIT $2`, page*limit, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invoices []*models.ServiceInvoice
	for rows.Next() {
		var inv models.ServiceInvoice
		if err := rows.Scan(&inv.ID, &inv.InvoiceNo, &inv.CustomerName, &inv.Status,
			&inv.Discount, &inv.DueDate, &inv.QuickBooksInvoiceID,
			&inv.CreatedAt, &inv.UpdatedAt); err != nil {
			return nil, err
		}
		invoices = append(invoices, &inv)
	}
	return invoices, rows.Err()
}

func (r *InvoiceRepository) UpdateStatus(ctx context.Context, id int, status string) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE service_invoices SET status = $2, updated_at = now() WHERE id = $1`,
		id, status)
	return err
}

func (r *InvoiceRepository) SetQuickBooksInvoiceID(ctx context.Context, id int, qbID int64) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE service_invoices SET quickbooks_invoice_id = $2, updated_at = now()
		 WHERE id = $1`, id, qbID)
	return err
}

// Delete removes an invoice; its lines go with it via cascade
func (r *InvoiceRepository) Delete(ctx context.Context, id int) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM service_invoices WHERE id = $1`, id)
	return err
}

// PurgeUnpaidBefore drops pending invoices created before the cutoff and
// returns how many were removed.
func (r *InvoiceRepository) PurgeUnpaidBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.DB.Exec(ctx,
		`DELETE FROM service_invoices WHERE status = 'pending' AND created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
