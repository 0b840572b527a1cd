package repositories

import (
	"context"

	"copier-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type AssetRepository struct {
	DB *pgxpool.Pool
}

func NewAssetRepository(db *pgxpool.Pool) *AssetRepository {
	return &AssetRepository{DB: db}
}

const assetColumns = `id, asset_number, model, serial_no, customer_id, contract_type_id,
	mono_begin, color_begin, covered_mono, covered_color, mono_price, color_price,
	contract_amount, base_adj, rental_charge, is_active, deleted_at, created_at`

func scanAsset(row interface{ Scan(...interface{}) error }) (*models.Asset, error) {
	var a models.Asset
	err := row.Scan(&a.ID, &a.AssetNumber, &a.Model, &a.SerialNo, &a.CustomerID,
		&a.ContractTypeID, &a.MonoBegin, &a.ColorBegin, &a.CoveredMono, &a.CoveredColor,
		&a.MonoPrice, &a.ColorPrice, &a.ContractAmount, &a.BaseAdj, &a.RentalCharge,
		&a.IsActive, &a.DeletedAt, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AssetRepository) Create(ctx context.Context, a *models.Asset) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO assets(asset_number, model, serial_no, customer_id, contract_type_id,
		     mono_begin, color_begin, covered_mono, covered_color, mono_price, color_price,
		     contract_amount, base_adj, rental_charge)
		 VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		 RETURNING id, is_active, created_at`,
		a.AssetNumber, a.Model, a.SerialNo, a.CustomerID, a.ContractTypeID,
		a.MonoBegin, a.ColorBegin, a.CoveredMono, a.CoveredColor, a.MonoPrice, a.ColorPrice,
		a.ContractAmount, a.BaseAdj, a.RentalCharge,
	).Scan(&a.ID, &a.IsActive, &a.CreatedAt)
}

func (r *AssetRepository) Get(ctx context.Context, id int) (*models.Asset, error) {
	return scanAsset(r.DB.QueryRow(ctx,
		`SELECT `+assetColumns+` FROM assets WHERE id = $1 AND deleted_at IS NULL`, id))
}

func (r *AssetRepository) GetByAssetNumber(ctx context.Context, assetNumber string) (*models.Asset, error) {
	return scanAsset(r.DB.QueryRow(ctx,
		`SELECT `+assetColumns+` FROM assets
		 WHERE asset_number = $1 AND deleted_at IS NULL`, assetNumber))
}

func (r *AssetRepository) Update(ctx context.Context, a *models.Asset) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE assets SET model = $2, serial_no = $3, customer_id = $4,
		     contract_type_id = $5, mono_begin = $6, color_begin = $7,
		     covered_mono = $8, covered_color = $9, mono_price = $10,
		     color_price = $11, contract_amount = $12, base_adj = $13,
		     rental_charge = $14, is_active = $15
		 WHERE id = $1 AND deleted_at IS NULL`,
		a.ID, a.Model, a.SerialNo, a.CustomerID, a.ContractTypeID,
		a.MonoBegin, a.ColorBegin, a.CoveredMono, a.CoveredColor,
		a.MonoPrice, a.ColorPrice, a.ContractAmount, a.BaseAdj,
		a.RentalCharge, a.IsActive)
	return err
}

// SoftDelete retires an asset. Its meter readings and invoice lines stay
// intact for audit history.
func (r *AssetRepository) SoftDelete(ctx context.Context, id int) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE assets SET deleted_at = now(), is_active = FALSE
		 WHERE id = $1 AND deleted_at IS NULL`, id)
	return err
}

const billingAssetQuery = `SELECT a.id, a.asset_number, a.model, a.serial_no, a.customer_id,
	    a.contract_type_id, a.mono_begin, a.color_begin, a.covered_mono, a.covered_color,
	    a.mono_price, a.color_price, a.contract_amount, a.base_adj, a.rental_charge,
	    a.is_active, a.deleted_at, a.created_at,
	    c.username, c.name, c.billing_schedule,
	    COALESCE(co.id, 0), COALESCE(co.name, ''), COALESCE(co.quickbooks_tracked, FALSE),
	    ct.name, ct.billing_mode, ct.billable
	 FROM assets a
	 JOIN customers c ON a.customer_id = c.id
	 LEFT JOIN companies co ON c.company_id = co.id
	 JOIN contract_types ct ON a.contract_type_id = ct.id`

func scanBillingAsset(row interface{ Scan(...interface{}) error }) (*models.BillingAsset, error) {
	var b models.BillingAsset
	err := row.Scan(&b.ID, &b.AssetNumber, &b.Model, &b.SerialNo, &b.CustomerID,
		&b.ContractTypeID, &b.MonoBegin, &b.ColorBegin, &b.CoveredMono, &b.CoveredColor,
		&b.MonoPrice, &b.ColorPrice, &b.ContractAmount, &b.BaseAdj, &b.RentalCharge,
		&b.IsActive, &b.DeletedAt, &b.CreatedAt,
		&b.CustomerUsername, &b.CustomerName, &b.BillingSchedule,
		&b.CompanyID, &b.CompanyName, &b.QuickBooksTracked,
		&b.ContractTypeName, &b.BillingMode, &b.ContractBillable)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// ListBillableByCustomer returns the active assets of one customer with the
// joined context the billing engine needs.
func (r *AssetRepository) ListBillableByCustomer(ctx context.Context, customerID int) ([]*models.BillingAsset, error) {
	rows, err := r.DB.Query(ctx,
		billingAssetQuery+`
		 WHERE a.customer_id = $1 AND a.is_active = TRUE AND a.deleted_at IS NULL
		 ORDER BY a.id`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assets []*models.BillingAsset
	for rows.Next() {
		b, err := scanBillingAsset(rows)
		if err != nil {
			return nil, err
		}
		assets = append(assets, b)
	}
	return assets, rows.Err()
}

// GetBilling loads one asset with joined billing context
func (r *AssetRepository) GetBilling(ctx context.Context, id int) (*models.BillingAsset, error) {
	return scanBillingAsset(r.DB.QueryRow(ctx,
		billingAssetQuery+` WHERE a.id = $1`, id))
}

// ListByCustomer returns every non-deleted asset of a customer
func (r *AssetRepository) ListByCustomer(ctx context.Context, customerID int) ([]*models.Asset, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+assetColumns+` FROM assets
		 WHERE customer_id = $1 AND deleted_at IS NULL
		 ORDER BY id`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assets []*models.Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		assets = append(assets, a)
	}
	return assets, rows.Err()
}

// ListActivePage returns a page of active assets, used by the counter sync
func (r *AssetRepository) ListActivePage(ctx context.Context, page, limit int) ([]*models.Asset, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+assetColumns+` FROM assets
		 WHERE is_active = TRUE AND deleted_at IS NULL
		 ORDER BY id OFFSET $1 LIMIT $2`, page*limit, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assets []*models.Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		assets = append(assets, a)
	}
	return assets, rows.Err()
}
