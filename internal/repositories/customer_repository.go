package repositories

import (
	"context"

	"copier-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type CustomerRepository struct {
	DB *pgxpool.Pool
}

func NewCustomerRepository(db *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{DB: db}
}

const customerColumns = `id, name, username, email, secondary_email, phone_number,
	billing_address, shipping_address, billing_schedule, is_active,
	company_id, quickbooks_id, mps_customer_code, created_at`

func scanCustomer(row interface{ Scan(...interface{}) error }) (*models.Customer, error) {
	var c models.Customer
	err := row.Scan(&c.ID, &c.Name, &c.Username, &c.Email, &c.SecondaryEmail,
		&c.PhoneNumber, &c.BillingAddress, &c.ShippingAddress, &c.BillingSchedule,
		&c.IsActive, &c.CompanyID, &c.QuickBooksID, &c.MpsCustomerCode, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CustomerRepository) Create(ctx context.Context, c *models.Customer) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO customers(name, username, email, secondary_email, phone_number,
		     billing_address, shipping_address, billing_schedule, company_id, mps_customer_code)
		 VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id, is_active, created_at`,
		c.Name, c.Username, c.Email, c.SecondaryEmail, c.PhoneNumber,
		c.BillingAddress, c.ShippingAddress, c.BillingSchedule, c.CompanyID, c.MpsCustomerCode,
	).Scan(&c.ID, &c.IsActive, &c.CreatedAt)
}

func (r *CustomerRepository) Get(ctx context.Context, id int) (*models.Customer, error) {
	return scanCustomer(r.DB.QueryRow(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE id = $1`, id))
}

func (r *CustomerRepository) GetByUsername(ctx context.Context, username string) (*models.Customer, error) {
	return scanCustomer(r.DB.QueryRow(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE username = $1`, username))
}

func (r *CustomerRepository) Update(ctx context.Context, c *models.Customer) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE customers SET name = $2, email = $3, secondary_email = $4,
		     phone_number = $5, billing_address = $6, shipping_address = $7,
		     billing_schedule = $8, is_active = $9, company_id = $10,
		     quickbooks_id = $11, mps_customer_code = $12
		 WHERE id = $1`,
		c.ID, c.Name, c.Email, c.SecondaryEmail, c.PhoneNumber,
		c.BillingAddress, c.ShippingAddress, c.BillingSchedule, c.IsActive,
		c.CompanyID, c.QuickBooksID, c.MpsCustomerCode)
	return err
}

// List returns a page of customers ordered by creation time
func (r *CustomerRepository) List(ctx context.Context, page, limit int) ([]*models.Customer, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+customerColumns+` FROM customers
		 ORDER BY created_at ASC OFFSET $1 LIMIT $2`, page*limit, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []*models.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

// ListActiveIDs returns a page of active customer ids for the billing scan
func (r *CustomerRepository) ListActiveIDs(ctx context.Context, page, limit int) ([]int, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id FROM customers WHERE is_active = TRUE
		 ORDER BY created_at ASC OFFSET $1 LIMIT $2`, page*limit, limit)
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

// IsQuickBooksTracked reports whether the customer belongs to the company
// whose invoices are posted to the accounting system.
func (r *CustomerRepository) IsQuickBooksTracked(ctx context.Context, customerID int) (bool, error) {
	var tracked bool
	err := r.DB.QueryRow(ctx,
		`SELECT COALESCE(co.quickbooks_tracked, FALSE)
		 FROM customers c
		 LEFT JOIN companies co ON c.company_id = co.id
		 WHERE c.id = $1`, customerID,
	).Scan(&tracked)
	return tracked, err
}
