package repositories

import (
	"context"

	"copier-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type CompanyRepository struct {
	DB *pgxpool.Pool
}

func NewCompanyRepository(db *pgxpool.Pool) *CompanyRepository {
	return &CompanyRepository{DB: db}
}

func (r *CompanyRepository) Create(ctx context.Context, c *models.Company) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO companies(name, city, post_code, quickbooks_tracked)
		 VALUES($1, $2, $3, $4)
		 RETURNING id, created_at`,
		c.Name, c.City, c.PostCode, c.QuickBooksTracked,
	).Scan(&c.ID, &c.CreatedAt)
}

func (r *CompanyRepository) Get(ctx context.Context, id int) (*models.Company, error) {
	var c models.Company
	err := r.DB.QueryRow(ctx,
		`SELECT id, name, city, post_code, quickbooks_tracked, created_at
		 FROM companies WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.City, &c.PostCode, &c.QuickBooksTracked, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CompanyRepository) List(ctx context.Context) ([]*models.Company, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, name, city, post_code, quickbooks_tracked, created_at
		 FROM companies ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var companies []*models.Company
	for rows.Next() {
		var c models.Company
		if err := rows.Scan(&c.ID, &c.Name, &c.City, &c.PostCode, &c.QuickBooksTracked, &c.CreatedAt); err != nil {
			return nil, err
		}
		companies = append(companies, &c)
	}
	return companies, rows.Err()
}

func (r *CompanyRepository) Update(ctx context.Context, c *models.Company) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE companies SET name = $2, city = $3, post_code = $4, quickbooks_tracked = $5
		 WHERE id = $1`,
		c.ID, c.Name, c.City, c.PostCode, c.QuickBooksTracked)
	return err
}
