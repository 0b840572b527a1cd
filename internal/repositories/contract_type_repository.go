package repositories

import (
	"context"

	"copier-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type ContractTypeRepository struct {
	DB *pgxpool.Pool
}

func NewContractTypeRepository(db *pgxpool.Pool) *ContractTypeRepository {
	return &ContractTypeRepository{DB: db}
}

func (r *ContractTypeRepository) Create(ctx context.Context, ct *models.ContractType) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO contract_types(name, billing_mode, billable)
		 VALUES($1, $2, $3)
		 RETURNING id, created_at`,
		ct.Name, ct.BillingMode, ct.Billable,
	).Scan(&ct.ID, &ct.CreatedAt)
}

func (r *ContractTypeRepository) Get(ctx context.Context, id int) (*models.ContractType, error) {
	var ct models.ContractType
	err := r.DB.QueryRow(ctx,
		`SELECT id, name, billing_mode, billable, created_at
		 FROM contract_types WHERE id = $1`, id,
	).Scan(&ct.ID, &ct.Name, &ct.BillingMode, &ct.Billable, &ct.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &ct, nil
}

func (r *ContractTypeRepository) List(ctx context.Context) ([]*models.ContractType, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, name, billing_mode, billable, created_at
		 FROM contract_types ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var types []*models.ContractType
	for rows.Next() {
		var ct models.ContractType
		if err := rows.Scan(&ct.ID, &ct.Name, &ct.BillingMode, &ct.Billable, &ct.CreatedAt); err != nil {
			return nil, err
		}
		types = append(types, &ct)
	}
	return types, rows.Err()
}

func (r *ContractTypeRepository) Update(ctx context.Context, ct *models.ContractType) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE contract_types SET name = $2, billing_mode = $3, billable = $4 WHERE id = $1`,
		ct.ID, ct.Name, ct.BillingMode, ct.Billable)
	return err
}
