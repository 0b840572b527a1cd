package repositories

import (
	"context"

	"copier-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type QuickBooksRepository struct {
	DB *pgxpool.Pool
}

func NewQuickBooksRepository(db *pgxpool.Pool) *QuickBooksRepository {
	return &QuickBooksRepository{DB: db}
}

const quickbooksColumns = `id, company_id, realm_id, client_id, client_secret,
	access_token, refresh_token, expires_in, refresh_expires_in, updated_at`

func scanToken(row interface{ Scan(...interface{}) error }) (*models.QuickBooksToken, error) {
	var t models.QuickBooksToken
	err := row.Scan(&t.ID, &t.CompanyID, &t.RealmID, &t.ClientID, &t.ClientSecret,
		&t.AccessToken, &t.RefreshToken, &t.ExpiresIn, &t.RefreshExpiresIn, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *QuickBooksRepository) GetByCompany(ctx context.Context, companyID int) (*models.QuickBooksToken, error) {
	return scanToken(r.DB.QueryRow(ctx,
		`SELECT `+quickbooksColumns+` FROM quickbooks_tokens WHERE company_id = $1`,
		companyID))
}

// GetTracked returns the credentials of the accounting-tracked company
func (r *QuickBooksRepository) GetTracked(ctx context.Context) (*models.QuickBooksToken, error) {
	return scanToken(r.DB.QueryRow(ctx,
		`SELECT t.id, t.company_id, t.realm_id, t.client_id, t.client_secret,
		     t.access_token, t.refresh_token, t.expires_in, t.refresh_expires_in, t.updated_at
		 FROM quickbooks_tokens t
		 JOIN companies co ON t.company_id = co.id
		 WHERE co.quickbooks_tracked = TRUE
		 LIMIT 1`))
}

// Upsert stores or replaces the credentials for a company realm
func (r *QuickBooksRepository) Upsert(ctx context.Context, t *models.QuickBooksToken) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO quickbooks_tokens(company_id, realm_id, client_id, client_secret,
		     access_token, refresh_token, expires_in, refresh_expires_in, updated_at)
		 VALUES($1, $2, $3, $4, $5, $6, $7, $8, now())
		 ON CONFLICT (company_id) DO UPDATE SET
		     realm_id = EXCLUDED.realm_id,
		     client_id = EXCLUDED.client_id,
		     client_secret = EXCLUDED.client_secret,
		     access_token = EXCLUDED.access_token,
		     refresh_token = EXCLUDED.refresh_token,
		     expires_in = EXCLUDED.expires_in,
		     refresh_expires_in = EXCLUDED.refresh_expires_in,
		     updated_at = now()
		 RETURNING id, updated_at`,
		t.CompanyID, t.RealmID, t.ClientID, t.ClientSecret,
		t.AccessToken, t.RefreshToken, t.ExpiresIn, t.RefreshExpiresIn,
	).Scan(&t.ID, &t.UpdatedAt)
}

// UpdateTokens refreshes only the OAuth material after a token exchange
func (r *QuickBooksRepository) UpdateTokens(ctx context.Context, t *models.QuickBooksToken) error {
	return r.DB.QueryRow(ctx,
		`UPDATE quickbooks_tokens SET access_token = $2, refresh_token = $3,
		     expires_in = $4, refresh_expires_in = $5, updated_at = now()
		 WHERE id = $1
		 RETURNING updated_at`,
		t.ID, t.AccessToken, t.RefreshToken, t.ExpiresIn, t.RefreshExpiresIn,
	).Scan(&t.UpdatedAt)
}
