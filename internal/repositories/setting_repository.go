package repositories

import (
	"context"
	"errors"
	"time"

	"copier-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SettingRepository struct {
	DB *pgxpool.Pool
}

func NewSettingRepository(db *pgxpool.Pool) *SettingRepository {
	return &SettingRepository{DB: db}
}

func (r *SettingRepository) Get(ctx context.Context) (*models.Setting, error) {
	var s models.Setting
	err := r.DB.QueryRow(ctx,
		`SELECT id, active_billing, bills_generated_at, bills_generated_by,
		     notify_on_item, hst_tax, updated_at
		 FROM settings WHERE id = 1`,
	).Scan(&s.ID, &s.ActiveBilling, &s.BillsGeneratedAt, &s.BillsGeneratedBy,
		&s.NotifyOnItem, &s.HstTax, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// AcquireBillingGate atomically flips the run flag when no run is active
// and the cooldown since the last completed run has elapsed. Returns false
// when another run holds the gate or the cooldown has not passed.
func (r *SettingRepository) AcquireBillingGate(ctx context.Context, cooldown time.Duration) (bool, error) {
	var id int
	err := r.DB.QueryRow(ctx,
		`UPDATE settings SET active_billing = TRUE, updated_at = now()
		 WHERE id = 1 AND active_billing = FALSE
		   AND (bills_generated_at IS NULL
		        OR bills_generated_at <= now() - ($1 * interval '1 second'))
		 RETURNING id`, int64(cooldown.Seconds()),
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ReleaseBillingGate clears the run flag. When the run completed, generatedAt
// and userID stamp the cooldown window; on failure they are nil so a retry
// is not locked out for the full cooldown.
func (r *SettingRepository) ReleaseBillingGate(ctx context.Context, generatedAt *time.Time, userID *int) error {
	if generatedAt != nil {
		_, err := r.DB.Exec(ctx,
			`UPDATE settings SET active_billing = FALSE, bills_generated_at = $1,
			     bills_generated_by = $2, updated_at = now()
			 WHERE id = 1`, generatedAt, userID)
		return err
	}
	_, err := r.DB.Exec(ctx,
		`UPDATE settings SET active_billing = FALSE, updated_at = now() WHERE id = 1`)
	return err
}

func (r *SettingRepository) Update(ctx context.Context, s *models.Setting) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE settings SET notify_on_item = $1, hst_tax = $2, updated_at = now()
		 WHERE id = 1`, s.NotifyOnItem, s.HstTax)
	return err
}
