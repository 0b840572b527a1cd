package repositories

import (
	"context"
	"errors"

	"copier-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MeterReadingRepository struct {
	DB *pgxpool.Pool
}

func NewMeterReadingRepository(db *pgxpool.Pool) *MeterReadingRepository {
	return &MeterReadingRepository{DB: db}
}

func (r *MeterReadingRepository) Create(ctx context.Context, m *models.MeterReading) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO meter_readings(asset_id, mono, color)
		 VALUES($1, $2, $3)
		 RETURNING id, invoiced, sent, created_at`,
		m.AssetID, m.Mono, m.Color,
	).Scan(&m.ID, &m.Invoiced, &m.Sent, &m.CreatedAt)
}

func (r *MeterReadingRepository) Get(ctx context.Context, id int) (*models.MeterReading, error) {
	var m models.MeterReading
	err := r.DB.QueryRow(ctx,
		`SELECT id, asset_id, mono, color, invoiced, sent, created_at
		 FROM meter_readings WHERE id = $1`, id,
	).Scan(&m.ID, &m.AssetID, &m.Mono, &m.Color, &m.Invoiced, &m.Sent, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// LatestUnbilled returns the newest reading of an asset that has not yet
// been consumed by an invoice, or nil when there is none.
func (r *MeterReadingRepository) LatestUnbilled(ctx context.Context, assetID int) (*models.MeterReading, error) {
	var m models.MeterReading
	err := r.DB.QueryRow(ctx,
		`SELECT id, asset_id, mono, color, invoiced, sent, created_at
		 FROM meter_readings
		 WHERE asset_id = $1 AND invoiced = FALSE
		 ORDER BY created_at DESC LIMIT 1`, assetID,
	).Scan(&m.ID, &m.AssetID, &m.Mono, &m.Color, &m.Invoiced, &m.Sent, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// LatestInvoiced returns the newest already-invoiced reading of an asset,
// the baseline the next billing delta is computed against. Nil when the
// asset has never been invoiced.
func (r *MeterReadingRepository) LatestInvoiced(ctx context.Context, assetID int) (*models.MeterReading, error) {
	var m models.MeterReading
	err := r.DB.QueryRow(ctx,
		`SELECT id, asset_id, mono, color, invoiced, sent, created_at
		 FROM meter_readings
		 WHERE asset_id = $1 AND invoiced = TRUE
		 ORDER BY created_at DESC LIMIT 1`, assetID,
	).Scan(&m.ID, &m.AssetID, &m.Mono, &m.Color, &m.Invoiced, &m.Sent, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// InvoicedBefore returns the newest invoiced reading strictly older than the
// given reading, used when reconstructing the window of an existing invoice.
func (r *MeterReadingRepository) InvoicedBefore(ctx context.Context, assetID, meterID int) (*models.MeterReading, error) {
	var m models.MeterReading
	err := r.DB.QueryRow(ctx,
		`SELECT id, asset_id, mono, color, invoiced, sent, created_at
		 FROM meter_readings
		 WHERE asset_id = $1 AND invoiced = TRUE AND id <> $2
		   AND created_at < (SELECT created_at FROM meter_readings WHERE id = $2)
		 ORDER BY created_at DESC LIMIT 1`, assetID, meterID,
	).Scan(&m.ID, &m.AssetID, &m.Mono, &m.Color, &m.Invoiced, &m.Sent, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// MarkSent records that the invoice covering this reading was emailed
func (r *MeterReadingRepository) MarkSent(ctx context.Context, id int) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE meter_readings SET sent = sent + 1 WHERE id = $1`, id)
	return err
}

func (r *MeterReadingRepository) ListByAsset(ctx context.Context, assetID, page, limit int) ([]*models.MeterReading, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, asset_id, mono, color, invoiced, sent, created_at
		 FROM meter_readings WHERE asset_id = $1
		 ORDER BY created_at DESC OFFSET $2 LIMIT $3`, assetID, page*limit, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var readings []*models.MeterReading
	for rows.Next() {
		var m models.MeterReading
		if err := rows.Scan(&m.ID, &m.AssetID, &m.Mono, &m.Color, &m.Invoiced, &m.Sent, &m.CreatedAt); err != nil {
			return nil, err
		}
		readings = append(readings, &m)
	}
	return readings, rows.Err()
}
