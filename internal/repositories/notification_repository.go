package repositories

import (
	"context"

	"copier-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type NotificationRepository struct {
	DB *pgxpool.Pool
}

func NewNotificationRepository(db *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{DB: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO notifications(title, message, link_path)
		 VALUES($1, $2, $3)
		 RETURNING id, read, created_at`,
		n.Title, n.Message, n.LinkPath,
	).Scan(&n.ID, &n.Read, &n.CreatedAt)
}

func (r *NotificationRepository) List(ctx context.Context, unreadOnly bool, page, limit int) ([]*models.Notification, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, title, message, link_path, read, created_at
		 FROM notifications
		 WHERE ($1 = FALSE OR read = FALSE)
		 ORDER BY created_at DESC OFFSET $2 LIMIT $3`, unreadOnly, page*limit, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []*models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.Title, &n.Message, &n.LinkPath, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		notes = append(notes, &n)
	}
	return notes, rows.Err()
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id int) error {
	_, err := r.DB.Exec(ctx, `UPDATE notifications SET read = TRUE WHERE id = $1`, id)
	return err
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context) error {
	_, err := r.DB.Exec(ctx, `UPDATE notifications SET read = TRUE WHERE read = FALSE`)
	return err
}
