package services

import (
	"context"
	"log"

	"copier-backend/internal/models"
	"copier-backend/internal/notifications"
	"copier-backend/internal/repositories"
)

// NotificationService persists operator notifications and pushes them to
// connected websocket clients.
type NotificationService struct {
	repo *repositories.NotificationRepository
	hub  *notifications.Hub
}

func NewNotificationService(repo *repositories.NotificationRepository, hub *notifications.Hub) *NotificationService {
	return &NotificationService{repo: repo, hub: hub}
}

// Notify stores and broadcasts a notification. Failures are logged only;
// notifications must never fail the operation that raised them.
func (s *NotificationService) Notify(ctx context.Context, title, message, linkPath string) {
	n := &models.Notification{Title: title, Message: message, LinkPath: linkPath}
	if err := s.repo.Create(ctx, n); err != nil {
		log.Printf("[Notifications] Store %q: %v", title, err)
		return
	}
	s.hub.Broadcast(n)
}

func (s *NotificationService) List(ctx context.Context, unreadOnly bool, page, limit int) ([]*models.Notification, error) {
	return s.repo.List(ctx, unreadOnly, page, limit)
}

func (s *NotificationService) MarkRead(ctx context.Context, id int) error {
	return s.repo.MarkRead(ctx, id)
}

func (s *NotificationService) MarkAllRead(ctx context.Context) error {
	return s.repo.MarkAllRead(ctx)
}
