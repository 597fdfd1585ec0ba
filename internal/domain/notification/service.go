package notification

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateNotification(ctx context.Context, n *Notification) error {
	if n.RecipientUserID == uuid.Nil {
		return fmt.Errorf("recipient_user_id is required")
	}
	if n.Title == "" {
		return fmt.Errorf("title is required")
	}
	return s.repo.Create(ctx, n)
}

func (s *Service) GetNotification(ctx context.Context, id uuid.UUID) (*Notification, error) {
	return s.repo.GetByID(ctx, id)
}

// MarkRead flips the read flag on a notification.
func (s *Service) MarkRead(ctx context.Context, id uuid.UUID, read bool) (*Notification, error) {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	n.Read = read
	if err := s.repo.Update(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *Service) SearchNotifications(ctx context.Context, params map[string]string, limit, offset int) ([]*Notification, int, error) {
	return s.repo.Search(ctx, params, limit, offset)
}
