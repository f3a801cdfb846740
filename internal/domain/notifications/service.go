package notifications

import (
	"context"
	"log/slog"
)

const (
	TypeEntryGenerated  = "entry_generated"
	TypeTemplateUpdated = "template_updated"
)

type Service struct {
	store *Store
}

func New(store *Store) *Service {
	return &Service{store: store}
}

func (s *Service) Create(ctx context.Context, userID, ntype, title, body string) error {
	return s.store.Create(ctx, userID, ntype, title, body)
}

// Notify is the fire-and-forget variant for side-channel notifications: a
// failure is logged, never propagated.
func (s *Service) Notify(ctx context.Context, userID, ntype, title, body string) {
	if userID == "" {
		return
	}
	if err := s.store.Create(ctx, userID, ntype, title, body); err != nil {
		slog.Warn("notification create failed", "type", ntype, "err", err)
	}
}

func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Notification, error) {
	return s.store.List(ctx, userID, limit, offset)
}

func (s *Service) CountUnread(ctx context.Context, userID string) (int, error) {
	return s.store.CountUnread(ctx, userID)
}

func (s *Service) MarkRead(ctx context.Context, userID, notificationID string) error {
	return s.store.MarkRead(ctx, userID, notificationID)
}
