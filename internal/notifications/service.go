package notifications

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"campus-find/lostfound-backend/internal/apperrors"
	ws "campus-find/lostfound-backend/internal/notifications/websocket"
)

// Service persists notifications and pushes them to connected clients.
// Delivery is best effort; a failed notify never fails the caller.
type Service struct {
	repo   Repository
	hub    *ws.Manager
	logger *zap.Logger
}

func NewService(repo Repository, hub *ws.Manager, logger *zap.Logger) *Service {
	return &Service{repo: repo, hub: hub, logger: logger}
}

// Notify implements the claims.Notifier contract.
func (s *Service) Notify(ctx context.Context, userID uint, event string, payload map[string]any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		s.logger.Warn("failed to encode notification payload", zap.Error(err), zap.String("event", event))
		raw = []byte("{}")
	}

	n := &Notification{
		UserID:  userID,
		Event:   event,
		Payload: raw,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		s.logger.Warn("failed to persist notification", zap.Error(err), zap.String("event", event), zap.Uint("user_id", userID))
	}

	s.hub.SendToUser(userID, ws.Message{
		Event:     event,
		Data:      payload,
		Timestamp: time.Now(),
	})
}

func (s *Service) ListForUser(ctx context.Context, userID uint, offset, limit int) ([]Notification, int64, error) {
	list, total, err := s.repo.ListByUser(ctx, userID, offset, limit)
	if err != nil {
		s.logger.Error("failed to list notifications", zap.Error(err))
		return nil, 0, apperrors.Storage()
	}
	return list, total, nil
}

func (s *Service) MarkRead(ctx context.Context, id, callerID uint) error {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to load notification", zap.Error(err))
		return apperrors.Storage()
	}
	if n == nil {
		return apperrors.NotFound("notification not found")
	}
	if n.UserID != callerID {
		return apperrors.Authorization("this notification belongs to another user")
	}

	if err := s.repo.MarkRead(ctx, id); err != nil {
		s.logger.Error("failed to mark notification read", zap.Error(err))
		return apperrors.Storage()
	}
	return nil
}
