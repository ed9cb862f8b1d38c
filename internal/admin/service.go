package admin

import (
	"context"

	"go.uber.org/zap"

	"campus-find/lostfound-backend/internal/apperrors"
	"campus-find/lostfound-backend/internal/claims"
	"campus-find/lostfound-backend/internal/items"
	"campus-find/lostfound-backend/internal/users"
)

// Stats is the dashboard snapshot served to administrators.
type Stats struct {
	Users  UserStats        `json:"users"`
	Items  map[string]int64 `json:"items"`
	Claims map[string]int64 `json:"claims"`
}

type UserStats struct {
	Students int64 `json:"students"`
	Admins   int64 `json:"admins"`
}

type Service struct {
	userRepo  users.Repository
	itemRepo  items.Repository
	claimRepo claims.Repository
	logger    *zap.Logger
}

func NewService(userRepo users.Repository, itemRepo items.Repository, claimRepo claims.Repository, logger *zap.Logger) *Service {
	return &Service{
		userRepo:  userRepo,
		itemRepo:  itemRepo,
		claimRepo: claimRepo,
		logger:    logger,
	}
}

// Stats aggregates counts across the moderation surface. Every count runs
// against live tables; there is no cache, the dashboard traffic is tiny.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{
		Items:  make(map[string]int64),
		Claims: make(map[string]int64),
	}

	var err error
	if stats.Users.Students, err = s.userRepo.CountByRole(ctx, users.RoleStudent); err != nil {
		s.logger.Error("failed to count students", zap.Error(err))
		return nil, apperrors.Storage()
	}
	if stats.Users.Admins, err = s.userRepo.CountByRole(ctx, users.RoleAdmin); err != nil {
		s.logger.Error("failed to count admins", zap.Error(err))
		return nil, apperrors.Storage()
	}

	for _, status := range []items.Status{items.StatusActive, items.StatusClaimed, items.StatusReturned, items.StatusClosed} {
		count, err := s.itemRepo.CountByStatus(ctx, status)
		if err != nil {
			s.logger.Error("failed to count items", zap.Error(err), zap.String("status", string(status)))
			return nil, apperrors.Storage()
		}
		stats.Items[string(status)] = count
	}

	claimStatuses := []claims.Status{
		claims.StatusPendingVerification,
		claims.StatusAwaitingProof,
		claims.StatusProofSubmitted,
		claims.StatusApproved,
		claims.StatusCompleted,
		claims.StatusRejected,
	}
	for _, status := range claimStatuses {
		count, err := s.claimRepo.CountByStatus(ctx, status)
		if err != nil {
			s.logger.Error("failed to count claims", zap.Error(err), zap.String("status", string(status)))
			return nil, apperrors.Storage()
		}
		stats.Claims[string(status)] = count
	}

	return stats, nil
}
