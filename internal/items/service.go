package items

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"campus-find/lostfound-backend/internal/apperrors"
	"campus-find/lostfound-backend/pkg/storage"
)

type Service interface {
	Create(ctx context.Context, reporterID uint, req CreateRequest) (*Item, error)
	Get(ctx context.Context, id, viewerID uint, admin bool) (*Item, error)
	List(ctx context.Context, params ListParams) ([]Item, int64, error)
	ListMine(ctx context.Context, reporterID uint, offset, limit int) ([]Item, int64, error)
	Update(ctx context.Context, id, callerID uint, req UpdateRequest) (*Item, error)
	Delete(ctx context.Context, id, callerID uint, admin bool) error
	AddImages(ctx context.Context, id, callerID uint, paths []string) (*Item, error)
	SetVerified(ctx context.Context, id uint, verified bool) (*Item, error)
}

type CreateRequest struct {
	Type        Type
	Title       string
	Description string
	Category    string
	Location    string
	OccurredOn  string
	Contact     ContactInfo
	Questions   []Question
	Images      []string
}

type UpdateRequest struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Category    string       `json:"category"`
	Location    string       `json:"location"`
	OccurredOn  string       `json:"occurredOn"`
	Contact     *ContactInfo `json:"contact"`
	Status      Status       `json:"status"`
}

type itemService struct {
	repo    Repository
	store   *storage.LocalStore
	machine interface {
		CanTransition(from, to Status) bool
	}
	logger *zap.Logger
}

func NewService(repo Repository, store *storage.LocalStore, logger *zap.Logger) Service {
	return &itemService{
		repo:    repo,
		store:   store,
		machine: StatusMachine(),
		logger:  logger,
	}
}

func (s *itemService) Create(ctx context.Context, reporterID uint, req CreateRequest) (*Item, error) {
	if req.Type != TypeLost && req.Type != TypeFound {
		return nil, apperrors.Validation("type must be 'lost' or 'found'")
	}
	if strings.TrimSpace(req.Title) == "" {
		return nil, apperrors.Validation("title is required")
	}
	if req.OccurredOn != "" {
		if _, err := time.Parse("2006-01-02", req.OccurredOn); err != nil {
			return nil, apperrors.Validation("occurredOn must be a YYYY-MM-DD date")
		}
	}
	for _, q := range req.Questions {
		if strings.TrimSpace(q.Question) == "" || strings.TrimSpace(q.Answer) == "" {
			return nil, apperrors.Validation("every verification question needs both a question and an answer")
		}
	}

	item := &Item{
		ReporterID:  reporterID,
		Type:        req.Type,
		Status:      StatusActive,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Category:    strings.TrimSpace(req.Category),
		Location:    strings.TrimSpace(req.Location),
		OccurredOn:  req.OccurredOn,
		Images:      datatypes.NewJSONSlice(req.Images),
		Contact:     datatypes.NewJSONType(req.Contact),
		Questions:   datatypes.NewJSONSlice(req.Questions),
	}

	if err := s.repo.Create(ctx, item); err != nil {
		s.logger.Error("failed to create item", zap.Error(err))
		return nil, apperrors.Storage()
	}
	return item, nil
}

func (s *itemService) Get(ctx context.Context, id, viewerID uint, admin bool) (*Item, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to load item", zap.Error(err), zap.Uint("item_id", id))
		return nil, apperrors.Storage()
	}
	if item == nil {
		return nil, apperrors.NotFound("item not found")
	}

	// Unverified items are visible only to their reporter and admins.
	if !item.Verified && item.ReporterID != viewerID && !admin {
		return nil, apperrors.NotFound("item not found")
	}

	if viewerID != item.ReporterID {
		if err := s.repo.IncrementViews(ctx, id); err != nil {
			s.logger.Warn("failed to increment views", zap.Error(err), zap.Uint("item_id", id))
		} else {
			item.Views++
		}
	}
	return item, nil
}

func (s *itemService) List(ctx context.Context, params ListParams) ([]Item, int64, error) {
	list, total, err := s.repo.List(ctx, params)
	if err != nil {
		s.logger.Error("failed to list items", zap.Error(err))
		return nil, 0, apperrors.Storage()
	}
	return list, total, nil
}

func (s *itemService) ListMine(ctx context.Context, reporterID uint, offset, limit int) ([]Item, int64, error) {
	return s.List(ctx, ListParams{ReporterID: reporterID, Offset: offset, Limit: limit})
}

func (s *itemService) Update(ctx context.Context, id, callerID uint, req UpdateRequest) (*Item, error) {
	item, err := s.owned(ctx, id, callerID)
	if err != nil {
		return nil, err
	}

	if title := strings.TrimSpace(req.Title); title != "" {
		item.Title = title
	}
	if req.Description != "" {
		item.Description = strings.TrimSpace(req.Description)
	}
	if req.Category != "" {
		item.Category = strings.TrimSpace(req.Category)
	}
	if req.Location != "" {
		item.Location = strings.TrimSpace(req.Location)
	}
	if req.OccurredOn != "" {
		if _, err := time.Parse("2006-01-02", req.OccurredOn); err != nil {
			return nil, apperrors.Validation("occurredOn must be a YYYY-MM-DD date")
		}
		item.OccurredOn = req.OccurredOn
	}
	if req.Contact != nil {
		item.Contact = datatypes.NewJSONType(*req.Contact)
	}
	if req.Status != "" && req.Status != item.Status {
		if !s.machine.CanTransition(item.Status, req.Status) {
			return nil, apperrors.StateConflict("item cannot move from '" + string(item.Status) + "' to '" + string(req.Status) + "'")
		}
		item.Status = req.Status
	}

	if err := s.repo.Update(ctx, item); err != nil {
		s.logger.Error("failed to update item", zap.Error(err), zap.Uint("item_id", id))
		return nil, apperrors.Storage()
	}
	return item, nil
}

func (s *itemService) Delete(ctx context.Context, id, callerID uint, admin bool) error {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to load item", zap.Error(err), zap.Uint("item_id", id))
		return apperrors.Storage()
	}
	if item == nil {
		return apperrors.NotFound("item not found")
	}
	if item.ReporterID != callerID && !admin {
		return apperrors.Authorization("only the reporter or an administrator can delete this item")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete item", zap.Error(err), zap.Uint("item_id", id))
		return apperrors.Storage()
	}

	for _, path := range item.Images {
		if err := s.store.Remove(path); err != nil {
			s.logger.Warn("failed to remove item image", zap.Error(err), zap.String("path", path))
		}
	}
	return nil
}

func (s *itemService) AddImages(ctx context.Context, id, callerID uint, paths []string) (*Item, error) {
	item, err := s.owned(ctx, id, callerID)
	if err != nil {
		return nil, err
	}

	item.Images = append(item.Images, paths...)
	if err := s.repo.Update(ctx, item); err != nil {
		s.logger.Error("failed to append images", zap.Error(err), zap.Uint("item_id", id))
		return nil, apperrors.Storage()
	}
	return item, nil
}

func (s *itemService) SetVerified(ctx context.Context, id uint, verified bool) (*Item, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to load item", zap.Error(err), zap.Uint("item_id", id))
		return nil, apperrors.Storage()
	}
	if item == nil {
		return nil, apperrors.NotFound("item not found")
	}

	item.Verified = verified
	if err := s.repo.Update(ctx, item); err != nil {
		s.logger.Error("failed to update verification flag", zap.Error(err), zap.Uint("item_id", id))
		return nil, apperrors.Storage()
	}
	return item, nil
}

func (s *itemService) owned(ctx context.Context, id, callerID uint) (*Item, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to load item", zap.Error(err), zap.Uint("item_id", id))
		return nil, apperrors.Storage()
	}
	if item == nil {
		return nil, apperrors.NotFound("item not found")
	}
	if item.ReporterID != callerID {
		return nil, apperrors.Authorization("only the reporter can modify this item")
	}
	return item, nil
}
