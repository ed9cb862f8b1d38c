package items

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ListParams are the filter, search, pagination and sort inputs for listing
// items. SortBy is checked against an allow-list before reaching SQL.
type ListParams struct {
	Offset       int
	Limit        int
	Type         Type
	Status       Status
	Category     string
	Location     string
	Search       string
	SortBy       string
	SortOrder    string
	ReporterID     uint
	VerifiedOnly   bool
	UnverifiedOnly bool
}

var sortColumns = map[string]string{
	"created_at":  "created_at",
	"occurred_on": "occurred_on",
	"views":       "views",
	"title":       "title",
}

type Repository interface {
	Create(ctx context.Context, item *Item) error
	GetByID(ctx context.Context, id uint) (*Item, error)
	Update(ctx context.Context, item *Item) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, params ListParams) ([]Item, int64, error)
	IncrementViews(ctx context.Context, id uint) error
	CloseStale(ctx context.Context, retentionDays int) (int64, error)
	CountByStatus(ctx context.Context, status Status) (int64, error)
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, item *Item) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *gormRepository) GetByID(ctx context.Context, id uint) (*Item, error) {
	var item Item
	err := r.db.WithContext(ctx).First(&item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *gormRepository) Update(ctx context.Context, item *Item) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *gormRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&Item{}, id).Error
}

func (r *gormRepository) List(ctx context.Context, params ListParams) ([]Item, int64, error) {
	query := r.db.WithContext(ctx).Model(&Item{})

	if params.Type != "" {
		query = query.Where("type = ?", params.Type)
	}
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if params.Category != "" {
		query = query.Where("category = ?", params.Category)
	}
	if params.Location != "" {
		query = query.Where("location = ?", params.Location)
	}
	if params.ReporterID != 0 {
		query = query.Where("reporter_id = ?", params.ReporterID)
	}
	if params.VerifiedOnly {
		query = query.Where("verified = ?", true)
	}
	if params.UnverifiedOnly {
		query = query.Where("verified = ?", false)
	}
	if params.Search != "" {
		pattern := "%" + params.Search + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column, ok := sortColumns[params.SortBy]
	if !ok {
		column = "created_at"
	}
	order := "DESC"
	if params.SortOrder == "asc" {
		order = "ASC"
	}

	limit := params.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var list []Item
	err := query.
		Order(fmt.Sprintf("%s %s", column, order)).
		Offset(params.Offset).Limit(limit).
		Find(&list).Error
	return list, total, err
}

// IncrementViews bumps the denormalized view counter without racing
// concurrent readers.
func (r *gormRepository) IncrementViews(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&Item{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1")).Error
}

// CloseStale closes active items older than the retention window.
func (r *gormRepository) CloseStale(ctx context.Context, retentionDays int) (int64, error) {
	result := r.db.WithContext(ctx).Model(&Item{}).
		Where("status = ? AND created_at < NOW() - make_interval(days => ?)", StatusActive, retentionDays).
		Update("status", StatusClosed)
	return result.RowsAffected, result.Error
}

func (r *gormRepository) CountByStatus(ctx context.Context, status Status) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&Item{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	err := query.Count(&count).Error
	return count, err
}
