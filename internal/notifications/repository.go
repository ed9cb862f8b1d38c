package notifications

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, n *Notification) error
	ListByUser(ctx context.Context, userID uint, offset, limit int) ([]Notification, int64, error)
	GetByID(ctx context.Context, id uint) (*Notification, error)
	MarkRead(ctx context.Context, id uint) error
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, n *Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *gormRepository) ListByUser(ctx context.Context, userID uint, offset, limit int) ([]Notification, int64, error) {
	query := r.db.WithContext(ctx).Model(&Notification{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var list []Notification
	err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&list).Error
	return list, total, err
}

func (r *gormRepository) GetByID(ctx context.Context, id uint) (*Notification, error) {
	var n Notification
	err := r.db.WithContext(ctx).First(&n, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *gormRepository) MarkRead(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&Notification{}).
		Where("id = ?", id).
		Update("read", true).Error
}
