package claims

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"campus-find/lostfound-backend/internal/items"
)

type Repository interface {
	Create(ctx context.Context, claim *Claim) error
	GetByID(ctx context.Context, id uint) (*Claim, error)
	Update(ctx context.Context, claim *Claim) error
	// UpdateWithItemStatus persists the claim and the item's new status in
	// one transaction so a crash cannot leave them inconsistent.
	UpdateWithItemStatus(ctx context.Context, claim *Claim, itemStatus items.Status) error
	ListByClaimant(ctx context.Context, claimantID uint, offset, limit int) ([]Claim, int64, error)
	ListByOwner(ctx context.Context, ownerID uint, offset, limit int) ([]Claim, int64, error)
	CountByStatus(ctx context.Context, status Status) (int64, error)
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// Create inserts the claim. The unique (item_id, claimant_id) index closes
// the duplicate-submission race; conflicts surface as gorm.ErrDuplicatedKey.
func (r *gormRepository) Create(ctx context.Context, claim *Claim) error {
	return r.db.WithContext(ctx).Create(claim).Error
}

func (r *gormRepository) GetByID(ctx context.Context, id uint) (*Claim, error) {
	var claim Claim
	err := r.db.WithContext(ctx).First(&claim, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &claim, nil
}

func (r *gormRepository) Update(ctx context.Context, claim *Claim) error {
	return r.db.WithContext(ctx).Save(claim).Error
}

func (r *gormRepository) UpdateWithItemStatus(ctx context.Context, claim *Claim, itemStatus items.Status) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(claim).Error; err != nil {
			return err
		}
		return tx.Model(&items.Item{}).
			Where("id = ?", claim.ItemID).
			Update("status", itemStatus).Error
	})
}

func (r *gormRepository) ListByClaimant(ctx context.Context, claimantID uint, offset, limit int) ([]Claim, int64, error) {
	return r.list(ctx, "claimant_id = ?", claimantID, offset, limit)
}

func (r *gormRepository) ListByOwner(ctx context.Context, ownerID uint, offset, limit int) ([]Claim, int64, error) {
	return r.list(ctx, "owner_id = ?", ownerID, offset, limit)
}

func (r *gormRepository) list(ctx context.Context, cond string, id uint, offset, limit int) ([]Claim, int64, error) {
	query := r.db.WithContext(ctx).Model(&Claim{}).Where(cond, id)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var list []Claim
	err := query.Order("submitted_at DESC").Offset(offset).Limit(limit).Find(&list).Error
	return list, total, err
}

func (r *gormRepository) CountByStatus(ctx context.Context, status Status) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&Claim{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	err := query.Count(&count).Error
	return count, err
}
