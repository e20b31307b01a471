package repository

import (
	"context"
	"errors"

	"livesystem/internal/model"

	"gorm.io/gorm"
)

var ErrBadgeNotFound = errors.New("徽章不存在")

type BadgeRepository struct {
	db *gorm.DB
}

func NewBadgeRepository(db *gorm.DB) *BadgeRepository {
	return &BadgeRepository{db: db}
}

func (r *BadgeRepository) GetByID(ctx context.Context, id int64) (*model.Badge, error) {
	var badge model.Badge
	err := r.db.WithContext(ctx).Where("id = ? AND is_deleted = ?", id, false).First(&badge).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBadgeNotFound
		}
		return nil, err
	}
	return &badge, nil
}

func (r *BadgeRepository) List(ctx context.Context) ([]*model.Badge, error) {
	var badges []*model.Badge
	err := r.db.WithContext(ctx).Where("is_deleted = ?", false).Find(&badges).Error
	return badges, err
}

// Issue 发放一枚徽章
func (r *BadgeRepository) Issue(ctx context.Context, tx *gorm.DB, record *model.BadgeRecord) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(record).Error
}

func (r *BadgeRepository) ListByUser(ctx context.Context, userID int64) ([]*model.BadgeRecord, error) {
	var records []*model.BadgeRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&records).Error
	return records, err
}
