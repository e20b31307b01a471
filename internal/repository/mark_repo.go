package repository

import (
	"context"
	"errors"

	"livesystem/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrMarkDuplicate   = errors.New("重复标记")
	ErrMarkNotFound    = errors.New("标记不存在")
	ErrMarkTargetKind  = errors.New("未知的标记目标")
)

type MarkRepository struct {
	db *gorm.DB
}

func NewMarkRepository(db *gorm.DB) *MarkRepository {
	return &MarkRepository{db: db}
}

// Create 打标；四列唯一索引冲突时报重复
func (r *MarkRepository) Create(ctx context.Context, mark *model.Mark) error {
	if !model.MarkTargetKindValid(mark.TargetKind) {
		return ErrMarkTargetKind
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(mark)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrMarkDuplicate
	}
	return nil
}

// Delete 取消标记（取关、取消拉黑）
func (r *MarkRepository) Delete(ctx context.Context, authorID int64, subject, targetKind string, targetID int64) error {
	result := r.db.WithContext(ctx).
		Where("author_id = ? AND subject = ? AND target_kind = ? AND target_id = ?",
			authorID, subject, targetKind, targetID).
		Delete(&model.Mark{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrMarkNotFound
	}
	return nil
}

func (r *MarkRepository) Exists(ctx context.Context, authorID int64, subject, targetKind string, targetID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Mark{}).
		Where("author_id = ? AND subject = ? AND target_kind = ? AND target_id = ?",
			authorID, subject, targetKind, targetID).
		Count(&count).Error
	return count > 0, err
}

// ListByAuthor 某人发出的标记（我关注的人：单索引扫描）
func (r *MarkRepository) ListByAuthor(ctx context.Context, authorID int64, subject, targetKind string) ([]*model.Mark, error) {
	var marks []*model.Mark
	err := r.db.WithContext(ctx).
		Where("author_id = ? AND subject = ? AND target_kind = ?", authorID, subject, targetKind).
		Find(&marks).Error
	return marks, err
}

// ListByTarget 指向某目标的标记（关注我的人）
func (r *MarkRepository) ListByTarget(ctx context.Context, subject, targetKind string, targetID int64) ([]*model.Mark, error) {
	var marks []*model.Mark
	err := r.db.WithContext(ctx).
		Where("subject = ? AND target_kind = ? AND target_id = ?", subject, targetKind, targetID).
		Find(&marks).Error
	return marks, err
}

func (r *MarkRepository) CountByTarget(ctx context.Context, subject, targetKind string, targetID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Mark{}).
		Where("subject = ? AND target_kind = ? AND target_id = ?", subject, targetKind, targetID).
		Count(&count).Error
	return count, err
}
