package repository

import (
	"context"

	"livesystem/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RankRepository struct {
	db *gorm.DB
}

func NewRankRepository(db *gorm.DB) *RankRepository {
	return &RankRepository{db: db}
}

// Upsert 全量重算的落点：同 (user, duration) 行整体覆盖
func (r *RankRepository) Upsert(ctx context.Context, tx *gorm.DB, record *model.RankRecord) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "duration"}},
			DoUpdates: clause.AssignmentColumns([]string{"received_diamond", "sent_diamond", "star_index"}),
		}).
		Create(record).Error
}

// DeleteByDuration 清掉某周期的全部榜单行，重算前先清场避免残留陈旧行
func (r *RankRepository) DeleteByDuration(ctx context.Context, tx *gorm.DB, duration string) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).
		Where("duration = ?", duration).
		Delete(&model.RankRecord{}).Error
}

// ListTop 某周期某指标的前 N 名
func (r *RankRepository) ListTop(ctx context.Context, duration, metric string, limit int) ([]*model.RankRecord, error) {
	column := "received_diamond"
	switch metric {
	case "sent_diamond":
		column = "sent_diamond"
	case "star_index":
		column = "star_index"
	}

	var records []*model.RankRecord
	err := r.db.WithContext(ctx).
		Where("duration = ?", duration).
		Order(column + " DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}

func (r *RankRepository) GetByUser(ctx context.Context, userID int64, duration string) (*model.RankRecord, error) {
	var record model.RankRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND duration = ?", userID, duration).
		First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}
