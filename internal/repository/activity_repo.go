package repository

import (
	"context"
	"errors"
	"time"

	"livesystem/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrActivityNotFound      = errors.New("活动不存在")
	ErrParticipationConflict = errors.New("已参与该活动")
	ErrActivitySettled       = errors.New("活动已结算")
)

type ActivityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) Create(ctx context.Context, activity *model.Activity) error {
	return r.db.WithContext(ctx).Create(activity).Error
}

func (r *ActivityRepository) GetByID(ctx context.Context, id int64) (*model.Activity, error) {
	var activity model.Activity
	err := r.db.WithContext(ctx).Where("id = ? AND is_deleted = ?", id, false).First(&activity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrActivityNotFound
		}
		return nil, err
	}
	return &activity, nil
}

// ListUnsettledEnded 已到期未结算的活动（settle_activity 任务扫描）
func (r *ActivityRepository) ListUnsettledEnded(ctx context.Context, now time.Time) ([]*model.Activity, error) {
	var activities []*model.Activity
	err := r.db.WithContext(ctx).
		Where("date_end <= ? AND is_settle = ? AND is_deleted = ?", now, false, false).
		Find(&activities).Error
	return activities, err
}

func (r *ActivityRepository) ListRunning(ctx context.Context, now time.Time) ([]*model.Activity, error) {
	var activities []*model.Activity
	err := r.db.WithContext(ctx).
		Where("date_begin <= ? AND date_end > ? AND is_deleted = ?", now, now, false).
		Find(&activities).Error
	return activities, err
}

// MarkSettled 结算幂等闸门：只有抢到 false->true 翻转的那次结算继续发奖
func (r *ActivityRepository) MarkSettled(ctx context.Context, tx *gorm.DB, activityID int64) (bool, error) {
	if tx == nil {
		tx = r.db
	}
	result := tx.WithContext(ctx).
		Model(&model.Activity{}).
		Where("id = ? AND is_settle = ?", activityID, false).
		Update("is_settle", true)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ============================================================
// 参与记录
// ============================================================

// CreateParticipation (activity, user) 唯一，冲突即已参与
func (r *ActivityRepository) CreateParticipation(ctx context.Context, tx *gorm.DB, p *model.ActivityParticipation) error {
	if tx == nil {
		tx = r.db
	}
	result := tx.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(p)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrParticipationConflict
	}
	return nil
}

func (r *ActivityRepository) GetParticipation(ctx context.Context, activityID, userID int64) (*model.ActivityParticipation, error) {
	var p model.ActivityParticipation
	err := r.db.WithContext(ctx).
		Where("activity_id = ? AND user_id = ?", activityID, userID).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *ActivityRepository) ListParticipations(ctx context.Context, activityID int64) ([]*model.ActivityParticipation, error) {
	var ps []*model.ActivityParticipation
	err := r.db.WithContext(ctx).
		Where("activity_id = ?", activityID).
		Find(&ps).Error
	return ps, err
}

// MarkAwarded 发奖落账后打标，避免结算内重复发
func (r *ActivityRepository) MarkAwarded(ctx context.Context, tx *gorm.DB, participationID int64) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).
		Model(&model.ActivityParticipation{}).
		Where("id = ?", participationID).
		Update("awarded", true).Error
}
