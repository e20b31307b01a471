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
	ErrLiveNotFound     = errors.New("直播间不存在")
	ErrLiveOver         = errors.New("直播已结束")
	ErrWatchLogNotFound = errors.New("观看记录不存在")
)

type LiveRepository struct {
	db *gorm.DB
}

func NewLiveRepository(db *gorm.DB) *LiveRepository {
	return &LiveRepository{db: db}
}

func (r *LiveRepository) Create(ctx context.Context, live *model.Live) error {
	return r.db.WithContext(ctx).Create(live).Error
}

func (r *LiveRepository) GetByID(ctx context.Context, id int64) (*model.Live, error) {
	var live model.Live
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&live).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLiveNotFound
		}
		return nil, err
	}
	return &live, nil
}

// GetActiveByID 只取仍在播的房间
func (r *LiveRepository) GetActiveByID(ctx context.Context, id int64) (*model.Live, error) {
	live, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if live.EndedAt != nil {
		return nil, ErrLiveOver
	}
	return live, nil
}

// End 收播：只在 ended_at 还是空时写入，重复收播 0 行命中即幂等
func (r *LiveRepository) End(ctx context.Context, tx *gorm.DB, liveID int64, endedAt time.Time) (bool, error) {
	if tx == nil {
		tx = r.db
	}
	result := tx.WithContext(ctx).
		Model(&model.Live{}).
		Where("id = ? AND ended_at IS NULL", liveID).
		Update("ended_at", endedAt)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Touch 刷新活跃时间，超时收播判定的依据
func (r *LiveRepository) Touch(ctx context.Context, liveID int64) error {
	return r.db.WithContext(ctx).
		Model(&model.Live{}).
		Where("id = ? AND ended_at IS NULL", liveID).
		Update("last_active_at", time.Now()).Error
}

// AddLikes 点赞计数缓存，后台批量加心也走这里
func (r *LiveRepository) AddLikes(ctx context.Context, liveID int64, count int64) error {
	return r.db.WithContext(ctx).
		Model(&model.Live{}).
		Where("id = ?", liveID).
		UpdateColumn("like_count", gorm.Expr("like_count + ?", count)).Error
}

// UpdateHotRating 热度重算结果落库
func (r *LiveRepository) UpdateHotRating(ctx context.Context, liveID int64, rating int64) error {
	return r.db.WithContext(ctx).
		Model(&model.Live{}).
		Where("id = ?", liveID).
		Update("hot_rating", rating).Error
}

// ListActive 在播房间
func (r *LiveRepository) ListActive(ctx context.Context) ([]*model.Live, error) {
	var lives []*model.Live
	err := r.db.WithContext(ctx).
		Where("ended_at IS NULL").
		Order("hot_rating DESC").
		Find(&lives).Error
	return lives, err
}

// ListIdleActive 在播但超过阈值无动静的房间（update_live_end 任务扫描）
func (r *LiveRepository) ListIdleActive(ctx context.Context, idleBefore time.Time, limit int) ([]*model.Live, error) {
	var lives []*model.Live
	err := r.db.WithContext(ctx).
		Where("ended_at IS NULL AND last_active_at < ?", idleBefore).
		Limit(limit).
		Find(&lives).Error
	return lives, err
}

// List 分页列表，query 由查询参数过滤器预先拼好
func (r *LiveRepository) List(ctx context.Context, query *gorm.DB, page, pageSize int) ([]*model.Live, int64, error) {
	var lives []*model.Live
	var total int64

	if err := query.Model(&model.Live{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&lives).Error

	return lives, total, err
}

// ============================================================
// 观看记录
// ============================================================

// UpsertWatchLog 进房：没有记录就建，有记录只刷新 entered_at，duration 不动
func (r *LiveRepository) UpsertWatchLog(ctx context.Context, userID, liveID int64, enteredAt time.Time) (*model.LiveWatchLog, error) {
	log := &model.LiveWatchLog{
		UserID:      userID,
		LiveID:      liveID,
		EnteredAt:   enteredAt,
		SpeakStatus: model.SpeakStatusNormal,
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "live_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"entered_at": enteredAt, "left_at": nil}),
		}).
		Create(log).Error
	if err != nil {
		return nil, err
	}

	return r.GetWatchLog(ctx, userID, liveID)
}

func (r *LiveRepository) GetWatchLog(ctx context.Context, userID, liveID int64) (*model.LiveWatchLog, error) {
	var log model.LiveWatchLog
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND live_id = ?", userID, liveID).
		First(&log).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWatchLogNotFound
		}
		return nil, err
	}
	return &log, nil
}

// GetWatchLogForUpdate 行锁版本，enter/leave 在同一条记录上串行
func (r *LiveRepository) GetWatchLogForUpdate(ctx context.Context, tx *gorm.DB, userID, liveID int64) (*model.LiveWatchLog, error) {
	var log model.LiveWatchLog
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND live_id = ?", userID, liveID).
		First(&log).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWatchLogNotFound
		}
		return nil, err
	}
	return &log, nil
}

// UpdateWatchLogLeave 离场落账：left_at 与累加后的 duration 一次写入
func (r *LiveRepository) UpdateWatchLogLeave(ctx context.Context, tx *gorm.DB, id int64, leftAt time.Time, duration int) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).
		Model(&model.LiveWatchLog{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"left_at":  leftAt,
			"duration": duration,
		}).Error
}

// CountActiveViewers 在房观众数（进了房还没离场）
func (r *LiveRepository) CountActiveViewers(ctx context.Context, liveID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.LiveWatchLog{}).
		Where("live_id = ? AND left_at IS NULL", liveID).
		Count(&count).Error
	return count, err
}

// CountViewers 累计观众数
func (r *LiveRepository) CountViewers(ctx context.Context, liveID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.LiveWatchLog{}).
		Where("live_id = ?", liveID).
		Count(&count).Error
	return count, err
}

// ListOpenWatchLogs 全部未离场的观看记录（update_live_log_leave 扫描）
func (r *LiveRepository) ListOpenWatchLogs(ctx context.Context, limit int) ([]*model.LiveWatchLog, error) {
	var logs []*model.LiveWatchLog
	err := r.db.WithContext(ctx).
		Where("left_at IS NULL").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}

// CountQualifiedWatches 窗口内时长达标的观看场次（WATCH 活动判定）
func (r *LiveRepository) CountQualifiedWatches(ctx context.Context, userID int64, minDuration int, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.LiveWatchLog{}).
		Where("user_id = ? AND duration >= ? AND created_at >= ? AND created_at < ?", userID, minDuration, from, to).
		Count(&count).Error
	return count, err
}

// SumWatchMinutesOn 用户某日累计观看分钟数（按日快照用）
func (r *LiveRepository) SumWatchMinutesOn(ctx context.Context, userID int64, dayBegin, dayEnd time.Time) (int, int64, error) {
	type row struct {
		Minutes int   `gorm:"column:minutes"`
		Lives   int64 `gorm:"column:lives"`
	}
	var res row
	err := r.db.WithContext(ctx).
		Model(&model.LiveWatchLog{}).
		Select("COALESCE(SUM(duration),0) AS minutes, COUNT(DISTINCT live_id) AS lives").
		Where("user_id = ? AND updated_at >= ? AND updated_at < ?", userID, dayBegin, dayEnd).
		Scan(&res).Error
	return res.Minutes, res.Lives, err
}

// ============================================================
// 弹幕与评论
// ============================================================

func (r *LiveRepository) CreateBarrage(ctx context.Context, barrage *model.LiveBarrage) error {
	return r.db.WithContext(ctx).Create(barrage).Error
}

func (r *LiveRepository) ListBarrages(ctx context.Context, liveID int64, limit int) ([]*model.LiveBarrage, error) {
	var barrages []*model.LiveBarrage
	err := r.db.WithContext(ctx).
		Where("live_id = ?", liveID).
		Order("created_at DESC").
		Limit(limit).
		Find(&barrages).Error
	return barrages, err
}

func (r *LiveRepository) CreateComment(ctx context.Context, comment *model.LiveComment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *LiveRepository) ListComments(ctx context.Context, liveID int64, includeDeleted bool, limit int) ([]*model.LiveComment, error) {
	var comments []*model.LiveComment
	query := r.db.WithContext(ctx).Where("live_id = ?", liveID)
	if !includeDeleted {
		query = query.Where("is_deleted = ?", false)
	}
	err := query.Order("created_at DESC").Limit(limit).Find(&comments).Error
	return comments, err
}
