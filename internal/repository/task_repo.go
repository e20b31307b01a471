package repository

import (
	"context"
	"errors"
	"time"

	"livesystem/internal/model"

	"gorm.io/gorm"
)

var ErrTaskNotPlanned = errors.New("任务不在 PLANNED 状态")

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, tx *gorm.DB, task *model.PlannedTask) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(task).Error
}

// ListDue 到点的 PLANNED 任务，早的在前
func (r *TaskRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]*model.PlannedTask, error) {
	var tasks []*model.PlannedTask
	err := r.db.WithContext(ctx).
		Where("status = ? AND planned_at <= ?", model.TaskStatusPlanned, now).
		Order("planned_at ASC").
		Limit(limit).
		Find(&tasks).Error
	return tasks, err
}

// MarkDone 带条件置 DONE：只对仍是 PLANNED 的行生效，DONE 永不回头
func (r *TaskRepository) MarkDone(ctx context.Context, id int64, executedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&model.PlannedTask{}).
		Where("id = ? AND status = ?", id, model.TaskStatusPlanned).
		Updates(map[string]interface{}{
			"status":      model.TaskStatusDone,
			"executed_at": executedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotPlanned
	}
	return nil
}

// MarkFail 置 FAIL 并留存错误文本，不自动重试
func (r *TaskRepository) MarkFail(ctx context.Context, id int64, executedAt time.Time, traceback string) error {
	result := r.db.WithContext(ctx).
		Model(&model.PlannedTask{}).
		Where("id = ? AND status = ?", id, model.TaskStatusPlanned).
		Updates(map[string]interface{}{
			"status":      model.TaskStatusFail,
			"executed_at": executedAt,
			"traceback":   traceback,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotPlanned
	}
	return nil
}

// HasFuturePlanned 同方法是否已有未来的 PLANNED 行（自续期防重复入队）
func (r *TaskRepository) HasFuturePlanned(ctx context.Context, method string, after time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.PlannedTask{}).
		Where("method = ? AND status = ? AND planned_at > ?", method, model.TaskStatusPlanned, after).
		Count(&count).Error
	return count > 0, err
}

func (r *TaskRepository) GetByID(ctx context.Context, id int64) (*model.PlannedTask, error) {
	var task model.PlannedTask
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &task, nil
}
