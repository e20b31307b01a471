package model

import (
	"time"
)

// 任务状态
const (
	TaskStatusPlanned = "PLANNED"
	TaskStatusDone    = "DONE"
	TaskStatusFail    = "FAIL"
)

// PlannedTask 延时任务
// method 只允许命中注册表里的执行器；DONE 的行永不重跑
type PlannedTask struct {
	ID         int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Method     string     `gorm:"type:varchar(64);index;not null" json:"method"`
	Args       string     `gorm:"type:text" json:"args"`   // JSON 数组
	Kwargs     string     `gorm:"type:text" json:"kwargs"` // JSON 对象
	PlannedAt  time.Time  `gorm:"index:idx_task_status_planned;not null" json:"planned_at"`
	ExecutedAt *time.Time `json:"executed_at"`
	Status     string     `gorm:"type:varchar(16);index:idx_task_status_planned,priority:1;not null;default:PLANNED" json:"status"`
	Traceback  string     `gorm:"type:text" json:"traceback"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (PlannedTask) TableName() string {
	return "planned_task"
}
