package model

import (
	"time"
)

// 标记语义
const (
	MarkSubjectFollow    = "follow"
	MarkSubjectLike      = "like"
	MarkSubjectBlacklist = "blacklist"
)

// 标记目标种类，封闭枚举，两列落库代替泛化外键
const (
	MarkTargetMember = "member"
	MarkTargetLive   = "live"
	MarkTargetEvent  = "active_event"
)

// Mark 有向标记
// (author, subject, target_kind, target_id) 四列唯一，重复打标是冲突
type Mark struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	AuthorID   int64     `gorm:"uniqueIndex:uk_mark;index;not null" json:"author_id"`
	Subject    string    `gorm:"type:varchar(16);uniqueIndex:uk_mark;not null" json:"subject"`
	TargetKind string    `gorm:"type:varchar(16);uniqueIndex:uk_mark;not null" json:"target_kind"`
	TargetID   int64     `gorm:"uniqueIndex:uk_mark;index;not null" json:"target_id"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Mark) TableName() string {
	return "mark"
}

// MarkTargetKindValid 是否是已知目标种类
func MarkTargetKindValid(kind string) bool {
	switch kind {
	case MarkTargetMember, MarkTargetLive, MarkTargetEvent:
		return true
	}
	return false
}
