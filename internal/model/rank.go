package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 榜单周期
const (
	RankDurationDaily  = "DAILY"
	RankDurationWeekly = "WEEKLY"
	RankDurationTotal  = "TOTAL"
)

// AllRankDurations 定时重算时遍历
var AllRankDurations = []string{RankDurationDaily, RankDurationWeekly, RankDurationTotal}

// RankRecord 榜单行
// (user, duration) 唯一，三列聚合由 update_rank_record 全量重算，可重复执行
type RankRecord struct {
	ID              int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID          int64           `gorm:"uniqueIndex:uk_rank_user_duration;index;not null" json:"user_id"`
	Duration        string          `gorm:"type:varchar(8);uniqueIndex:uk_rank_user_duration;not null" json:"duration"`
	ReceivedDiamond decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"received_diamond"`
	SentDiamond     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"sent_diamond"`
	StarIndex       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"star_index"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (RankRecord) TableName() string {
	return "rank_record"
}
