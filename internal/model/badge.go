package model

import (
	"time"
)

// Badge 徽章目录，item_key 选中判定维度，threshold 是达标线
type Badge struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"type:varchar(64);not null" json:"name"`
	IconURL   string    `gorm:"type:varchar(256)" json:"icon_url"`
	ItemKey   string    `gorm:"type:varchar(32);not null" json:"item_key"`
	Threshold int64     `gorm:"not null;default:0" json:"threshold"`
	IsDeleted bool      `gorm:"not null;default:false" json:"is_deleted"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Badge) TableName() string {
	return "badge"
}

// BadgeRecord 徽章发放记录，带独立有效期
type BadgeRecord struct {
	ID        int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	BadgeID   int64      `gorm:"index;not null" json:"badge_id"`
	UserID    int64      `gorm:"index;not null" json:"user_id"`
	ValidFrom time.Time  `gorm:"not null" json:"valid_from"`
	ValidTo   *time.Time `json:"valid_to"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (BadgeRecord) TableName() string {
	return "badge_record"
}
