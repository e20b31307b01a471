package model

import (
	"time"
)

// 联系人关系类型
const (
	ContactTypeOpen        = "OPEN"
	ContactTypeSilent      = "SILENT"
	ContactTypeBlacklisted = "BLACKLISTED"
)

// Contact 有向联系人边
// 好友关系是两条 OPEN 边的交集（A->B 且 B->A）
type Contact struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	AuthorID  int64     `gorm:"uniqueIndex:uk_contact;index;not null" json:"author_id"`
	UserID    int64     `gorm:"uniqueIndex:uk_contact;index;not null" json:"user_id"`
	Type      string    `gorm:"type:varchar(16);not null;default:OPEN" json:"type"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Contact) TableName() string {
	return "contact"
}
