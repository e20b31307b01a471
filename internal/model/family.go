package model

import (
	"time"
)

// 家族成员角色
const (
	FamilyRoleMaster = "MASTER"
	FamilyRoleAdmin  = "ADMIN"
	FamilyRoleNormal = "NORMAL"
)

// 家族成员状态
const (
	FamilyStatusPending     = "PENDING"
	FamilyStatusApproved    = "APPROVED"
	FamilyStatusRejected    = "REJECTED"
	FamilyStatusBlacklisted = "BLACKLISTED"
)

// 申请审批的合法状态流转
var familyStatusTransitions = map[string][]string{
	FamilyStatusPending:  {FamilyStatusApproved, FamilyStatusRejected},
	FamilyStatusApproved: {FamilyStatusBlacklisted},
}

// FamilyStatusCanTransition 成员状态能否从 from 流转到 to
func FamilyStatusCanTransition(from, to string) bool {
	for _, s := range familyStatusTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Family 家族
type Family struct {
	ID                   int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name                 string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"name"`
	FounderID            int64     `gorm:"index;not null" json:"founder_id"`
	Notice               string    `gorm:"type:varchar(512)" json:"notice"`
	BadgeURL             string    `gorm:"type:varchar(256)" json:"badge_url"`
	DateMissionUnlock    time.Time `gorm:"not null" json:"date_mission_unlock"` // 此时刻之前不允许再开任务
	MissionUnlockMinutes int       `gorm:"not null;default:1440" json:"mission_unlock_minutes"` // 任务冷却时长
	IsDeleted            bool      `gorm:"not null;default:false" json:"is_deleted"`
	CreatedAt            time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Family) TableName() string {
	return "family"
}

// FamilyMember 家族成员
// 申请即插入 PENDING 行，族长/管理员审批后置 APPROVED 并记审批时间
type FamilyMember struct {
	ID         int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	FamilyID   int64      `gorm:"uniqueIndex:uk_family_user;not null" json:"family_id"`
	UserID     int64      `gorm:"uniqueIndex:uk_family_user;index;not null" json:"user_id"`
	Role       string     `gorm:"type:varchar(16);not null;default:NORMAL" json:"role"`
	Status     string     `gorm:"type:varchar(16);index;not null;default:PENDING" json:"status"`
	ApprovedAt *time.Time `json:"approved_at"`
	ApprovedBy *int64     `json:"approved_by"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (FamilyMember) TableName() string {
	return "family_member"
}

// FamilyMission 家族任务，创建受 family.date_mission_unlock 冷却门限制
type FamilyMission struct {
	ID         int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	FamilyID   int64      `gorm:"index;not null" json:"family_id"`
	CreatorID  int64      `gorm:"not null" json:"creator_id"`
	Title      string     `gorm:"type:varchar(128);not null" json:"title"`
	Content    string     `gorm:"type:varchar(512)" json:"content"`
	TargetCoin int64      `gorm:"not null;default:0" json:"target_coin"` // 家族送礼目标
	DateBegin  time.Time  `gorm:"not null" json:"date_begin"`
	DateEnd    time.Time  `gorm:"not null" json:"date_end"`
	FinishedAt *time.Time `json:"finished_at"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (FamilyMission) TableName() string {
	return "family_mission"
}

// FamilyMissionAchievement 任务达成记录
type FamilyMissionAchievement struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	MissionID int64     `gorm:"uniqueIndex:uk_mission_user;not null" json:"mission_id"`
	UserID    int64     `gorm:"uniqueIndex:uk_mission_user;not null" json:"user_id"`
	CoinSpent int64     `gorm:"not null;default:0" json:"coin_spent"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (FamilyMissionAchievement) TableName() string {
	return "family_mission_achievement"
}

// FamilyArticle 家族公告文章
type FamilyArticle struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	FamilyID  int64     `gorm:"index;not null" json:"family_id"`
	AuthorID  int64     `gorm:"not null" json:"author_id"`
	Title     string    `gorm:"type:varchar(128);not null" json:"title"`
	Content   string    `gorm:"type:text" json:"content"`
	IsDeleted bool      `gorm:"not null;default:false" json:"is_deleted"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (FamilyArticle) TableName() string {
	return "family_article"
}
