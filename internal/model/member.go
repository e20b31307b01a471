package model

import (
	"time"
)

const (
	GenderUnknown = 0
	GenderMale    = 1
	GenderFemale  = 2
)

// User 用户主体表
// 只保存身份与凭证，业务资料在 Member 表，user_id 是两表之间唯一的关联键
type User struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Username  string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"username"` // 登录名（手机号注册时即手机号）
	Password  string    `gorm:"type:varchar(128);not null" json:"-"`                   // 密码散列
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "user"
}

// Member 会员资料表
// User 的 1:1 扩展，注销时不删行，改名为 deleted_<时间戳>_<原登录名> 并停用
type Member struct {
	ID                int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID            int64      `gorm:"uniqueIndex;not null" json:"user_id"`
	Nickname          string     `gorm:"type:varchar(64)" json:"nickname"`
	Gender            int        `gorm:"not null;default:0" json:"gender"`
	Birthday          *time.Time `json:"birthday"`
	AvatarURL         string     `gorm:"type:varchar(256)" json:"avatar_url"`
	Mobile            string     `gorm:"type:varchar(20);index" json:"mobile"`
	VipLevel          int        `gorm:"not null;default:0" json:"vip_level"`
	VipExpiredAt      *time.Time `json:"vip_expired_at"`
	SessionKey        string     `gorm:"type:varchar(64);index" json:"-"` // 单点登录指纹，登录时整体覆盖
	WithdrawBlacklist bool       `gorm:"not null;default:false" json:"withdraw_blacklist"`
	FollowRecommended bool       `gorm:"not null;default:false" json:"follow_recommended"`
	ReferrerID        *int64     `gorm:"index" json:"referrer_id"` // 推荐人，至多一个且只允许设置一次
	CreatedAt         time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Member) TableName() string {
	return "member"
}

// MemberCheckHistory 会员按日状态快照表
// 每日零点由 update_member_check_history 任务滚动生成
type MemberCheckHistory struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID       int64     `gorm:"index:idx_check_user_date;not null" json:"user_id"`
	Date         string    `gorm:"type:varchar(10);index:idx_check_user_date;not null" json:"date"` // yyyy-mm-dd
	WatchMinutes int       `gorm:"not null;default:0" json:"watch_minutes"`
	LiveCount    int       `gorm:"not null;default:0" json:"live_count"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (MemberCheckHistory) TableName() string {
	return "member_check_history"
}
