package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	LiveStatusActive = "ACTIVE"
	LiveStatusOver   = "OVER"
)

// Live 直播间
// ended_at 为空即 ACTIVE，一旦写入不再清空，状态机只有 ACTIVE -> OVER 一条边
type Live struct {
	ID           int64            `gorm:"primaryKey;autoIncrement" json:"id"`
	AuthorID     int64            `gorm:"index;not null" json:"author_id"` // 主播
	CategoryID   *int64           `gorm:"index" json:"category_id"`
	Name         string           `gorm:"type:varchar(128)" json:"name"`
	Password     string           `gorm:"type:varchar(32)" json:"-"` // 房间密码，空表示不设密
	Quota        *int             `json:"quota"`                     // 人数上限
	PushURL      string           `gorm:"type:varchar(256)" json:"push_url"`
	IsPrivate    bool             `gorm:"not null;default:false" json:"is_private"`
	IsFree       bool             `gorm:"not null;default:true" json:"is_free"`
	HotRating    int64            `gorm:"not null;default:0;index" json:"hot_rating"` // 热度，定时任务重算
	LikeCount    int64            `gorm:"not null;default:0" json:"like_count"`       // 点赞计数缓存，后台可批量加心
	PaidAmount   *decimal.Decimal `gorm:"type:decimal(18,4)" json:"paid_amount"`      // 付费房票价
	EndSceneURL  string           `gorm:"type:varchar(256)" json:"end_scene_url"`
	CreatedAt    time.Time        `gorm:"autoCreateTime;index" json:"created_at"`
	EndedAt      *time.Time       `gorm:"index" json:"ended_at"`
	LastActiveAt time.Time        `gorm:"index" json:"last_active_at"` // 最近一次弹幕/进房/送礼时间，超时收播判定用
}

func (Live) TableName() string {
	return "live"
}

// Status 派生状态
func (l *Live) Status() string {
	if l.EndedAt != nil {
		return LiveStatusOver
	}
	return LiveStatusActive
}

// LiveCategory 直播分类（目录数据，启用后不再改动）
type LiveCategory struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"name"`
	IconURL   string    `gorm:"type:varchar(256)" json:"icon_url"`
	Sort      int       `gorm:"not null;default:0" json:"sort"`
	IsDeleted bool      `gorm:"not null;default:false" json:"is_deleted"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (LiveCategory) TableName() string {
	return "live_category"
}

// 观众发言状态
const (
	SpeakStatusNormal = "NORMAL"
	SpeakStatusSilent = "SILENT"
	SpeakStatusSpeak  = "SPEAK"
)

// LiveWatchLog 观看记录
// (viewer, live) 至多一条；重进房只刷新 entered_at，duration 跨离场累加、只增不减
type LiveWatchLog struct {
	ID          int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      int64      `gorm:"uniqueIndex:uk_watch_user_live;not null" json:"user_id"`
	LiveID      int64      `gorm:"uniqueIndex:uk_watch_user_live;index;not null" json:"live_id"`
	EnteredAt   time.Time  `gorm:"not null" json:"entered_at"`
	LeftAt      *time.Time `json:"left_at"`
	Duration    int        `gorm:"not null;default:0" json:"duration"` // 累计观看分钟数
	SpeakStatus string     `gorm:"type:varchar(16);not null;default:NORMAL" json:"speak_status"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (LiveWatchLog) TableName() string {
	return "live_watch_log"
}

// 弹幕类型
const (
	BarrageTypeNormal      = "BARRAGE"
	BarrageTypeSmallEffect = "SMALL_EFFECT"
	BarrageTypeLargeEffect = "LARGE_EFFECT"
)

// LiveBarrage 弹幕
type LiveBarrage struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	LiveID    int64     `gorm:"index;not null" json:"live_id"`
	UserID    int64     `gorm:"index;not null" json:"user_id"`
	Type      string    `gorm:"type:varchar(16);not null;default:BARRAGE" json:"type"`
	Content   string    `gorm:"type:varchar(512)" json:"content"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (LiveBarrage) TableName() string {
	return "live_barrage"
}

// LiveComment 评论，要求评论人已有观看记录
type LiveComment struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	LiveID     int64     `gorm:"index;not null" json:"live_id"`
	WatchLogID int64     `gorm:"index;not null" json:"watch_log_id"`
	UserID     int64     `gorm:"index;not null" json:"user_id"`
	Content    string    `gorm:"type:varchar(512)" json:"content"`
	IsDeleted  bool      `gorm:"not null;default:false" json:"is_deleted"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (LiveComment) TableName() string {
	return "live_comment"
}
