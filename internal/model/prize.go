package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 礼物横幅规格
const (
	MarqueeSizeBig   = "BIG"
	MarqueeSizeSmall = "SMALL"
)

// Prize 礼物目录
// 一旦被任何 PrizeOrder 引用，价格冻结不再允许修改
type Prize struct {
	ID           int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string          `gorm:"type:varchar(64);not null" json:"name"`
	IconURL      string          `gorm:"type:varchar(256)" json:"icon_url"`
	Price        decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"price"` // 金币计价
	MarqueeSize  string          `gorm:"type:varchar(8);not null;default:SMALL" json:"marquee_size"`
	CategoryID   *int64          `gorm:"index" json:"category_id"`
	StickerFrom  *time.Time      `json:"sticker_from"` // 贴纸有效期窗口，可空
	StickerTo    *time.Time      `json:"sticker_to"`
	IsDeleted    bool            `gorm:"not null;default:false" json:"is_deleted"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Prize) TableName() string {
	return "prize"
}

// PrizeCategory 礼物分类
type PrizeCategory struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"name"`
	Sort      int       `gorm:"not null;default:0" json:"sort"`
	IsDeleted bool      `gorm:"not null;default:false" json:"is_deleted"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (PrizeCategory) TableName() string {
	return "prize_category"
}

// PrizeOrder 送礼订单
// 与扣币流水同事务生成：有订单必有流水，有流水必有订单
type PrizeOrder struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderNo      string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"order_no"`
	UserID       int64     `gorm:"index;not null" json:"user_id"` // 送礼观众
	LiveID       int64     `gorm:"index;not null" json:"live_id"`
	WatchLogID   int64     `gorm:"index;not null" json:"watch_log_id"`
	PrizeID      int64     `gorm:"index;not null" json:"prize_id"`
	Count        int       `gorm:"not null" json:"count"`
	CoinEntryID  *int64    `json:"coin_entry_id"`  // 扣金币流水
	PrizeEntryID *int64    `json:"prize_entry_id"` // 活动礼物扣库存流水
	SourceTag    string    `gorm:"type:varchar(32)" json:"source_tag,omitempty"`
	CreatedAt    time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (PrizeOrder) TableName() string {
	return "prize_order"
}

// 星光宝盒奖品类型
const (
	StarBoxOutcomeCoin    = "coin"
	StarBoxOutcomeDiamond = "diamond"
	StarBoxOutcomePrize   = "prize"
)

// StarBoxOutcome 星光宝盒奖池条目，按权重抽取
type StarBoxOutcome struct {
	ID        int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Type      string          `gorm:"type:varchar(16);not null" json:"type"`
	Value     decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"value"`
	PrizeID   *int64          `json:"prize_id"` // type=prize 时的礼物
	Weight    int             `gorm:"not null;default:1" json:"weight"`
	IsDeleted bool            `gorm:"not null;default:false" json:"is_deleted"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (StarBoxOutcome) TableName() string {
	return "star_box_outcome"
}
