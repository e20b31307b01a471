package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentRecord 第三方支付回调原始记录
// orderid 全局唯一，重复回调靠它拦截
type PaymentRecord struct {
	ID        int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Account   string          `gorm:"type:varchar(64);not null" json:"account"`
	ServerID  string          `gorm:"type:varchar(32)" json:"server_id"`
	Platform  string          `gorm:"type:varchar(32);not null" json:"platform"`
	OrderID   string          `gorm:"type:varchar(64);uniqueIndex;not null" json:"order_id"`
	ProductID string          `gorm:"type:varchar(64)" json:"product_id"`
	IMoney    decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"imoney"`
	ToAccount string          `gorm:"type:varchar(64)" json:"to_account"`
	Extra     string          `gorm:"type:varchar(256)" json:"extra"`
	PayTime   int64           `gorm:"not null" json:"pay_time"` // 回调携带的 unix 秒
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (PaymentRecord) TableName() string {
	return "payment_record"
}

// RechargeRecord 充值业务记录，关联入账流水
type RechargeRecord struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      int64           `gorm:"index;not null" json:"user_id"`
	OrderID     string          `gorm:"type:varchar(64);uniqueIndex;not null" json:"order_id"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"amount"` // 入账金币
	AwardAmount decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"award_amount"`
	CoinEntryID int64           `gorm:"not null" json:"coin_entry_id"`
	CreatedAt   time.Time       `gorm:"autoCreateTime;index" json:"created_at"`
}

func (RechargeRecord) TableName() string {
	return "recharge_record"
}
