package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ============================================================================
// 多币种流水
// ============================================================================
//
// 每种币一张物理表，行结构完全相同：
//   - debit_user_id  入账方，NULL 表示平台（平台发币）
//   - credit_user_id 出账方，NULL 表示平台（平台回收）
//   - amount         正数金额
//
// 余额不落库，按 Σ入账 - Σ出账 推导；流水只追加，不修改不删除
// ============================================================================

// Currency 币种，同时决定流水落在哪张表
type Currency string

const (
	CurrencyCoin              Currency = "coin"                // 金币：用户消费币
	CurrencyDiamond           Currency = "diamond"             // 钻石：主播收益币
	CurrencyStar              Currency = "star"                // 星星
	CurrencyStarIndexSender   Currency = "star_index_sender"   // 星光指数（送礼方）
	CurrencyStarIndexReceiver Currency = "star_index_receiver" // 星光指数（收礼方）
	CurrencyPrize             Currency = "prize"               // 礼物库存（按 source_tag 分仓）
)

// AllCurrencies 建表迁移与对账用
var AllCurrencies = []Currency{
	CurrencyCoin,
	CurrencyDiamond,
	CurrencyStar,
	CurrencyStarIndexSender,
	CurrencyStarIndexReceiver,
	CurrencyPrize,
}

// TableName 币种对应的流水表名
func (c Currency) TableName() string {
	return "ledger_" + string(c)
}

// Valid 是否是已知币种
func (c Currency) Valid() bool {
	for _, k := range AllCurrencies {
		if k == c {
			return true
		}
	}
	return false
}

// 流水类型标签
const (
	LedgerTypeGiftPurchase  = "GIFT_PURCHASE"  // 买礼物扣金币
	LedgerTypeGiftIncome    = "GIFT_INCOME"    // 主播收礼得钻石
	LedgerTypeStarIndex     = "STAR_INDEX"     // 送礼双方星光指数
	LedgerTypeExchange      = "EXCHANGE"       // 币种兑换
	LedgerTypeRecharge      = "RECHARGE"       // 充值
	LedgerTypeRechargeAward = "RECHARGE_AWARD" // 充值奖励
	LedgerTypeActivityAward = "ACTIVITY_AWARD" // 活动奖励
	LedgerTypeStarBox       = "STAR_BOX"       // 星光宝盒
	LedgerTypeActivePrize   = "ACTIVE_PRIZE"   // 活动礼物消耗
	LedgerTypeExperience    = "EXPERIENCE"     // 经验结算（直播结束）
)

// 礼物库存分仓标签，活动发放的库存不能与普通库存互转
const (
	SourceTagGeneric  = "GENERIC"
	SourceTagActivity = "ACTIVITY"
	SourceTagStarBox  = "STAR_BOX"
	SourceTagVip      = "VIP"
)

// SourceTagValid 是否是已知的分仓标签
func SourceTagValid(tag string) bool {
	switch tag {
	case SourceTagGeneric, SourceTagActivity, SourceTagStarBox, SourceTagVip:
		return true
	}
	return false
}

// LedgerEntry 单条流水
// 插入后不可变，唯一合法的创建入口是 LedgerService.Transfer
type LedgerEntry struct {
	ID           int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	DebitUserID  *int64          `gorm:"index" json:"debit_user_id"`  // 入账方，NULL=平台
	CreditUserID *int64          `gorm:"index" json:"credit_user_id"` // 出账方，NULL=平台
	Amount       decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"amount"`
	Type         string          `gorm:"type:varchar(32);index" json:"type"`
	Remark       string          `gorm:"type:varchar(256)" json:"remark"`
	LiveID       *int64          `gorm:"index" json:"live_id,omitempty"`
	WatchLogID   *int64          `json:"watch_log_id,omitempty"`
	PrizeOrderID *int64          `gorm:"index" json:"prize_order_id,omitempty"`
	PrizeID      *int64          `json:"prize_id,omitempty"`
	SourceTag    string          `gorm:"type:varchar(32);index" json:"source_tag,omitempty"`
	CreatedAt    time.Time       `gorm:"autoCreateTime;index" json:"created_at"`
}
