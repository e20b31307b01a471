package model

import (
	"encoding/json"
	"errors"
	"time"
)

// 活动类型
const (
	ActivityTypeVote    = "VOTE"
	ActivityTypeWatch   = "WATCH"
	ActivityTypeDraw    = "DRAW"
	ActivityTypeDiamond = "DIAMOND"
)

// 奖励类型
const (
	AwardTypeExperience   = "experience"
	AwardTypeICoin        = "icoin"
	AwardTypeCoin         = "coin"
	AwardTypeStar         = "star"
	AwardTypePrize        = "prize"
	AwardTypeContribution = "contribution"
	AwardTypeBadge        = "badge"
)

// Activity 活动
// rule 是带类型标签的 JSON 规则文档，按 type 解出具体规则体
type Activity struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"type:varchar(128);not null" json:"name"`
	Type      string    `gorm:"type:varchar(16);index;not null" json:"type"`
	Rule      string    `gorm:"type:text;not null" json:"rule"`
	DateBegin time.Time `gorm:"not null" json:"date_begin"`
	DateEnd   time.Time `gorm:"index;not null" json:"date_end"`
	IsSettle  bool      `gorm:"not null;default:false" json:"is_settle"` // 结算幂等标志
	IsDeleted bool      `gorm:"not null;default:false" json:"is_deleted"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Activity) TableName() string {
	return "activity"
}

// ActivityParticipation 参与记录，(activity, user) 唯一
type ActivityParticipation struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ActivityID int64     `gorm:"uniqueIndex:uk_activity_user;not null" json:"activity_id"`
	UserID     int64     `gorm:"uniqueIndex:uk_activity_user;index;not null" json:"user_id"`
	BandFrom   *int64    `json:"band_from"` // DIAMOND 活动认领的档位
	BandTo     *int64    `json:"band_to"`
	Awarded    bool      `gorm:"not null;default:false" json:"awarded"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (ActivityParticipation) TableName() string {
	return "activity_participation"
}

// Award 奖励原语，每一项最终落为一次 Transfer 或一次徽章发放
// Weight 只在 DRAW 规则的奖项表里有意义
type Award struct {
	Type   string `json:"type"`
	Value  int64  `json:"value"`
	Weight int64  `json:"weight,omitempty"`
}

// RankedAward 按名次区间发放的奖励
type RankedAward struct {
	From  int   `json:"from"`
	To    int   `json:"to"`
	Award Award `json:"award"`
}

// VoteRule 按指定礼物收取数量排名发奖
type VoteRule struct {
	PrizeID int64         `json:"prize_id"`
	Awards  []RankedAward `json:"awards"`
}

// WatchRule 观看场次 + 单场时长双门槛
type WatchRule struct {
	MinWatch    int   `json:"min_watch"`    // 至少观看的不同场次数
	MinDuration int   `json:"min_duration"` // 每场至少的分钟数
	Award       Award `json:"award"`
}

// DrawRule 条件抽奖，condition_code 从 000001 到 000011
type DrawRule struct {
	ConditionCode  string  `json:"condition_code"`
	ConditionValue int64   `json:"condition_value"`
	Awards         []Award `json:"awards"` // 固定 8 项，按权重随机取一
}

// DiamondBand 按当前钻石余额认领档位
type DiamondBand struct {
	From  int64 `json:"from"`
	To    int64 `json:"to"`
	Award Award `json:"award"`
}

// DiamondRule 档位表
type DiamondRule struct {
	Awards []DiamondBand `json:"awards"`
}

var ErrUnknownActivityType = errors.New("未知的活动类型")

// ParseVoteRule 解出 VOTE 规则体
func (a *Activity) ParseVoteRule() (*VoteRule, error) {
	if a.Type != ActivityTypeVote {
		return nil, ErrUnknownActivityType
	}
	var r VoteRule
	if err := json.Unmarshal([]byte(a.Rule), &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// ParseWatchRule 解出 WATCH 规则体
func (a *Activity) ParseWatchRule() (*WatchRule, error) {
	if a.Type != ActivityTypeWatch {
		return nil, ErrUnknownActivityType
	}
	var r WatchRule
	if err := json.Unmarshal([]byte(a.Rule), &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// ParseDrawRule 解出 DRAW 规则体
func (a *Activity) ParseDrawRule() (*DrawRule, error) {
	if a.Type != ActivityTypeDraw {
		return nil, ErrUnknownActivityType
	}
	var r DrawRule
	if err := json.Unmarshal([]byte(a.Rule), &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// ParseDiamondRule 解出 DIAMOND 规则体
func (a *Activity) ParseDiamondRule() (*DiamondRule, error) {
	if a.Type != ActivityTypeDiamond {
		return nil, ErrUnknownActivityType
	}
	var r DiamondRule
	if err := json.Unmarshal([]byte(a.Rule), &r); err != nil {
		return nil, err
	}
	return &r, nil
}
