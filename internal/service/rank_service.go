package service

import (
	"context"
	"log"
	"time"

	"livesystem/internal/config"
	"livesystem/internal/model"
	"livesystem/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// rankStore 榜单行的读写面
type rankStore interface {
	Upsert(ctx context.Context, tx *gorm.DB, record *model.RankRecord) error
	DeleteByDuration(ctx context.Context, tx *gorm.DB, duration string) error
	ListTop(ctx context.Context, duration, metric string, limit int) ([]*model.RankRecord, error)
	GetByUser(ctx context.Context, userID int64, duration string) (*model.RankRecord, error)
}

// rankLedgerStore 重算用到的流水聚合面
type rankLedgerStore interface {
	AggregateDebitByUser(ctx context.Context, kind model.Currency, typeTag string, from *time.Time) ([]repository.UserAmount, error)
	AggregateCreditByUser(ctx context.Context, kind model.Currency, typeTag string, from *time.Time) ([]repository.UserAmount, error)
	SumDebitByLiveSince(ctx context.Context, kind model.Currency, liveID int64, from time.Time) (decimal.Decimal, error)
}

// RankService 榜单引擎
// 三个周期 x 三个指标全量重算，先清场再整批落行，可重复执行
type RankService struct {
	db         *gorm.DB
	cfg        *config.Config
	rankRepo   rankStore
	ledgerRepo rankLedgerStore
	liveRepo   *repository.LiveRepository
}

func NewRankService(db *gorm.DB, cfg *config.Config) *RankService {
	return &RankService{
		db:         db,
		cfg:        cfg,
		rankRepo:   repository.NewRankRepository(db),
		ledgerRepo: repository.NewLedgerRepository(db),
		liveRepo:   repository.NewLiveRepository(db),
	}
}

// windowStart 周期起点；总榜不限窗口
func windowStart(duration string, now time.Time) *time.Time {
	switch duration {
	case model.RankDurationDaily:
		begin := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		return &begin
	case model.RankDurationWeekly:
		// 周一零点
		offset := int(now.Weekday())
		if offset == 0 {
			offset = 7
		}
		begin := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).
			AddDate(0, 0, -(offset - 1))
		return &begin
	default:
		return nil
	}
}

// RecalcAll 全量重算三个周期的榜单（update_rank_record 任务入口）
func (s *RankService) RecalcAll(ctx context.Context) error {
	now := time.Now()
	for _, duration := range model.AllRankDurations {
		if err := s.recalcDuration(ctx, duration, windowStart(duration, now)); err != nil {
			log.Printf("[Rank] 榜单重算失败: duration=%s err=%v", duration, err)
			return err
		}
	}
	return nil
}

func (s *RankService) recalcDuration(ctx context.Context, duration string, from *time.Time) error {
	// 收到的钻石：钻石表入账侧
	received, err := s.ledgerRepo.AggregateDebitByUser(ctx, model.CurrencyDiamond, model.LedgerTypeGiftIncome, from)
	if err != nil {
		return err
	}
	// 送出的价值：金币表出账侧（送礼扣款）
	sent, err := s.ledgerRepo.AggregateCreditByUser(ctx, model.CurrencyCoin, model.LedgerTypeGiftPurchase, from)
	if err != nil {
		return err
	}
	// 星光指数：收礼侧
	starIndex, err := s.ledgerRepo.AggregateDebitByUser(ctx, model.CurrencyStarIndexReceiver, "", from)
	if err != nil {
		return err
	}

	type rankRow struct {
		received  decimal.Decimal
		sent      decimal.Decimal
		starIndex decimal.Decimal
	}
	rows := make(map[int64]*rankRow)
	get := func(userID int64) *rankRow {
		row, ok := rows[userID]
		if !ok {
			row = &rankRow{}
			rows[userID] = row
		}
		return row
	}
	for _, r := range received {
		get(r.UserID).received = r.Amount
	}
	for _, r := range sent {
		get(r.UserID).sent = r.Amount
	}
	for _, r := range starIndex {
		get(r.UserID).starIndex = r.Amount
	}

	// 先清掉本周期全部旧行，窗口里没流水的用户不能留上一窗口的残值
	return runInTx(s.db, func(tx *gorm.DB) error {
		if err := s.rankRepo.DeleteByDuration(ctx, tx, duration); err != nil {
			return err
		}
		for userID, row := range rows {
			record := &model.RankRecord{
				UserID:          userID,
				Duration:        duration,
				ReceivedDiamond: row.received,
				SentDiamond:     row.sent,
				StarIndex:       row.starIndex,
			}
			if err := s.rankRepo.Upsert(ctx, tx, record); err != nil {
				return err
			}
		}
		return nil
	})
}

// Top 榜单前 N 名
func (s *RankService) Top(ctx context.Context, duration, metric string, limit int) ([]*model.RankRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.rankRepo.ListTop(ctx, duration, metric, limit)
}

// UserRank 用户自己的榜单行
func (s *RankService) UserRank(ctx context.Context, userID int64, duration string) (*model.RankRecord, error) {
	return s.rankRepo.GetByUser(ctx, userID, duration)
}

// hotRating 热度 = 近一小时收到金币 + 在房观众数 x 10 + 点赞数
func hotRating(coins decimal.Decimal, viewers, likes int64) int64 {
	return coins.IntPart() + viewers*10 + likes
}

// RecalcHotRating 在播房间热度重算（update_live_hot_ranking 任务入口）
func (s *RankService) RecalcHotRating(ctx context.Context) error {
	lives, err := s.liveRepo.ListActive(ctx)
	if err != nil {
		return err
	}

	from := time.Now().Add(-time.Hour)
	for _, live := range lives {
		coins, err := s.ledgerRepo.SumDebitByLiveSince(ctx, model.CurrencyCoin, live.ID, from)
		if err != nil {
			return err
		}
		viewers, err := s.liveRepo.CountActiveViewers(ctx, live.ID)
		if err != nil {
			return err
		}

		rating := hotRating(coins, viewers, live.LikeCount)
		if err := s.liveRepo.UpdateHotRating(ctx, live.ID, rating); err != nil {
			return err
		}
	}
	return nil
}
