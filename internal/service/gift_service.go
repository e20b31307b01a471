package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"livesystem/internal/config"
	"livesystem/internal/infrastructure/lock"
	"livesystem/internal/model"
	"livesystem/internal/repository"
	"livesystem/internal/ws"
	"livesystem/pkg/idgen"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrGiftBusy       = errors.New("操作过于频繁，请稍后再试")
	ErrInvalidCount   = errors.New("数量必须大于0")
	ErrStarBoxEmpty   = errors.New("宝盒奖池未配置")
	ErrStickerExpired = errors.New("礼物不在有效期内")
)

// 开一次星光宝盒消耗的星星数
var starBoxCost = decimal.NewFromInt(10)

// GiftService 送礼管线
// 扣币、发钻、记星光指数、落订单、写外发消息在同一个数据库事务里完成
type GiftService struct {
	db         *gorm.DB
	cfg        *config.Config
	redis      *redis.Client
	hub        *ws.Hub
	ledger     *LedgerService
	family     *FamilyService
	prizeRepo  *repository.PrizeRepository
	liveRepo   *repository.LiveRepository
	outboxRepo *repository.OutboxRepository
}

func NewGiftService(db *gorm.DB, cfg *config.Config, rdb *redis.Client, hub *ws.Hub, ledger *LedgerService, family *FamilyService) *GiftService {
	return &GiftService{
		db:         db,
		cfg:        cfg,
		redis:      rdb,
		hub:        hub,
		ledger:     ledger,
		family:     family,
		prizeRepo:  repository.NewPrizeRepository(db),
		liveRepo:   repository.NewLiveRepository(db),
		outboxRepo: repository.NewOutboxRepository(db),
	}
}

type giftResultPayload struct {
	OrderNo  string `json:"order_no"`
	UserID   int64  `json:"user_id"`
	AuthorID int64  `json:"author_id"`
	LiveID   int64  `json:"live_id"`
	PrizeID  int64  `json:"prize_id"`
	Count    int    `json:"count"`
	Amount   string `json:"amount"`
}

// Purchase 金币买礼物送出
// 同一用户并发送礼先抢分布式锁排队，再在单事务内完成四笔流水与订单
func (s *GiftService) Purchase(ctx context.Context, userID, liveID, prizeID int64, count int) (*model.PrizeOrder, error) {
	if count <= 0 {
		return nil, ErrInvalidCount
	}

	orderNo := s.newOrderNo()
	giftLock := lock.NewGiftLock(s.redis, userID, orderNo)
	locked, err := giftLock.TryLock(ctx)
	if err != nil {
		return nil, err
	}
	if !locked {
		return nil, ErrGiftBusy
	}
	defer giftLock.Unlock(ctx)

	live, err := s.liveRepo.GetActiveByID(ctx, liveID)
	if err != nil {
		return nil, err
	}
	watchLog, err := s.liveRepo.GetWatchLog(ctx, userID, liveID)
	if err != nil {
		return nil, err
	}
	prize, err := s.prizeRepo.GetByID(ctx, prizeID)
	if err != nil {
		return nil, err
	}
	if err := checkSticker(prize, time.Now()); err != nil {
		return nil, err
	}

	total := prize.Price.Mul(decimal.NewFromInt(int64(count)))
	order := &model.PrizeOrder{
		OrderNo:    orderNo,
		UserID:     userID,
		LiveID:     liveID,
		WatchLogID: watchLog.ID,
		PrizeID:    prizeID,
		Count:      count,
		SourceTag:  model.SourceTagGeneric,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		coinEntry, err := s.ledger.Transfer(ctx, tx, &TransferInput{
			Kind:         model.CurrencyCoin,
			CreditUserID: &userID,
			Amount:       total,
			Type:         model.LedgerTypeGiftPurchase,
			Remark:       fmt.Sprintf("送礼 %s x%d", prize.Name, count),
			LiveID:       &liveID,
			WatchLogID:   &watchLog.ID,
			PrizeID:      &prizeID,
		})
		if err != nil {
			return err
		}
		order.CoinEntryID = &coinEntry.ID

		if err := s.prizeRepo.CreateOrder(ctx, tx, order); err != nil {
			return err
		}

		if err := s.settleIncome(ctx, tx, live.AuthorID, userID, total, order); err != nil {
			return err
		}

		// 家族任务进度跟着送礼走
		if err := s.family.RecordMissionProgress(ctx, tx, userID, total.IntPart()); err != nil {
			return err
		}

		payload, err := json.Marshal(giftResultPayload{
			OrderNo:  orderNo,
			UserID:   userID,
			AuthorID: live.AuthorID,
			LiveID:   liveID,
			PrizeID:  prizeID,
			Count:    count,
			Amount:   total.String(),
		})
		if err != nil {
			return err
		}
		return s.outboxRepo.Create(ctx, tx, &model.OutboxMessage{
			MessageKey: orderNo,
			Topic:      s.cfg.Kafka.Topic.GiftResult,
			Payload:    string(payload),
		})
	})
	if err != nil {
		return nil, err
	}

	if err := s.liveRepo.Touch(ctx, liveID); err != nil {
		return nil, err
	}
	s.hub.Publish(&ws.Event{Type: "gift", LiveID: liveID, UserID: userID, Payload: order})
	return order, nil
}

// SendActivePrize 送活动礼物：扣的是礼物库存分仓，不扣金币
// 主播收益按礼物目录价折钻，与金币送礼同一条收益规则
func (s *GiftService) SendActivePrize(ctx context.Context, userID, liveID, prizeID int64, count int, sourceTag string) (*model.PrizeOrder, error) {
	if count <= 0 {
		return nil, ErrInvalidCount
	}
	if sourceTag == "" {
		sourceTag = model.SourceTagActivity
	}

	orderNo := s.newOrderNo()
	giftLock := lock.NewGiftLock(s.redis, userID, orderNo)
	locked, err := giftLock.TryLock(ctx)
	if err != nil {
		return nil, err
	}
	if !locked {
		return nil, ErrGiftBusy
	}
	defer giftLock.Unlock(ctx)

	live, err := s.liveRepo.GetActiveByID(ctx, liveID)
	if err != nil {
		return nil, err
	}
	watchLog, err := s.liveRepo.GetWatchLog(ctx, userID, liveID)
	if err != nil {
		return nil, err
	}
	prize, err := s.prizeRepo.GetByID(ctx, prizeID)
	if err != nil {
		return nil, err
	}

	total := prize.Price.Mul(decimal.NewFromInt(int64(count)))
	order := &model.PrizeOrder{
		OrderNo:    orderNo,
		UserID:     userID,
		LiveID:     liveID,
		WatchLogID: watchLog.ID,
		PrizeID:    prizeID,
		Count:      count,
		SourceTag:  sourceTag,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		prizeEntry, err := s.ledger.Transfer(ctx, tx, &TransferInput{
			Kind:         model.CurrencyPrize,
			CreditUserID: &userID,
			Amount:       decimal.NewFromInt(int64(count)),
			Type:         model.LedgerTypeActivePrize,
			Remark:       fmt.Sprintf("活动礼物 %s x%d", prize.Name, count),
			LiveID:       &liveID,
			WatchLogID:   &watchLog.ID,
			PrizeID:      &prizeID,
			SourceTag:    sourceTag,
		})
		if err != nil {
			return err
		}
		order.PrizeEntryID = &prizeEntry.ID

		if err := s.prizeRepo.CreateOrder(ctx, tx, order); err != nil {
			return err
		}
		return s.settleIncome(ctx, tx, live.AuthorID, userID, total, order)
	})
	if err != nil {
		return nil, err
	}

	if err := s.liveRepo.Touch(ctx, liveID); err != nil {
		return nil, err
	}
	s.hub.Publish(&ws.Event{Type: "gift", LiveID: liveID, UserID: userID, Payload: order})
	return order, nil
}

// settleIncome 送礼的收益侧：主播发钻 + 双方星光指数
func (s *GiftService) settleIncome(ctx context.Context, tx *gorm.DB, authorID, senderID int64, total decimal.Decimal, order *model.PrizeOrder) error {
	remark := "收礼 " + order.OrderNo

	diamond := total.Mul(decimal.NewFromFloat(s.cfg.Business.DiamondPerCoin))
	if diamond.GreaterThan(decimal.Zero) {
		if _, err := s.ledger.Transfer(ctx, tx, &TransferInput{
			Kind:         model.CurrencyDiamond,
			DebitUserID:  &authorID,
			Amount:       diamond,
			Type:         model.LedgerTypeGiftIncome,
			Remark:       remark,
			LiveID:       &order.LiveID,
			PrizeOrderID: &order.ID,
		}); err != nil {
			return err
		}
	}

	starIndex := total.Mul(decimal.NewFromFloat(s.cfg.Business.StarIndexPerCoin))
	if starIndex.GreaterThan(decimal.Zero) {
		if _, err := s.ledger.Transfer(ctx, tx, &TransferInput{
			Kind:         model.CurrencyStarIndexSender,
			DebitUserID:  &senderID,
			Amount:       starIndex,
			Type:         model.LedgerTypeStarIndex,
			Remark:       remark,
			LiveID:       &order.LiveID,
			PrizeOrderID: &order.ID,
		}); err != nil {
			return err
		}
		if _, err := s.ledger.Transfer(ctx, tx, &TransferInput{
			Kind:         model.CurrencyStarIndexReceiver,
			DebitUserID:  &authorID,
			Amount:       starIndex,
			Type:         model.LedgerTypeStarIndex,
			Remark:       remark,
			LiveID:       &order.LiveID,
			PrizeOrderID: &order.ID,
		}); err != nil {
			return err
		}
	}
	return nil
}

// OpenStarBox 开星光宝盒：扣固定星星，按权重抽一项奖品入账
func (s *GiftService) OpenStarBox(ctx context.Context, userID int64) (*model.StarBoxOutcome, error) {
	outcomes, err := s.prizeRepo.ListStarBoxOutcomes(ctx)
	if err != nil {
		return nil, err
	}
	if len(outcomes) == 0 {
		return nil, ErrStarBoxEmpty
	}

	outcome := drawOutcome(outcomes, rand.Int63())

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := s.ledger.Transfer(ctx, tx, &TransferInput{
			Kind:         model.CurrencyStar,
			CreditUserID: &userID,
			Amount:       starBoxCost,
			Type:         model.LedgerTypeStarBox,
			Remark:       "开启星光宝盒",
		}); err != nil {
			return err
		}

		in := &TransferInput{
			DebitUserID: &userID,
			Amount:      outcome.Value,
			Type:        model.LedgerTypeStarBox,
			Remark:      "星光宝盒奖励",
		}
		switch outcome.Type {
		case model.StarBoxOutcomeCoin:
			in.Kind = model.CurrencyCoin
		case model.StarBoxOutcomeDiamond:
			in.Kind = model.CurrencyDiamond
		case model.StarBoxOutcomePrize:
			in.Kind = model.CurrencyPrize
			in.SourceTag = model.SourceTagStarBox
			in.PrizeID = outcome.PrizeID
		default:
			return fmt.Errorf("未知的宝盒奖品类型: %s", outcome.Type)
		}
		_, err := s.ledger.Transfer(ctx, tx, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

// drawOutcome 权重抽取，seed 便于测试注入
func drawOutcome(outcomes []*model.StarBoxOutcome, seed int64) *model.StarBoxOutcome {
	total := 0
	for _, o := range outcomes {
		if o.Weight > 0 {
			total += o.Weight
		}
	}
	if total == 0 {
		return outcomes[0]
	}

	pick := int(seed % int64(total))
	for _, o := range outcomes {
		if o.Weight <= 0 {
			continue
		}
		if pick < o.Weight {
			return o
		}
		pick -= o.Weight
	}
	return outcomes[len(outcomes)-1]
}

// checkSticker 贴纸类礼物只在有效期窗口内可送
func checkSticker(prize *model.Prize, now time.Time) error {
	if prize.StickerFrom != nil && now.Before(*prize.StickerFrom) {
		return ErrStickerExpired
	}
	if prize.StickerTo != nil && now.After(*prize.StickerTo) {
		return ErrStickerExpired
	}
	return nil
}

// ListPrizes 礼物目录
func (s *GiftService) ListPrizes(ctx context.Context, categoryID *int64) ([]*model.Prize, error) {
	return s.prizeRepo.List(ctx, categoryID)
}

// ListPrizeCategories 礼物分类
func (s *GiftService) ListPrizeCategories(ctx context.Context) ([]*model.PrizeCategory, error) {
	return s.prizeRepo.ListCategories(ctx)
}

func (s *GiftService) newOrderNo() string {
	return idgen.GenerateGiftOrderNo()
}
