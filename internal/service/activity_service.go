package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"livesystem/internal/config"
	"livesystem/internal/model"
	"livesystem/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrActivityNotRunning = errors.New("活动不在进行中")
	ErrUnknownAwardType   = errors.New("未知的奖励类型")
	ErrUnknownCondition   = errors.New("未知的抽奖条件码")
)

// 抽奖条件码
const (
	DrawConditionSpend     = "000001" // 窗口内送礼消费金币合计
	DrawConditionRecharge  = "000002" // 窗口内充值金币合计
	DrawConditionStarIndex = "000003" // 窗口内星光指数合计
)

// activityStore 活动引擎用到的活动/参与记录读写面
type activityStore interface {
	GetByID(ctx context.Context, id int64) (*model.Activity, error)
	ListRunning(ctx context.Context, now time.Time) ([]*model.Activity, error)
	ListUnsettledEnded(ctx context.Context, now time.Time) ([]*model.Activity, error)
	CreateParticipation(ctx context.Context, tx *gorm.DB, p *model.ActivityParticipation) error
	MarkSettled(ctx context.Context, tx *gorm.DB, activityID int64) (bool, error)
	ListParticipations(ctx context.Context, activityID int64) ([]*model.ActivityParticipation, error)
	MarkAwarded(ctx context.Context, tx *gorm.DB, participationID int64) error
}

// ActivityService 活动引擎
// 四种活动类型共用一个结算入口，is_settle 翻转做幂等闸门
type ActivityService struct {
	db           *gorm.DB
	cfg          *config.Config
	ledger       *LedgerService
	activityRepo activityStore
	ledgerRepo   *repository.LedgerRepository
	liveRepo     *repository.LiveRepository
	prizeRepo    *repository.PrizeRepository
	badgeRepo    *repository.BadgeRepository
}

func NewActivityService(db *gorm.DB, cfg *config.Config, ledger *LedgerService) *ActivityService {
	return &ActivityService{
		db:           db,
		cfg:          cfg,
		ledger:       ledger,
		activityRepo: repository.NewActivityRepository(db),
		ledgerRepo:   repository.NewLedgerRepository(db),
		liveRepo:     repository.NewLiveRepository(db),
		prizeRepo:    repository.NewPrizeRepository(db),
		badgeRepo:    repository.NewBadgeRepository(db),
	}
}

// ListRunning 进行中的活动
func (s *ActivityService) ListRunning(ctx context.Context) ([]*model.Activity, error) {
	return s.activityRepo.ListRunning(ctx, time.Now())
}

// Participate 报名参与
// DIAMOND 活动在报名时按当前钻石余额认领档位
func (s *ActivityService) Participate(ctx context.Context, activityID, userID int64) (*model.ActivityParticipation, error) {
	activity, err := s.activityRepo.GetByID(ctx, activityID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if now.Before(activity.DateBegin) || !now.Before(activity.DateEnd) {
		return nil, ErrActivityNotRunning
	}

	p := &model.ActivityParticipation{
		ActivityID: activityID,
		UserID:     userID,
	}

	if activity.Type == model.ActivityTypeDiamond {
		rule, err := activity.ParseDiamondRule()
		if err != nil {
			return nil, err
		}
		balance, err := s.ledger.Balance(ctx, model.CurrencyDiamond, userID)
		if err != nil {
			return nil, err
		}
		for _, band := range rule.Awards {
			if balance.GreaterThanOrEqual(decimal.NewFromInt(band.From)) &&
				balance.LessThanOrEqual(decimal.NewFromInt(band.To)) {
				from, to := band.From, band.To
				p.BandFrom = &from
				p.BandTo = &to
				break
			}
		}
	}

	if err := s.activityRepo.CreateParticipation(ctx, nil, p); err != nil {
		return nil, err
	}
	return p, nil
}

// SettleAll 结算全部到期活动（settle_activity 任务入口）
func (s *ActivityService) SettleAll(ctx context.Context) error {
	activities, err := s.activityRepo.ListUnsettledEnded(ctx, time.Now())
	if err != nil {
		return err
	}
	for _, activity := range activities {
		if err := s.Settle(ctx, activity.ID); err != nil {
			log.Printf("[Activity] 结算失败: id=%d type=%s err=%v", activity.ID, activity.Type, err)
		}
	}
	return nil
}

// Settle 结算单个活动
// 先抢 is_settle 的 false->true 翻转，抢不到说明别的实例已结算
func (s *ActivityService) Settle(ctx context.Context, activityID int64) error {
	activity, err := s.activityRepo.GetByID(ctx, activityID)
	if err != nil {
		return err
	}

	return runInTx(s.db, func(tx *gorm.DB) error {
		won, err := s.activityRepo.MarkSettled(ctx, tx, activityID)
		if err != nil {
			return err
		}
		if !won {
			return repository.ErrActivitySettled
		}

		switch activity.Type {
		case model.ActivityTypeVote:
			return s.settleVote(ctx, tx, activity)
		case model.ActivityTypeWatch:
			return s.settleWatch(ctx, tx, activity)
		case model.ActivityTypeDraw:
			return s.settleDraw(ctx, tx, activity)
		case model.ActivityTypeDiamond:
			return s.settleDiamond(ctx, tx, activity)
		default:
			return model.ErrUnknownActivityType
		}
	})
}

// settleVote 按指定礼物收取量给主播排名，按名次区间发奖
func (s *ActivityService) settleVote(ctx context.Context, tx *gorm.DB, activity *model.Activity) error {
	rule, err := activity.ParseVoteRule()
	if err != nil {
		return err
	}

	ranking, err := s.prizeRepo.RankAuthorsByPrize(ctx, rule.PrizeID, activity.DateBegin, activity.DateEnd)
	if err != nil {
		return err
	}

	for i, row := range ranking {
		rank := i + 1
		for _, ra := range rule.Awards {
			if rank >= ra.From && rank <= ra.To {
				if err := s.grantAward(ctx, tx, row.AuthorID, activity, ra.Award); err != nil {
					return err
				}
				break
			}
		}
	}
	return nil
}

// settleWatch 场次+单场时长双门槛，达标的参与者发奖
func (s *ActivityService) settleWatch(ctx context.Context, tx *gorm.DB, activity *model.Activity) error {
	rule, err := activity.ParseWatchRule()
	if err != nil {
		return err
	}

	participations, err := s.activityRepo.ListParticipations(ctx, activity.ID)
	if err != nil {
		return err
	}

	for _, p := range participations {
		if p.Awarded {
			continue
		}
		count, err := s.liveRepo.CountQualifiedWatches(ctx, p.UserID, rule.MinDuration, activity.DateBegin, activity.DateEnd)
		if err != nil {
			return err
		}
		if count < int64(rule.MinWatch) {
			continue
		}
		if err := s.grantAward(ctx, tx, p.UserID, activity, rule.Award); err != nil {
			return err
		}
		if err := s.activityRepo.MarkAwarded(ctx, tx, p.ID); err != nil {
			return err
		}
	}
	return nil
}

// pickAward 按权重从奖项表取一项
// seed 落进 [0, Σweight)，权重全部缺省时退化为均匀取
func pickAward(awards []model.Award, seed int64) model.Award {
	var total int64
	for _, a := range awards {
		if a.Weight > 0 {
			total += a.Weight
		}
	}
	if total <= 0 {
		return awards[seed%int64(len(awards))]
	}
	n := seed % total
	for _, a := range awards {
		if a.Weight <= 0 {
			continue
		}
		if n < a.Weight {
			return a
		}
		n -= a.Weight
	}
	return awards[0]
}

// settleDraw 条件达标的参与者从奖项表按权重抽一项
func (s *ActivityService) settleDraw(ctx context.Context, tx *gorm.DB, activity *model.Activity) error {
	rule, err := activity.ParseDrawRule()
	if err != nil {
		return err
	}
	if len(rule.Awards) == 0 {
		return nil
	}

	participations, err := s.activityRepo.ListParticipations(ctx, activity.ID)
	if err != nil {
		return err
	}

	for _, p := range participations {
		if p.Awarded {
			continue
		}
		met, err := s.conditionMet(ctx, p.UserID, rule.ConditionCode, rule.ConditionValue, activity.DateBegin, activity.DateEnd)
		if err != nil {
			return err
		}
		if !met {
			continue
		}
		award := pickAward(rule.Awards, rand.Int63())
		if err := s.grantAward(ctx, tx, p.UserID, activity, award); err != nil {
			return err
		}
		if err := s.activityRepo.MarkAwarded(ctx, tx, p.ID); err != nil {
			return err
		}
	}
	return nil
}

// settleDiamond 按报名时认领的档位发奖
// 档位是报名那一刻独占认领的，结算不看当下余额，没认领到档位的不发
func (s *ActivityService) settleDiamond(ctx context.Context, tx *gorm.DB, activity *model.Activity) error {
	rule, err := activity.ParseDiamondRule()
	if err != nil {
		return err
	}

	participations, err := s.activityRepo.ListParticipations(ctx, activity.ID)
	if err != nil {
		return err
	}

	for _, p := range participations {
		if p.Awarded || p.BandFrom == nil || p.BandTo == nil {
			continue
		}
		for _, band := range rule.Awards {
			if band.From != *p.BandFrom || band.To != *p.BandTo {
				continue
			}
			if err := s.grantAward(ctx, tx, p.UserID, activity, band.Award); err != nil {
				return err
			}
			if err := s.activityRepo.MarkAwarded(ctx, tx, p.ID); err != nil {
				return err
			}
			break
		}
	}
	return nil
}

// conditionMet 抽奖条件判定
func (s *ActivityService) conditionMet(ctx context.Context, userID int64, code string, value int64, from, to time.Time) (bool, error) {
	threshold := decimal.NewFromInt(value)

	switch code {
	case DrawConditionRecharge:
		sum, err := s.ledgerRepo.SumDebitSince(ctx, model.CurrencyCoin, userID, model.LedgerTypeRecharge, from, to)
		if err != nil {
			return false, err
		}
		return sum.GreaterThanOrEqual(threshold), nil
	case DrawConditionSpend:
		sum, err := s.ledgerRepo.SumCreditSince(ctx, model.CurrencyCoin, userID, model.LedgerTypeGiftPurchase, from, to)
		if err != nil {
			return false, err
		}
		return sum.GreaterThanOrEqual(threshold), nil
	case DrawConditionStarIndex:
		sum, err := s.ledgerRepo.SumDebitSince(ctx, model.CurrencyStarIndexSender, userID, "", from, to)
		if err != nil {
			return false, err
		}
		return sum.GreaterThanOrEqual(threshold), nil
	default:
		return false, fmt.Errorf("%w: %s", ErrUnknownCondition, code)
	}
}

// grantAward 奖励原语落账，每一项是一次 Transfer 或一次徽章发放
func (s *ActivityService) grantAward(ctx context.Context, tx *gorm.DB, userID int64, activity *model.Activity, award model.Award) error {
	remark := fmt.Sprintf("活动奖励 %s", activity.Name)
	amount := decimal.NewFromInt(award.Value)

	in := &TransferInput{
		DebitUserID: &userID,
		Amount:      amount,
		Type:        model.LedgerTypeActivityAward,
		Remark:      remark,
	}

	switch award.Type {
	case model.AwardTypeCoin:
		in.Kind = model.CurrencyCoin
	case model.AwardTypeICoin:
		in.Kind = model.CurrencyDiamond
	case model.AwardTypeStar, model.AwardTypeExperience:
		in.Kind = model.CurrencyStar
	case model.AwardTypeContribution:
		in.Kind = model.CurrencyStarIndexSender
	case model.AwardTypePrize:
		in.Kind = model.CurrencyPrize
		in.SourceTag = model.SourceTagActivity
	case model.AwardTypeBadge:
		validFrom := time.Now()
		validTo := validFrom.AddDate(0, 1, 0)
		return s.badgeRepo.Issue(ctx, tx, &model.BadgeRecord{
			UserID:    userID,
			BadgeID:   award.Value,
			ValidFrom: validFrom,
			ValidTo:   &validTo,
		})
	default:
		return fmt.Errorf("%w: %s", ErrUnknownAwardType, award.Type)
	}

	_, err := s.ledger.Transfer(ctx, tx, in)
	return err
}
