package service

import (
	"context"
	"errors"
	"log"
	"time"

	"livesystem/internal/config"
	"livesystem/internal/infrastructure/cache"
	"livesystem/internal/model"
	"livesystem/internal/repository"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrExchangePair = errors.New("不支持的兑换方向")

// 事务提交与缓存失效之间的补删间隔
const balanceInvalidateLag = 500 * time.Millisecond

// TransferInput 一次记账的全部要素
// DebitUserID / CreditUserID 为 nil 表示平台侧，平台出账不验余额
type TransferInput struct {
	Kind         model.Currency
	DebitUserID  *int64
	CreditUserID *int64
	Amount       decimal.Decimal
	Type         string
	Remark       string
	LiveID       *int64
	WatchLogID   *int64
	PrizeOrderID *int64
	PrizeID      *int64
	SourceTag    string
}

// ledgerStore Transfer 路径用到的流水读写面
type ledgerStore interface {
	LockMember(ctx context.Context, tx *gorm.DB, userID int64) error
	Balance(ctx context.Context, tx *gorm.DB, kind model.Currency, userID int64, sourceTag string) (decimal.Decimal, error)
	Insert(ctx context.Context, tx *gorm.DB, kind model.Currency, entry *model.LedgerEntry) error
	ListByUser(ctx context.Context, kind model.Currency, userID int64, page, pageSize int) ([]*model.LedgerEntry, int64, error)
}

// LedgerService 账务核心
// 所有币的进出只有 Transfer 一个入口，余额永远是流水推导值
type LedgerService struct {
	db         *gorm.DB
	cfg        *config.Config
	redis      *redis.Client
	ledgerRepo ledgerStore
}

func NewLedgerService(db *gorm.DB, cfg *config.Config, rdb *redis.Client) *LedgerService {
	return &LedgerService{
		db:         db,
		cfg:        cfg,
		redis:      rdb,
		ledgerRepo: repository.NewLedgerRepository(db),
	}
}

// Transfer 追加一条流水
// 出账方是用户时：先锁出账方 member 行，再验推导余额，不足直接拒绝
// 必须在调用方事务内执行，锁随事务提交释放
func (s *LedgerService) Transfer(ctx context.Context, tx *gorm.DB, in *TransferInput) (*model.LedgerEntry, error) {
	if !in.Kind.Valid() {
		return nil, repository.ErrUnknownCurrency
	}
	if in.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, repository.ErrInvalidAmount
	}
	if tx == nil {
		tx = s.db
	}

	if in.CreditUserID != nil {
		if err := s.ledgerRepo.LockMember(ctx, tx, *in.CreditUserID); err != nil {
			return nil, err
		}
		balance, err := s.ledgerRepo.Balance(ctx, tx, in.Kind, *in.CreditUserID, in.SourceTag)
		if err != nil {
			return nil, err
		}
		if balance.LessThan(in.Amount) {
			return nil, repository.ErrInsufficientFunds
		}
	}

	entry := &model.LedgerEntry{
		DebitUserID:  in.DebitUserID,
		CreditUserID: in.CreditUserID,
		Amount:       in.Amount,
		Type:         in.Type,
		Remark:       in.Remark,
		LiveID:       in.LiveID,
		WatchLogID:   in.WatchLogID,
		PrizeOrderID: in.PrizeOrderID,
		PrizeID:      in.PrizeID,
		SourceTag:    in.SourceTag,
	}
	if err := s.ledgerRepo.Insert(ctx, tx, in.Kind, entry); err != nil {
		return nil, err
	}

	s.invalidateBalance(ctx, in.Kind, in.DebitUserID)
	s.invalidateBalance(ctx, in.Kind, in.CreditUserID)
	return entry, nil
}

func (s *LedgerService) invalidateBalance(ctx context.Context, kind model.Currency, userID *int64) {
	if userID == nil || s.redis == nil {
		return
	}
	uid := *userID
	drop := func(ctx context.Context) {
		if err := cache.InvalidateBalance(ctx, s.redis, string(kind), uid); err != nil {
			log.Printf("[Ledger] 余额缓存失效失败: kind=%s user=%d err=%v", kind, uid, err)
		}
	}
	drop(ctx)
	// 事务提交前并发 Balance 可能把旧余额重新灌进缓存，提交后补删一次
	time.AfterFunc(balanceInvalidateLag, func() {
		drop(context.Background())
	})
}

// Balance 读余额，缓存短暂旧值，写路径永远回源
func (s *LedgerService) Balance(ctx context.Context, kind model.Currency, userID int64) (decimal.Decimal, error) {
	if s.redis != nil {
		if cached, ok, err := cache.GetCachedBalance(ctx, s.redis, string(kind), userID); err == nil && ok {
			if val, perr := decimal.NewFromString(cached); perr == nil {
				return val, nil
			}
		}
	}

	balance, err := s.ledgerRepo.Balance(ctx, nil, kind, userID, "")
	if err != nil {
		return decimal.Zero, err
	}

	if s.redis != nil {
		if err := cache.SetCachedBalance(ctx, s.redis, string(kind), userID, balance.String()); err != nil {
			log.Printf("[Ledger] 余额缓存写入失败: kind=%s user=%d err=%v", kind, userID, err)
		}
	}
	return balance, nil
}

// Balances 用户全币种余额快照
func (s *LedgerService) Balances(ctx context.Context, userID int64) (map[string]decimal.Decimal, error) {
	result := make(map[string]decimal.Decimal, len(model.AllCurrencies))
	for _, kind := range model.AllCurrencies {
		balance, err := s.Balance(ctx, kind, userID)
		if err != nil {
			return nil, err
		}
		result[string(kind)] = balance
	}
	return result, nil
}

// ListEntries 用户某币种流水
func (s *LedgerService) ListEntries(ctx context.Context, kind model.Currency, userID int64, page, pageSize int) ([]*model.LedgerEntry, int64, error) {
	return s.ledgerRepo.ListByUser(ctx, kind, userID, page, pageSize)
}

// Exchange 钻石金币互兑：同事务先收源币再发目标币，收币那步验余额
// from 只能是钻石或金币，兑换比 coin_per_diamond 双向共用
func (s *LedgerService) Exchange(ctx context.Context, userID int64, from model.Currency, amount decimal.Decimal) (decimal.Decimal, error) {
	rate := decimal.NewFromFloat(s.cfg.Business.CoinPerDiamond)

	var to model.Currency
	var got decimal.Decimal
	switch from {
	case model.CurrencyDiamond:
		to = model.CurrencyCoin
		got = amount.Mul(rate).Round(4)
	case model.CurrencyCoin:
		to = model.CurrencyDiamond
		got = amount.Div(rate).Round(4)
	default:
		return decimal.Zero, ErrExchangePair
	}

	err := runInTx(s.db, func(tx *gorm.DB) error {
		if _, err := s.Transfer(ctx, tx, &TransferInput{
			Kind:         from,
			CreditUserID: &userID,
			Amount:       amount,
			Type:         model.LedgerTypeExchange,
			Remark:       "币种兑换",
		}); err != nil {
			return err
		}
		_, err := s.Transfer(ctx, tx, &TransferInput{
			Kind:        to,
			DebitUserID: &userID,
			Amount:      got,
			Type:        model.LedgerTypeExchange,
			Remark:      "币种兑换",
		})
		return err
	})
	if err != nil {
		return decimal.Zero, err
	}
	return got, nil
}
