package service

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"livesystem/internal/config"
	"livesystem/internal/model"
	"livesystem/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrRechargeSign    = errors.New("签名校验失败")
	ErrRechargeAccount = errors.New("充值账号不存在")
)

// RechargeNotify 第三方支付回调参数
type RechargeNotify struct {
	Account   string
	ServerID  string
	Platform  string
	OrderID   string
	ProductID string
	IMoney    decimal.Decimal
	ToAccount string
	Extra     string
	Time      int64
	Sign      string
}

// rechargeStore 回调入账用到的充值读写面
type rechargeStore interface {
	OrderExists(ctx context.Context, orderID string) (bool, error)
	CreatePayment(ctx context.Context, tx *gorm.DB, p *model.PaymentRecord) error
	CreateRecharge(ctx context.Context, tx *gorm.DB, r *model.RechargeRecord) error
	ListByUser(ctx context.Context, userID int64, page, pageSize int) ([]*model.RechargeRecord, int64, error)
}

// RechargeService 充值回调处理
// 验签 + orderid 查重 + 单事务入账，重复回调返回已处理
type RechargeService struct {
	db           *gorm.DB
	cfg          *config.Config
	ledger       *LedgerService
	vip          *VipService
	rechargeRepo rechargeStore
	memberRepo   *repository.MemberRepository
	outboxRepo   *repository.OutboxRepository
}

func NewRechargeService(db *gorm.DB, cfg *config.Config, ledger *LedgerService, vip *VipService) *RechargeService {
	return &RechargeService{
		db:           db,
		cfg:          cfg,
		ledger:       ledger,
		vip:          vip,
		rechargeRepo: repository.NewRechargeRepository(db),
		memberRepo:   repository.NewMemberRepository(db),
		outboxRepo:   repository.NewOutboxRepository(db),
	}
}

// VerifySign 回调签名：md5(account + platform + orderid + imoney + time + secret) 大写十六进制
func VerifySign(n *RechargeNotify, secret string) bool {
	raw := fmt.Sprintf("%s%s%s%s%d%s", n.Account, n.Platform, n.OrderID, n.IMoney.String(), n.Time, secret)
	sum := md5.Sum([]byte(raw))
	expected := strings.ToUpper(fmt.Sprintf("%x", sum))
	return expected == strings.ToUpper(n.Sign)
}

type rechargeResultPayload struct {
	OrderID string `json:"order_id"`
	UserID  int64  `json:"user_id"`
	Amount  string `json:"amount"`
	Award   string `json:"award"`
}

// HandleNotify 处理回调
// 返回 (duplicate, error)：orderid 已入账时 duplicate=true 且不报错，由接入层按协议应答 record exist
func (s *RechargeService) HandleNotify(ctx context.Context, n *RechargeNotify) (bool, error) {
	if !VerifySign(n, s.cfg.Business.RechargeSecret) {
		return false, ErrRechargeSign
	}

	exists, err := s.rechargeRepo.OrderExists(ctx, n.OrderID)
	if err != nil {
		return false, err
	}
	if exists {
		return true, nil
	}

	member, err := s.memberRepo.GetByMobile(ctx, n.Account)
	if err != nil {
		if errors.Is(err, repository.ErrMemberNotFound) {
			return false, ErrRechargeAccount
		}
		return false, err
	}
	userID := member.UserID

	award := n.IMoney.Mul(decimal.NewFromFloat(s.cfg.Business.RechargeAwardRate)).Round(4)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.rechargeRepo.CreatePayment(ctx, tx, &model.PaymentRecord{
			Account:   n.Account,
			ServerID:  n.ServerID,
			Platform:  n.Platform,
			OrderID:   n.OrderID,
			ProductID: n.ProductID,
			IMoney:    n.IMoney,
			ToAccount: n.ToAccount,
			Extra:     n.Extra,
			PayTime:   n.Time,
		}); err != nil {
			return err
		}

		coinEntry, err := s.ledger.Transfer(ctx, tx, &TransferInput{
			Kind:        model.CurrencyCoin,
			DebitUserID: &userID,
			Amount:      n.IMoney,
			Type:        model.LedgerTypeRecharge,
			Remark:      "充值" + n.OrderID,
		})
		if err != nil {
			return err
		}

		if award.GreaterThan(decimal.Zero) {
			if _, err := s.ledger.Transfer(ctx, tx, &TransferInput{
				Kind:        model.CurrencyCoin,
				DebitUserID: &userID,
				Amount:      award,
				Type:        model.LedgerTypeRechargeAward,
				Remark:      "充值奖励" + n.OrderID,
			}); err != nil {
				return err
			}
		}

		if err := s.rechargeRepo.CreateRecharge(ctx, tx, &model.RechargeRecord{
			UserID:      userID,
			OrderID:     n.OrderID,
			Amount:      n.IMoney,
			AwardAmount: award,
			CoinEntryID: coinEntry.ID,
		}); err != nil {
			return err
		}

		payload, err := json.Marshal(rechargeResultPayload{
			OrderID: n.OrderID,
			UserID:  userID,
			Amount:  n.IMoney.String(),
			Award:   award.String(),
		})
		if err != nil {
			return err
		}
		return s.outboxRepo.Create(ctx, tx, &model.OutboxMessage{
			MessageKey: n.OrderID,
			Topic:      s.cfg.Kafka.Topic.RechargeResult,
			Payload:    string(payload),
		})
	})
	if err != nil {
		return false, err
	}

	// 累计充值额变了，立刻重算会员等级
	if err := s.vip.Recalc(ctx, userID); err != nil {
		return false, err
	}
	return false, nil
}

// ListRecords 充值记录
func (s *RechargeService) ListRecords(ctx context.Context, userID int64, page, pageSize int) ([]*model.RechargeRecord, int64, error) {
	return s.rechargeRepo.ListByUser(ctx, userID, page, pageSize)
}
