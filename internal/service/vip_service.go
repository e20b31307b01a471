package service

import (
	"context"
	"log"
	"time"

	"livesystem/internal/config"
	"livesystem/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// VipService 会员等级
// 等级由累计充值额对照 level_rules 推导，升不降；到期由按月任务重算
type VipService struct {
	db           *gorm.DB
	cfg          *config.Config
	memberRepo   *repository.MemberRepository
	rechargeRepo *repository.RechargeRepository
}

func NewVipService(db *gorm.DB, cfg *config.Config) *VipService {
	return &VipService{
		db:           db,
		cfg:          cfg,
		memberRepo:   repository.NewMemberRepository(db),
		rechargeRepo: repository.NewRechargeRepository(db),
	}
}

// LevelFor 累计充值额对应的等级
func (s *VipService) LevelFor(total decimal.Decimal) (int, error) {
	rules, err := s.cfg.Business.ParseLevelRules()
	if err != nil {
		return 0, err
	}
	level := 0
	for _, rule := range rules {
		if total.GreaterThanOrEqual(decimal.NewFromFloat(rule.Threshold)) && rule.Level > level {
			level = rule.Level
		}
	}
	return level, nil
}

// Recalc 重算单个用户的会员等级，只升不降
func (s *VipService) Recalc(ctx context.Context, userID int64) error {
	member, err := s.memberRepo.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}

	total, err := s.rechargeRepo.SumByUser(ctx, userID)
	if err != nil {
		return err
	}
	level, err := s.LevelFor(total)
	if err != nil {
		return err
	}
	if level <= member.VipLevel {
		return nil
	}

	expiredAt := time.Now().AddDate(0, 1, 0)
	return s.memberRepo.UpdateVipLevel(ctx, userID, level, &expiredAt)
}

// RecalcAll 全量重算（change_vip_level 任务入口）
// 到期的会员按当前累计充值额重新定级并续一个月有效期
func (s *VipService) RecalcAll(ctx context.Context) error {
	members, err := s.memberRepo.ListVipMembers(ctx)
	if err != nil {
		return err
	}

	now := time.Now()
	for _, member := range members {
		if member.VipExpiredAt != nil && member.VipExpiredAt.After(now) {
			continue
		}

		total, err := s.rechargeRepo.SumByUser(ctx, member.UserID)
		if err != nil {
			return err
		}
		level, err := s.LevelFor(total)
		if err != nil {
			return err
		}

		expiredAt := now.AddDate(0, 1, 0)
		if err := s.memberRepo.UpdateVipLevel(ctx, member.UserID, level, &expiredAt); err != nil {
			log.Printf("[Vip] 等级重算失败: user=%d err=%v", member.UserID, err)
		}
	}
	return nil
}
