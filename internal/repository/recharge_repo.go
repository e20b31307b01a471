package repository

import (
	"context"
	"errors"

	"livesystem/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrRechargeDuplicate = errors.New("充值记录已存在")

type RechargeRepository struct {
	db *gorm.DB
}

func NewRechargeRepository(db *gorm.DB) *RechargeRepository {
	return &RechargeRepository{db: db}
}

// OrderExists 按第三方 orderid 查重
func (r *RechargeRepository) OrderExists(ctx context.Context, orderID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.PaymentRecord{}).
		Where("order_id = ?", orderID).
		Count(&count).Error
	return count > 0, err
}

func (r *RechargeRepository) CreatePayment(ctx context.Context, tx *gorm.DB, record *model.PaymentRecord) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(record).Error
}

func (r *RechargeRepository) CreateRecharge(ctx context.Context, tx *gorm.DB, record *model.RechargeRecord) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(record).Error
}

func (r *RechargeRepository) ListByUser(ctx context.Context, userID int64, page, pageSize int) ([]*model.RechargeRecord, int64, error) {
	var records []*model.RechargeRecord
	var total int64

	query := r.db.WithContext(ctx).Model(&model.RechargeRecord{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&records).Error
	return records, total, err
}

// SumByUser 用户累计充值额（会员等级判定依据）
func (r *RechargeRepository) SumByUser(ctx context.Context, userID int64) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := r.db.WithContext(ctx).
		Model(&model.RechargeRecord{}).
		Select("SUM(amount)").
		Where("user_id = ?", userID).
		Scan(&sum).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}
