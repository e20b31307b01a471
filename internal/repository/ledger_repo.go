package repository

import (
	"context"
	"errors"
	"time"

	"livesystem/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrInsufficientFunds = errors.New("余额不足")
	ErrInvalidAmount     = errors.New("金额必须大于0")
	ErrUnknownCurrency   = errors.New("未知币种")
)

type LedgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// LockMember 锁定用户的 member 行
// 同一用户同一币种的余额读与写靠这把行锁串行化：两笔并发转账不可能都看到足够余额
func (r *LedgerRepository) LockMember(ctx context.Context, tx *gorm.DB, userID int64) error {
	var member model.Member
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMemberNotFound
		}
		return err
	}
	return nil
}

// Balance 推导余额：Σ入账 - Σ出账
// sourceTag 非空时只统计该分仓（礼物库存按来源分仓）
func (r *LedgerRepository) Balance(ctx context.Context, tx *gorm.DB, kind model.Currency, userID int64, sourceTag string) (decimal.Decimal, error) {
	if !kind.Valid() {
		return decimal.Zero, ErrUnknownCurrency
	}
	if tx == nil {
		tx = r.db
	}

	debit, err := r.sumSide(ctx, tx, kind, "debit_user_id", userID, sourceTag)
	if err != nil {
		return decimal.Zero, err
	}
	credit, err := r.sumSide(ctx, tx, kind, "credit_user_id", userID, sourceTag)
	if err != nil {
		return decimal.Zero, err
	}
	return debit.Sub(credit), nil
}

func (r *LedgerRepository) sumSide(ctx context.Context, tx *gorm.DB, kind model.Currency, column string, userID int64, sourceTag string) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	query := tx.WithContext(ctx).
		Table(kind.TableName()).
		Select("SUM(amount)").
		Where(column+" = ?", userID)
	if sourceTag != "" {
		query = query.Where("source_tag = ?", sourceTag)
	}
	if err := query.Scan(&sum).Error; err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}

// Insert 追加一条流水，只有 LedgerService.Transfer 会调用
func (r *LedgerRepository) Insert(ctx context.Context, tx *gorm.DB, kind model.Currency, entry *model.LedgerEntry) error {
	if !kind.Valid() {
		return ErrUnknownCurrency
	}
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Table(kind.TableName()).Create(entry).Error
}

// GetByID 按 id 读一条流水
func (r *LedgerRepository) GetByID(ctx context.Context, kind model.Currency, id int64) (*model.LedgerEntry, error) {
	var entry model.LedgerEntry
	err := r.db.WithContext(ctx).Table(kind.TableName()).Where("id = ?", id).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

// ListByUser 用户某币种的流水，最近在前
func (r *LedgerRepository) ListByUser(ctx context.Context, kind model.Currency, userID int64, page, pageSize int) ([]*model.LedgerEntry, int64, error) {
	if !kind.Valid() {
		return nil, 0, ErrUnknownCurrency
	}

	var entries []*model.LedgerEntry
	var total int64

	query := r.db.WithContext(ctx).
		Table(kind.TableName()).
		Where("debit_user_id = ? OR credit_user_id = ?", userID, userID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&entries).Error

	return entries, total, err
}

// ExistsByRemark 指定类型+备注的流水是否存在（充值回调的幂等依据）
func (r *LedgerRepository) ExistsByRemark(ctx context.Context, kind model.Currency, typeTag, remark string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table(kind.TableName()).
		Where("type = ? AND remark = ?", typeTag, remark).
		Count(&count).Error
	return count > 0, err
}

// UserAmount 按用户聚合的一行
type UserAmount struct {
	UserID int64           `gorm:"column:user_id"`
	Amount decimal.Decimal `gorm:"column:amount"`
}

// AggregateDebitByUser 窗口内按入账方聚合
// from 为空表示不限窗口（总榜）；typeTag 非空时只统计该类型
func (r *LedgerRepository) AggregateDebitByUser(ctx context.Context, kind model.Currency, typeTag string, from *time.Time) ([]UserAmount, error) {
	return r.aggregateByUser(ctx, kind, "debit_user_id", typeTag, from)
}

// AggregateCreditByUser 窗口内按出账方聚合
func (r *LedgerRepository) AggregateCreditByUser(ctx context.Context, kind model.Currency, typeTag string, from *time.Time) ([]UserAmount, error) {
	return r.aggregateByUser(ctx, kind, "credit_user_id", typeTag, from)
}

func (r *LedgerRepository) aggregateByUser(ctx context.Context, kind model.Currency, column, typeTag string, from *time.Time) ([]UserAmount, error) {
	if !kind.Valid() {
		return nil, ErrUnknownCurrency
	}

	var rows []UserAmount
	query := r.db.WithContext(ctx).
		Table(kind.TableName()).
		Select(column + " AS user_id, SUM(amount) AS amount").
		Where(column + " IS NOT NULL")
	if typeTag != "" {
		query = query.Where("type = ?", typeTag)
	}
	if from != nil {
		query = query.Where("created_at >= ?", *from)
	}
	err := query.Group(column).Find(&rows).Error
	return rows, err
}

// SumDebitSince 单个用户窗口内的入账合计（抽奖条件判定用）
func (r *LedgerRepository) SumDebitSince(ctx context.Context, kind model.Currency, userID int64, typeTag string, from, to time.Time) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	query := r.db.WithContext(ctx).
		Table(kind.TableName()).
		Select("SUM(amount)").
		Where("debit_user_id = ?", userID).
		Where("created_at >= ? AND created_at < ?", from, to)
	if typeTag != "" {
		query = query.Where("type = ?", typeTag)
	}
	if err := query.Scan(&sum).Error; err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}

// SumCreditSince 单个用户窗口内的出账合计
func (r *LedgerRepository) SumCreditSince(ctx context.Context, kind model.Currency, userID int64, typeTag string, from, to time.Time) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	query := r.db.WithContext(ctx).
		Table(kind.TableName()).
		Select("SUM(amount)").
		Where("credit_user_id = ?", userID).
		Where("created_at >= ? AND created_at < ?", from, to)
	if typeTag != "" {
		query = query.Where("type = ?", typeTag)
	}
	if err := query.Scan(&sum).Error; err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}

// SumDebitByLiveSince 某直播间窗口内收到的某币种合计（热度重算用）
func (r *LedgerRepository) SumDebitByLiveSince(ctx context.Context, kind model.Currency, liveID int64, from time.Time) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := r.db.WithContext(ctx).
		Table(kind.TableName()).
		Select("SUM(amount)").
		Where("live_id = ? AND created_at >= ?", liveID, from).
		Scan(&sum).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}
