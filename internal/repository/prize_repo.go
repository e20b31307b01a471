package repository

import (
	"context"
	"errors"
	"time"

	"livesystem/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrPrizeNotFound    = errors.New("礼物不存在")
	ErrPrizePriceFrozen = errors.New("礼物已被订单引用，价格不可修改")
	ErrOrderNotFound    = errors.New("订单不存在")
)

type PrizeRepository struct {
	db *gorm.DB
}

func NewPrizeRepository(db *gorm.DB) *PrizeRepository {
	return &PrizeRepository{db: db}
}

func (r *PrizeRepository) Create(ctx context.Context, prize *model.Prize) error {
	return r.db.WithContext(ctx).Create(prize).Error
}

func (r *PrizeRepository) GetByID(ctx context.Context, id int64) (*model.Prize, error) {
	var prize model.Prize
	err := r.db.WithContext(ctx).Where("id = ? AND is_deleted = ?", id, false).First(&prize).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPrizeNotFound
		}
		return nil, err
	}
	return &prize, nil
}

func (r *PrizeRepository) List(ctx context.Context, categoryID *int64) ([]*model.Prize, error) {
	var prizes []*model.Prize
	query := r.db.WithContext(ctx).Where("is_deleted = ?", false)
	if categoryID != nil {
		query = query.Where("category_id = ?", *categoryID)
	}
	err := query.Order("id ASC").Find(&prizes).Error
	return prizes, err
}

// UpdatePrice 改价，已被订单引用的礼物拒绝
func (r *PrizeRepository) UpdatePrice(ctx context.Context, prizeID int64, price decimal.Decimal) error {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&model.PrizeOrder{}).
		Where("prize_id = ?", prizeID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrPrizePriceFrozen
	}

	return r.db.WithContext(ctx).
		Model(&model.Prize{}).
		Where("id = ?", prizeID).
		Update("price", price).Error
}

func (r *PrizeRepository) ListCategories(ctx context.Context) ([]*model.PrizeCategory, error) {
	var categories []*model.PrizeCategory
	err := r.db.WithContext(ctx).
		Where("is_deleted = ?", false).
		Order("sort ASC").
		Find(&categories).Error
	return categories, err
}

// ============================================================
// 送礼订单
// ============================================================

func (r *PrizeRepository) CreateOrder(ctx context.Context, tx *gorm.DB, order *model.PrizeOrder) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(order).Error
}

func (r *PrizeRepository) GetOrderByNo(ctx context.Context, orderNo string) (*model.PrizeOrder, error) {
	var order model.PrizeOrder
	err := r.db.WithContext(ctx).Where("order_no = ?", orderNo).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *PrizeRepository) ListOrdersByLive(ctx context.Context, liveID int64, page, pageSize int) ([]*model.PrizeOrder, int64, error) {
	var orders []*model.PrizeOrder
	var total int64

	query := r.db.WithContext(ctx).Model(&model.PrizeOrder{}).Where("live_id = ?", liveID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&orders).Error
	return orders, total, err
}

// CountOrdersByLive 直播间收礼件数（派生查询，不落计数器）
func (r *PrizeRepository) CountOrdersByLive(ctx context.Context, liveID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.PrizeOrder{}).
		Where("live_id = ?", liveID).
		Count(&count).Error
	return count, err
}

// AuthorPrizeCount VOTE 活动排名行
type AuthorPrizeCount struct {
	AuthorID int64 `gorm:"column:author_id"`
	Total    int64 `gorm:"column:total"`
}

// RankAuthorsByPrize 窗口内按收到某礼物件数给主播排名，多者在前
func (r *PrizeRepository) RankAuthorsByPrize(ctx context.Context, prizeID int64, from, to time.Time) ([]AuthorPrizeCount, error) {
	var rows []AuthorPrizeCount
	err := r.db.WithContext(ctx).
		Model(&model.PrizeOrder{}).
		Select("live.author_id AS author_id, SUM(prize_order.count) AS total").
		Joins("JOIN live ON live.id = prize_order.live_id").
		Where("prize_order.prize_id = ? AND prize_order.created_at >= ? AND prize_order.created_at < ?", prizeID, from, to).
		Group("live.author_id").
		Order("total DESC").
		Find(&rows).Error
	return rows, err
}

// ============================================================
// 星光宝盒
// ============================================================

func (r *PrizeRepository) ListStarBoxOutcomes(ctx context.Context) ([]*model.StarBoxOutcome, error) {
	var outcomes []*model.StarBoxOutcome
	err := r.db.WithContext(ctx).
		Where("is_deleted = ?", false).
		Find(&outcomes).Error
	return outcomes, err
}
