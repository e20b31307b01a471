package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"livesystem/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrUserNotFound     = errors.New("用户不存在")
	ErrMemberNotFound   = errors.New("会员不存在")
	ErrMobileRegistered = errors.New("手机号已被注册")
	ErrReferrerAlready  = errors.New("推荐人已设置")
	ErrReferrerSelf     = errors.New("不能推荐自己")
)

type MemberRepository struct {
	db *gorm.DB
}

func NewMemberRepository(db *gorm.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

// CreateWithUser 同事务创建 User + Member
func (r *MemberRepository) CreateWithUser(ctx context.Context, user *model.User, member *model.Member) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		member.UserID = user.ID
		return tx.Create(member).Error
	})
}

func (r *MemberRepository) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *MemberRepository) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *MemberRepository) GetByUserID(ctx context.Context, userID int64) (*model.Member, error) {
	var member model.Member
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	return &member, nil
}

func (r *MemberRepository) GetBySessionKey(ctx context.Context, sessionKey string) (*model.Member, error) {
	var member model.Member
	err := r.db.WithContext(ctx).Where("session_key = ?", sessionKey).First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	return &member, nil
}

func (r *MemberRepository) GetByMobile(ctx context.Context, mobile string) (*model.Member, error) {
	var member model.Member
	err := r.db.WithContext(ctx).Where("mobile = ?", mobile).First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	return &member, nil
}

// UpdateSessionKey 登录成功后整体覆盖会话指纹，旧会话随之失效
func (r *MemberRepository) UpdateSessionKey(ctx context.Context, userID int64, sessionKey string) error {
	return r.db.WithContext(ctx).
		Model(&model.Member{}).
		Where("user_id = ?", userID).
		Update("session_key", sessionKey).Error
}

// SetReferrer 只允许设置一次；referrer_id 已非空时 0 行命中，报冲突
func (r *MemberRepository) SetReferrer(ctx context.Context, userID, referrerID int64) error {
	if userID == referrerID {
		return ErrReferrerSelf
	}

	result := r.db.WithContext(ctx).
		Model(&model.Member{}).
		Where("user_id = ? AND referrer_id IS NULL", userID).
		Update("referrer_id", referrerID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrReferrerAlready
	}
	return nil
}

// UpdateProfile 更新可编辑的资料字段
func (r *MemberRepository) UpdateProfile(ctx context.Context, userID int64, updates map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&model.Member{}).
		Where("user_id = ?", userID).
		Updates(updates).Error
}

// UpdateVipLevel 写会员等级与到期时间
func (r *MemberRepository) UpdateVipLevel(ctx context.Context, userID int64, level int, expiredAt *time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.Member{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"vip_level":      level,
			"vip_expired_at": expiredAt,
		}).Error
}

// SoftDestroy 注销：不删行，登录名改成 deleted_<时间戳>_<原名> 并停用
func (r *MemberRepository) SoftDestroy(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user model.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", userID).
			First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		renamed := fmt.Sprintf("deleted_%d_%s", time.Now().Unix(), user.Username)
		if err := tx.Model(&model.User{}).
			Where("id = ?", userID).
			Updates(map[string]interface{}{
				"username":  renamed,
				"is_active": false,
			}).Error; err != nil {
			return err
		}

		return tx.Model(&model.Member{}).
			Where("user_id = ?", userID).
			Update("session_key", "").Error
	})
}

// ListActiveUserIDs 在用用户 id 列表（榜单重算的遍历范围）
func (r *MemberRepository) ListActiveUserIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("is_active = ?", true).
		Pluck("id", &ids).Error
	return ids, err
}

// ListVipMembers 带会员等级的成员（按日等级重算遍历用）
func (r *MemberRepository) ListVipMembers(ctx context.Context) ([]*model.Member, error) {
	var members []*model.Member
	err := r.db.WithContext(ctx).
		Where("vip_level > 0").
		Find(&members).Error
	return members, err
}

// CreateCheckHistory 写入某用户某日的状态快照
func (r *MemberRepository) CreateCheckHistory(ctx context.Context, h *model.MemberCheckHistory) error {
	return r.db.WithContext(ctx).Create(h).Error
}

// CheckHistoryExists 某日快照是否已生成（按日任务的幂等依据）
func (r *MemberRepository) CheckHistoryExists(ctx context.Context, userID int64, date string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.MemberCheckHistory{}).
		Where("user_id = ? AND date = ?", userID, date).
		Count(&count).Error
	return count > 0, err
}
