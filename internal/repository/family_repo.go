package repository

import (
	"context"
	"errors"
	"time"

	"livesystem/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrFamilyNotFound       = errors.New("家族不存在")
	ErrFamilyNameTaken      = errors.New("家族名已被占用")
	ErrFamilyMemberNotFound = errors.New("家族成员不存在")
	ErrFamilyMemberExists   = errors.New("已申请或已是家族成员")
	ErrFamilyStatusInvalid  = errors.New("家族成员状态不合法")
	ErrMissionLocked        = errors.New("家族任务冷却中")
)

type FamilyRepository struct {
	db *gorm.DB
}

func NewFamilyRepository(db *gorm.DB) *FamilyRepository {
	return &FamilyRepository{db: db}
}

// Create 建族，创始人同事务成为 MASTER
func (r *FamilyRepository) Create(ctx context.Context, family *model.Family) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(family).Error; err != nil {
			return err
		}
		now := time.Now()
		master := &model.FamilyMember{
			FamilyID:   family.ID,
			UserID:     family.FounderID,
			Role:       model.FamilyRoleMaster,
			Status:     model.FamilyStatusApproved,
			ApprovedAt: &now,
			ApprovedBy: &family.FounderID,
		}
		return tx.Create(master).Error
	})
}

func (r *FamilyRepository) GetByID(ctx context.Context, id int64) (*model.Family, error) {
	var family model.Family
	err := r.db.WithContext(ctx).Where("id = ? AND is_deleted = ?", id, false).First(&family).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFamilyNotFound
		}
		return nil, err
	}
	return &family, nil
}

func (r *FamilyRepository) GetMember(ctx context.Context, familyID, userID int64) (*model.FamilyMember, error) {
	var member model.FamilyMember
	err := r.db.WithContext(ctx).
		Where("family_id = ? AND user_id = ?", familyID, userID).
		First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFamilyMemberNotFound
		}
		return nil, err
	}
	return &member, nil
}

// AddApplication 入族申请，唯一索引拦重复
func (r *FamilyRepository) AddApplication(ctx context.Context, member *model.FamilyMember) error {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(member)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrFamilyMemberExists
	}
	return nil
}

// UpdateMemberStatus 审批流转，按状态机校验并带条件更新
func (r *FamilyRepository) UpdateMemberStatus(ctx context.Context, familyID, userID int64, fromStatus, toStatus string, approverID int64) error {
	if !model.FamilyStatusCanTransition(fromStatus, toStatus) {
		return ErrFamilyStatusInvalid
	}

	updates := map[string]interface{}{"status": toStatus}
	if toStatus == model.FamilyStatusApproved {
		now := time.Now()
		updates["approved_at"] = &now
		updates["approved_by"] = approverID
	}

	result := r.db.WithContext(ctx).
		Model(&model.FamilyMember{}).
		Where("family_id = ? AND user_id = ? AND status = ?", familyID, userID, fromStatus).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrFamilyStatusInvalid
	}
	return nil
}

// UpdateMemberRole 角色变更（提拔/罢免管理员）
func (r *FamilyRepository) UpdateMemberRole(ctx context.Context, familyID, userID int64, role string) error {
	result := r.db.WithContext(ctx).
		Model(&model.FamilyMember{}).
		Where("family_id = ? AND user_id = ? AND status = ?", familyID, userID, model.FamilyStatusApproved).
		Update("role", role)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrFamilyMemberNotFound
	}
	return nil
}

// AutoApprovePending 超过时限未处理的入族申请批量转为通过，审批人留空
func (r *FamilyRepository) AutoApprovePending(ctx context.Context, familyID int64, before time.Time) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&model.FamilyMember{}).
		Where("family_id = ? AND status = ? AND created_at <= ?", familyID, model.FamilyStatusPending, before).
		Updates(map[string]interface{}{
			"status":      model.FamilyStatusApproved,
			"approved_at": &now,
		}).Error
}

func (r *FamilyRepository) ListMembers(ctx context.Context, familyID int64, status string) ([]*model.FamilyMember, error) {
	var members []*model.FamilyMember
	query := r.db.WithContext(ctx).Where("family_id = ?", familyID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	err := query.Find(&members).Error
	return members, err
}

// GetMembershipByUser 用户当前的家族关系（一个用户至多在一个家族）
func (r *FamilyRepository) GetMembershipByUser(ctx context.Context, userID int64) (*model.FamilyMember, error) {
	var member model.FamilyMember
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status IN ?", userID, []string{model.FamilyStatusPending, model.FamilyStatusApproved}).
		First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFamilyMemberNotFound
		}
		return nil, err
	}
	return &member, nil
}

// ============================================================
// 家族任务
// ============================================================

// CreateMission 开任务：冷却门 date_mission_unlock 未到即拒绝；
// 成功后把冷却门推到 now + mission_unlock_minutes，行锁保证并发只开一个
func (r *FamilyRepository) CreateMission(ctx context.Context, mission *model.FamilyMission) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var family model.Family
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND is_deleted = ?", mission.FamilyID, false).
			First(&family).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrFamilyNotFound
			}
			return err
		}

		now := time.Now()
		if now.Before(family.DateMissionUnlock) {
			return ErrMissionLocked
		}

		if err := tx.Create(mission).Error; err != nil {
			return err
		}

		unlock := now.Add(time.Duration(family.MissionUnlockMinutes) * time.Minute)
		return tx.Model(&model.Family{}).
			Where("id = ?", family.ID).
			Update("date_mission_unlock", unlock).Error
	})
}

func (r *FamilyRepository) ListMissions(ctx context.Context, familyID int64) ([]*model.FamilyMission, error) {
	var missions []*model.FamilyMission
	err := r.db.WithContext(ctx).
		Where("family_id = ?", familyID).
		Order("created_at DESC").
		Find(&missions).Error
	return missions, err
}

// UpsertAchievement 成员任务进度，送礼流水触发累加
func (r *FamilyRepository) UpsertAchievement(ctx context.Context, tx *gorm.DB, missionID, userID, coinSpent int64) error {
	if tx == nil {
		tx = r.db
	}
	achievement := &model.FamilyMissionAchievement{
		MissionID: missionID,
		UserID:    userID,
		CoinSpent: coinSpent,
	}
	return tx.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "mission_id"}, {Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"coin_spent": gorm.Expr("coin_spent + ?", coinSpent),
			}),
		}).
		Create(achievement).Error
}

// GetRunningMission 家族当前进行中的任务
func (r *FamilyRepository) GetRunningMission(ctx context.Context, familyID int64, now time.Time) (*model.FamilyMission, error) {
	var mission model.FamilyMission
	err := r.db.WithContext(ctx).
		Where("family_id = ? AND date_begin <= ? AND date_end > ? AND finished_at IS NULL", familyID, now, now).
		First(&mission).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &mission, nil
}

// ============================================================
// 家族文章
// ============================================================

func (r *FamilyRepository) CreateArticle(ctx context.Context, article *model.FamilyArticle) error {
	return r.db.WithContext(ctx).Create(article).Error
}

func (r *FamilyRepository) ListArticles(ctx context.Context, familyID int64, includeDeleted bool) ([]*model.FamilyArticle, error) {
	var articles []*model.FamilyArticle
	query := r.db.WithContext(ctx).Where("family_id = ?", familyID)
	if !includeDeleted {
		query = query.Where("is_deleted = ?", false)
	}
	err := query.Order("created_at DESC").Find(&articles).Error
	return articles, err
}

func (r *FamilyRepository) SoftDeleteArticle(ctx context.Context, articleID int64) error {
	return r.db.WithContext(ctx).
		Model(&model.FamilyArticle{}).
		Where("id = ?", articleID).
		Update("is_deleted", true).Error
}
