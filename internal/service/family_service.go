package service

import (
	"context"
	"errors"
	"time"

	"livesystem/internal/config"
	"livesystem/internal/model"
	"livesystem/internal/repository"

	"gorm.io/gorm"
)

var (
	ErrFamilyAlreadyJoined = errors.New("已在其他家族中")
	ErrFamilyNoPermission  = errors.New("无家族管理权限")
)

type FamilyService struct {
	db         *gorm.DB
	cfg        *config.Config
	familyRepo *repository.FamilyRepository
}

func NewFamilyService(db *gorm.DB, cfg *config.Config) *FamilyService {
	return &FamilyService{
		db:         db,
		cfg:        cfg,
		familyRepo: repository.NewFamilyRepository(db),
	}
}

// CreateFamily 建族，创始人不可已有家族关系
func (s *FamilyService) CreateFamily(ctx context.Context, founderID int64, name, notice string) (*model.Family, error) {
	if _, err := s.familyRepo.GetMembershipByUser(ctx, founderID); err == nil {
		return nil, ErrFamilyAlreadyJoined
	} else if !errors.Is(err, repository.ErrFamilyMemberNotFound) {
		return nil, err
	}

	family := &model.Family{
		Name:              name,
		FounderID:         founderID,
		Notice:            notice,
		DateMissionUnlock: time.Now(),
	}
	if err := s.familyRepo.Create(ctx, family); err != nil {
		return nil, err
	}
	return family, nil
}

// GetFamily 查家族
func (s *FamilyService) GetFamily(ctx context.Context, familyID int64) (*model.Family, error) {
	return s.familyRepo.GetByID(ctx, familyID)
}

// Apply 申请入族
func (s *FamilyService) Apply(ctx context.Context, familyID, userID int64) error {
	if _, err := s.familyRepo.GetByID(ctx, familyID); err != nil {
		return err
	}
	if _, err := s.familyRepo.GetMembershipByUser(ctx, userID); err == nil {
		return ErrFamilyAlreadyJoined
	} else if !errors.Is(err, repository.ErrFamilyMemberNotFound) {
		return err
	}

	return s.familyRepo.AddApplication(ctx, &model.FamilyMember{
		FamilyID: familyID,
		UserID:   userID,
		Role:     model.FamilyRoleNormal,
		Status:   model.FamilyStatusPending,
	})
}

// Approve 审批通过，仅族长与管理员可操作
func (s *FamilyService) Approve(ctx context.Context, familyID, applicantID, approverID int64) error {
	if err := s.requireManager(ctx, familyID, approverID); err != nil {
		return err
	}
	return s.familyRepo.UpdateMemberStatus(ctx, familyID, applicantID,
		model.FamilyStatusPending, model.FamilyStatusApproved, approverID)
}

// Reject 驳回申请
func (s *FamilyService) Reject(ctx context.Context, familyID, applicantID, approverID int64) error {
	if err := s.requireManager(ctx, familyID, approverID); err != nil {
		return err
	}
	return s.familyRepo.UpdateMemberStatus(ctx, familyID, applicantID,
		model.FamilyStatusPending, model.FamilyStatusRejected, approverID)
}

// Blacklist 拉黑在族成员
func (s *FamilyService) Blacklist(ctx context.Context, familyID, memberID, approverID int64) error {
	if err := s.requireManager(ctx, familyID, approverID); err != nil {
		return err
	}
	return s.familyRepo.UpdateMemberStatus(ctx, familyID, memberID,
		model.FamilyStatusApproved, model.FamilyStatusBlacklisted, approverID)
}

// SetRole 提拔/罢免管理员，仅族长可操作
func (s *FamilyService) SetRole(ctx context.Context, familyID, memberID, operatorID int64, role string) error {
	operator, err := s.familyRepo.GetMember(ctx, familyID, operatorID)
	if err != nil {
		return err
	}
	if operator.Role != model.FamilyRoleMaster {
		return ErrFamilyNoPermission
	}
	if role != model.FamilyRoleAdmin && role != model.FamilyRoleNormal {
		return repository.ErrFamilyStatusInvalid
	}
	return s.familyRepo.UpdateMemberRole(ctx, familyID, memberID, role)
}

// ListMembers 成员列表，顺带把超时未审批的申请自动通过
func (s *FamilyService) ListMembers(ctx context.Context, familyID int64, status string) ([]*model.FamilyMember, error) {
	if minutes := s.cfg.Business.AutoApproveMinutesFamily; minutes > 0 {
		before := time.Now().Add(-time.Duration(minutes) * time.Minute)
		if err := s.familyRepo.AutoApprovePending(ctx, familyID, before); err != nil {
			return nil, err
		}
	}
	return s.familyRepo.ListMembers(ctx, familyID, status)
}

// CreateMission 开家族任务，受冷却门限制，仅管理层可开
func (s *FamilyService) CreateMission(ctx context.Context, mission *model.FamilyMission) error {
	if err := s.requireManager(ctx, mission.FamilyID, mission.CreatorID); err != nil {
		return err
	}
	return s.familyRepo.CreateMission(ctx, mission)
}

// ListMissions 任务列表
func (s *FamilyService) ListMissions(ctx context.Context, familyID int64) ([]*model.FamilyMission, error) {
	return s.familyRepo.ListMissions(ctx, familyID)
}

// RecordMissionProgress 送礼后累计任务进度
// 送礼人不在家族或家族没有进行中的任务时静默跳过
func (s *FamilyService) RecordMissionProgress(ctx context.Context, tx *gorm.DB, userID, coinSpent int64) error {
	membership, err := s.familyRepo.GetMembershipByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrFamilyMemberNotFound) {
			return nil
		}
		return err
	}
	if membership.Status != model.FamilyStatusApproved {
		return nil
	}

	mission, err := s.familyRepo.GetRunningMission(ctx, membership.FamilyID, time.Now())
	if err != nil {
		return err
	}
	if mission == nil {
		return nil
	}
	return s.familyRepo.UpsertAchievement(ctx, tx, mission.ID, userID, coinSpent)
}

// PublishArticle 发家族公告，仅管理层可发
func (s *FamilyService) PublishArticle(ctx context.Context, article *model.FamilyArticle) error {
	if err := s.requireManager(ctx, article.FamilyID, article.AuthorID); err != nil {
		return err
	}
	return s.familyRepo.CreateArticle(ctx, article)
}

// ListArticles 公告列表
func (s *FamilyService) ListArticles(ctx context.Context, familyID int64) ([]*model.FamilyArticle, error) {
	return s.familyRepo.ListArticles(ctx, familyID, false)
}

// DeleteArticle 删公告
func (s *FamilyService) DeleteArticle(ctx context.Context, familyID, articleID, operatorID int64) error {
	if err := s.requireManager(ctx, familyID, operatorID); err != nil {
		return err
	}
	return s.familyRepo.SoftDeleteArticle(ctx, articleID)
}

func (s *FamilyService) requireManager(ctx context.Context, familyID, userID int64) error {
	member, err := s.familyRepo.GetMember(ctx, familyID, userID)
	if err != nil {
		return err
	}
	if member.Status != model.FamilyStatusApproved {
		return ErrFamilyNoPermission
	}
	if member.Role != model.FamilyRoleMaster && member.Role != model.FamilyRoleAdmin {
		return ErrFamilyNoPermission
	}
	return nil
}
