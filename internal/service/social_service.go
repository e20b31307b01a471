package service

import (
	"context"
	"errors"

	"livesystem/internal/model"
	"livesystem/internal/repository"

	"gorm.io/gorm"
)

var ErrSelfTarget = errors.New("不能对自己操作")

// SocialService 关注/点赞/拉黑与联系人
type SocialService struct {
	db          *gorm.DB
	markRepo    *repository.MarkRepository
	contactRepo *repository.ContactRepository
	memberRepo  *repository.MemberRepository
	badgeRepo   *repository.BadgeRepository
}

func NewSocialService(db *gorm.DB) *SocialService {
	return &SocialService{
		db:          db,
		markRepo:    repository.NewMarkRepository(db),
		contactRepo: repository.NewContactRepository(db),
		memberRepo:  repository.NewMemberRepository(db),
		badgeRepo:   repository.NewBadgeRepository(db),
	}
}

// Mark 打标记
func (s *SocialService) Mark(ctx context.Context, authorID int64, subject, targetKind string, targetID int64) error {
	if targetKind == model.MarkTargetMember && authorID == targetID {
		return ErrSelfTarget
	}
	return s.markRepo.Create(ctx, &model.Mark{
		AuthorID:   authorID,
		Subject:    subject,
		TargetKind: targetKind,
		TargetID:   targetID,
	})
}

// Unmark 取消标记
func (s *SocialService) Unmark(ctx context.Context, authorID int64, subject, targetKind string, targetID int64) error {
	return s.markRepo.Delete(ctx, authorID, subject, targetKind, targetID)
}

// Following 我关注的目标
func (s *SocialService) Following(ctx context.Context, userID int64, targetKind string) ([]*model.Mark, error) {
	return s.markRepo.ListByAuthor(ctx, userID, model.MarkSubjectFollow, targetKind)
}

// Followers 关注我的人
func (s *SocialService) Followers(ctx context.Context, userID int64) ([]*model.Mark, error) {
	return s.markRepo.ListByTarget(ctx, model.MarkSubjectFollow, model.MarkTargetMember, userID)
}

// FollowerCount 粉丝数，派生计数
func (s *SocialService) FollowerCount(ctx context.Context, userID int64) (int64, error) {
	return s.markRepo.CountByTarget(ctx, model.MarkSubjectFollow, model.MarkTargetMember, userID)
}

// AddContact 加联系人（有向边），已存在则覆盖类型
func (s *SocialService) AddContact(ctx context.Context, authorID, userID int64, contactType string) error {
	if authorID == userID {
		return ErrSelfTarget
	}
	if _, err := s.memberRepo.GetByUserID(ctx, userID); err != nil {
		return err
	}
	return s.contactRepo.Upsert(ctx, &model.Contact{
		AuthorID: authorID,
		UserID:   userID,
		Type:     contactType,
	})
}

// RemoveContact 删联系人
func (s *SocialService) RemoveContact(ctx context.Context, authorID, userID int64) error {
	return s.contactRepo.Delete(ctx, authorID, userID)
}

// ListContacts 我的联系人
func (s *SocialService) ListContacts(ctx context.Context, userID int64) ([]*model.Contact, error) {
	return s.contactRepo.ListByAuthor(ctx, userID)
}

// ListFriends 好友 = 双向 OPEN
func (s *SocialService) ListFriends(ctx context.Context, userID int64) ([]int64, error) {
	return s.contactRepo.ListFriendIDs(ctx, userID)
}

// IsFriend 两人是否互为好友
func (s *SocialService) IsFriend(ctx context.Context, a, b int64) (bool, error) {
	return s.contactRepo.IsFriend(ctx, a, b)
}

// ListBadges 徽章目录
func (s *SocialService) ListBadges(ctx context.Context) ([]*model.Badge, error) {
	return s.badgeRepo.List(ctx)
}

// MyBadges 我的徽章
func (s *SocialService) MyBadges(ctx context.Context, userID int64) ([]*model.BadgeRecord, error) {
	return s.badgeRepo.ListByUser(ctx, userID)
}
