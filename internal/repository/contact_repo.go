package repository

import (
	"context"
	"errors"

	"livesystem/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrContactNotFound = errors.New("联系人不存在")

type ContactRepository struct {
	db *gorm.DB
}

func NewContactRepository(db *gorm.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

// Upsert 写一条有向边，已存在则只更新类型
func (r *ContactRepository) Upsert(ctx context.Context, contact *model.Contact) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "author_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"type"}),
		}).
		Create(contact).Error
}

func (r *ContactRepository) Get(ctx context.Context, authorID, userID int64) (*model.Contact, error) {
	var contact model.Contact
	err := r.db.WithContext(ctx).
		Where("author_id = ? AND user_id = ?", authorID, userID).
		First(&contact).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContactNotFound
		}
		return nil, err
	}
	return &contact, nil
}

func (r *ContactRepository) Delete(ctx context.Context, authorID, userID int64) error {
	return r.db.WithContext(ctx).
		Where("author_id = ? AND user_id = ?", authorID, userID).
		Delete(&model.Contact{}).Error
}

// ListByAuthor 某人发出的全部边
func (r *ContactRepository) ListByAuthor(ctx context.Context, authorID int64) ([]*model.Contact, error) {
	var contacts []*model.Contact
	err := r.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Find(&contacts).Error
	return contacts, err
}

// ListFriendIDs 好友 = 双向 OPEN 边的交集
func (r *ContactRepository) ListFriendIDs(ctx context.Context, userID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&model.Contact{}).
		Select("contact.user_id").
		Joins("JOIN contact AS back ON back.author_id = contact.user_id AND back.user_id = contact.author_id").
		Where("contact.author_id = ? AND contact.type = ? AND back.type = ?",
			userID, model.ContactTypeOpen, model.ContactTypeOpen).
		Pluck("contact.user_id", &ids).Error
	return ids, err
}

// IsFriend 两人是否互为 OPEN
func (r *ContactRepository) IsFriend(ctx context.Context, a, b int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Contact{}).
		Where("(author_id = ? AND user_id = ? AND type = ?) OR (author_id = ? AND user_id = ? AND type = ?)",
			a, b, model.ContactTypeOpen, b, a, model.ContactTypeOpen).
		Count(&count).Error
	return count == 2, err
}
