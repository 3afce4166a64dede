package database

import (
	"context"
	"time"

	"yatube/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CommentRepository struct {
	DB *gorm.DB
}

// Create 评论和通知事件同一事务写入
func (r *CommentRepository) Create(ctx context.Context, c *model.Comment, event map[string]any) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(c).Error; err != nil {
			return err
		}
		return insertOutbox(tx, EventComment, c.AuthorID, c.PostID, event)
	})
}

func (r *CommentRepository) FindByID(ctx context.Context, postID, id uint64) (*model.Comment, error) {
	var c model.Comment
	err := r.DB.WithContext(ctx).
		Preload("Author").
		Where("id = ? AND post_id = ?", id, postID).
		First(&c).Error
	return &c, err
}

// ListByPost 评论按时间倒序
func (r *CommentRepository) ListByPost(ctx context.Context, postID uint64) ([]model.Comment, error) {
	var list []model.Comment
	err := r.DB.WithContext(ctx).
		Preload("Author").
		Where("post_id = ?", postID).
		Order("created_at DESC, id DESC").
		Find(&list).Error
	return list, err
}

func (r *CommentRepository) UpdateText(ctx context.Context, id uint64, text string) error {
	return r.DB.WithContext(ctx).Model(&model.Comment{ID: id}).
		Updates(map[string]any{"text": text, "updated_at": time.Now()}).Error
}

func (r *CommentRepository) Delete(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Delete(&model.Comment{}, id).Error
}
