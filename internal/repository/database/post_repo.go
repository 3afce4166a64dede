package database

import (
	"context"
	"time"

	"yatube/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostRepository struct {
	DB *gorm.DB
}

// PostFilter 零值字段不参与过滤
type PostFilter struct {
	GroupID  uint64
	AuthorID uint64
	// FollowerID 非零时只返回该用户关注的作者的帖子
	FollowerID uint64
}

func (r *PostRepository) Create(ctx context.Context, post *model.Post) error {
	return r.DB.WithContext(ctx).Omit(clause.Associations).Create(post).Error
}

func (r *PostRepository) FindByID(ctx context.Context, id uint64) (*model.Post, error) {
	var post model.Post
	err := r.DB.WithContext(ctx).
		Preload("Author").
		Preload("Group").
		First(&post, id).Error
	return &post, err
}

// FindByAuthor 帖子必须属于 username 对应的用户
func (r *PostRepository) FindByAuthor(ctx context.Context, username string, id uint64) (*model.Post, error) {
	var post model.Post
	err := r.DB.WithContext(ctx).
		Select("posts.*").
		Joins("JOIN users ON users.id = posts.author_id").
		Where("posts.id = ? AND users.username = ?", id, username).
		Preload("Author").
		Preload("Group").
		First(&post).Error
	return &post, err
}

// Update 只更新正文、分组和图片，作者字段永不写入
func (r *PostRepository) Update(ctx context.Context, post *model.Post) error {
	return r.DB.WithContext(ctx).
		Model(&model.Post{ID: post.ID}).
		Select("text", "group_id", "image", "updated_at").
		Updates(map[string]any{
			"text":       post.Text,
			"group_id":   post.GroupID,
			"image":      post.Image,
			"updated_at": time.Now(),
		}).Error
}

func (r *PostRepository) Delete(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Delete(&model.Post{}, id).Error
}

func (r *PostRepository) Count(ctx context.Context, f PostFilter) (int64, error) {
	var total int64
	err := r.filtered(ctx, f).Count(&total).Error
	return total, err
}

// List 按发布时间倒序，limit<=0 时不限条数
func (r *PostRepository) List(ctx context.Context, f PostFilter, offset, limit int) ([]model.Post, error) {
	q := r.filtered(ctx, f).
		Select("posts.*").
		Preload("Author").
		Preload("Group").
		Order("posts.created_at DESC, posts.id DESC").
		Offset(offset)
	if limit > 0 {
		q = q.Limit(limit)
	}
	var list []model.Post
	err := q.Find(&list).Error
	return list, err
}

func (r *PostRepository) filtered(ctx context.Context, f PostFilter) *gorm.DB {
	q := r.DB.WithContext(ctx).Model(&model.Post{})
	if f.FollowerID != 0 {
		// 关注流：posts 与 follows 按作者显式连接
		q = q.Joins("JOIN follows ON follows.author_id = posts.author_id").
			Where("follows.user_id = ?", f.FollowerID)
	}
	if f.GroupID != 0 {
		q = q.Where("posts.group_id = ?", f.GroupID)
	}
	if f.AuthorID != 0 {
		q = q.Where("posts.author_id = ?", f.AuthorID)
	}
	return q
}
