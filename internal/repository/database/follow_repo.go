package database

import (
	"context"

	"yatube/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FollowRepository struct {
	DB *gorm.DB
}

// Follow 幂等地创建关注关系。新建时返回 changed=true 并写入 outbox
func (r *FollowRepository) Follow(ctx context.Context, userID, authorID uint64, event map[string]any) (bool, error) {
	var changed bool
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 唯一索引冲突时不插入，RowsAffected 为 0
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&model.Follow{UserID: userID, AuthorID: authorID})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		changed = true
		return insertOutbox(tx, EventFollow, userID, authorID, event)
	})
	return changed, err
}

// Unfollow 删除关注关系，不存在时返回 changed=false
func (r *FollowRepository) Unfollow(ctx context.Context, userID, authorID uint64) (bool, error) {
	var changed bool
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND author_id = ?", userID, authorID).Delete(&model.Follow{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		changed = true
		return insertOutbox(tx, EventUnfollow, userID, authorID, nil)
	})
	return changed, err
}

// IsFollowing 判断是否关注
func (r *FollowRepository) IsFollowing(ctx context.Context, userID, authorID uint64) (bool, error) {
	var n int64
	if err := r.DB.WithContext(ctx).
		Model(&model.Follow{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListFollowers 关注了 authorID 的关系列表，search 非空时按关注者用户名模糊匹配
func (r *FollowRepository) ListFollowers(ctx context.Context, authorID uint64, search string) ([]model.Follow, error) {
	q := r.DB.WithContext(ctx).
		Select("follows.*").
		Joins("JOIN users ON users.id = follows.user_id").
		Where("follows.author_id = ?", authorID)
	if search != "" {
		q = q.Where("LOWER(users.username) LIKE LOWER(?)", "%"+search+"%")
	}
	var rows []model.Follow
	err := q.Preload("User").Preload("Author").Order("follows.id DESC").Find(&rows).Error
	return rows, err
}

// CountFollowers 粉丝数
func (r *FollowRepository) CountFollowers(ctx context.Context, userID uint64) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&model.Follow{}).Where("author_id = ?", userID).Count(&n).Error
	return n, err
}

// CountFollowings 关注的人数
func (r *FollowRepository) CountFollowings(ctx context.Context, userID uint64) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&model.Follow{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}
