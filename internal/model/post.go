package model

import "time"

type Post struct {
	ID        uint64    `gorm:"primaryKey"`
	Text      string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"index:idx_post_time_id,priority:1,sort:desc"`
	UpdatedAt time.Time
	AuthorID  uint64  `gorm:"not null;index:idx_author_time"`
	Author    User    `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	GroupID   *uint64 `gorm:"index"`
	Group     *Group  `gorm:"foreignKey:GroupID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
	Image     string  `gorm:"size:255"` // 相对 MEDIA_ROOT 的路径，空表示无图
	LikeCount int64   `gorm:"not null;default:0"`
}

// InGroup 帖子是否属于某个分组
func (p *Post) InGroup() bool {
	return p.GroupID != nil
}
