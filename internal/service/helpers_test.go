package service

import (
	"context"
	"testing"
	"time"

	"yatube/internal/model"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newUser(t *testing.T, db *gorm.DB, name string) *model.User {
	t.Helper()
	u := &model.User{Username: name, Password: "x", Email: name + "@example.com"}
	require.NoError(t, db.Create(u).Error)
	return u
}

func newGroup(t *testing.T, db *gorm.DB, slug string) *model.Group {
	t.Helper()
	g := &model.Group{Title: slug, Slug: slug}
	require.NoError(t, db.Create(g).Error)
	return g
}

// newPosts 依次创建 n 篇帖子，第 i 篇比第 i-1 篇晚一分钟
func newPosts(t *testing.T, db *gorm.DB, author uint64, group *uint64, n int) []model.Post {
	t.Helper()
	base := time.Now().Add(-24 * time.Hour)
	posts := make([]model.Post, 0, n)
	for i := 0; i < n; i++ {
		p := model.Post{
			Text:      "post",
			AuthorID:  author,
			GroupID:   group,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, db.Omit("Author", "Group").Create(&p).Error)
		posts = append(posts, p)
	}
	return posts
}

func postText(t *testing.T, db *gorm.DB, id uint64) string {
	t.Helper()
	var p model.Post
	require.NoError(t, db.WithContext(context.Background()).First(&p, id).Error)
	return p.Text
}
