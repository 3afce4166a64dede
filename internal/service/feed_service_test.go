package service

import (
	"context"
	"testing"
	"time"

	"yatube/internal/model"
	"yatube/internal/repository/database"
	"yatube/internal/repository/redis"
	"yatube/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGlobalFeedCache(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	rdb, mr := testutil.NewRedis(t)
	feed := NewFeedService(db, redis.NewPageCache(rdb, 20*time.Second))
	posts := NewPostService(db, nil)
	leo := newUser(t, db, "leo")
	newPosts(t, db, leo.ID, nil, 1)

	page, err := feed.GlobalFeed(ctx, 1)
	require.NoError(t, err)
	require.Len(t, page.Posts, 1)
	assert.Equal(t, "leo", page.Posts[0].Author.Username)

	// 缓存中不含作者的邮箱和密码
	raw, err := mr.Get(redis.PageCachePrefix + GlobalFeedKey(1))
	require.NoError(t, err)
	assert.Contains(t, raw, `"Username":"leo"`)
	assert.NotContains(t, raw, "leo@example.com")
	assert.NotContains(t, raw, "Password")

	created, err := posts.CreatePost(ctx, leo.ID, PostInput{Text: "fresh"})
	require.NoError(t, err)

	cached, err := feed.GlobalFeed(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, cached.Posts, 1, "new post is absent until the cache is cleared")

	require.NoError(t, feed.ClearCache(ctx))
	fresh, err := feed.GlobalFeed(ctx, 1)
	require.NoError(t, err)
	require.Len(t, fresh.Posts, 2)
	assert.Equal(t, created.ID, fresh.Posts[0].ID)

	_, err = posts.CreatePost(ctx, leo.ID, PostInput{Text: "later"})
	require.NoError(t, err)
	mr.FastForward(21 * time.Second)
	expired, err := feed.GlobalFeed(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, expired.Posts, 3)
}

func TestGlobalFeedCachesOnlyInRangePages(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	rdb, mr := testutil.NewRedis(t)
	feed := NewFeedService(db, redis.NewPageCache(rdb, 20*time.Second))
	leo := newUser(t, db, "leo")
	newPosts(t, db, leo.ID, nil, 11)

	for _, n := range []int{0, 99} {
		page, err := feed.GlobalFeed(ctx, n)
		require.NoError(t, err)
		assert.Equal(t, 2, page.Number)
		assert.Len(t, page.Posts, 1)
		assert.False(t, mr.Exists(redis.PageCachePrefix+GlobalFeedKey(n)))
	}

	_, err := feed.GlobalFeed(ctx, 2)
	require.NoError(t, err)
	assert.True(t, mr.Exists(redis.PageCachePrefix+GlobalFeedKey(2)))
	assert.Len(t, mr.Keys(), 1)
}

func TestGlobalFeedWithoutCache(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	feed := NewFeedService(db, nil)
	leo := newUser(t, db, "leo")
	newPosts(t, db, leo.ID, nil, 2)

	page, err := feed.GlobalFeed(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, page.Posts, 2)
	assert.NoError(t, feed.ClearCache(ctx))
}

func TestGroupFeed(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	feed := NewFeedService(db, nil)
	leo := newUser(t, db, "leo")
	cats := newGroup(t, db, "cats")
	newPosts(t, db, leo.ID, &cats.ID, 3)
	newPosts(t, db, leo.ID, nil, 2)

	group, page, err := feed.GroupFeed(ctx, "cats", 1)
	require.NoError(t, err)
	assert.Equal(t, cats.ID, group.ID)
	assert.Len(t, page.Posts, 3)

	_, _, err = feed.GroupFeed(ctx, "dogs", 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAuthorFeed(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	feed := NewFeedService(db, nil)
	follows := NewFollowService(db)
	leo := newUser(t, db, "leo")
	ann := newUser(t, db, "ann")
	newPosts(t, db, leo.ID, nil, 12)
	newPosts(t, db, ann.ID, nil, 1)
	require.NoError(t, follows.Follow(ctx, ann.ID, "leo"))

	profile, err := feed.AuthorFeed(ctx, ann.ID, "leo", 2)
	require.NoError(t, err)
	assert.Equal(t, leo.ID, profile.Author.ID)
	assert.True(t, profile.Following)
	assert.EqualValues(t, 1, profile.Followers)
	assert.EqualValues(t, 0, profile.Followings)
	assert.EqualValues(t, 12, profile.Page.Total)
	assert.Len(t, profile.Page.Posts, 2)

	anon, err := feed.AuthorFeed(ctx, 0, "leo", 1)
	require.NoError(t, err)
	assert.False(t, anon.Following)

	_, err = feed.AuthorFeed(ctx, 0, "ghost", 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFollowFeed(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	feed := NewFeedService(db, nil)
	follows := NewFollowService(db)
	posts := NewPostService(db, nil)
	leo := newUser(t, db, "leo")
	ann := newUser(t, db, "ann")
	bob := newUser(t, db, "bob")

	_, err := feed.FollowFeed(ctx, 0, 1)
	assert.ErrorIs(t, err, ErrUnauthorized)

	require.NoError(t, follows.Follow(ctx, ann.ID, "leo"))
	p, err := posts.CreatePost(ctx, leo.ID, PostInput{Text: "for followers"})
	require.NoError(t, err)

	annFeed, err := feed.FollowFeed(ctx, ann.ID, 1)
	require.NoError(t, err)
	require.Len(t, annFeed.Posts, 1)
	assert.Equal(t, p.ID, annFeed.Posts[0].ID)

	bobFeed, err := feed.FollowFeed(ctx, bob.ID, 1)
	require.NoError(t, err)
	assert.Empty(t, bobFeed.Posts)

	// 取关之后作者的新帖不再出现
	require.NoError(t, follows.Unfollow(ctx, ann.ID, "leo"))
	after, err := posts.CreatePost(ctx, leo.ID, PostInput{Text: "after unfollow"})
	require.NoError(t, err)
	annFeed, err = feed.FollowFeed(ctx, ann.ID, 1)
	require.NoError(t, err)
	for _, fp := range annFeed.Posts {
		assert.NotEqual(t, after.ID, fp.ID)
	}
	assert.Empty(t, annFeed.Posts)
}

func TestGetPost(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	feed := NewFeedService(db, nil)
	comments := NewCommentService(db)
	leo := newUser(t, db, "leo")
	newUser(t, db, "ann")
	p := newPosts(t, db, leo.ID, nil, 1)[0]
	c1, err := comments.CreateComment(ctx, leo.ID, p.ID, "one")
	require.NoError(t, err)
	c2, err := comments.CreateComment(ctx, leo.ID, p.ID, "two")
	require.NoError(t, err)
	require.NoError(t, db.Model(&model.Comment{}).Where("id = ?", c1.ID).
		UpdateColumn("created_at", time.Now().Add(-time.Hour)).Error)

	post, list, err := feed.GetPost(ctx, "leo", p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, post.ID)
	require.Len(t, list, 2)
	assert.Equal(t, c2.ID, list[0].ID)

	_, _, err = feed.GetPost(ctx, "ann", p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, _, err = feed.GetPost(ctx, "leo", p.ID+100)
	assert.ErrorIs(t, err, ErrNotFound)

	var n int64
	require.NoError(t, db.Model(&model.SocialOutbox{}).Where("event_type = ?", database.EventComment).Count(&n).Error)
	assert.EqualValues(t, 2, n)
}
