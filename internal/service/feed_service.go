package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"yatube/internal/model"
	"yatube/internal/pkg"
	"yatube/internal/repository/database"

	"gorm.io/gorm"
)

// FeedCache 整页缓存。并发未命中时各自回填，后写覆盖先写
type FeedCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte) error
	Clear(ctx context.Context) error
}

type FeedService struct {
	posts    *database.PostRepository
	groups   *database.GroupRepository
	users    *database.UserRepository
	follows  *database.FollowRepository
	comments *database.CommentRepository
	cache    FeedCache
}

// Profile 作者主页
type Profile struct {
	Author     *model.User
	Page       *Page
	Following  bool
	Followers  int64
	Followings int64
}

// NewFeedService cache 为 nil 时全局流不走缓存
func NewFeedService(db *gorm.DB, cache FeedCache) *FeedService {
	return &FeedService{
		posts:    &database.PostRepository{DB: db},
		groups:   &database.GroupRepository{DB: db},
		users:    &database.UserRepository{DB: db},
		follows:  &database.FollowRepository{DB: db},
		comments: &database.CommentRepository{DB: db},
		cache:    cache,
	}
}

func GlobalFeedKey(number int) string {
	return fmt.Sprintf("feed:global:page:%d", number)
}

// GlobalFeed 全部帖子。新帖在缓存过期或 Clear 之前不可见
func (s *FeedService) GlobalFeed(ctx context.Context, number int) (*Page, error) {
	key := GlobalFeedKey(number)
	if s.cache != nil {
		raw, hit, err := s.cache.Get(ctx, key)
		switch {
		case err != nil:
			pkg.FeedCacheLookups.WithLabelValues("error").Inc()
			slog.WarnContext(ctx, "feed cache get", "key", key, "error", err)
		case hit:
			var page Page
			if err = json.Unmarshal(raw, &page); err == nil {
				pkg.FeedCacheLookups.WithLabelValues("hit").Inc()
				return &page, nil
			}
			slog.WarnContext(ctx, "feed cache decode", "key", key, "error", err)
		default:
			pkg.FeedCacheLookups.WithLabelValues("miss").Inc()
		}
	}

	page, err := paginate(ctx, s.posts, database.PostFilter{}, number)
	if err != nil {
		return nil, err
	}
	// 越界页号不回填，避免每个页号各存一份末页
	if s.cache != nil && page.Number == number {
		if raw, err := json.Marshal(page); err == nil {
			if err = s.cache.Set(ctx, key, raw); err != nil {
				slog.WarnContext(ctx, "feed cache set", "key", key, "error", err)
			}
		}
	}
	return page, nil
}

func (s *FeedService) ClearCache(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Clear(ctx)
}

func (s *FeedService) GroupFeed(ctx context.Context, slug string, number int) (*model.Group, *Page, error) {
	group, err := s.groups.FindBySlug(ctx, slug)
	if err != nil {
		return nil, nil, translate(err)
	}
	page, err := paginate(ctx, s.posts, database.PostFilter{GroupID: group.ID}, number)
	if err != nil {
		return nil, nil, err
	}
	return group, page, nil
}

// AuthorFeed 作者主页，actor 为 0 时 Following 恒为 false
func (s *FeedService) AuthorFeed(ctx context.Context, actor uint64, username string, number int) (*Profile, error) {
	author, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, translate(err)
	}
	page, err := paginate(ctx, s.posts, database.PostFilter{AuthorID: author.ID}, number)
	if err != nil {
		return nil, err
	}
	profile := &Profile{Author: author, Page: page}
	if actor != 0 && actor != author.ID {
		if profile.Following, err = s.follows.IsFollowing(ctx, actor, author.ID); err != nil {
			return nil, err
		}
	}
	if profile.Followers, err = s.follows.CountFollowers(ctx, author.ID); err != nil {
		return nil, err
	}
	if profile.Followings, err = s.follows.CountFollowings(ctx, author.ID); err != nil {
		return nil, err
	}
	return profile, nil
}

// FollowFeed actor 关注的作者的帖子
func (s *FeedService) FollowFeed(ctx context.Context, actor uint64, number int) (*Page, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	return paginate(ctx, s.posts, database.PostFilter{FollowerID: actor}, number)
}

// GetPost 帖子及其评论，作者与 username 不符时视为不存在
func (s *FeedService) GetPost(ctx context.Context, username string, postID uint64) (*model.Post, []model.Comment, error) {
	post, err := s.posts.FindByAuthor(ctx, username, postID)
	if err != nil {
		return nil, nil, translate(err)
	}
	comments, err := s.comments.ListByPost(ctx, post.ID)
	if err != nil {
		return nil, nil, err
	}
	return post, comments, nil
}
