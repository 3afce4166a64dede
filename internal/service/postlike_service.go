package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"yatube/internal/repository/database"
	"yatube/internal/repository/redis"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type PostLikeService struct {
	repo      *database.PostLikeRepository
	posts     *database.PostRepository
	likeCache *redis.LikeCacheRepository
	lock      *redis.DistLock
}

// NewPostLikeService rdb 为 nil 时只读写数据库
func NewPostLikeService(db *gorm.DB, rdb *goredis.Client) *PostLikeService {
	s := &PostLikeService{
		repo:  &database.PostLikeRepository{DB: db},
		posts: &database.PostRepository{DB: db},
	}
	if rdb != nil {
		s.likeCache = redis.NewLikeCacheRepository(rdb)
		s.lock = &redis.DistLock{RDB: rdb}
	}
	return s
}

// Like 幂等点赞，先写库再更新缓存
func (s *PostLikeService) Like(ctx context.Context, actor, postID uint64) (bool, error) {
	if err := requireActor(actor); err != nil {
		return false, err
	}
	if _, err := s.posts.FindByID(ctx, postID); err != nil {
		return false, translate(err)
	}
	changed, err := s.repo.Like(ctx, actor, postID)
	if err != nil {
		return false, err
	}
	if s.likeCache == nil {
		return changed, nil
	}
	if !changed {
		s.likeCache.WarmIsLiked(ctx, actor, postID, true)
		return false, nil
	}
	_ = s.likeCache.AddLike(ctx, actor, postID)
	s.refreshCount(ctx, actor, postID)
	return true, nil
}

func (s *PostLikeService) Unlike(ctx context.Context, actor, postID uint64) (bool, error) {
	if err := requireActor(actor); err != nil {
		return false, err
	}
	if _, err := s.posts.FindByID(ctx, postID); err != nil {
		return false, translate(err)
	}
	changed, err := s.repo.Unlike(ctx, actor, postID)
	if err != nil {
		return false, err
	}
	if s.likeCache == nil {
		return changed, nil
	}
	if !changed {
		s.likeCache.WarmIsLiked(ctx, actor, postID, false)
		return false, nil
	}
	_ = s.likeCache.RemoveLike(ctx, actor, postID)
	s.refreshCount(ctx, actor, postID)
	return true, nil
}

// refreshCount 拿到锁就用库里的值覆盖计数，拿不到锁删掉计数交给读侧回填
func (s *PostLikeService) refreshCount(ctx context.Context, actor, postID uint64) {
	token := lockToken(actor, postID)
	got, _ := s.lock.Acquire(ctx, postID, token)
	if !got {
		_ = s.likeCache.DeleteCount(ctx, postID)
		return
	}
	defer s.release(ctx, postID, token)

	n, err := s.repo.GetLikeCount(ctx, postID)
	if err != nil || s.likeCache.SetLikeCount(ctx, postID, n) != nil {
		_ = s.likeCache.DeleteCount(ctx, postID)
	}
}

// IsLiked 优先查缓存集合，未命中回源数据库
func (s *PostLikeService) IsLiked(ctx context.Context, actor, postID uint64) (bool, error) {
	if actor == 0 {
		return false, nil
	}
	if s.likeCache != nil {
		if b, ok, err := s.likeCache.IsLikedCached(ctx, actor, postID); err == nil && ok {
			return b, nil
		}
	}
	b, err := s.repo.IsLiked(ctx, actor, postID)
	if err == nil && s.likeCache != nil {
		s.likeCache.WarmIsLiked(ctx, actor, postID, b)
	}
	return b, err
}

// LikeCount 缓存未命中时加锁回源，避免并发打到数据库
func (s *PostLikeService) LikeCount(ctx context.Context, actor, postID uint64) (int64, error) {
	if s.likeCache == nil {
		return s.count(ctx, postID)
	}
	if v, ok, err := s.likeCache.GetLikeCountCached(ctx, postID); err == nil && ok {
		return v, nil
	}

	token := lockToken(actor, postID)
	got, _ := s.lock.Acquire(ctx, postID, token)
	if got {
		defer s.release(ctx, postID, token)
		// 二次检查
		if v, ok, err := s.likeCache.GetLikeCountCached(ctx, postID); err == nil && ok {
			return v, nil
		}
		v, err := s.count(ctx, postID)
		if err != nil {
			return 0, err
		}
		_ = s.likeCache.SetLikeCount(ctx, postID, v)
		return v, nil
	}

	// 没拿到锁，短暂退避后再读一次缓存
	time.Sleep(50 * time.Millisecond)
	if v, ok, err := s.likeCache.GetLikeCountCached(ctx, postID); err == nil && ok {
		return v, nil
	}
	return s.count(ctx, postID)
}

func (s *PostLikeService) count(ctx context.Context, postID uint64) (int64, error) {
	n, err := s.repo.GetLikeCount(ctx, postID)
	return n, translate(err)
}

func (s *PostLikeService) release(ctx context.Context, postID uint64, token string) {
	if err := s.lock.Release(ctx, postID, token); err != nil {
		slog.WarnContext(ctx, "release like lock", "post_id", postID, "error", err)
	}
}

func lockToken(actor, postID uint64) string {
	return fmt.Sprintf("%d-%d-%d", actor, postID, time.Now().UnixNano())
}
