package service

import (
	"context"
	"errors"
	"strings"

	"yatube/internal/model"
	"yatube/internal/repository/database"

	"gorm.io/gorm"
)

type FollowService struct {
	repo  *database.FollowRepository
	users *database.UserRepository
}

func NewFollowService(db *gorm.DB) *FollowService {
	return &FollowService{
		repo:  &database.FollowRepository{DB: db},
		users: &database.UserRepository{DB: db},
	}
}

// Follow 关注自己或重复关注直接忽略
func (s *FollowService) Follow(ctx context.Context, actor uint64, username string) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	author, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return translate(err)
	}
	if author.ID == actor {
		return nil
	}
	_, err = s.repo.Follow(ctx, actor, author.ID, s.followEvent(ctx, actor, author.ID))
	return err
}

// FollowStrict 与 Follow 相同，但自我关注、重复关注和未知用户都返回 ValidationError
func (s *FollowService) FollowStrict(ctx context.Context, actor uint64, username string) (*model.Follow, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, invalid("author", "This field is required.")
	}
	author, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalid("author", "Object with username="+username+" does not exist.")
		}
		return nil, err
	}
	if author.ID == actor {
		return nil, invalid("", "You cannot follow yourself.")
	}
	changed, err := s.repo.Follow(ctx, actor, author.ID, s.followEvent(ctx, actor, author.ID))
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, invalid("", "This follow already exists.")
	}
	user, err := s.users.FindByID(ctx, actor)
	if err != nil {
		return nil, translate(err)
	}
	return &model.Follow{UserID: actor, User: *user, AuthorID: author.ID, Author: *author}, nil
}

// Unfollow 关系不存在时返回 ErrNotFound
func (s *FollowService) Unfollow(ctx context.Context, actor uint64, username string) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	author, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return translate(err)
	}
	changed, err := s.repo.Unfollow(ctx, actor, author.ID)
	if err != nil {
		return err
	}
	if !changed {
		return ErrNotFound
	}
	return nil
}

func (s *FollowService) IsFollowing(ctx context.Context, actor, authorID uint64) (bool, error) {
	if actor == 0 {
		return false, nil
	}
	return s.repo.IsFollowing(ctx, actor, authorID)
}

// ListFollowers 关注了 actor 的关系，search 按关注者用户名过滤
func (s *FollowService) ListFollowers(ctx context.Context, actor uint64, search string) ([]model.Follow, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	return s.repo.ListFollowers(ctx, actor, strings.TrimSpace(search))
}

func (s *FollowService) followEvent(ctx context.Context, actor, authorID uint64) map[string]any {
	event := map[string]any{"notify_user_id": authorID}
	if u, err := s.users.FindByID(ctx, actor); err == nil {
		event["follower"] = u.Username
	}
	return event
}
