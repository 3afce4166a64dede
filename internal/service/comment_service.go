package service

import (
	"context"

	"yatube/internal/model"
	"yatube/internal/repository/database"

	"gorm.io/gorm"
)

type CommentService struct {
	repo  *database.CommentRepository
	posts *database.PostRepository
	users *database.UserRepository
}

type commentInput struct {
	Text string `validate:"notblank"`
}

func NewCommentService(db *gorm.DB) *CommentService {
	return &CommentService{
		repo:  &database.CommentRepository{DB: db},
		posts: &database.PostRepository{DB: db},
		users: &database.UserRepository{DB: db},
	}
}

// CreateComment 作者和帖子由调用方上下文决定，同时写入评论通知事件
func (s *CommentService) CreateComment(ctx context.Context, actor, postID uint64, text string) (*model.Comment, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return nil, translate(err)
	}
	if err = check(commentInput{Text: text}); err != nil {
		return nil, err
	}
	author, err := s.users.FindByID(ctx, actor)
	if err != nil {
		return nil, translate(err)
	}

	c := &model.Comment{PostID: post.ID, AuthorID: actor, Text: text}
	event := map[string]any{
		"commenter":      author.Username,
		"post_id":        post.ID,
		"text":           text,
		"notify_user_id": post.AuthorID,
	}
	if err = s.repo.Create(ctx, c, event); err != nil {
		return nil, err
	}
	c.Author = *author
	return c, nil
}

// ListComments 评论按时间倒序
func (s *CommentService) ListComments(ctx context.Context, postID uint64) ([]model.Comment, error) {
	if _, err := s.posts.FindByID(ctx, postID); err != nil {
		return nil, translate(err)
	}
	return s.repo.ListByPost(ctx, postID)
}

func (s *CommentService) GetComment(ctx context.Context, postID, id uint64) (*model.Comment, error) {
	c, err := s.repo.FindByID(ctx, postID, id)
	if err != nil {
		return nil, translate(err)
	}
	return c, nil
}

func (s *CommentService) UpdateComment(ctx context.Context, actor, postID, id uint64, text string) (*model.Comment, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	c, err := s.GetComment(ctx, postID, id)
	if err != nil {
		return nil, err
	}
	if err = requireOwner(actor, c.AuthorID); err != nil {
		return nil, err
	}
	if err = check(commentInput{Text: text}); err != nil {
		return nil, err
	}
	if err = s.repo.UpdateText(ctx, id, text); err != nil {
		return nil, err
	}
	return s.GetComment(ctx, postID, id)
}

func (s *CommentService) DeleteComment(ctx context.Context, actor, postID, id uint64) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	c, err := s.GetComment(ctx, postID, id)
	if err != nil {
		return err
	}
	if err = requireOwner(actor, c.AuthorID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
