package service

import (
	"context"
	"errors"
	"log/slog"
	"mime/multipart"

	"yatube/internal/model"
	"yatube/internal/pkg"
	"yatube/internal/repository/database"

	"gorm.io/gorm"
)

type PostService struct {
	repo   *database.PostRepository
	groups *database.GroupRepository
	media  *pkg.MediaStore
}

// PostInput 新建帖子
type PostInput struct {
	Text    string `validate:"notblank"`
	GroupID *uint64
	Image   *multipart.FileHeader
}

// PostUpdate nil 字段保持原值；ClearGroup 表示移出分组
type PostUpdate struct {
	Text       *string
	GroupID    *uint64
	ClearGroup bool
	Image      *multipart.FileHeader
}

func NewPostService(db *gorm.DB, media *pkg.MediaStore) *PostService {
	return &PostService{
		repo:   &database.PostRepository{DB: db},
		groups: &database.GroupRepository{DB: db},
		media:  media,
	}
}

// CreatePost 作者总是 actor
func (s *PostService) CreatePost(ctx context.Context, actor uint64, in PostInput) (*model.Post, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := check(in); err != nil {
		return nil, err
	}
	if err := s.checkGroup(ctx, in.GroupID); err != nil {
		return nil, err
	}

	post := &model.Post{
		Text:     in.Text,
		AuthorID: actor,
		GroupID:  in.GroupID,
	}
	if in.Image != nil {
		rel, err := s.saveImage(in.Image)
		if err != nil {
			return nil, err
		}
		post.Image = rel
	}
	if err := s.repo.Create(ctx, post); err != nil {
		_ = s.media.Remove(post.Image)
		return nil, err
	}
	return s.GetPost(ctx, post.ID)
}

func (s *PostService) GetPost(ctx context.Context, id uint64) (*model.Post, error) {
	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	return post, nil
}

// GetByAuthor 帖子必须属于 username
func (s *PostService) GetByAuthor(ctx context.Context, username string, id uint64) (*model.Post, error) {
	post, err := s.repo.FindByAuthor(ctx, username, id)
	if err != nil {
		return nil, translate(err)
	}
	return post, nil
}

// ListPosts groupID 为 0 时不过滤
func (s *PostService) ListPosts(ctx context.Context, groupID uint64) ([]model.Post, error) {
	return s.repo.List(ctx, database.PostFilter{GroupID: groupID}, 0, 0)
}

// UpdatePost 仅作者可改，作者字段不会变化；只有上传了新图片才替换
func (s *PostService) UpdatePost(ctx context.Context, actor, id uint64, in PostUpdate) (*model.Post, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	if err = requireOwner(actor, post.AuthorID); err != nil {
		return nil, err
	}

	if in.Text != nil {
		post.Text = *in.Text
	}
	if err = check(PostInput{Text: post.Text}); err != nil {
		return nil, err
	}
	switch {
	case in.ClearGroup:
		post.GroupID = nil
	case in.GroupID != nil:
		if err = s.checkGroup(ctx, in.GroupID); err != nil {
			return nil, err
		}
		post.GroupID = in.GroupID
	}

	oldImage := post.Image
	if in.Image != nil {
		if post.Image, err = s.saveImage(in.Image); err != nil {
			return nil, err
		}
	}
	if err = s.repo.Update(ctx, post); err != nil {
		if post.Image != oldImage {
			_ = s.media.Remove(post.Image)
		}
		return nil, err
	}
	if post.Image != oldImage {
		if err = s.media.Remove(oldImage); err != nil {
			slog.WarnContext(ctx, "remove replaced image", "path", oldImage, "error", err)
		}
	}
	return s.GetPost(ctx, post.ID)
}

// DeletePost 仅作者可删，评论和点赞随帖子级联删除
func (s *PostService) DeletePost(ctx context.Context, actor, id uint64) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return translate(err)
	}
	if err = requireOwner(actor, post.AuthorID); err != nil {
		return err
	}
	if err = s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if err = s.media.Remove(post.Image); err != nil {
		slog.WarnContext(ctx, "remove post image", "path", post.Image, "error", err)
	}
	return nil
}

func (s *PostService) checkGroup(ctx context.Context, groupID *uint64) error {
	if groupID == nil {
		return nil
	}
	if _, err := s.groups.FindByID(ctx, *groupID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return invalid("group", "Select a valid choice. That choice is not one of the available choices.")
		}
		return err
	}
	return nil
}

func (s *PostService) saveImage(fh *multipart.FileHeader) (string, error) {
	rel, err := s.media.SavePostImage(fh)
	if errors.Is(err, pkg.ErrNotImage) {
		return "", invalid("image", "Upload a valid image. The file you uploaded was either not an image or a corrupted image.")
	}
	return rel, err
}
