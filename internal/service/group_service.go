package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"yatube/internal/model"
	"yatube/internal/repository/database"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

const (
	slugMaxLen    = 40
	slugMaxTries  = 50
	fallbackGroup = "group"
)

type GroupService struct {
	repo *database.GroupRepository
}

type groupInput struct {
	Title string `validate:"notblank,max=200"`
}

func NewGroupService(db *gorm.DB) *GroupService {
	return &GroupService{repo: &database.GroupRepository{DB: db}}
}

func (s *GroupService) ListGroups(ctx context.Context) ([]model.Group, error) {
	return s.repo.List(ctx)
}

// CreateGroup slug 由标题生成，冲突时追加 -2、-3...
func (s *GroupService) CreateGroup(ctx context.Context, actor uint64, title, description string) (*model.Group, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	title = strings.TrimSpace(title)
	if err := check(groupInput{Title: title}); err != nil {
		return nil, err
	}

	base := slug.Make(title)
	if base == "" {
		base = fallbackGroup
	}
	for i := 1; i <= slugMaxTries; i++ {
		candidate := slugCandidate(base, i)
		exists, err := s.repo.SlugExists(ctx, candidate)
		if err != nil {
			return nil, err
		}
		if exists {
			continue
		}
		g := &model.Group{Title: title, Slug: candidate, Description: description}
		err = s.repo.Create(ctx, g)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return g, nil
	}
	return nil, invalid("title", "Could not derive a unique slug from this title.")
}

func slugCandidate(base string, n int) string {
	suffix := ""
	if n > 1 {
		suffix = fmt.Sprintf("-%d", n)
	}
	if len(base)+len(suffix) > slugMaxLen {
		base = strings.TrimRight(base[:slugMaxLen-len(suffix)], "-")
	}
	return base + suffix
}
