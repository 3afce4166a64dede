package service

import (
	"context"
	"strconv"

	"yatube/internal/model"
	"yatube/internal/repository/database"
)

const PageSize = 10

// Page 一页帖子
type Page struct {
	Posts    []model.Post `json:"posts"`
	Number   int          `json:"number"`
	NumPages int          `json:"num_pages"`
	Total    int64        `json:"total"`
}

func (p *Page) HasNext() bool { return p.Number < p.NumPages }
func (p *Page) HasPrev() bool { return p.Number > 1 }
func (p *Page) NextNumber() int {
	return p.Number + 1
}
func (p *Page) PrevNumber() int {
	return p.Number - 1
}

// Range 1..NumPages，模板渲染页码用
func (p *Page) Range() []int {
	out := make([]int, p.NumPages)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

// ParsePage 缺失或非数字时返回 1，越界交给 paginate 处理
func ParsePage(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 1
	}
	return n
}

// paginate 页码小于 1 或超过末页时返回末页，空结果也有第 1 页
func paginate(ctx context.Context, repo *database.PostRepository, f database.PostFilter, number int) (*Page, error) {
	total, err := repo.Count(ctx, f)
	if err != nil {
		return nil, err
	}
	numPages := int((total + PageSize - 1) / PageSize)
	if numPages < 1 {
		numPages = 1
	}
	if number < 1 || number > numPages {
		number = numPages
	}
	page := &Page{Number: number, NumPages: numPages, Total: total, Posts: []model.Post{}}
	if total == 0 {
		return page, nil
	}
	page.Posts, err = repo.List(ctx, f, (number-1)*PageSize, PageSize)
	if err != nil {
		return nil, err
	}
	return page, nil
}
