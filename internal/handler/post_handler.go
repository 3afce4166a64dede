package handler

import (
	"net/http"
	"strconv"

	"yatube/internal/service"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	svc *service.PostService
}

func NewPostHandler(svc *service.PostService) *PostHandler {
	return &PostHandler{svc: svc}
}

// List 帖子列表，?group=<id> 按分组过滤
func (h *PostHandler) List(c *gin.Context) {
	var groupID uint64
	if raw := c.Query("group"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			abortAPI(c, &service.ValidationError{Field: "group", Message: "Select a valid choice."})
			return
		}
		groupID = id
	}
	list, err := h.svc.ListPosts(c.Request.Context(), groupID)
	if err != nil {
		abortAPI(c, err)
		return
	}
	c.JSON(http.StatusOK, toPostsJSON(list))
}

func (h *PostHandler) Create(c *gin.Context) {
	p, err := bindPost(c)
	if err != nil {
		abortAPI(c, err)
		return
	}
	in := service.PostInput{GroupID: p.GroupID, Image: p.Image}
	if p.Text != nil {
		in.Text = *p.Text
	}
	post, err := h.svc.CreatePost(c.Request.Context(), actor(c), in)
	if err != nil {
		abortAPI(c, err)
		return
	}
	c.JSON(http.StatusCreated, toPostJSON(post))
}

func (h *PostHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		abortAPI(c, service.ErrNotFound)
		return
	}
	post, err := h.svc.GetPost(c.Request.Context(), id)
	if err != nil {
		abortAPI(c, err)
		return
	}
	c.JSON(http.StatusOK, toPostJSON(post))
}

// Update PUT 要求 text 字段，PATCH 只改提交的字段
func (h *PostHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		abortAPI(c, service.ErrNotFound)
		return
	}
	p, err := bindPost(c)
	if err != nil {
		abortAPI(c, err)
		return
	}
	if c.Request.Method == http.MethodPut {
		if p.Text == nil {
			empty := ""
			p.Text = &empty
		}
		if p.GroupID == nil {
			p.ClearGroup = true
		}
	}
	post, err := h.svc.UpdatePost(c.Request.Context(), actor(c), id, p.update())
	if err != nil {
		abortAPI(c, err)
		return
	}
	c.JSON(http.StatusOK, toPostJSON(post))
}

func (h *PostHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		abortAPI(c, service.ErrNotFound)
		return
	}
	if err := h.svc.DeletePost(c.Request.Context(), actor(c), id); err != nil {
		abortAPI(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
