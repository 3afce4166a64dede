package handler

import (
	"net/http"

	"yatube/internal/service"

	"github.com/gin-gonic/gin"
)

type FollowHandler struct {
	svc *service.FollowService
}

type followReq struct {
	Author string `json:"author" form:"author"`
}

func NewFollowHandler(svc *service.FollowService) *FollowHandler {
	return &FollowHandler{svc: svc}
}

// List 关注了当前用户的关系，?search= 按关注者用户名过滤
func (h *FollowHandler) List(c *gin.Context) {
	rows, err := h.svc.ListFollowers(c.Request.Context(), actor(c), c.Query("search"))
	if err != nil {
		abortAPI(c, err)
		return
	}
	out := make([]FollowJSON, 0, len(rows))
	for i := range rows {
		out = append(out, toFollowJSON(&rows[i]))
	}
	c.JSON(http.StatusOK, out)
}

// Create 当前用户关注 author，重复或关注自己返回 400
func (h *FollowHandler) Create(c *gin.Context) {
	var req followReq
	if err := c.ShouldBind(&req); err != nil {
		abortAPI(c, &service.ValidationError{Message: "Malformed request body."})
		return
	}
	f, err := h.svc.FollowStrict(c.Request.Context(), actor(c), req.Author)
	if err != nil {
		abortAPI(c, err)
		return
	}
	c.JSON(http.StatusCreated, toFollowJSON(f))
}
