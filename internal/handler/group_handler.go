package handler

import (
	"net/http"

	"yatube/internal/service"

	"github.com/gin-gonic/gin"
)

type GroupHandler struct {
	svc *service.GroupService
}

type groupReq struct {
	Title       string `json:"title" form:"title"`
	Description string `json:"description" form:"description"`
}

func NewGroupHandler(svc *service.GroupService) *GroupHandler {
	return &GroupHandler{svc: svc}
}

func (h *GroupHandler) List(c *gin.Context) {
	list, err := h.svc.ListGroups(c.Request.Context())
	if err != nil {
		abortAPI(c, err)
		return
	}
	out := make([]GroupJSON, 0, len(list))
	for _, g := range list {
		out = append(out, GroupJSON{Title: g.Title})
	}
	c.JSON(http.StatusOK, out)
}

// Create 只需标题，slug 自动生成
func (h *GroupHandler) Create(c *gin.Context) {
	var req groupReq
	if err := c.ShouldBind(&req); err != nil {
		abortAPI(c, &service.ValidationError{Message: "Malformed request body."})
		return
	}
	g, err := h.svc.CreateGroup(c.Request.Context(), actor(c), req.Title, req.Description)
	if err != nil {
		abortAPI(c, err)
		return
	}
	c.JSON(http.StatusCreated, GroupJSON{Title: g.Title})
}
