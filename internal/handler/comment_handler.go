package handler

import (
	"net/http"

	"yatube/internal/service"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	svc *service.CommentService
}

type commentReq struct {
	Text *string `json:"text" form:"text"`
}

func NewCommentHandler(svc *service.CommentService) *CommentHandler {
	return &CommentHandler{svc: svc}
}

func (h *CommentHandler) List(c *gin.Context) {
	postID, ok := idParam(c, "id")
	if !ok {
		abortAPI(c, service.ErrNotFound)
		return
	}
	list, err := h.svc.ListComments(c.Request.Context(), postID)
	if err != nil {
		abortAPI(c, err)
		return
	}
	out := make([]CommentJSON, 0, len(list))
	for i := range list {
		out = append(out, toCommentJSON(&list[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *CommentHandler) Create(c *gin.Context) {
	postID, ok := idParam(c, "id")
	if !ok {
		abortAPI(c, service.ErrNotFound)
		return
	}
	var req commentReq
	if err := c.ShouldBind(&req); err != nil {
		abortAPI(c, &service.ValidationError{Message: "Malformed request body."})
		return
	}
	cm, err := h.svc.CreateComment(c.Request.Context(), actor(c), postID, deref(req.Text))
	if err != nil {
		abortAPI(c, err)
		return
	}
	c.JSON(http.StatusCreated, toCommentJSON(cm))
}

func (h *CommentHandler) Get(c *gin.Context) {
	postID, ok1 := idParam(c, "id")
	id, ok2 := idParam(c, "cid")
	if !ok1 || !ok2 {
		abortAPI(c, service.ErrNotFound)
		return
	}
	cm, err := h.svc.GetComment(c.Request.Context(), postID, id)
	if err != nil {
		abortAPI(c, err)
		return
	}
	c.JSON(http.StatusOK, toCommentJSON(cm))
}

// Update PUT 和 PATCH 都只允许修改 text
func (h *CommentHandler) Update(c *gin.Context) {
	postID, ok1 := idParam(c, "id")
	id, ok2 := idParam(c, "cid")
	if !ok1 || !ok2 {
		abortAPI(c, service.ErrNotFound)
		return
	}
	var req commentReq
	if err := c.ShouldBind(&req); err != nil {
		abortAPI(c, &service.ValidationError{Message: "Malformed request body."})
		return
	}
	ctx := c.Request.Context()
	if req.Text == nil && c.Request.Method == http.MethodPatch {
		cm, err := h.svc.GetComment(ctx, postID, id)
		if err != nil {
			abortAPI(c, err)
			return
		}
		req.Text = &cm.Text
	}
	cm, err := h.svc.UpdateComment(ctx, actor(c), postID, id, deref(req.Text))
	if err != nil {
		abortAPI(c, err)
		return
	}
	c.JSON(http.StatusOK, toCommentJSON(cm))
}

func (h *CommentHandler) Delete(c *gin.Context) {
	postID, ok1 := idParam(c, "id")
	id, ok2 := idParam(c, "cid")
	if !ok1 || !ok2 {
		abortAPI(c, service.ErrNotFound)
		return
	}
	if err := h.svc.DeleteComment(c.Request.Context(), actor(c), postID, id); err != nil {
		abortAPI(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
