package handler

import (
	"net/http"

	"yatube/internal/service"

	"github.com/gin-gonic/gin"
)

type PostLikeHandler struct {
	svc *service.PostLikeService
}

func NewPostLikeHandler(svc *service.PostLikeService) *PostLikeHandler {
	return &PostLikeHandler{svc: svc}
}

func (h *PostLikeHandler) Like(c *gin.Context) {
	h.toggle(c, true)
}

func (h *PostLikeHandler) Unlike(c *gin.Context) {
	h.toggle(c, false)
}

func (h *PostLikeHandler) toggle(c *gin.Context, like bool) {
	postID, ok := idParam(c, "id")
	if !ok {
		abortAPI(c, service.ErrNotFound)
		return
	}
	ctx := c.Request.Context()
	uid := actor(c)

	var (
		changed bool
		err     error
	)
	if like {
		changed, err = h.svc.Like(ctx, uid, postID)
	} else {
		changed, err = h.svc.Unlike(ctx, uid, postID)
	}
	if err != nil {
		abortAPI(c, err)
		return
	}
	count, err := h.svc.LikeCount(ctx, uid, postID)
	if err != nil {
		abortAPI(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"liked": like, "changed": changed, "like_count": count})
}
