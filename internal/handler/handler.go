package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"yatube/internal/middleware"
	"yatube/internal/service"

	"github.com/gin-gonic/gin"
)

func actor(c *gin.Context) uint64 {
	return middleware.Actor(c)
}

// idParam 解析路径中的数字 ID，非法值当作不存在
func idParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}

// abortAPI 把 service 错误映射成 JSON 响应
func abortAPI(c *gin.Context, err error) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		field := ve.Field
		if field == "" {
			field = "non_field_errors"
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{field: []string{ve.Message}})
	case errors.Is(err, service.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"detail": "Not found."})
	case errors.Is(err, service.ErrUnauthorized):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"detail": err.Error()})
	default:
		_ = c.Error(err)
		slog.ErrorContext(c.Request.Context(), "api request failed", "path", c.Request.URL.Path, "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "internal server error"})
	}
}

// abortPage 页面请求的错误处理：未登录跳转登录页，其余渲染错误页
func abortPage(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		c.Redirect(http.StatusFound, middleware.LoginURL(c.Request.URL.RequestURI()))
		c.Abort()
	case errors.Is(err, service.ErrNotFound):
		NotFoundPage(c)
	case errors.Is(err, service.ErrForbidden):
		render(c, http.StatusForbidden, "403.html", gin.H{"path": c.Request.URL.Path})
		c.Abort()
	default:
		_ = c.Error(err)
		slog.ErrorContext(c.Request.Context(), "page request failed", "path", c.Request.URL.Path, "error", err)
		ServerErrorPage(c)
	}
}

// render 注入当前登录用户后渲染模板
func render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["user"] = middleware.Username(c)
	data["user_id"] = actor(c)
	c.HTML(status, name, data)
}

func NotFoundPage(c *gin.Context) {
	render(c, http.StatusNotFound, "404.html", gin.H{"path": c.Request.URL.Path})
	c.Abort()
}

func ServerErrorPage(c *gin.Context) {
	render(c, http.StatusInternalServerError, "500.html", nil)
	c.Abort()
}

// NoRoute API 路径返回 JSON，其余返回 404 页面
func NoRoute(c *gin.Context) {
	if isAPI(c) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}
	NotFoundPage(c)
}

// Recovery panic 之后的兜底响应
func Recovery(c *gin.Context, recovered any) {
	slog.ErrorContext(c.Request.Context(), "panic recovered", "path", c.Request.URL.Path, "panic", recovered)
	if isAPI(c) {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "internal server error"})
		return
	}
	ServerErrorPage(c)
}

func isAPI(c *gin.Context) bool {
	return strings.HasPrefix(c.Request.URL.Path, "/api/")
}
