package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"yatube/internal/pkg"
	"yatube/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	ContextUserIDKey   = "user_id"
	ContextUsernameKey = "username"
	// AccessCookie 页面登录态保存 access token 的 cookie
	AccessCookie = "access_token"
)

type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*pkg.Claims, error)
}

// APIAuth 解析 Bearer token。没有 token 时按匿名继续，token 无效直接 401
func APIAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "invalid authorization format"})
			return
		}

		claims, err := auth.Authenticate(c.Request.Context(), parts[1])
		if err != nil {
			msg := "invalid or expired token"
			if errors.Is(err, service.ErrSessionReplaced) {
				msg = err.Error()
			} else if !errors.Is(err, service.ErrUnauthorized) {
				slog.ErrorContext(c.Request.Context(), "authenticate", "error", err)
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": msg})
			return
		}
		setIdentity(c, claims)
		c.Next()
	}
}

// PageAuth 从 cookie 解析登录态，无效 cookie 会被清除
func PageAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(AccessCookie)
		if err != nil || token == "" {
			c.Next()
			return
		}
		claims, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			ClearAccessCookie(c)
			c.Next()
			return
		}
		setIdentity(c, claims)
		c.Next()
	}
}

// RequireAPI 匿名请求返回 401
func RequireAPI() gin.HandlerFunc {
	return func(c *gin.Context) {
		if Actor(c) == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": service.ErrUnauthorized.Error()})
			return
		}
		c.Next()
	}
}

// RequireLogin 匿名请求跳转登录页
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if Actor(c) == 0 {
			c.Redirect(http.StatusFound, LoginURL(c.Request.URL.RequestURI()))
			c.Abort()
			return
		}
		c.Next()
	}
}

// SetAccessCookie 写入登录 cookie，SameSite=Lax 阻止跨站表单携带
func SetAccessCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AccessCookie, token, maxAge, "/", "", false, true)
}

func ClearAccessCookie(c *gin.Context) {
	SetAccessCookie(c, "", -1)
}

func LoginURL(next string) string {
	return "/auth/login/?next=" + url.QueryEscape(next)
}

// Actor 当前用户 ID，匿名为 0
func Actor(c *gin.Context) uint64 {
	return c.GetUint64(ContextUserIDKey)
}

func Username(c *gin.Context) string {
	return c.GetString(ContextUsernameKey)
}

func setIdentity(c *gin.Context, claims *pkg.Claims) {
	c.Set(ContextUserIDKey, claims.UserID)
	c.Set(ContextUsernameKey, claims.Username)
}
