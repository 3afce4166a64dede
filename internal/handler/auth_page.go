package handler

import (
	"errors"
	"net/http"
	"strings"

	"yatube/internal/middleware"
	"yatube/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthPageHandler 登录、注册、退出页面，登录态保存在 cookie 中
type AuthPageHandler struct {
	users     *service.UserService
	cookieTTL int
}

func NewAuthPageHandler(users *service.UserService, cookieTTLSeconds int) *AuthPageHandler {
	return &AuthPageHandler{users: users, cookieTTL: cookieTTLSeconds}
}

func (h *AuthPageHandler) Login(c *gin.Context) {
	next := safeNext(c.Query("next"))
	if c.Request.Method == http.MethodGet {
		render(c, http.StatusOK, "login.html", gin.H{"next": next})
		return
	}

	username := strings.TrimSpace(c.PostForm("username"))
	pair, _, err := h.users.Login(c.Request.Context(), username, c.PostForm("password"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			render(c, http.StatusOK, "login.html", gin.H{
				"next":     next,
				"username": username,
				"error":    "Please enter a correct username and password.",
			})
			return
		}
		abortPage(c, err)
		return
	}
	middleware.SetAccessCookie(c, pair.AccessToken, h.cookieTTL)
	c.Redirect(http.StatusFound, next)
}

func (h *AuthPageHandler) Logout(c *gin.Context) {
	if uid := actor(c); uid != 0 {
		if err := h.users.Logout(c.Request.Context(), uid); err != nil {
			abortPage(c, err)
			return
		}
	}
	middleware.ClearAccessCookie(c)
	c.Redirect(http.StatusFound, "/")
}

// Signup 注册成功后直接登录
func (h *AuthPageHandler) Signup(c *gin.Context) {
	if c.Request.Method == http.MethodGet {
		render(c, http.StatusOK, "signup.html", nil)
		return
	}
	var req RegisterReq
	if err := c.ShouldBind(&req); err != nil {
		render(c, http.StatusOK, "signup.html", gin.H{"error": "Malformed form."})
		return
	}
	ctx := c.Request.Context()
	_, err := h.users.Register(ctx, service.RegisterInput{
		Username: strings.TrimSpace(req.Username),
		Password: req.Password,
		Email:    strings.TrimSpace(req.Email),
	})
	if err != nil {
		var ve *service.ValidationError
		if errors.As(err, &ve) {
			render(c, http.StatusOK, "signup.html", gin.H{"error": ve.Error(), "form": req})
			return
		}
		abortPage(c, err)
		return
	}
	pair, _, err := h.users.Login(ctx, strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		abortPage(c, err)
		return
	}
	middleware.SetAccessCookie(c, pair.AccessToken, h.cookieTTL)
	c.Redirect(http.StatusFound, "/")
}

// safeNext 只允许站内相对路径
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, "\\") {
		return "/"
	}
	return next
}
