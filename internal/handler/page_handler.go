package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"yatube/internal/model"
	"yatube/internal/service"

	"github.com/gin-gonic/gin"
)

// PageHandler 服务端渲染的页面
type PageHandler struct {
	feed     *service.FeedService
	posts    *service.PostService
	comments *service.CommentService
	follows  *service.FollowService
	likes    *service.PostLikeService
	groupSvc *service.GroupService
}

func NewPageHandler(feed *service.FeedService, posts *service.PostService, comments *service.CommentService,
	follows *service.FollowService, likes *service.PostLikeService, groups *service.GroupService) *PageHandler {
	return &PageHandler{feed: feed, posts: posts, comments: comments, follows: follows, likes: likes, groupSvc: groups}
}

type postForm struct {
	Text  string `form:"text"`
	Group string `form:"group"`
}

func (h *PageHandler) Index(c *gin.Context) {
	page, err := h.feed.GlobalFeed(c.Request.Context(), service.ParsePage(c.Query("page")))
	if err != nil {
		abortPage(c, err)
		return
	}
	render(c, http.StatusOK, "index.html", gin.H{"page": page})
}

func (h *PageHandler) Group(c *gin.Context) {
	group, page, err := h.feed.GroupFeed(c.Request.Context(), c.Param("slug"), service.ParsePage(c.Query("page")))
	if err != nil {
		abortPage(c, err)
		return
	}
	render(c, http.StatusOK, "group.html", gin.H{"group": group, "page": page})
}

func (h *PageHandler) Profile(c *gin.Context) {
	profile, err := h.feed.AuthorFeed(c.Request.Context(), actor(c), c.Param("username"), service.ParsePage(c.Query("page")))
	if err != nil {
		abortPage(c, err)
		return
	}
	render(c, http.StatusOK, "profile.html", gin.H{
		"author":     profile.Author,
		"page":       profile.Page,
		"following":  profile.Following,
		"followers":  profile.Followers,
		"followings": profile.Followings,
	})
}

func (h *PageHandler) Post(c *gin.Context) {
	h.renderPost(c, http.StatusOK, "")
}

func (h *PageHandler) renderPost(c *gin.Context, status int, formErr string) {
	id, ok := idParam(c, "post_id")
	if !ok {
		NotFoundPage(c)
		return
	}
	ctx := c.Request.Context()
	post, comments, err := h.feed.GetPost(ctx, c.Param("username"), id)
	if err != nil {
		abortPage(c, err)
		return
	}
	liked, err := h.likes.IsLiked(ctx, actor(c), post.ID)
	if err != nil {
		abortPage(c, err)
		return
	}
	render(c, status, "post.html", gin.H{
		"post":       post,
		"author":     &post.Author,
		"comments":   comments,
		"liked":      liked,
		"can_edit":   service.CanMutate(actor(c), post.AuthorID, false),
		"form_error": formErr,
	})
}

// NewPost 新建帖子，成功后回到首页
func (h *PageHandler) NewPost(c *gin.Context) {
	if c.Request.Method == http.MethodGet {
		h.renderPostForm(c, http.StatusOK, nil, postForm{}, nil)
		return
	}
	form, in, err := h.bindPostForm(c)
	if err == nil {
		_, err = h.posts.CreatePost(c.Request.Context(), actor(c), in)
	}
	if err != nil {
		h.formError(c, nil, form, err)
		return
	}
	c.Redirect(http.StatusFound, "/")
}

// EditPost 只有作者能打开编辑页
func (h *PageHandler) EditPost(c *gin.Context) {
	id, ok := idParam(c, "post_id")
	if !ok {
		NotFoundPage(c)
		return
	}
	ctx := c.Request.Context()
	post, err := h.posts.GetByAuthor(ctx, c.Param("username"), id)
	if err != nil {
		abortPage(c, err)
		return
	}
	if !service.CanMutate(actor(c), post.AuthorID, false) {
		abortPage(c, service.ErrForbidden)
		return
	}
	if c.Request.Method == http.MethodGet {
		form := postForm{Text: post.Text}
		if post.GroupID != nil {
			form.Group = fmt.Sprint(*post.GroupID)
		}
		h.renderPostForm(c, http.StatusOK, post, form, nil)
		return
	}

	form, in, err := h.bindPostForm(c)
	if err == nil {
		upd := service.PostUpdate{Text: &in.Text, GroupID: in.GroupID, ClearGroup: in.GroupID == nil, Image: in.Image}
		_, err = h.posts.UpdatePost(ctx, actor(c), post.ID, upd)
	}
	if err != nil {
		h.formError(c, post, form, err)
		return
	}
	c.Redirect(http.StatusFound, postURL(post))
}

// AddComment 评论成功后回到帖子页
func (h *PageHandler) AddComment(c *gin.Context) {
	id, ok := idParam(c, "post_id")
	if !ok {
		NotFoundPage(c)
		return
	}
	ctx := c.Request.Context()
	post, err := h.posts.GetByAuthor(ctx, c.Param("username"), id)
	if err != nil {
		abortPage(c, err)
		return
	}
	if _, err = h.comments.CreateComment(ctx, actor(c), post.ID, c.PostForm("text")); err != nil {
		var ve *service.ValidationError
		if errors.As(err, &ve) {
			h.renderPost(c, http.StatusOK, ve.Message)
			return
		}
		abortPage(c, err)
		return
	}
	c.Redirect(http.StatusFound, postURL(post))
}

func (h *PageHandler) FollowIndex(c *gin.Context) {
	page, err := h.feed.FollowFeed(c.Request.Context(), actor(c), service.ParsePage(c.Query("page")))
	if err != nil {
		abortPage(c, err)
		return
	}
	render(c, http.StatusOK, "follow.html", gin.H{"page": page})
}

// ProfileFollow 关注自己或重复关注不报错
func (h *PageHandler) ProfileFollow(c *gin.Context) {
	username := c.Param("username")
	if err := h.follows.Follow(c.Request.Context(), actor(c), username); err != nil {
		abortPage(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/"+username+"/")
}

func (h *PageHandler) ProfileUnfollow(c *gin.Context) {
	username := c.Param("username")
	if err := h.follows.Unfollow(c.Request.Context(), actor(c), username); err != nil {
		abortPage(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/"+username+"/")
}

func (h *PageHandler) Like(c *gin.Context) {
	h.toggleLike(c, true)
}

func (h *PageHandler) DeleteLike(c *gin.Context) {
	h.toggleLike(c, false)
}

func (h *PageHandler) toggleLike(c *gin.Context, like bool) {
	id, ok := idParam(c, "post_id")
	if !ok {
		NotFoundPage(c)
		return
	}
	ctx := c.Request.Context()
	post, err := h.posts.GetByAuthor(ctx, c.Param("username"), id)
	if err != nil {
		abortPage(c, err)
		return
	}
	if like {
		_, err = h.likes.Like(ctx, actor(c), post.ID)
	} else {
		_, err = h.likes.Unlike(ctx, actor(c), post.ID)
	}
	if err != nil {
		abortPage(c, err)
		return
	}
	c.Redirect(http.StatusFound, postURL(post))
}

func (h *PageHandler) bindPostForm(c *gin.Context) (postForm, service.PostInput, error) {
	var form postForm
	if err := c.ShouldBind(&form); err != nil {
		return form, service.PostInput{}, &service.ValidationError{Message: "Malformed form."}
	}
	p := postPayload{}
	if err := p.setGroup(strings.TrimSpace(form.Group)); err != nil {
		return form, service.PostInput{}, err
	}
	in := service.PostInput{Text: form.Text, GroupID: p.GroupID}
	if fh, err := c.FormFile("image"); err == nil {
		in.Image = fh
	}
	return form, in, nil
}

// formError 表单校验失败时带着错误重新渲染，其余错误走通用处理
func (h *PageHandler) formError(c *gin.Context, post *model.Post, form postForm, err error) {
	var ve *service.ValidationError
	if !errors.As(err, &ve) {
		abortPage(c, err)
		return
	}
	h.renderPostForm(c, http.StatusOK, post, form, ve)
}

func (h *PageHandler) renderPostForm(c *gin.Context, status int, post *model.Post, form postForm, ve *service.ValidationError) {
	groups, err := h.groupSvc.ListGroups(c.Request.Context())
	if err != nil {
		abortPage(c, err)
		return
	}
	render(c, status, "new_post.html", gin.H{
		"post":   post,
		"form":   form,
		"groups": groups,
		"error":  ve,
	})
}

func postURL(p *model.Post) string {
	return fmt.Sprintf("/%s/%d/", p.Author.Username, p.ID)
}
