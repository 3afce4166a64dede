package router

import (
	"yatube/internal/handler"
	"yatube/internal/middleware"
	"yatube/internal/pkg"
	"yatube/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps 路由需要的外部依赖
type Deps struct {
	DB        *gorm.DB
	Redis     *redis.Client
	Tokens    *pkg.TokenManager
	Media     *pkg.MediaStore
	FeedCache service.FeedCache
}

func InitRouter(d Deps) (*gin.Engine, error) {
	r := gin.New()
	r.MaxMultipartMemory = 8 << 20
	r.Use(middleware.Logging(), middleware.Metrics(), gin.CustomRecovery(handler.Recovery))

	tmpl, err := handler.Templates()
	if err != nil {
		return nil, err
	}
	r.SetHTMLTemplate(tmpl)

	feedSvc := service.NewFeedService(d.DB, d.FeedCache)
	postSvc := service.NewPostService(d.DB, d.Media)
	commentSvc := service.NewCommentService(d.DB)
	followSvc := service.NewFollowService(d.DB)
	groupSvc := service.NewGroupService(d.DB)
	likeSvc := service.NewPostLikeService(d.DB, d.Redis)
	userSvc := service.NewUserService(d.DB, d.Redis, d.Tokens)

	post := handler.NewPostHandler(postSvc)
	comment := handler.NewCommentHandler(commentSvc)
	group := handler.NewGroupHandler(groupSvc)
	follow := handler.NewFollowHandler(followSvc)
	like := handler.NewPostLikeHandler(likeSvc)
	user := handler.NewUserHandler(userSvc)
	page := handler.NewPageHandler(feedSvc, postSvc, commentSvc, followSvc, likeSvc, groupSvc)
	authPage := handler.NewAuthPageHandler(userSvc, int(d.Tokens.AccessTTL.Seconds()))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.Static("/media", d.Media.Root)

	// REST 接口
	api := r.Group("/api/v1", middleware.APIAuth(userSvc))
	{
		api.GET("/posts/", post.List)
		api.POST("/posts/", post.Create)
		api.GET("/posts/:id/", post.Get)
		api.PUT("/posts/:id/", post.Update)
		api.PATCH("/posts/:id/", post.Update)
		api.DELETE("/posts/:id/", post.Delete)
		api.POST("/posts/:id/like/", like.Like)
		api.DELETE("/posts/:id/like/", like.Unlike)

		api.GET("/group/", group.List)
		api.POST("/group/", group.Create)

		api.POST("/auth/register/", user.Register)
		api.POST("/auth/login/", user.Login)
		api.POST("/auth/refresh/", user.Refresh)
		api.POST("/auth/logout/", middleware.RequireAPI(), user.Logout)
	}

	// 评论接口只对登录用户开放
	comments := api.Group("/posts/:id/comments", middleware.RequireAPI())
	{
		comments.GET("/", comment.List)
		comments.POST("/", comment.Create)
		comments.GET("/:cid/", comment.Get)
		comments.PUT("/:cid/", comment.Update)
		comments.PATCH("/:cid/", comment.Update)
		comments.DELETE("/:cid/", comment.Delete)
	}

	follows := api.Group("/follow", middleware.RequireAPI())
	{
		follows.GET("/", follow.List)
		follows.POST("/", follow.Create)
	}

	// 页面
	pages := r.Group("/", middleware.PageAuth(userSvc))
	login := middleware.RequireLogin()
	{
		pages.GET("/", page.Index)
		pages.GET("/group/:slug/", page.Group)
		pages.GET("/follow/", login, page.FollowIndex)
		pages.GET("/new/", login, page.NewPost)
		pages.POST("/new/", login, page.NewPost)

		pages.GET("/auth/login/", authPage.Login)
		pages.POST("/auth/login/", authPage.Login)
		pages.GET("/auth/logout/", authPage.Logout)
		pages.POST("/auth/logout/", authPage.Logout)
		pages.GET("/auth/signup/", authPage.Signup)
		pages.POST("/auth/signup/", authPage.Signup)

		pages.GET("/:username/", page.Profile)
		pages.GET("/:username/follow/", login, page.ProfileFollow)
		pages.GET("/:username/unfollow/", login, page.ProfileUnfollow)
		pages.GET("/:username/:post_id/", page.Post)
		pages.GET("/:username/:post_id/edit/", login, page.EditPost)
		pages.POST("/:username/:post_id/edit/", login, page.EditPost)
		pages.POST("/:username/:post_id/comment", login, page.AddComment)
		pages.GET("/:username/:post_id/like/", login, page.Like)
		pages.GET("/:username/:post_id/deletelike/", login, page.DeleteLike)
	}

	r.NoRoute(middleware.PageAuth(userSvc), handler.NoRoute)
	return r, nil
}
