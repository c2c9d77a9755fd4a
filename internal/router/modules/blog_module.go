package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/javiercm/go-blog-api/internal/container"
	handlers "github.com/javiercm/go-blog-api/internal/interface/http"
	"github.com/javiercm/go-blog-api/internal/interface/middleware"
	"github.com/javiercm/go-blog-api/pkg/helpers"
)

type BlogModule struct {
	Posts    *handlers.PostHandler
	Comments *handlers.CommentHandler
	JWT      *helpers.JWTManager
}

func NewBlogModule(posts *handlers.PostHandler, comments *handlers.CommentHandler, jwt *helpers.JWTManager) *BlogModule {
	return &BlogModule{Posts: posts, Comments: comments, JWT: jwt}
}

func (m *BlogModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.JWT))
	auth.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID()))
	{
		auth.POST("/post", m.Posts.Create)
		auth.GET("/posts", m.Posts.List)
		auth.GET("/post/:id", m.Posts.Get)
		auth.PUT("/post/:id", m.Posts.Update)
		auth.DELETE("/post/:id", m.Posts.Delete)

		auth.POST("/comment", m.Comments.Create)
		auth.PUT("/comment/:id", m.Comments.Update)
		auth.DELETE("/comment/:id", m.Comments.Delete)
	}
}
