package router

import (
	"github.com/javiercm/go-blog-api/internal/application"
	"github.com/javiercm/go-blog-api/internal/container"
	pginfra "github.com/javiercm/go-blog-api/internal/infrastructure/postgres"
	handlers "github.com/javiercm/go-blog-api/internal/interface/http"
	"github.com/javiercm/go-blog-api/internal/router/modules"
)

// InitModules builds the feature modules from the container singletons and
// registers them with the router registry. Called once during startup.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()

	userRepo := pginfra.NewUserRepository(container.GetPGPool())
	postRepo := pginfra.NewPostRepository(container.GetPGPool())
	commentRepo := pginfra.NewCommentRepository(container.GetPGPool())

	authSvc := application.NewAuthService(userRepo, container.GetJWT(), container.GetRedis(), logger, container.GetRabbitPub(), cfg)
	postSvc := application.NewPostService(postRepo, commentRepo, container.GetES(), cfg.ESPostsIndex, logger)
	commentSvc := application.NewCommentService(commentRepo, logger)

	authHandler := handlers.NewAuthHandler(authSvc, logger, cfg.CookieDomain, cfg.CookieSecure)
	postHandler := handlers.NewPostHandler(postSvc, logger)
	commentHandler := handlers.NewCommentHandler(commentSvc, logger)

	r.Add(modules.NewAuthModule(authHandler, container.GetJWT()))
	r.Add(modules.NewBlogModule(postHandler, commentHandler, container.GetJWT()))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
