package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/javiercm/go-blog-api/internal/container"
	handlers "github.com/javiercm/go-blog-api/internal/interface/http"
	"github.com/javiercm/go-blog-api/internal/interface/middleware"
	"github.com/javiercm/go-blog-api/pkg/helpers"
)

type AuthModule struct {
	Handler *handlers.AuthHandler
	JWT     *helpers.JWTManager
}

func NewAuthModule(h *handlers.AuthHandler, jwt *helpers.JWTManager) *AuthModule {
	return &AuthModule{Handler: h, JWT: jwt}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	// Public endpoints with IP-based rate limits
	registerLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIPAndPath())
	loginLimiter := middleware.RateLimit(container.GetRedis(), 20, time.Minute, middleware.KeyByIPAndPath())
	resetInitLimiter := middleware.RateLimit(container.GetRedis(), 5, time.Minute, middleware.KeyByIPAndPath())
	resetConfirmLimiter := middleware.RateLimit(container.GetRedis(), 30, time.Minute, middleware.KeyByIPAndPath())

	rg.POST("/register", registerLimiter, m.Handler.Register)
	rg.POST("/login", loginLimiter, m.Handler.Login)
	rg.POST("/refresh", m.Handler.Refresh)
	rg.POST("/request-reset-email", resetInitLimiter, m.Handler.RequestPasswordReset)
	rg.POST("/password-reset/:uid/:token", resetConfirmLimiter, m.Handler.ConfirmPasswordReset)

	// Protected account endpoints with user-based rate limit
	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.JWT))
	auth.Use(middleware.RateLimit(container.GetRedis(), 60, time.Minute, middleware.KeyByUserID()))
	{
		auth.POST("/logout", m.Handler.Logout)
		auth.GET("/personal-data", m.Handler.PersonalData)
		auth.PUT("/update-profile", m.Handler.UpdateProfile)
		auth.PUT("/change-password", m.Handler.ChangePassword)
	}
}
