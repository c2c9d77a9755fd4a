package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/javiercm/go-blog-api/internal/application"
	"github.com/javiercm/go-blog-api/internal/interface/middleware"
	"github.com/javiercm/go-blog-api/pkg/helpers"
	"github.com/javiercm/go-blog-api/pkg/response"
	"github.com/javiercm/go-blog-api/pkg/validation"
)

type AuthHandler struct {
	Svc     *application.AuthService
	Logger  *logrus.Logger
	Cookies *helpers.Manager
}

func NewAuthHandler(svc *application.AuthService, logger *logrus.Logger, cookieDomain string, cookieSecure bool) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger, Cookies: helpers.NewCookie(cookieDomain, cookieSecure)}
}

type registerRequest struct {
	Username string `json:"username" binding:"required,username"`
	Password string `json:"password" binding:"required,pwd"`
	Email    string `json:"email" binding:"required,email"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

type logoutRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type updateProfileRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email" binding:"omitempty,email"`
}

type changePasswordRequest struct {
	OldPassword             string `json:"old_password" binding:"required"`
	NewPassword             string `json:"new_password" binding:"required,pwd"`
	NewPasswordConfirmation string `json:"new_password_confirmation" binding:"required"`
}

type resetRequestRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type resetConfirmRequest struct {
	NewPassword             string `json:"new_password" binding:"required,pwd"`
	NewPasswordConfirmation string `json:"new_password_confirmation" binding:"required"`
}

// Register POST /api/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid data", validation.ToDetails(err))
		return
	}
	u, err := h.Svc.Register(c.Request.Context(), application.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeServiceError(c, err, "not found", "forbidden")
		return
	}
	response.Success(c, http.StatusCreated, gin.H{
		"username":    u.Username,
		"email":       u.Email,
		"date_joined": u.DateJoined,
	}, "User created successfully", nil)
}

// Login POST /api/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid data", validation.ToDetails(err))
		return
	}
	pair, err := h.Svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		// Same body for unknown username and wrong password.
		response.Error(c, http.StatusUnauthorized, "invalid credentials", nil)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success(c, http.StatusOK, gin.H{
		"access":  pair.AccessToken,
		"refresh": pair.RefreshToken,
	}, "login successful", gin.H{
		"access_expires_at":  pair.AccessTokenExpiry,
		"refresh_expires_at": pair.RefreshTokenExpiry,
	})
}

// Refresh POST /api/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// Browser clients keep the refresh token in a cookie instead.
		if cookie, cerr := c.Cookie("refresh_token"); cerr == nil && cookie != "" {
			req.Refresh = cookie
		} else {
			response.Error(c, http.StatusBadRequest, "invalid data", validation.ToDetails(err))
			return
		}
	}
	access, exp, err := h.Svc.Refresh(c.Request.Context(), req.Refresh)
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "invalid refresh token", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"access": access}, "token refreshed", gin.H{"access_expires_at": exp})
}

// Logout POST /api/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	var req logoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid data", validation.ToDetails(err))
		return
	}
	if err := h.Svc.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		if errors.Is(err, application.ErrInvalidToken) {
			response.Error(c, http.StatusBadRequest, "invalid token", nil)
			return
		}
		writeServiceError(c, err, "not found", "forbidden")
		return
	}
	h.Cookies.Clear(c)
	response.Success[any](c, http.StatusOK, gin.H{"logged_out": true}, "Logged out successfully", nil)
}

// PersonalData GET /api/personal-data
func (h *AuthHandler) PersonalData(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	u, err := h.Svc.Profile(c.Request.Context(), uid)
	if err != nil {
		writeServiceError(c, err, "user not found", "forbidden")
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"username":     u.Username,
		"email":        u.Email,
		"date_joined":  u.DateJoined,
		"is_superuser": u.IsSuperuser,
		"permissions":  u.Permissions,
		"first_name":   u.FirstName,
		"last_name":    u.LastName,
	}, "personal data", nil)
}

// UpdateProfile PUT /api/update-profile
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid data", validation.ToDetails(err))
		return
	}
	u, err := h.Svc.UpdateProfile(c.Request.Context(), uid, application.UpdateProfileInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	})
	if err != nil {
		writeServiceError(c, err, "user not found", "forbidden")
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"username":   u.Username,
		"email":      u.Email,
		"first_name": u.FirstName,
		"last_name":  u.LastName,
	}, "Profile updated successfully", nil)
}

// ChangePassword PUT /api/change-password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid data", validation.ToDetails(err))
		return
	}
	err := h.Svc.ChangePassword(c.Request.Context(), uid, req.OldPassword, req.NewPassword, req.NewPasswordConfirmation)
	if err != nil {
		writeServiceError(c, err, "user not found", "forbidden")
		return
	}
	response.Success[any](c, http.StatusOK, nil, "Password changed successfully", nil)
}

// RequestPasswordReset POST /api/request-reset-email
func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	var req resetRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid data", validation.ToDetails(err))
		return
	}
	link, err := h.Svc.RequestPasswordReset(c.Request.Context(), req.Email)
	if err != nil {
		writeServiceError(c, err, "Email not found", "forbidden")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"reset_link": link}, "Password reset link sent to email", nil)
}

// ConfirmPasswordReset POST /api/password-reset/:uid/:token
func (h *AuthHandler) ConfirmPasswordReset(c *gin.Context) {
	var req resetConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid data", validation.ToDetails(err))
		return
	}
	err := h.Svc.ConfirmPasswordReset(c.Request.Context(), c.Param("uid"), c.Param("token"), req.NewPassword, req.NewPasswordConfirmation)
	if err != nil {
		if errors.Is(err, application.ErrInvalidToken) {
			response.Error(c, http.StatusBadRequest, "invalid token", nil)
			return
		}
		writeServiceError(c, err, "user not found", "forbidden")
		return
	}
	response.Success[any](c, http.StatusOK, nil, "Password reset successfully", nil)
}
