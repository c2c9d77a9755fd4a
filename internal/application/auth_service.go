package application

import (
	"context"
	"encoding/base64"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/javiercm/go-blog-api/config"
	"github.com/javiercm/go-blog-api/internal/domain/entity"
	repo "github.com/javiercm/go-blog-api/internal/domain/repository"
	"github.com/javiercm/go-blog-api/pkg/helpers"
	"github.com/javiercm/go-blog-api/pkg/mailer"
	tpl "github.com/javiercm/go-blog-api/pkg/mailer/templates"
	"github.com/javiercm/go-blog-api/pkg/validation"
)

// AuthService orchestrates registration, login, token refresh/revocation and
// the password flows. Redis backs refresh-token blacklisting and single-use
// consumption of reset tokens; both use atomic SET NX so a token never
// validates twice, even under concurrent attempts.
type AuthService struct {
	Repo   repo.UserRepository
	JWT    *helpers.JWTManager
	Redis  *redis.Client
	Logger *logrus.Logger
	Pub    *helpers.RabbitPublisher
	Cfg    *config.Config
}

func NewAuthService(userRepo repo.UserRepository, jwt *helpers.JWTManager, rdb *redis.Client, logger *logrus.Logger, pub *helpers.RabbitPublisher, cfg *config.Config) *AuthService {
	return &AuthService{Repo: userRepo, JWT: jwt, Redis: rdb, Logger: logger, Pub: pub, Cfg: cfg}
}

type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

func keyRevokedRefresh(jti string) string { return "jwt:revoked:" + jti }
func keyUsedReset(jti string) string      { return "pwd:reset:used:" + jti }

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// Register creates a new user. Uniqueness is pre-checked for friendly
// messages; the storage constraint remains authoritative, so a lost
// check-then-create race still surfaces as the same field error.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	fieldErrs := validation.FieldErrors{}
	if taken, err := s.Repo.UsernameExists(ctx, in.Username); err != nil {
		return nil, err
	} else if taken {
		fieldErrs.Add("username", MsgUsernameTaken)
	}
	if taken, err := s.Repo.EmailExists(ctx, in.Email); err != nil {
		return nil, err
	} else if taken {
		fieldErrs.Add("email", MsgEmailTaken)
	}
	if len(fieldErrs) > 0 {
		return nil, fieldErrs
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &entity.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Permissions:  []string{},
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		switch {
		case errors.Is(err, repo.ErrUsernameTaken):
			return nil, validation.FieldErrors{"username": {MsgUsernameTaken}}
		case errors.Is(err, repo.ErrEmailTaken):
			return nil, validation.FieldErrors{"email": {MsgEmailTaken}}
		}
		return nil, err
	}

	s.enqueueEmail(ctx, u.Email, tpl.Welcome, map[string]any{
		"Username": u.Username,
		"AppName":  s.Cfg.AppName,
	})
	return u, nil
}

// Login verifies the username/password pair and issues tokens. The error is
// deliberately identical for a missing user and a wrong password.
func (s *AuthService) Login(ctx context.Context, username, password string) (TokenPair, error) {
	u, err := s.Repo.GetByUsername(ctx, username)
	if err != nil || !helpers.CompareHashAndPassword(u.PasswordHash, password) {
		return TokenPair{}, ErrInvalidCredentials
	}
	return s.issueTokens(u.ID)
}

func (s *AuthService) issueTokens(userID string) (TokenPair, error) {
	access, aexp, err := s.JWT.GenerateAccessToken(userID)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(userID)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}

// Refresh validates the refresh token against signature, expiry and the
// revocation list, then issues a fresh access token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, time.Time, error) {
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return "", time.Time{}, ErrInvalidToken
	}
	revoked, err := s.Redis.Exists(ctx, keyRevokedRefresh(claims.ID)).Result()
	if err != nil {
		return "", time.Time{}, err
	}
	if revoked > 0 {
		return "", time.Time{}, ErrInvalidToken
	}
	if _, err := s.Repo.GetByID(ctx, claims.UserID); err != nil {
		return "", time.Time{}, ErrInvalidToken
	}
	return s.JWT.GenerateAccessToken(claims.UserID)
}

// Logout revokes the refresh token by blacklisting its jti for the token's
// remaining lifetime. Revoking an already-revoked or malformed token fails;
// callers surface that as a generic 400.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return ErrInvalidToken
	}
	remaining := time.Until(claims.ExpiresAt.Time)
	if remaining <= 0 {
		return ErrInvalidToken
	}
	ok, err := s.Redis.SetNX(ctx, keyRevokedRefresh(claims.ID), "1", remaining).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidToken
	}
	return nil
}

func (s *AuthService) Profile(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		return nil, ErrNotFound
	}
	return u, nil
}

type UpdateProfileInput struct {
	FirstName string
	LastName  string
	Email     string
}

// UpdateProfile applies the non-empty fields only; username is immutable.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		return nil, ErrNotFound
	}
	if in.Email != "" && in.Email != u.Email {
		if taken, err := s.Repo.EmailExists(ctx, in.Email); err != nil {
			return nil, err
		} else if taken {
			return nil, validation.FieldErrors{"email": {MsgEmailTaken}}
		}
		u.Email = in.Email
	}
	if in.FirstName != "" {
		u.FirstName = in.FirstName
	}
	if in.LastName != "" {
		u.LastName = in.LastName
	}
	if err := s.Repo.Update(ctx, u); err != nil {
		if errors.Is(err, repo.ErrEmailTaken) {
			return nil, validation.FieldErrors{"email": {MsgEmailTaken}}
		}
		return nil, err
	}
	return u, nil
}

// ChangePassword re-hashes and persists the new password after checking the
// confirmation and the old password.
func (s *AuthService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword, confirmation string) error {
	if newPassword != confirmation {
		return validation.FieldErrors{"new_password_confirmation": {MsgPasswordMismatch}}
	}
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		return ErrNotFound
	}
	if !helpers.CompareHashAndPassword(u.PasswordHash, oldPassword) {
		return ErrWrongPassword
	}
	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.Repo.UpdatePassword(ctx, u.ID, hash)
}

// RequestPasswordReset issues a signed, self-expiring reset token bound to
// the account and mails the reset link. Unknown emails are reported as not
// found; the enumeration tradeoff is accepted.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		return "", ErrNotFound
	}
	token, _, err := s.JWT.GenerateResetToken(u.ID)
	if err != nil {
		return "", err
	}
	link := s.Cfg.ResetPasswordURL + "/" + EncodeUID(u.ID) + "/" + token

	s.enqueueEmail(ctx, u.Email, tpl.ResetPassword, map[string]any{
		"Username":  u.Username,
		"ResetLink": link,
		"ExpiresIn": s.Cfg.ResetTokenTTL.String(),
	})
	return link, nil
}

// ConfirmPasswordReset verifies the uid/token pair, consumes the token and
// sets the new password. Consumption marks the token's jti in Redis with NX
// for the token's remaining lifetime, so a second confirm with the same
// token fails even when racing the first.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, uid, token, newPassword, confirmation string) error {
	userID, err := DecodeUID(uid)
	if err != nil {
		return ErrInvalidToken
	}
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		return ErrInvalidToken
	}
	claims, err := s.JWT.ParseResetToken(token)
	if err != nil || claims.UserID != u.ID {
		return ErrInvalidToken
	}
	if newPassword != confirmation {
		return validation.FieldErrors{"new_password_confirmation": {MsgPasswordMismatch}}
	}
	remaining := time.Until(claims.ExpiresAt.Time)
	if remaining <= 0 {
		return ErrInvalidToken
	}
	ok, err := s.Redis.SetNX(ctx, keyUsedReset(claims.ID), "1", remaining).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidToken
	}
	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.Repo.UpdatePassword(ctx, u.ID, hash)
}

// EncodeUID encodes a user id for use in reset links, mirroring the
// uid/token two-part link format.
func EncodeUID(id string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(id))
}

func DecodeUID(uid string) (string, error) {
	b, err := base64.RawURLEncoding.DecodeString(uid)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (s *AuthService) enqueueEmail(ctx context.Context, to, template string, data map[string]any) {
	if s.Pub == nil || s.Cfg == nil || !s.Cfg.MailSendEnabled {
		return
	}
	job := mailer.EmailJob{To: to, Template: template, Data: data}
	if err := s.Pub.PublishJSON(ctx, job); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("template", template).Warn("failed to enqueue email job")
	}
}
