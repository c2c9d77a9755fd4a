package helpers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token purposes carried in the "prp" claim. Access tokens carry none;
// refresh and reset tokens must never be accepted in each other's place.
const (
	PurposeRefresh = "refresh"
	PurposeReset   = "reset"
)

var ErrInvalidToken = errors.New("invalid token")

// JWTManager handles generation and validation of JWT tokens.
// Access and refresh tokens are signed with separate secrets; password-reset
// tokens share the refresh secret but are distinguished by purpose and carry
// their own TTL.
type JWTManager struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	ResetTTL      time.Duration
}

func NewJWTManager(accessSecret, refreshSecret string, accessTTL, refreshTTL, resetTTL time.Duration) *JWTManager {
	return &JWTManager{
		AccessSecret:  []byte(accessSecret),
		RefreshSecret: []byte(refreshSecret),
		AccessTTL:     accessTTL,
		RefreshTTL:    refreshTTL,
		ResetTTL:      resetTTL,
	}
}

type Claims struct {
	UserID  string `json:"uid"`
	Purpose string `json:"prp,omitempty"`
	jwt.RegisteredClaims
}

func (m *JWTManager) GenerateAccessToken(userID string) (string, time.Time, error) {
	return m.generate(userID, "", m.AccessTTL, m.AccessSecret)
}

func (m *JWTManager) GenerateRefreshToken(userID string) (string, time.Time, error) {
	return m.generate(userID, PurposeRefresh, m.RefreshTTL, m.RefreshSecret)
}

// GenerateResetToken issues a stateless, self-expiring password-reset token
// bound to the user id. Single-use consumption is enforced by the caller via
// the token's jti.
func (m *JWTManager) GenerateResetToken(userID string) (string, time.Time, error) {
	return m.generate(userID, PurposeReset, m.ResetTTL, m.RefreshSecret)
}

func (m *JWTManager) generate(userID, purpose string, ttl time.Duration, secret []byte) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(ttl)
	claims := &Claims{
		UserID:  userID,
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(secret)
	return s, exp, err
}

func (m *JWTManager) ParseAccessToken(tokenStr string) (*Claims, error) {
	return parseToken(tokenStr, m.AccessSecret, "")
}

func (m *JWTManager) ParseRefreshToken(tokenStr string) (*Claims, error) {
	return parseToken(tokenStr, m.RefreshSecret, PurposeRefresh)
}

func (m *JWTManager) ParseResetToken(tokenStr string) (*Claims, error) {
	return parseToken(tokenStr, m.RefreshSecret, PurposeReset)
}

func parseToken(tokenStr string, secret []byte, purpose string) (*Claims, error) {
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !tkn.Valid || claims.Purpose != purpose {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
