package application

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javiercm/go-blog-api/config"
	"github.com/javiercm/go-blog-api/internal/domain/entity"
	repo "github.com/javiercm/go-blog-api/internal/domain/repository"
	"github.com/javiercm/go-blog-api/pkg/helpers"
	"github.com/javiercm/go-blog-api/pkg/validation"
)

// fakeUserRepo is an in-memory UserRepository for service tests.
type fakeUserRepo struct {
	byID map[string]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: map[string]*entity.User{}}
}

func (f *fakeUserRepo) Create(_ context.Context, u *entity.User) error {
	for _, e := range f.byID {
		if e.Username == u.Username {
			return repo.ErrUsernameTaken
		}
		if e.Email == u.Email {
			return repo.ErrEmailTaken
		}
	}
	u.ID = uuid.NewString()
	u.DateJoined = time.Now()
	u.UpdatedAt = u.DateJoined
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	if u, ok := f.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, repo.ErrNotFound
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	for _, u := range f.byID {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (f *fakeUserRepo) UsernameExists(_ context.Context, username string) (bool, error) {
	for _, u := range f.byID {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserRepo) EmailExists(_ context.Context, email string) (bool, error) {
	for _, u := range f.byID {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserRepo) Update(_ context.Context, u *entity.User) error {
	if _, ok := f.byID[u.ID]; !ok {
		return repo.ErrNotFound
	}
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

func (f *fakeUserRepo) UpdatePassword(_ context.Context, id, hash string) error {
	u, ok := f.byID[id]
	if !ok {
		return repo.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

var _ repo.UserRepository = (*fakeUserRepo)(nil)

func newTestAuthService(t *testing.T) (*AuthService, *fakeUserRepo) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	users := newFakeUserRepo()
	jwt := helpers.NewJWTManager("test-access", "test-refresh", time.Hour, 24*time.Hour, 30*time.Minute)
	cfg := &config.Config{
		AppName:          "go-blog-api",
		ResetPasswordURL: "http://localhost:8080/api/password-reset",
		ResetTokenTTL:    30 * time.Minute,
	}
	return NewAuthService(users, jwt, rdb, nil, nil, cfg), users
}

func register(t *testing.T, svc *AuthService, username, email, password string) *entity.User {
	t.Helper()
	u, err := svc.Register(context.Background(), RegisterInput{Username: username, Email: email, Password: password})
	require.NoError(t, err)
	return u
}

func TestRegister(t *testing.T) {
	svc, _ := newTestAuthService(t)

	u := register(t, svc, "alice123", "alice@example.com", "sup3rsecret")
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "alice123", u.Username)
	assert.NotEqual(t, "sup3rsecret", u.PasswordHash)
	assert.False(t, u.DateJoined.IsZero())
}

func TestRegister_DuplicateUsername(t *testing.T) {
	svc, _ := newTestAuthService(t)
	register(t, svc, "alice123", "alice@example.com", "sup3rsecret")

	_, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice123", Email: "other@example.com", Password: "sup3rsecret",
	})
	require.Error(t, err)

	var fe validation.FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, []string{MsgUsernameTaken}, fe["username"])
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := newTestAuthService(t)
	register(t, svc, "alice123", "alice@example.com", "sup3rsecret")

	_, err := svc.Register(context.Background(), RegisterInput{
		Username: "bobby456", Email: "alice@example.com", Password: "sup3rsecret",
	})
	require.Error(t, err)

	var fe validation.FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, []string{MsgEmailTaken}, fe["email"])
}

func TestLogin(t *testing.T) {
	svc, _ := newTestAuthService(t)
	register(t, svc, "alice123", "alice@example.com", "sup3rsecret")

	pair, err := svc.Login(context.Background(), "alice123", "sup3rsecret")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.True(t, pair.RefreshTokenExpiry.After(pair.AccessTokenExpiry))
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, _ := newTestAuthService(t)
	register(t, svc, "alice123", "alice@example.com", "sup3rsecret")

	_, err := svc.Login(context.Background(), "alice123", "wrongwrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_UnknownUser(t *testing.T) {
	svc, _ := newTestAuthService(t)

	_, err := svc.Login(context.Background(), "nobody99", "whatever123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefresh(t *testing.T) {
	svc, _ := newTestAuthService(t)
	register(t, svc, "alice123", "alice@example.com", "sup3rsecret")
	pair, err := svc.Login(context.Background(), "alice123", "sup3rsecret")
	require.NoError(t, err)

	access, exp, err := svc.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, access)
	assert.True(t, exp.After(time.Now()))
}

func TestRefresh_Garbage(t *testing.T) {
	svc, _ := newTestAuthService(t)

	_, _, err := svc.Refresh(context.Background(), "not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefresh_AccessTokenRejected(t *testing.T) {
	svc, _ := newTestAuthService(t)
	register(t, svc, "alice123", "alice@example.com", "sup3rsecret")
	pair, err := svc.Login(context.Background(), "alice123", "sup3rsecret")
	require.NoError(t, err)

	_, _, err = svc.Refresh(context.Background(), pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLogout_RevokesRefreshToken(t *testing.T) {
	svc, _ := newTestAuthService(t)
	register(t, svc, "alice123", "alice@example.com", "sup3rsecret")
	pair, err := svc.Login(context.Background(), "alice123", "sup3rsecret")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), pair.RefreshToken))

	// Revoked token no longer refreshes.
	_, _, err = svc.Refresh(context.Background(), pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// Second logout with the same token fails.
	err = svc.Logout(context.Background(), pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLogout_OtherTokensUnaffected(t *testing.T) {
	svc, _ := newTestAuthService(t)
	register(t, svc, "alice123", "alice@example.com", "sup3rsecret")

	first, err := svc.Login(context.Background(), "alice123", "sup3rsecret")
	require.NoError(t, err)
	second, err := svc.Login(context.Background(), "alice123", "sup3rsecret")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), first.RefreshToken))

	_, _, err = svc.Refresh(context.Background(), second.RefreshToken)
	assert.NoError(t, err)
}

func TestUpdateProfile(t *testing.T) {
	svc, _ := newTestAuthService(t)
	u := register(t, svc, "alice123", "alice@example.com", "sup3rsecret")

	got, err := svc.UpdateProfile(context.Background(), u.ID, UpdateProfileInput{
		FirstName: "Alice",
		LastName:  "Liddell",
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.FirstName)
	assert.Equal(t, "Liddell", got.LastName)
	assert.Equal(t, "alice@example.com", got.Email)
	assert.Equal(t, "alice123", got.Username)
}

func TestUpdateProfile_EmailTaken(t *testing.T) {
	svc, _ := newTestAuthService(t)
	register(t, svc, "bobby456", "bob@example.com", "sup3rsecret")
	u := register(t, svc, "alice123", "alice@example.com", "sup3rsecret")

	_, err := svc.UpdateProfile(context.Background(), u.ID, UpdateProfileInput{Email: "bob@example.com"})
	require.Error(t, err)

	var fe validation.FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, []string{MsgEmailTaken}, fe["email"])
}

func TestChangePassword(t *testing.T) {
	svc, _ := newTestAuthService(t)
	u := register(t, svc, "alice123", "alice@example.com", "sup3rsecret")

	err := svc.ChangePassword(context.Background(), u.ID, "sup3rsecret", "evenm0resecret", "evenm0resecret")
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "alice123", "sup3rsecret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(context.Background(), "alice123", "evenm0resecret")
	assert.NoError(t, err)
}

func TestChangePassword_Mismatch(t *testing.T) {
	svc, _ := newTestAuthService(t)
	u := register(t, svc, "alice123", "alice@example.com", "sup3rsecret")

	err := svc.ChangePassword(context.Background(), u.ID, "sup3rsecret", "evenm0resecret", "different")
	require.Error(t, err)

	var fe validation.FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, []string{MsgPasswordMismatch}, fe["new_password_confirmation"])
}

func TestChangePassword_WrongOldPassword(t *testing.T) {
	svc, _ := newTestAuthService(t)
	u := register(t, svc, "alice123", "alice@example.com", "sup3rsecret")

	err := svc.ChangePassword(context.Background(), u.ID, "wrongwrong", "evenm0resecret", "evenm0resecret")
	assert.ErrorIs(t, err, ErrWrongPassword)
}

func TestRequestPasswordReset(t *testing.T) {
	svc, _ := newTestAuthService(t)
	u := register(t, svc, "alice123", "alice@example.com", "sup3rsecret")

	link, err := svc.RequestPasswordReset(context.Background(), "alice@example.com")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(link, "http://localhost:8080/api/password-reset/"))

	parts := strings.Split(strings.TrimPrefix(link, "http://localhost:8080/api/password-reset/"), "/")
	require.Len(t, parts, 2)

	decoded, err := DecodeUID(parts[0])
	require.NoError(t, err)
	assert.Equal(t, u.ID, decoded)
}

func TestRequestPasswordReset_UnknownEmail(t *testing.T) {
	svc, _ := newTestAuthService(t)

	_, err := svc.RequestPasswordReset(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func resetLinkParts(t *testing.T, svc *AuthService, email string) (uid, token string) {
	t.Helper()
	link, err := svc.RequestPasswordReset(context.Background(), email)
	require.NoError(t, err)
	parts := strings.Split(link, "/")
	require.GreaterOrEqual(t, len(parts), 2)
	return parts[len(parts)-2], parts[len(parts)-1]
}

func TestConfirmPasswordReset(t *testing.T) {
	svc, _ := newTestAuthService(t)
	register(t, svc, "alice123", "alice@example.com", "sup3rsecret")
	uid, token := resetLinkParts(t, svc, "alice@example.com")

	err := svc.ConfirmPasswordReset(context.Background(), uid, token, "brandnewpass", "brandnewpass")
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "alice123", "brandnewpass")
	assert.NoError(t, err)
}

func TestConfirmPasswordReset_SingleUse(t *testing.T) {
	svc, _ := newTestAuthService(t)
	register(t, svc, "alice123", "alice@example.com", "sup3rsecret")
	uid, token := resetLinkParts(t, svc, "alice@example.com")

	require.NoError(t, svc.ConfirmPasswordReset(context.Background(), uid, token, "brandnewpass", "brandnewpass"))

	err := svc.ConfirmPasswordReset(context.Background(), uid, token, "anotherpass1", "anotherpass1")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestConfirmPasswordReset_Mismatch(t *testing.T) {
	svc, _ := newTestAuthService(t)
	register(t, svc, "alice123", "alice@example.com", "sup3rsecret")
	uid, token := resetLinkParts(t, svc, "alice@example.com")

	err := svc.ConfirmPasswordReset(context.Background(), uid, token, "brandnewpass", "different")
	require.Error(t, err)

	var fe validation.FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, []string{MsgPasswordMismatch}, fe["new_password_confirmation"])

	// A mismatch must not consume the token.
	require.NoError(t, svc.ConfirmPasswordReset(context.Background(), uid, token, "brandnewpass", "brandnewpass"))
}

func TestConfirmPasswordReset_WrongUser(t *testing.T) {
	svc, _ := newTestAuthService(t)
	register(t, svc, "alice123", "alice@example.com", "sup3rsecret")
	bob := register(t, svc, "bobby456", "bob@example.com", "sup3rsecret")
	_, token := resetLinkParts(t, svc, "alice@example.com")

	err := svc.ConfirmPasswordReset(context.Background(), EncodeUID(bob.ID), token, "brandnewpass", "brandnewpass")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestConfirmPasswordReset_BadUID(t *testing.T) {
	svc, _ := newTestAuthService(t)

	err := svc.ConfirmPasswordReset(context.Background(), "%%%", "whatever", "brandnewpass", "brandnewpass")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestProfile(t *testing.T) {
	svc, _ := newTestAuthService(t)
	u := register(t, svc, "alice123", "alice@example.com", "sup3rsecret")

	got, err := svc.Profile(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice123", got.Username)

	_, err = svc.Profile(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
}
