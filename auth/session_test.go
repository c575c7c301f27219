package auth_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studio-booking-cli/auth"
	"studio-booking-cli/backendtest"
	"studio-booking-cli/model"
	"studio-booking-cli/service"
)

func setTestConfigDir(t *testing.T) {
	t.Helper()
	root := t.TempDir()
	t.Setenv("HOME", root)
	t.Setenv("XDG_CONFIG_HOME", root)
	t.Setenv("XDG_CACHE_HOME", filepath.Join(root, "cache"))
}

func signed(t *testing.T, exp time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": 1, "exp": exp.Unix()}).SignedString([]byte("k"))
	require.NoError(t, err)
	return token
}

func TestIdentityToken(t *testing.T) {
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	var anonymous *auth.Session
	_, err := anonymous.IdentityToken(now)
	assert.True(t, service.IsAuth(err))

	_, err = (&auth.Session{Token: "  "}).IdentityToken(now)
	assert.True(t, service.IsAuth(err))

	token, err := (&auth.Session{Token: "opaque-token"}).IdentityToken(now)
	require.NoError(t, err)
	assert.Equal(t, "opaque-token", token)

	live := signed(t, now.Add(time.Hour))
	token, err = (&auth.Session{Token: live}).IdentityToken(now)
	require.NoError(t, err)
	assert.Equal(t, live, token)

	_, err = (&auth.Session{Token: signed(t, now.Add(-time.Second))}).IdentityToken(now)
	var authErr *service.AuthError
	require.True(t, errors.As(err, &authErr), "expected auth error, got %v", err)
	assert.Equal(t, "session expired", authErr.Reason)
}

func TestCanSellOffline(t *testing.T) {
	cases := []struct {
		session *auth.Session
		want    bool
	}{
		{nil, false},
		{&auth.Session{}, false},
		{&auth.Session{Token: "t", User: &model.User{Role: model.RoleCustomer}}, false},
		{&auth.Session{Token: "t", User: &model.User{Role: model.RoleCashier}}, true},
		{&auth.Session{Token: "t", User: &model.User{Role: model.RoleAdmin}}, true},
		{&auth.Session{User: &model.User{Role: model.RoleAdmin}}, false},
	}
	for i, tc := range cases {
		assert.Equal(t, tc.want, tc.session.CanSellOffline(), "case %d", i)
	}
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "guest", (*auth.Session)(nil).DisplayName())
	assert.Equal(t, "rina@example.com", (&auth.Session{Token: "t", User: &model.User{Email: "rina@example.com"}}).DisplayName())
	assert.Equal(t, "Rina", (&auth.Session{Token: "t", User: &model.User{Name: "Rina", Email: "rina@example.com"}}).DisplayName())
}

func TestRegisterLoginLogout_PersistsSession(t *testing.T) {
	setTestConfigDir(t)
	backend := backendtest.New()
	server := httptest.NewServer(backend.Handler())
	defer server.Close()
	client := service.NewClient(server.URL+backendtest.APIPrefix, server.Client())
	ctx := context.Background()

	session, err := auth.Register(ctx, client, " Rina ", "rina@example.com", "secret123")
	require.NoError(t, err)
	assert.True(t, session.SignedIn())
	assert.Equal(t, "Rina", session.User.Name)

	loaded, err := auth.Load()
	require.NoError(t, err)
	assert.Equal(t, session.Token, loaded.Token)

	require.NoError(t, auth.Logout())
	loaded, err = auth.Load()
	require.NoError(t, err)
	assert.False(t, loaded.SignedIn())

	session, err = auth.Login(ctx, client, "rina@example.com", "secret123")
	require.NoError(t, err)
	token, err := session.IdentityToken(time.Now())
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	_, err = auth.Login(ctx, client, "rina@example.com", "wrong-pass")
	assert.True(t, service.IsAuth(err), "expected auth error, got %v", err)
}

func TestLogin_ValidatesLocally(t *testing.T) {
	setTestConfigDir(t)
	api := &recordingAPI{}

	_, err := auth.Login(context.Background(), api, "not-an-email", "pw")
	var valErr *service.ValidationError
	require.True(t, errors.As(err, &valErr), "expected validation error, got %v", err)
	assert.Equal(t, "email", valErr.Field)

	_, err = auth.Register(context.Background(), api, "Rina", "rina@example.com", "123")
	require.True(t, errors.As(err, &valErr), "expected validation error, got %v", err)
	assert.Equal(t, "password", valErr.Field)

	assert.Zero(t, api.calls)
}

func TestLogin_EmptyTokenFromServer(t *testing.T) {
	setTestConfigDir(t)
	api := &recordingAPI{}

	_, err := auth.Login(context.Background(), api, "rina@example.com", "secret123")

	assert.True(t, service.IsAuth(err), "expected auth error, got %v", err)
	assert.Equal(t, 1, api.calls)
}

type recordingAPI struct {
	calls int
}

func (a *recordingAPI) Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error) {
	a.calls++
	return model.AuthResponse{User: model.User{Email: req.Email}}, nil
}

func (a *recordingAPI) Register(ctx context.Context, req model.RegisterRequest) (model.AuthResponse, error) {
	a.calls++
	return model.AuthResponse{User: model.User{Email: req.Email, Name: req.Name}}, nil
}
