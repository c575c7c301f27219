// Package auth holds the signed-in identity that the shells pass to the
// booking services.
package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"studio-booking-cli/model"
	"studio-booking-cli/service"
	"studio-booking-cli/store"
)

// API is the part of the backend that issues tokens.
type API interface {
	Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error)
	Register(ctx context.Context, req model.RegisterRequest) (model.AuthResponse, error)
}

// Session is the current identity. A nil *Session or one without a token is
// anonymous.
type Session struct {
	User  *model.User
	Token string
}

var validate = service.NewValidator()

// Load restores the session saved by the last Login or Register. It returns
// an anonymous session when nothing is stored.
func Load() (*Session, error) {
	saved, ok, err := store.LoadSession()
	if err != nil {
		return &Session{}, fmt.Errorf("load session: %w", err)
	}
	if !ok {
		return &Session{}, nil
	}
	user := saved.User
	return &Session{User: &user, Token: saved.Token}, nil
}

func Login(ctx context.Context, api API, email string, password string) (*Session, error) {
	req := model.LoginRequest{Email: strings.TrimSpace(email), Password: password}
	if err := validate.Struct(req); err != nil {
		return nil, service.FieldError(err)
	}
	res, err := api.Login(ctx, req)
	if err != nil {
		return nil, err
	}
	return persist(res)
}

func Register(ctx context.Context, api API, name string, email string, password string) (*Session, error) {
	req := model.RegisterRequest{
		Email:    strings.TrimSpace(email),
		Password: password,
		Name:     strings.TrimSpace(name),
	}
	if err := validate.Struct(req); err != nil {
		return nil, service.FieldError(err)
	}
	res, err := api.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	return persist(res)
}

// Logout forgets the stored session.
func Logout() error {
	return store.ClearSession()
}

func (s *Session) SignedIn() bool {
	return s != nil && strings.TrimSpace(s.Token) != ""
}

// IdentityToken returns the bearer token for authenticated calls. Tokens that
// parse as JWTs are checked for expiry against now; opaque tokens pass as-is.
func (s *Session) IdentityToken(now time.Time) (string, error) {
	if !s.SignedIn() {
		return "", &service.AuthError{Reason: "not signed in"}
	}
	token := strings.TrimSpace(s.Token)

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return token, nil
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return token, nil
	}
	if !now.Before(exp.Time) {
		return "", &service.AuthError{Reason: "session expired"}
	}
	return token, nil
}

// CanSellOffline reports whether the user may book for walk-in customers.
func (s *Session) CanSellOffline() bool {
	if !s.SignedIn() || s.User == nil {
		return false
	}
	return s.User.Role == model.RoleCashier || s.User.Role == model.RoleAdmin
}

func (s *Session) DisplayName() string {
	if !s.SignedIn() || s.User == nil {
		return "guest"
	}
	if s.User.Name != "" {
		return s.User.Name
	}
	return s.User.Email
}

func persist(res model.AuthResponse) (*Session, error) {
	if strings.TrimSpace(res.Token) == "" {
		return nil, &service.AuthError{Reason: "server returned no token"}
	}
	if err := store.SaveSession(store.Session{User: res.User, Token: res.Token}); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	user := res.User
	return &Session{User: &user, Token: res.Token}, nil
}
