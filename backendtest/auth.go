package backendtest

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"studio-booking-cli/model"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// AddUser registers an account and returns it with a fresh token.
func (s *Server) AddUser(email string, password string, name string, role model.Role) (model.User, string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return model.User{}, "", err
	}

	s.mu.Lock()
	key := strings.ToLower(strings.TrimSpace(email))
	if _, exists := s.accounts[key]; exists {
		s.mu.Unlock()
		return model.User{}, "", ErrEmailTaken
	}
	s.nextUserID++
	now := s.now().UTC()
	user := model.User{ID: s.nextUserID, Email: key, Name: name, Role: role, CreatedAt: now, UpdatedAt: now}
	s.accounts[key] = &account{user: user, passwordHash: hash}
	s.mu.Unlock()

	token, err := s.IssueToken(user)
	if err != nil {
		return model.User{}, "", err
	}
	return user, token, nil
}

func (s *Server) login(email string, password string) (model.User, string, error) {
	s.mu.Lock()
	acc, ok := s.accounts[strings.ToLower(strings.TrimSpace(email))]
	s.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(password)) != nil {
		return model.User{}, "", ErrInvalidCredentials
	}
	token, err := s.IssueToken(acc.user)
	if err != nil {
		return model.User{}, "", err
	}
	return acc.user, token, nil
}

// IssueToken signs an HS256 access token for user.
func (s *Server) IssueToken(user model.User) (string, error) {
	return s.issueToken(user, s.now().Add(s.tokenTTL))
}

// IssueExpiredToken signs a token that expired an hour ago.
func (s *Server) IssueExpiredToken(user model.User) (string, error) {
	return s.issueToken(user, s.now().Add(-time.Hour))
}

func (s *Server) issueToken(user model.User, exp time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"role":  string(user.Role),
		"exp":   exp.Unix(),
		"iat":   s.now().Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// userFromToken returns the account behind a bearer token.
func (s *Server) userFromToken(raw string) (model.User, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !tok.Valid {
		return model.User{}, errors.New("invalid token")
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return model.User{}, errors.New("invalid claims")
	}
	email, _ := claims["email"].(string)

	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[email]
	if !ok {
		return model.User{}, errors.New("unknown user")
	}
	return acc.user, nil
}
