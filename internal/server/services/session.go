// Package services contains server-side business logic: sessions, the
// social graph, profiles and posts.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophgram/internal/common"
	"github.com/dmitrijs2005/gophgram/internal/cryptox"
	"github.com/dmitrijs2005/gophgram/internal/server/auth"
	"github.com/dmitrijs2005/gophgram/internal/server/config"
	"github.com/dmitrijs2005/gophgram/internal/server/models"
	"github.com/dmitrijs2005/gophgram/internal/server/repositories/repomanager"
)

// SessionService verifies credentials and issues, validates and invalidates
// stateless session tokens.
type SessionService struct {
	repomanager   repomanager.RepositoryManager
	hasher        cryptox.PasswordHasher
	jwtSecret     []byte
	tokenValidity time.Duration
	cookieSecure  bool
}

func NewSessionService(m repomanager.RepositoryManager, hasher cryptox.PasswordHasher, cfg *config.Config) *SessionService {
	return &SessionService{
		repomanager:   m,
		hasher:        hasher,
		jwtSecret:     []byte(cfg.SecretKey),
		tokenValidity: cfg.SessionTokenValidityDuration,
		cookieSecure:  cfg.CookieSecure,
	}
}

// Register creates an account. Username and email must both be unused.
func (s *SessionService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: username, email and password are required", common.ErrValidation)
	}

	hash, err := s.hasher.Hash([]byte(password))
	if err != nil {
		return nil, common.ErrorInternal
	}

	u, err := s.repomanager.Users(nil).Create(ctx, &models.User{UserName: username, Email: email, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return u.Public(), nil
}

// Authenticate checks email and password and returns a signed token together
// with the user's profile. An unknown email and a wrong password are
// indistinguishable to the caller.
func (s *SessionService) Authenticate(ctx context.Context, email, password string) (string, *models.Profile, error) {
	user, err := s.repomanager.Users(nil).GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", nil, common.ErrInvalidCredentials
		}
		return "", nil, common.ErrorInternal
	}

	if !s.hasher.Compare(user.PasswordHash, []byte(password)) {
		return "", nil, common.ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(user.ID, s.jwtSecret, s.tokenValidity)
	if err != nil {
		return "", nil, common.ErrorInternal
	}

	posts, err := s.repomanager.Posts(nil).ListByAuthor(ctx, user.ID)
	if err != nil {
		return "", nil, common.ErrorInternal
	}

	return token, models.NewProfile(user, posts), nil
}

// Validate returns the user id bound to token. Any failure wraps
// common.ErrUnauthenticated.
func (s *SessionService) Validate(token string) (string, error) {
	userID, err := auth.GetUserIDFromToken(token, s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrUnauthenticated, err)
	}
	return userID, nil
}

// Cookie carries token to the browser for the token's lifetime.
func (s *SessionService) Cookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     common.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.tokenValidity / time.Second),
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: http.SameSiteStrictMode,
	}
}

// Invalidate returns the cookie that makes the client drop its token.
// Tokens are not revoked server-side and stay valid until they expire.
func (s *SessionService) Invalidate() *http.Cookie {
	return &http.Cookie{
		Name:     common.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: http.SameSiteStrictMode,
	}
}
