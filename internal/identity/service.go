package identity

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]{3,32}$`)
	emailRe    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// Session is the result of a successful register, login, or refresh.
type Session struct {
	User         User   `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

type Service struct {
	store  Store
	tokens TokenService
	log    *zap.Logger
}

func NewService(store Store, tokens TokenService, log *zap.Logger) *Service {
	if tokens.AccessTTL <= 0 {
		tokens.AccessTTL = 15 * time.Minute
	}
	if tokens.RefreshTTL <= 0 {
		tokens.RefreshTTL = 30 * 24 * time.Hour
	}
	return &Service{store: store, tokens: tokens, log: log}
}

func (s *Service) Register(ctx context.Context, email, username, password string) (Session, error) {
	email = strings.TrimSpace(email)
	username = strings.TrimSpace(username)

	if len(email) > 254 || !emailRe.MatchString(email) {
		return Session{}, &ValidationError{Field: "email", Reason: "invalid"}
	}
	if !usernameRe.MatchString(username) {
		return Session{}, &ValidationError{Field: "username", Reason: "3-32 word characters"}
	}
	if len(password) < 8 {
		return Session{}, &ValidationError{Field: "password", Reason: "min length 8"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Session{}, err
	}

	u, err := s.store.CreateUser(ctx, CreateUserParams{
		Email:        email,
		Username:     username,
		PasswordHash: string(hash),
	})
	if err != nil {
		return Session{}, err
	}
	return s.issue(ctx, u)
}

func (s *Service) Login(ctx context.Context, login, password string) (Session, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return Session{}, ErrInvalidCredentials
	}

	row, err := s.store.FindUserByLogin(ctx, login)
	if err != nil {
		return Session{}, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(row.PasswordHash), []byte(password)) != nil {
		return Session{}, ErrInvalidCredentials
	}
	return s.issue(ctx, row.User)
}

// Refresh rotates the refresh token: the presented session is revoked and a
// successor issued, so a replayed old token fails.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	raw := strings.TrimSpace(refreshToken)
	if raw == "" {
		return Session{}, ErrInvalidCredentials
	}

	sess, err := s.store.GetRefreshSessionByHash(ctx, HashRefreshToken(raw))
	if err != nil {
		return Session{}, ErrInvalidCredentials
	}
	now := time.Now().UTC()
	if sess.RevokedAt != nil || now.After(sess.ExpiresAt) {
		return Session{}, ErrInvalidCredentials
	}

	u, err := s.store.FindUserByUsername(ctx, sess.Username)
	if err != nil {
		return Session{}, ErrInvalidCredentials
	}

	access, exp, err := s.tokens.NewAccessToken(u.Username, now)
	if err != nil {
		return Session{}, err
	}
	newRaw, newHash, err := NewRefreshToken()
	if err != nil {
		return Session{}, err
	}
	newID := uuid.New()
	if err := s.store.ReplaceRefreshSession(ctx, sess.ID, newID, now); err != nil {
		return Session{}, err
	}
	if err := s.store.CreateRefreshSession(ctx, CreateRefreshSessionParams{
		SessionID: newID,
		Username:  u.Username,
		TokenHash: newHash,
		ExpiresAt: now.Add(s.tokens.RefreshTTL),
		Now:       now,
	}); err != nil {
		return Session{}, err
	}

	return Session{
		User:         u,
		AccessToken:  access,
		RefreshToken: newRaw,
		ExpiresIn:    int64(time.Until(exp).Seconds()),
	}, nil
}

// Logout revokes the presented refresh session. Unknown tokens are ignored;
// logout is idempotent.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	raw := strings.TrimSpace(refreshToken)
	if raw == "" {
		return nil
	}
	sess, err := s.store.GetRefreshSessionByHash(ctx, HashRefreshToken(raw))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}
	return s.store.RevokeRefreshSession(ctx, sess.ID, time.Now().UTC())
}

// Profile resolves a public user record by username.
func (s *Service) Profile(ctx context.Context, username string) (User, error) {
	return s.store.FindUserByUsername(ctx, username)
}

func (s *Service) issue(ctx context.Context, u User) (Session, error) {
	now := time.Now().UTC()
	access, exp, err := s.tokens.NewAccessToken(u.Username, now)
	if err != nil {
		return Session{}, err
	}
	refreshRaw, refreshHash, err := NewRefreshToken()
	if err != nil {
		return Session{}, err
	}
	if err := s.store.CreateRefreshSession(ctx, CreateRefreshSessionParams{
		SessionID: uuid.New(),
		Username:  u.Username,
		TokenHash: refreshHash,
		ExpiresAt: now.Add(s.tokens.RefreshTTL),
		Now:       now,
	}); err != nil {
		return Session{}, err
	}

	return Session{
		User:         u,
		AccessToken:  access,
		RefreshToken: refreshRaw,
		ExpiresIn:    int64(time.Until(exp).Seconds()),
	}, nil
}
