// Package identity owns user accounts and session tokens. Reviews and posts
// reference users by username, so the username is the stable identity key
// and the access token subject.
package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrConflict           = errors.New("user already exists")
	ErrNotFound           = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError reports a rejected registration field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid " + e.Field + ": " + e.Reason
}

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateUserParams struct {
	Email        string
	Username     string
	PasswordHash string
}

// UserRow pairs a user with its stored password hash for login checks.
type UserRow struct {
	User         User
	PasswordHash string
}

// RefreshSession is one refresh-token grant. Rotation revokes the old
// session and records its successor.
type RefreshSession struct {
	ID        uuid.UUID
	Username  string
	TokenHash string
	ExpiresAt time.Time
	RevokedAt *time.Time
}

type CreateRefreshSessionParams struct {
	SessionID uuid.UUID
	Username  string
	TokenHash string
	ExpiresAt time.Time
	Now       time.Time
}

// Store persists users and refresh sessions.
type Store interface {
	// CreateUser inserts a user; ErrConflict when the username or email is taken.
	CreateUser(ctx context.Context, p CreateUserParams) (User, error)
	// FindUserByLogin matches either username or email, case-insensitively.
	FindUserByLogin(ctx context.Context, login string) (UserRow, error)
	FindUserByUsername(ctx context.Context, username string) (User, error)

	CreateRefreshSession(ctx context.Context, p CreateRefreshSessionParams) error
	GetRefreshSessionByHash(ctx context.Context, tokenHash string) (RefreshSession, error)
	RevokeRefreshSession(ctx context.Context, sessionID uuid.UUID, now time.Time) error
	ReplaceRefreshSession(ctx context.Context, oldID, newID uuid.UUID, now time.Time) error
}
