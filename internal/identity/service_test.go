package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/example/review-platform/internal/platform/auth"
)

func newTestService() *Service {
	return NewService(NewInMemoryStore(), TokenService{
		Secret:     []byte("test-secret"),
		AccessTTL:  time.Minute,
		RefreshTTL: time.Hour,
	}, zap.NewNop())
}

func TestRegisterLogin(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	sess, err := svc.Register(ctx, "alice@example.com", "alice", "password123")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if sess.User.Username != "alice" || sess.AccessToken == "" || sess.RefreshToken == "" {
		t.Fatalf("incomplete session: %+v", sess)
	}

	// Token subject is the username and verifies against the shared secret.
	claims, err := auth.JWTVerifier{Secret: []byte("test-secret")}.Parse(sess.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.Subject != "alice" {
		t.Fatalf("expected subject alice, got %q", claims.Subject)
	}

	// Login by username and by email.
	for _, login := range []string{"alice", "ALICE", "alice@example.com"} {
		if _, err := svc.Login(ctx, login, "password123"); err != nil {
			t.Fatalf("login %q: %v", login, err)
		}
	}
}

func TestRegister_Validation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	cases := []struct {
		email, username, password, field string
	}{
		{"bad", "alice", "password123", "email"},
		{"a@b.co", "a", "password123", "username"},
		{"a@b.co", "has space", "password123", "username"},
		{"a@b.co", "alice", "short", "password"},
	}
	for _, tc := range cases {
		_, err := svc.Register(ctx, tc.email, tc.username, tc.password)
		var ve *ValidationError
		if !errors.As(err, &ve) || ve.Field != tc.field {
			t.Fatalf("register(%q,%q): expected %s validation error, got %v",
				tc.email, tc.username, tc.field, err)
		}
	}
}

func TestRegister_DuplicateUsername(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "a@b.co", "alice", "password123"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Register(ctx, "other@b.co", "alice", "password123"); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if _, err := svc.Register(ctx, "a@b.co", "bob", "password123"); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict on duplicate email, got %v", err)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "a@b.co", "alice", "password123"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Login(ctx, "alice", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(ctx, "nobody", "password123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestRefresh_Rotation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	first, err := svc.Register(ctx, "a@b.co", "alice", "password123")
	if err != nil {
		t.Fatal(err)
	}

	second, err := svc.Refresh(ctx, first.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if second.RefreshToken == first.RefreshToken {
		t.Fatal("expected a rotated refresh token")
	}
	if second.User.Username != "alice" {
		t.Fatalf("unexpected user: %+v", second.User)
	}

	// The old token was revoked by the rotation.
	if _, err := svc.Refresh(ctx, first.RefreshToken); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected replayed token to fail, got %v", err)
	}
	// The new one still works.
	if _, err := svc.Refresh(ctx, second.RefreshToken); err != nil {
		t.Fatalf("refresh with rotated token: %v", err)
	}
}

func TestLogout(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	sess, err := svc.Register(ctx, "a@b.co", "alice", "password123")
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Logout(ctx, sess.RefreshToken); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := svc.Refresh(ctx, sess.RefreshToken); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected revoked token to fail, got %v", err)
	}
	// Idempotent: unknown or already revoked tokens are fine.
	if err := svc.Logout(ctx, sess.RefreshToken); err != nil {
		t.Fatalf("second logout: %v", err)
	}
	if err := svc.Logout(ctx, "never-issued"); err != nil {
		t.Fatalf("logout unknown token: %v", err)
	}
}

func TestProfile(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "a@b.co", "alice", "password123"); err != nil {
		t.Fatal(err)
	}
	u, err := svc.Profile(ctx, "alice")
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if u.Username != "alice" || u.Email != "a@b.co" {
		t.Fatalf("unexpected profile: %+v", u)
	}
	if _, err := svc.Profile(ctx, "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
