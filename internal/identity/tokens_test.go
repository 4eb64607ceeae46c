package identity

import (
	"testing"
	"time"

	"github.com/example/review-platform/internal/platform/auth"
)

func TestNewAccessToken_RoundTrip(t *testing.T) {
	svc := TokenService{Secret: []byte("s3cret"), AccessTTL: time.Minute}
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	signed, exp, err := svc.NewAccessToken("alice", now)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if !exp.Equal(now.Add(time.Minute)) {
		t.Fatalf("unexpected expiry %v", exp)
	}

	claims, err := auth.JWTVerifier{Secret: []byte("s3cret")}.Parse(signed)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Subject != "alice" {
		t.Fatalf("expected subject alice, got %q", claims.Subject)
	}
}

func TestNewAccessToken_Expired(t *testing.T) {
	svc := TokenService{Secret: []byte("s3cret"), AccessTTL: time.Minute}
	signed, _, err := svc.NewAccessToken("alice", time.Now().UTC().Add(-time.Hour))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := (auth.JWTVerifier{Secret: []byte("s3cret")}).Parse(signed); err == nil {
		t.Fatal("expected expired token to fail")
	}
}

func TestNewAccessToken_WrongSecret(t *testing.T) {
	svc := TokenService{Secret: []byte("s3cret"), AccessTTL: time.Minute}
	signed, _, err := svc.NewAccessToken("alice", time.Time{})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := (auth.JWTVerifier{Secret: []byte("other")}).Parse(signed); err == nil {
		t.Fatal("expected wrong-secret parse to fail")
	}
}

func TestNewAccessToken_MissingSecret(t *testing.T) {
	svc := TokenService{AccessTTL: time.Minute}
	if _, _, err := svc.NewAccessToken("alice", time.Time{}); err == nil {
		t.Fatal("expected an error without a secret")
	}
}

func TestNewRefreshToken(t *testing.T) {
	raw, hash, err := NewRefreshToken()
	if err != nil {
		t.Fatalf("new refresh token: %v", err)
	}
	if raw == "" || hash == "" || raw == hash {
		t.Fatalf("unexpected token pair raw=%q hash=%q", raw, hash)
	}
	if HashRefreshToken(raw) != hash {
		t.Fatal("hash does not match the raw token")
	}

	raw2, _, err := NewRefreshToken()
	if err != nil {
		t.Fatal(err)
	}
	if raw2 == raw {
		t.Fatal("expected unique tokens")
	}
}
