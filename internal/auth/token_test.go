package auth

import (
	"errors"
	"testing"
	"time"
)

func TestTokenCodecRoundTrip(t *testing.T) {
	codec := NewTokenCodec("test-secret", time.Hour)

	token, err := codec.Issue(Identity{ID: "admin-1", Email: "staff@example.com"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	identity, err := codec.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if identity.ID != "admin-1" {
		t.Errorf("identity ID = %q, want %q", identity.ID, "admin-1")
	}
	if identity.Email != "staff@example.com" {
		t.Errorf("identity Email = %q, want %q", identity.Email, "staff@example.com")
	}
}

func TestTokenCodecExpired(t *testing.T) {
	codec := NewTokenCodec("test-secret", -time.Minute)

	token, err := codec.Issue(Identity{ID: "admin-1", Email: "staff@example.com"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := codec.Verify(token); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("verify expired token: err = %v, want ErrTokenExpired", err)
	}
}

func TestTokenCodecWrongSecret(t *testing.T) {
	issuer := NewTokenCodec("secret-a", time.Hour)
	verifier := NewTokenCodec("secret-b", time.Hour)

	token, err := issuer.Issue(Identity{ID: "admin-1", Email: "staff@example.com"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := verifier.Verify(token); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("verify with wrong secret: err = %v, want ErrTokenInvalid", err)
	}
}

func TestTokenCodecMalformed(t *testing.T) {
	codec := NewTokenCodec("test-secret", time.Hour)

	for _, token := range []string{"", "garbage", "a.b"} {
		if _, err := codec.Verify(token); !errors.Is(err, ErrTokenMalformed) {
			t.Errorf("Verify(%q): err = %v, want ErrTokenMalformed", token, err)
		}
	}
}
