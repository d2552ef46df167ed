package auth

import (
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", time.Minute)
	token, expires, err := tm.GenerateToken("session-1")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if !expires.After(time.Now()) {
		t.Error("expected expiry in the future")
	}

	claims, err := tm.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.SessionID != "session-1" {
		t.Errorf("SessionID = %q", claims.SessionID)
	}
}

func TestTokenRejectsForeignSecret(t *testing.T) {
	token, _, err := NewTokenManager("one", time.Minute).GenerateToken("s")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewTokenManager("two", time.Minute).ParseToken(token); err == nil {
		t.Error("expected signature mismatch to be rejected")
	}
	if _, err := NewTokenManager("one", time.Minute).ParseToken("not-a-jwt"); err == nil {
		t.Error("expected garbage to be rejected")
	}
}

func TestTokenExpires(t *testing.T) {
	tm := NewTokenManager("secret", time.Minute)
	issued := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	tm.now = func() time.Time { return issued }
	token, _, err := tm.GenerateToken("s")
	if err != nil {
		t.Fatal(err)
	}

	tm.now = func() time.Time { return issued.Add(2 * time.Minute) }
	if _, err := tm.ParseToken(token); err == nil {
		t.Error("expected expired token to be rejected")
	}
}
