package main

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

func TestAuthDisabled(t *testing.T) {
	a, err := NewAuth(nil, "", "")
	if err != nil {
		t.Fatal(err)
	}
	if a.Enabled() {
		t.Error("auth without a password should be disabled")
	}
	if _, err := a.Login("anything", "1.2.3.4"); !errors.Is(err, ErrAdminDisabled) {
		t.Errorf("expected ErrAdminDisabled, got %v", err)
	}
}

func TestAuthLogin(t *testing.T) {
	a, err := NewAuth(nil, "hunter2", "")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := a.Login("wrong", "1.2.3.4"); !errors.Is(err, ErrBadPassword) {
		t.Errorf("expected ErrBadPassword, got %v", err)
	}

	token, err := a.Login("hunter2", "1.2.3.4")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if err := a.ValidateToken(token); err != nil {
		t.Errorf("issued token should validate: %v", err)
	}
	if err := a.ValidateToken(token + "x"); err == nil {
		t.Error("tampered token should not validate")
	}
	if err := a.ValidateToken(""); err == nil {
		t.Error("empty token should not validate")
	}
}

func TestAuthPasswordHash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("letmein"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	a, err := NewAuth(nil, "ignored", string(hash))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := a.Login("letmein", "1.2.3.4"); err != nil {
		t.Errorf("hash login failed: %v", err)
	}
	if _, err := a.Login("ignored", "1.2.3.4"); !errors.Is(err, ErrBadPassword) {
		t.Error("the hash should take precedence over the plain password")
	}

	if _, err := NewAuth(nil, "", "not-a-hash"); err == nil {
		t.Error("malformed hash should be rejected")
	}
}

func TestAuthRejectsForeignTokens(t *testing.T) {
	a, err := NewAuth(nil, "hunter2", "")
	if err != nil {
		t.Fatal(err)
	}

	// Right key, wrong role
	claims := jwt.MapClaims{"role": "player", "exp": time.Now().Add(time.Hour).Unix()}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.jwtSecret)
	if err != nil {
		t.Fatal(err)
	}
	if err := a.ValidateToken(tok); err == nil {
		t.Error("non-admin token should not validate")
	}

	// Expired
	claims = jwt.MapClaims{"role": adminRole, "exp": time.Now().Add(-time.Hour).Unix()}
	tok, _ = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.jwtSecret)
	if err := a.ValidateToken(tok); err == nil {
		t.Error("expired token should not validate")
	}

	// Signed by another server
	other, _ := NewAuth(nil, "hunter2", "")
	tok, _ = other.Login("hunter2", "5.6.7.8")
	if err := a.ValidateToken(tok); err == nil {
		t.Error("token from another secret should not validate")
	}
}

func TestAuthRateLimit(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	a, err := NewAuth(nil, "", string(hash))
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < maxLoginAttempts; i++ {
		if _, err := a.Login("wrong", "9.9.9.9"); !errors.Is(err, ErrBadPassword) {
			t.Fatalf("attempt %d: expected ErrBadPassword, got %v", i+1, err)
		}
	}
	if _, err := a.Login("pw", "9.9.9.9"); !errors.Is(err, ErrRateLimited) {
		t.Errorf("expected ErrRateLimited, got %v", err)
	}
	if _, err := a.Login("pw", "8.8.8.8"); err != nil {
		t.Errorf("other addresses should not be limited: %v", err)
	}
}

func TestAuthSecretPersists(t *testing.T) {
	db := openTestDB(t, filepath.Join(t.TempDir(), "auth.db"))

	a1, err := NewAuth(db, "hunter2", "")
	if err != nil {
		t.Fatal(err)
	}
	token, err := a1.Login("hunter2", "1.2.3.4")
	if err != nil {
		t.Fatal(err)
	}

	a2, err := NewAuth(db, "hunter2", "")
	if err != nil {
		t.Fatal(err)
	}
	if err := a2.ValidateToken(token); err != nil {
		t.Errorf("token should survive a restart: %v", err)
	}
}

func TestAuthRatePrunesExpired(t *testing.T) {
	a, err := NewAuth(nil, "", "")
	if err != nil {
		t.Fatal(err)
	}
	past := time.Now().Add(-time.Minute)
	a.rateMap["1.1.1.1"] = &rateEntry{Count: 3, ResetAt: past}
	a.rateMap["2.2.2.2"] = &rateEntry{Count: maxLoginAttempts + 1, ResetAt: past}
	a.rateMap["3.3.3.3"] = &rateEntry{Count: 1, ResetAt: time.Now().Add(time.Minute)}

	if !a.checkRate("4.4.4.4") {
		t.Fatal("first attempt from a new address should pass")
	}
	if len(a.rateMap) != 2 {
		t.Errorf("expected expired entries pruned, got %d entries", len(a.rateMap))
	}
	if _, ok := a.rateMap["3.3.3.3"]; !ok {
		t.Error("an entry still inside its window should be kept")
	}
}
