package auth

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{name: "seed password", password: "john123"},
		{name: "password at minimum length", password: "123456"},
		{name: "password too short", password: "short", wantErr: ErrPasswordTooShort},
		{name: "password too long", password: strings.Repeat("a", 73), wantErr: ErrPasswordTooLong},
		{name: "password at maximum length", password: strings.Repeat("a", MaxPasswordBytes)},
		{name: "multibyte password over the byte limit", password: strings.Repeat("é", 37), wantErr: ErrPasswordTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := HashPassword(tt.password, bcrypt.MinCost)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("HashPassword() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr == nil && hash == "" {
				t.Error("HashPassword() returned empty hash for valid password")
			}
		})
	}
}

func TestPasswordErrorMessages(t *testing.T) {
	if got := ErrPasswordTooShort.Error(); got != "account password must be at least 6 characters" {
		t.Errorf("ErrPasswordTooShort = %q", got)
	}
	if got := ErrPasswordTooLong.Error(); got != "account password must be at most 72 bytes" {
		t.Errorf("ErrPasswordTooLong = %q", got)
	}
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("admin123", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	if err := CheckPassword("admin123", hash); err != nil {
		t.Errorf("CheckPassword() with correct password error = %v", err)
	}
	if err := CheckPassword("admin124", hash); !errors.Is(err, ErrInvalidPassword) {
		t.Errorf("CheckPassword() with wrong password error = %v, want %v", err, ErrInvalidPassword)
	}
	if err := CheckPassword("admin123", "not-a-hash"); err == nil || errors.Is(err, ErrInvalidPassword) {
		t.Errorf("CheckPassword() with malformed hash error = %v, want bcrypt error", err)
	}
}

func TestGenerateCSRFKey(t *testing.T) {
	a, err := GenerateCSRFKey()
	if err != nil {
		t.Fatalf("GenerateCSRFKey() error = %v", err)
	}
	b, _ := GenerateCSRFKey()

	if len(a) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(a))
	}
	if a == b {
		t.Error("expected distinct secrets")
	}
}
