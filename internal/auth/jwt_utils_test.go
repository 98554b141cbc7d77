package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestLogin(t *testing.T) {
	a, err := NewAuthenticator("sonata", "optics2025", "test-secret", time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name, user, pass string
		ok               bool
	}{
		{"valid", "sonata", "optics2025", true},
		{"wrong password", "sonata", "nope", false},
		{"wrong user", "admin", "optics2025", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := a.Login(tt.user, tt.pass)
			if !tt.ok {
				if !errors.Is(err, ErrInvalidCredentials) {
					t.Fatalf("err = %v, want ErrInvalidCredentials", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			claims, err := a.ValidateToken(token)
			if err != nil {
				t.Fatalf("validate: %v", err)
			}
			if claims.Username != "sonata" {
				t.Fatalf("username = %s", claims.Username)
			}
		})
	}
}

func TestValidateTokenRejects(t *testing.T) {
	a, _ := NewAuthenticator("sonata", "pw", "secret-a", time.Hour)
	other, _ := NewAuthenticator("sonata", "pw", "secret-b", time.Hour)
	expired, _ := NewAuthenticator("sonata", "pw", "secret-a", -time.Minute)

	foreign, _ := other.GenerateToken("sonata")
	if _, err := a.ValidateToken(foreign); err == nil {
		t.Fatal("token signed with another secret accepted")
	}

	old, _ := expired.GenerateToken("sonata")
	if _, err := a.ValidateToken(old); !errors.Is(err, jwt.ErrTokenExpired) {
		t.Fatalf("expired token: err = %v", err)
	}

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{Username: "sonata"})
	unsigned, _ := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if _, err := a.ValidateToken(unsigned); err == nil {
		t.Fatal("unsigned token accepted")
	}
}

func TestNewAuthenticatorRequiresSettings(t *testing.T) {
	if _, err := NewAuthenticator("", "pw", "s", time.Hour); err == nil {
		t.Fatal("missing username accepted")
	}
	if _, err := NewAuthenticator("u", "pw", "", time.Hour); err == nil {
		t.Fatal("missing secret accepted")
	}
}
