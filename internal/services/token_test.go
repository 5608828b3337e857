package services

import (
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	t.Parallel()
	secret := []byte("round-trip-secret")

	token, err := GenerateToken(42, secret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	userID, err := ValidateToken(token, secret)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if userID != 42 {
		t.Errorf("ValidateToken = %d, want 42", userID)
	}
}

func TestValidateTokenRejects(t *testing.T) {
	t.Parallel()
	secret := []byte("round-trip-secret")

	expired, err := GenerateToken(42, secret, -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	foreign, err := GenerateToken(42, []byte("another-secret"), time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"expired", expired},
		{"wrong secret", foreign},
		{"not a token", "abc.def.ghi"},
		{"empty", ""},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			if _, err := ValidateToken(test.token, secret); err == nil {
				t.Error("ValidateToken accepted a bad token")
			}
		})
	}
}
