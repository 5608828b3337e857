package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"campus-exchange/internal/models"
	"campus-exchange/internal/services"
)

type stubUserStore map[int]*models.User

func (s stubUserStore) FindUser(_ context.Context, id int) (*models.User, error) {
	if u, ok := s[id]; ok {
		return u, nil
	}
	return nil, models.ErrNotFound
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	secret := []byte("test-secret")
	users := stubUserStore{5: {ID: 5, Email: "a@uni.edu"}}

	valid, err := services.GenerateToken(5, secret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	expired, err := services.GenerateToken(5, secret, -time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	unknownUser, err := services.GenerateToken(6, secret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	wrongKey, err := services.GenerateToken(5, []byte("other-secret"), time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	tests := []struct {
		name   string
		header string
		wantID int
		wantOK bool
	}{
		{name: "valid bearer", header: "Bearer " + valid, wantID: 5, wantOK: true},
		{name: "case-insensitive scheme", header: "bearer " + valid, wantID: 5, wantOK: true},
		{name: "missing header", header: ""},
		{name: "wrong scheme", header: "Basic " + valid},
		{name: "garbage token", header: "Bearer not.a.token"},
		{name: "expired token", header: "Bearer " + expired},
		{name: "wrong signing key", header: "Bearer " + wrongKey},
		{name: "unknown user", header: "Bearer " + unknownUser},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			id, err := Authenticate(context.Background(), users, test.header, secret)
			if test.wantOK {
				if err != nil {
					t.Fatalf("Authenticate: %v", err)
				}
				if id != test.wantID {
					t.Fatalf("Authenticate = %d, want %d", id, test.wantID)
				}
				return
			}
			if !errors.Is(err, ErrAuthRejected) {
				t.Fatalf("Authenticate = (%d, %v), want ErrAuthRejected", id, err)
			}
		})
	}
}
