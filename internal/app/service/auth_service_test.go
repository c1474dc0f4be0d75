package service

import (
	"context"
	"errors"
	"testing"

	"huntserver/internal/common"
	"huntserver/internal/common/security"
	"huntserver/internal/domain/repository"
	"huntserver/internal/platform/config"
	"huntserver/internal/testutil"
)

func setupAuth(t *testing.T) *AuthService {
	t.Helper()

	db := testutil.SetupTestDB(t)
	config.Load()
	security.InitJWT()
	return NewAuthService(repository.NewPgPersonRepository(db))
}

func TestSignupAndLogin(t *testing.T) {
	svc := setupAuth(t)
	ctx := context.Background()

	resp, err := svc.Signup(ctx, SignupRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "hunter22",
		Phone:    "555-0100",
	})
	if err != nil {
		t.Fatalf("Failed to sign up: %v", err)
	}
	if resp.Token == "" {
		t.Error("Expected a token on signup")
	}
	if resp.Person.HashedPassword != "" {
		t.Error("Hashed password must not be returned")
	}

	// Login with email, then with username.
	for _, field := range []string{"alice@example.com", "alice"} {
		resp, err := svc.Login(ctx, LoginRequest{LoginField: field, Password: "hunter22"})
		if err != nil {
			t.Fatalf("Failed to log in with %q: %v", field, err)
		}
		if resp.Token == "" {
			t.Errorf("Expected a token on login with %q", field)
		}
	}

	if _, err := svc.Login(ctx, LoginRequest{LoginField: "alice", Password: "wrong"}); !errors.Is(err, common.ErrUnauthorized) {
		t.Fatalf("Expected ErrUnauthorized for wrong password, got %v", err)
	}
	if _, err := svc.Login(ctx, LoginRequest{LoginField: "nobody", Password: "hunter22"}); !errors.Is(err, common.ErrUnauthorized) {
		t.Fatalf("Expected ErrUnauthorized for unknown person, got %v", err)
	}
}

func TestSignupDuplicateUsername(t *testing.T) {
	svc := setupAuth(t)
	ctx := context.Background()

	req := SignupRequest{Username: "alice", Email: "alice@example.com", Password: "hunter22"}
	if _, err := svc.Signup(ctx, req); err != nil {
		t.Fatalf("Failed to sign up: %v", err)
	}
	req.Email = "alice2@example.com"
	if _, err := svc.Signup(ctx, req); !errors.Is(err, common.ErrConflict) {
		t.Fatalf("Expected ErrConflict for duplicate username, got %v", err)
	}
}
