package app_test

import (
	"context"
	"errors"
	"testing"

	"nightcap/internal/adapter/memory"
	"nightcap/internal/app"
)

func newAuthService(db *memory.DB) *app.AuthService {
	return app.NewAuthService(db, db.NewSessionRepo(), db)
}

func TestSignupLoginValidate(t *testing.T) {
	db := memory.New()
	svc := newAuthService(db)
	ctx := context.Background()

	user, err := svc.Signup(ctx, "sam", "hunter2hunter2", "Sam")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if user.PasswordHash == "hunter2hunter2" {
		t.Fatal("password stored in plaintext")
	}

	// Signup provisions the profile row for onboarding.
	profile, err := db.GetProfile(ctx, user.ID)
	if err != nil || profile == nil {
		t.Fatalf("profile not provisioned: %v %v", profile, err)
	}
	if profile.DisplayName != "Sam" {
		t.Fatalf("display name = %q", profile.DisplayName)
	}

	token, err := svc.Login(ctx, "sam", "hunter2hunter2")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	got, err := svc.ValidateSession(ctx, token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if got.ID != user.ID {
		t.Fatalf("validated wrong user: %d != %d", got.ID, user.ID)
	}
}

func TestSignup_DuplicateUsername(t *testing.T) {
	db := memory.New()
	svc := newAuthService(db)
	ctx := context.Background()

	if _, err := svc.Signup(ctx, "sam", "hunter2hunter2", "Sam"); err != nil {
		t.Fatalf("signup: %v", err)
	}
	if _, err := svc.Signup(ctx, "sam", "other-password", "Sam II"); !errors.Is(err, app.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	db := memory.New()
	svc := newAuthService(db)
	ctx := context.Background()

	if _, err := svc.Signup(ctx, "sam", "hunter2hunter2", "Sam"); err != nil {
		t.Fatalf("signup: %v", err)
	}

	if _, err := svc.Login(ctx, "sam", "wrong"); !errors.Is(err, app.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(ctx, "nobody", "hunter2hunter2"); !errors.Is(err, app.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestLogout_InvalidatesSession(t *testing.T) {
	db := memory.New()
	svc := newAuthService(db)
	ctx := context.Background()

	if _, err := svc.Signup(ctx, "sam", "hunter2hunter2", "Sam"); err != nil {
		t.Fatalf("signup: %v", err)
	}
	token, err := svc.Login(ctx, "sam", "hunter2hunter2")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := svc.Logout(ctx, token); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := svc.ValidateSession(ctx, token); !errors.Is(err, app.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestLoginWithUser_AutoProvisions(t *testing.T) {
	db := memory.New()
	svc := newAuthService(db)
	ctx := context.Background()

	token, err := svc.LoginWithUser(ctx, "sso@example.edu")
	if err != nil {
		t.Fatalf("sso login: %v", err)
	}

	user, err := svc.ValidateSession(ctx, token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if user.Username != "sso@example.edu" {
		t.Fatalf("unexpected user %q", user.Username)
	}
	profile, err := db.GetProfile(ctx, user.ID)
	if err != nil || profile == nil {
		t.Fatalf("sso profile not provisioned: %v %v", profile, err)
	}

	// Second SSO login reuses the existing account.
	if _, err := svc.LoginWithUser(ctx, "sso@example.edu"); err != nil {
		t.Fatalf("second sso login: %v", err)
	}
	count, _ := db.Count(ctx)
	if count != 1 {
		t.Fatalf("expected 1 user, got %d", count)
	}
}
