package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/promptforge/platform-api/internal/core/domain"
)

func newAuthService(repo *stubUserRepo, secret string) *AuthService {
	return NewAuthService(repo, secret, time.Hour, zerolog.Nop())
}

func TestRegister(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthService(repo, "secret")

	user, err := svc.Register(context.Background(), "Nora@Example.COM", "hunter22", "Nora")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Email != "nora@example.com" {
		t.Fatalf("email not lowercased: %q", user.Email)
	}
	if user.PasswordHash == "" || user.PasswordHash == "hunter22" {
		t.Fatal("password stored without hashing")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("hunter22")) != nil {
		t.Fatal("stored hash does not verify against the password")
	}
	if user.Role != domain.RoleUser || user.Plan != domain.PlanFree {
		t.Fatalf("unexpected defaults: role=%s plan=%s", user.Role, user.Plan)
	}
	if user.TokenBalance != domain.DefaultTokenBalance {
		t.Fatalf("token balance = %d, want %d", user.TokenBalance, domain.DefaultTokenBalance)
	}
}

func TestRegister_Duplicate(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthService(repo, "secret")

	if _, err := svc.Register(context.Background(), "nora@example.com", "pw", "Nora"); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := svc.Register(context.Background(), "nora@example.com", "pw", "Nora"); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestRegister_RejectsBadInput(t *testing.T) {
	svc := newAuthService(newStubUserRepo(), "secret")

	if _, err := svc.Register(context.Background(), "not-an-email", "pw", ""); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("bad email: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Register(context.Background(), "a@b.com", "", ""); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("empty password: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthService(repo, "secret")

	registered, err := svc.Register(context.Background(), "nora@example.com", "hunter22", "Nora")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	token, user, err := svc.Login(context.Background(), "nora@example.com", "hunter22")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.ID != registered.ID {
		t.Fatalf("login returned user %s, want %s", user.ID, registered.ID)
	}

	// The minted token must verify against the same secret and carry the
	// user identity.
	parsed, err := jwt.Parse(token, func(*jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		t.Fatalf("minted token does not verify: %v", err)
	}
	claims := parsed.Claims.(jwt.MapClaims)
	if claims["sub"] != registered.ID {
		t.Fatalf("sub claim = %v, want %s", claims["sub"], registered.ID)
	}
	if claims["email"] != "nora@example.com" {
		t.Fatalf("email claim = %v", claims["email"])
	}
	if claims["role"] != domain.RoleUser {
		t.Fatalf("role claim = %v", claims["role"])
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthService(repo, "secret")

	if _, err := svc.Register(context.Background(), "nora@example.com", "hunter22", "Nora"); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, _, err := svc.Login(context.Background(), "nora@example.com", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := svc.Login(context.Background(), "nobody@example.com", "hunter22"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("unknown user: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_ExternalAccountHasNoPassword(t *testing.T) {
	repo := newStubUserRepo()
	repo.add(&domain.User{
		ID:    "ext-1",
		Email: "sso@example.com",
		Role:  domain.RoleUser,
	})
	svc := newAuthService(repo, "secret")

	if _, _, err := svc.Login(context.Background(), "sso@example.com", "anything"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("passwordless account: expected ErrInvalidCredentials, got %v", err)
	}
}
