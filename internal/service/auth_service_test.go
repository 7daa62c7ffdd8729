package service

import (
	"context"
	"testing"
	"time"

	"github.com/fintrack/groupledger/internal/auth"
	"github.com/fintrack/groupledger/internal/errs"
	"github.com/fintrack/groupledger/internal/storage/memory"
)

func newAuthService() *AuthService {
	store := memory.New()
	jwtManager := auth.NewJWTManager("test-secret-key-for-tests-only", time.Hour)
	return NewAuthService(auth.NewPasswordAuthenticator(store), jwtManager)
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newAuthService()
	ctx := context.Background()

	session, err := svc.Register(ctx, "alice@example.com", "Alice", "correct horse battery")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if session.Token == "" {
		t.Error("no token issued on registration")
	}
	if session.User.ID == "" || session.User.DisplayName != "Alice" {
		t.Errorf("user = %+v, want Alice with an ID", session.User)
	}

	login, err := svc.Login(ctx, "alice@example.com", "correct horse battery")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if login.User.ID != session.User.ID {
		t.Errorf("login user ID = %s, want %s", login.User.ID, session.User.ID)
	}
}

func TestRegisterRejections(t *testing.T) {
	svc := newAuthService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice@example.com", "Alice", "short"); !errs.IsKind(err, errs.KindInvalid) {
		t.Errorf("weak password kind = %v, want KindInvalid", errs.KindOf(err))
	}

	if _, err := svc.Register(ctx, "alice@example.com", "Alice", "correct horse battery"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if _, err := svc.Register(ctx, "alice@example.com", "Alice2", "another password"); !errs.IsKind(err, errs.KindInvalid) {
		t.Errorf("duplicate email kind = %v, want KindInvalid", errs.KindOf(err))
	}
}

func TestLoginFailures(t *testing.T) {
	svc := newAuthService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice@example.com", "Alice", "correct horse battery"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if _, err := svc.Login(ctx, "alice@example.com", "wrong password!"); !errs.IsKind(err, errs.KindUnauthenticated) {
		t.Errorf("wrong password kind = %v, want KindUnauthenticated", errs.KindOf(err))
	}
	if _, err := svc.Login(ctx, "nobody@example.com", "correct horse battery"); !errs.IsKind(err, errs.KindUnauthenticated) {
		t.Errorf("unknown email kind = %v, want KindUnauthenticated", errs.KindOf(err))
	}
}
