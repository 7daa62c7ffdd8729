package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/fintrack/groupledger/internal/auth"
	"github.com/fintrack/groupledger/internal/errs"
	"github.com/fintrack/groupledger/internal/models"
)

// AuthService handles registration and login, issuing session tokens.
// It fronts the authentication collaborator; the ledger services only
// ever see the user ID placed in the request context.
type AuthService struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
}

// NewAuthService creates a new AuthService.
func NewAuthService(authenticator auth.Authenticator, jwtManager *auth.JWTManager) *AuthService {
	return &AuthService{authenticator: authenticator, jwtManager: jwtManager}
}

// Session is the result of a successful registration or login.
type Session struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Register creates a new account and returns a session for it.
func (s *AuthService) Register(ctx context.Context, email, displayName, password string) (*Session, error) {
	const op = "auth.Register"

	user, err := s.authenticator.Register(ctx, email, displayName, password)
	if err != nil {
		if errors.Is(err, auth.ErrWeakPassword) || errors.Is(err, auth.ErrEmailExists) {
			return nil, &errs.Error{Kind: errs.KindInvalid, Op: op, Reason: err.Error()}
		}
		return nil, errs.Wrap(op, err)
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		return nil, errs.Wrap(op, err)
	}

	slog.Info("user registered", "user_id", user.ID)
	return &Session{Token: token, User: user}, nil
}

// Login verifies credentials and returns a session.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	const op = "auth.Login"

	user, err := s.authenticator.Authenticate(ctx, email, password)
	if err != nil {
		return nil, errs.Unauthenticated(op)
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		return nil, errs.Wrap(op, err)
	}

	slog.Info("user logged in", "user_id", user.ID)
	return &Session{Token: token, User: user}, nil
}
