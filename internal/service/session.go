package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/password-analyzer/internal/apperror"
	"github.com/sakif/password-analyzer/internal/auth"
	"github.com/sakif/password-analyzer/internal/model"
	"github.com/sakif/password-analyzer/internal/repository"
)

const (
	sessionNamespace = "session"
	sessionKey       = "current"
)

// msgNotLoggedIn is shown when a command needs an account and nobody is
// signed in.
const msgNotLoggedIn = "You are not logged in. Run `password-analyzer auth login` first."

// Session tracks who is signed in on this machine.
//
// Login stores a signed session token in the key-value store; every later
// command reads it back through CurrentUser. A token that fails validation
// (expired, signed with another secret, or naming a deleted account) is
// removed and treated as no session.
type Session struct {
	kv     repository.KVRepository
	users  repository.UserRepository
	tokens *auth.TokenService
	logger *slog.Logger
}

func NewSession(
	kv repository.KVRepository,
	users repository.UserRepository,
	tokens *auth.TokenService,
	logger *slog.Logger,
) *Session {
	return &Session{kv: kv, users: users, tokens: tokens, logger: logger}
}

// Start replaces the current session with one for userID.
func (s *Session) Start(ctx context.Context, userID string) error {
	token, err := s.tokens.Generate(userID)
	if err != nil {
		return fmt.Errorf("service/session: %w", err)
	}
	if err := s.kv.Set(ctx, sessionNamespace, sessionKey, token); err != nil {
		return fmt.Errorf("service/session: storing token: %w", err)
	}
	return nil
}

// CurrentUser returns the signed-in user, or nil with no error when there
// is none.
func (s *Session) CurrentUser(ctx context.Context) (*model.User, error) {
	token, err := s.kv.Get(ctx, sessionNamespace, sessionKey)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("service/session: reading token: %w", err)
	}

	userID, err := s.tokens.Validate(token)
	if err != nil {
		s.logger.Info("discarding session", slog.String("reason", err.Error()))
		return nil, s.End(ctx)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			s.logger.Info("discarding session for missing user", slog.String("userID", userID))
			return nil, s.End(ctx)
		}
		return nil, fmt.Errorf("service/session: loading user %s: %w", userID, err)
	}

	return user, nil
}

// RequireUser is CurrentUser for commands that need an account: no
// session is apperror.ErrUnauthorized.
func (s *Session) RequireUser(ctx context.Context) (*model.User, error) {
	user, err := s.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.Unauthorized(msgNotLoggedIn)
	}
	return user, nil
}

// End removes the session. Ending a session that does not exist is fine.
func (s *Session) End(ctx context.Context) error {
	if err := s.kv.Delete(ctx, sessionNamespace, sessionKey); err != nil {
		return fmt.Errorf("service/session: deleting token: %w", err)
	}
	return nil
}
