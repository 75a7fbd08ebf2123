// Package service holds the account, settings, chat and analyzer use cases.
//
// Services sit between the command line and the storage layer:
//
//	cobra command → Service (business rules) → repository (SQLite)
//	                       ↘ auth (bcrypt, JWT, GitHub)  ↘ mail, storage
//
// They return *apperror.AppError for anything the person at the terminal
// can fix, and wrap everything else with the service and operation name.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/password-analyzer/internal/apperror"
	"github.com/sakif/password-analyzer/internal/auth"
	"github.com/sakif/password-analyzer/internal/mail"
	"github.com/sakif/password-analyzer/internal/model"
	"github.com/sakif/password-analyzer/internal/ratelimit"
	"github.com/sakif/password-analyzer/internal/repository"
	"github.com/sakif/password-analyzer/internal/strength"
)

const (
	msgUserNotFound      = "User not found. Please check your email or sign up."
	msgIncorrectPassword = "Incorrect password. Please try again."
	msgEmailRegistered   = "Email already registered"
)

// DefaultAvatarURL is the generated avatar a new account starts with.
func DefaultAvatarURL(seed string) string {
	return "https://api.dicebear.com/7.x/avataaars/svg?seed=" + seed
}

// Demo account seeded into an empty database.
const (
	DemoUserID   = "1"
	DemoEmail    = "demo@example.com"
	DemoPassword = "password123"
)

var errGitHubDisabled = errors.New("GITHUB_CLIENT_ID is not set")

// GitHubSignIn is the device flow provider. *auth.GitHubProvider
// implements it.
type GitHubSignIn interface {
	StartDeviceLogin(ctx context.Context) (*auth.DeviceCode, error)
	CompleteDeviceLogin(ctx context.Context, dc *auth.DeviceCode) (*auth.GitHubUser, error)
}

// SignupRequest is the signup form. ConfirmPassword is checked only when
// it is not empty.
type SignupRequest struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
}

// AuthService signs people up, in and out.
type AuthService struct {
	users     repository.UserRepository
	passwords *auth.PasswordService
	session   *Session
	limiter   *ratelimit.Limiter
	mailer    mail.Sender
	github    GitHubSignIn // nil when GitHub sign-in is not configured
	logger    *slog.Logger
	now       func() time.Time
}

func NewAuthService(
	users repository.UserRepository,
	passwords *auth.PasswordService,
	session *Session,
	limiter *ratelimit.Limiter,
	mailer mail.Sender,
	github GitHubSignIn,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		passwords: passwords,
		session:   session,
		limiter:   limiter,
		mailer:    mailer,
		github:    github,
		logger:    logger,
		now:       time.Now,
	}
}

// SeedDemo creates the demo account when there are no accounts at all.
func (s *AuthService) SeedDemo(ctx context.Context) error {
	n, err := s.users.Count(ctx)
	if err != nil {
		return fmt.Errorf("service/auth: counting users: %w", err)
	}
	if n > 0 {
		return nil
	}

	hash, err := s.passwords.Hash(DemoPassword)
	if err != nil {
		return fmt.Errorf("service/auth: hashing demo password: %w", err)
	}

	demo := &model.User{
		ID:               DemoUserID,
		Username:         "demo_user",
		Email:            DemoEmail,
		FullName:         "Demo User",
		AvatarURL:        DefaultAvatarURL("demo"),
		PasswordHash:     hash,
		PasswordStrength: string(strength.Strong),
		IsVerified:       true,
	}
	if err := s.users.Create(ctx, demo); err != nil {
		return fmt.Errorf("service/auth: seeding demo user: %w", err)
	}

	s.logger.Info("seeded demo account", slog.String("email", DemoEmail))
	return nil
}

// Signup creates an unverified account and mails a verification link. It
// does not sign the new account in.
func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (*model.User, error) {
	name := strings.TrimSpace(req.Name)
	email := normalizeEmail(req.Email)

	if !atLeast(name, minNameLength) {
		return nil, apperror.ValidationFailed("name", "Name must be at least 2 characters")
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	confirm := req.ConfirmPassword
	if confirm == "" {
		confirm = req.Password
	}
	if err := validateNewPassword("password", req.Password, confirm); err != nil {
		return nil, err
	}

	hash, err := s.passwords.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: signup: %w", err)
	}

	id := xid.New().String()
	user := &model.User{
		ID:               id,
		Username:         usernameFromEmail(email),
		Email:            email,
		FullName:         name,
		PasswordHash:     hash,
		PasswordStrength: string(strength.Criteria{}.Evaluate(req.Password).Category),
		AvatarURL:        DefaultAvatarURL(id),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, apperror.Conflict("email", msgEmailRegistered)
		}
		return nil, fmt.Errorf("service/auth: signup: %w", err)
	}

	s.logger.Info("account created",
		slog.String("userID", user.ID),
		slog.String("passwordStrength", user.PasswordStrength),
	)

	if err := s.mailer.SendVerification(ctx, user.FullName, user.Email); err != nil {
		s.logger.Warn("verification email failed",
			slog.String("userID", user.ID),
			slog.Any("error", err),
		)
	}

	return user, nil
}

// Login checks email and password and starts a session.
//
// Both an unknown email and a wrong password count against the email's
// failure budget.
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.User, error) {
	email = normalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if len([]rune(password)) < minLoginPasswordLength {
		return nil, apperror.ValidationFailed("password", "Password must be at least 6 characters")
	}

	if err := s.limiter.CheckLogin(ctx, email); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			s.recordFailure(ctx, email)
			return nil, apperror.NotFoundMessage(msgUserNotFound)
		}
		return nil, fmt.Errorf("service/auth: login: %w", err)
	}

	if user.PasswordHash == "" {
		// GitHub-only account
		s.recordFailure(ctx, email)
		return nil, apperror.Unauthorized(msgIncorrectPassword)
	}
	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			s.recordFailure(ctx, email)
			return nil, apperror.Unauthorized(msgIncorrectPassword)
		}
		return nil, fmt.Errorf("service/auth: login: %w", err)
	}

	if err := s.limiter.ResetLogin(ctx, email); err != nil {
		s.logger.Warn("resetting login counter", slog.Any("error", err))
	}

	return s.signIn(ctx, user)
}

func (s *AuthService) recordFailure(ctx context.Context, email string) {
	left, err := s.limiter.FailLogin(ctx, email)
	if err != nil {
		s.logger.Warn("recording failed login", slog.Any("error", err))
		return
	}
	s.logger.Info("failed login", slog.String("email", email), slog.Int("attemptsLeft", left))
}

// signIn stamps lastLogin and replaces the session.
func (s *AuthService) signIn(ctx context.Context, user *model.User) (*model.User, error) {
	now := s.now().UTC()
	user.LastLogin = &now
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("service/auth: updating last login for %s: %w", user.ID, err)
	}

	if err := s.session.Start(ctx, user.ID); err != nil {
		return nil, err
	}

	s.logger.Info("signed in", slog.String("userID", user.ID))
	return user, nil
}

// GitHubEnabled reports whether LoginGitHub can work.
func (s *AuthService) GitHubEnabled() bool {
	return s.github != nil
}

// LoginGitHub runs the device flow. prompt is called once with the code
// the user has to enter; LoginGitHub then blocks until they approve, the
// code expires or ctx is cancelled.
//
// The GitHub identity is matched by GitHub id first, then by verified
// email (linking the existing account). Otherwise a new verified account
// is created.
func (s *AuthService) LoginGitHub(ctx context.Context, prompt func(*auth.DeviceCode)) (*model.User, error) {
	if s.github == nil {
		return nil, apperror.Unavailable("GitHub sign-in is not configured. Set GITHUB_CLIENT_ID.", errGitHubDisabled)
	}

	dc, err := s.github.StartDeviceLogin(ctx)
	if err != nil {
		return nil, apperror.Unavailable("Could not reach GitHub. Try again later.", err)
	}
	prompt(dc)

	ghUser, err := s.github.CompleteDeviceLogin(ctx, dc)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, apperror.Unauthorized("GitHub sign-in failed: " + err.Error())
	}

	user, err := s.linkGitHub(ctx, ghUser)
	if err != nil {
		return nil, err
	}
	return s.signIn(ctx, user)
}

func (s *AuthService) linkGitHub(ctx context.Context, gh *auth.GitHubUser) (*model.User, error) {
	user, err := s.users.GetByGitHubID(ctx, gh.ID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("service/auth: looking up github id %d: %w", gh.ID, err)
	}

	if gh.Email == "" {
		return nil, apperror.ValidationFailed("email", "Your GitHub account has no verified email address")
	}

	user, err = s.users.GetByEmail(ctx, gh.Email)
	switch {
	case err == nil:
		user.GitHubID = gh.ID
		user.IsVerified = true
		if err := s.users.Update(ctx, user); err != nil {
			return nil, fmt.Errorf("service/auth: linking github id %d: %w", gh.ID, err)
		}
		s.logger.Info("linked GitHub account", slog.String("userID", user.ID), slog.String("login", gh.Login))
		return user, nil
	case !errors.Is(err, apperror.ErrNotFound):
		return nil, fmt.Errorf("service/auth: looking up %s: %w", gh.Email, err)
	}

	name := gh.Name
	if name == "" {
		name = gh.Login
	}
	user = &model.User{
		ID:         xid.New().String(),
		Username:   gh.Login,
		Email:      gh.Email,
		FullName:   name,
		AvatarURL:  gh.AvatarURL,
		IsVerified: true,
		GitHubID:   gh.ID,
	}
	if user.AvatarURL == "" {
		user.AvatarURL = DefaultAvatarURL(user.ID)
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("service/auth: creating github user %s: %w", gh.Login, err)
	}

	s.logger.Info("account created from GitHub", slog.String("userID", user.ID), slog.String("login", gh.Login))
	return user, nil
}

// VerifyEmail marks the account with this email verified. An unknown email
// is not an error.
func (s *AuthService) VerifyEmail(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("service/auth: verify email: %w", err)
	}
	if user.IsVerified {
		return nil
	}

	user.IsVerified = true
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("service/auth: verify email: %w", err)
	}
	s.logger.Info("email verified", slog.String("userID", user.ID))
	return nil
}

// RequestPasswordReset mails reset instructions when the account exists.
// The result is the same either way so the command cannot be used to probe
// for accounts.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			s.logger.Debug("password reset for unknown email")
			return nil
		}
		return fmt.Errorf("service/auth: password reset: %w", err)
	}

	if err := s.mailer.SendPasswordReset(ctx, user.FullName, user.Email); err != nil {
		s.logger.Warn("password reset email failed",
			slog.String("userID", user.ID),
			slog.Any("error", err),
		)
	}
	return nil
}

// Logout ends the current session.
func (s *AuthService) Logout(ctx context.Context) error {
	return s.session.End(ctx)
}

// CurrentUser returns the signed-in user or nil.
func (s *AuthService) CurrentUser(ctx context.Context) (*model.User, error) {
	return s.session.CurrentUser(ctx)
}
