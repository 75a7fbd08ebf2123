package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/sakif/password-analyzer/internal/apperror"
	"github.com/sakif/password-analyzer/internal/auth"
	"github.com/sakif/password-analyzer/internal/model"
	"github.com/sakif/password-analyzer/internal/repository"
	"github.com/sakif/password-analyzer/internal/storage"
	"github.com/sakif/password-analyzer/internal/strength"
)

// MaxAvatarBytes caps avatar uploads.
const MaxAvatarBytes = 2 << 20

var avatarTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
	"image/webp": true,
}

// ProfileService edits the signed-in account and lists accounts for
// admins.
type ProfileService struct {
	users     repository.UserRepository
	passwords *auth.PasswordService
	session   *Session
	avatars   storage.AvatarStore
	isAdmin   func(email string) bool
	logger    *slog.Logger
}

func NewProfileService(
	users repository.UserRepository,
	passwords *auth.PasswordService,
	session *Session,
	avatars storage.AvatarStore,
	isAdmin func(email string) bool,
	logger *slog.Logger,
) *ProfileService {
	return &ProfileService{
		users:     users,
		passwords: passwords,
		session:   session,
		avatars:   avatars,
		isAdmin:   isAdmin,
		logger:    logger,
	}
}

// Me returns the signed-in user.
func (s *ProfileService) Me(ctx context.Context) (*model.User, error) {
	return s.session.RequireUser(ctx)
}

// UpdateProfile applies the non-nil fields of upd to userID. Changing the
// email to one already in use is apperror.ErrConflict.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, upd model.ProfileUpdate) (*model.User, error) {
	if err := validateProfile(&upd); err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.NotFoundMessage("User not found")
		}
		return nil, fmt.Errorf("service/profile: loading %s: %w", userID, err)
	}
	if upd.Empty() {
		return user, nil
	}

	upd.Apply(user)
	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, apperror.Conflict("email", msgEmailRegistered)
		}
		return nil, fmt.Errorf("service/profile: updating %s: %w", userID, err)
	}

	s.logger.Info("profile updated", slog.String("userID", userID))
	return user, nil
}

// validateProfile trims the text fields in place and checks them.
func validateProfile(upd *model.ProfileUpdate) error {
	trim := func(p *string) {
		if p != nil {
			*p = strings.TrimSpace(*p)
		}
	}
	trim(upd.Username)
	trim(upd.FullName)
	trim(upd.Bio)
	trim(upd.AvatarURL)
	trim(upd.Email)

	if upd.Username != nil && !atLeast(*upd.Username, minNameLength) {
		return apperror.ValidationFailed("username", "Username must be at least 2 characters.")
	}
	if upd.FullName != nil && !atLeast(*upd.FullName, minNameLength) {
		return apperror.ValidationFailed("fullName", "Full name must be at least 2 characters.")
	}
	if upd.Bio != nil && utf8.RuneCountInString(*upd.Bio) > maxBioLength {
		return apperror.ValidationFailed("bio", "Bio must not be longer than 160 characters.")
	}
	if upd.Email != nil {
		if err := validateEmail(*upd.Email); err != nil {
			return err
		}
	}
	return nil
}

// ChangePassword replaces the password after checking the current one, and
// re-scores passwordStrength with the signup checklist.
func (s *ProfileService) ChangePassword(ctx context.Context, userID, current, next, confirm string) (*model.User, error) {
	if current == "" {
		return nil, apperror.ValidationFailed("currentPassword", msgCurrentPasswordEmpty)
	}
	if err := validateNewPassword("newPassword", next, confirm); err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.NotFoundMessage("User not found")
		}
		return nil, fmt.Errorf("service/profile: loading %s: %w", userID, err)
	}

	if user.PasswordHash != "" {
		if err := s.passwords.Verify(user.PasswordHash, current); err != nil {
			if errors.Is(err, auth.ErrPasswordMismatch) {
				return nil, apperror.ValidationFailed("currentPassword", "Current password is incorrect")
			}
			return nil, fmt.Errorf("service/profile: change password: %w", err)
		}
	}

	hash, err := s.passwords.Hash(next)
	if err != nil {
		return nil, fmt.Errorf("service/profile: change password: %w", err)
	}
	user.PasswordHash = hash
	user.PasswordStrength = string(strength.Criteria{}.Evaluate(next).Category)

	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("service/profile: change password: %w", err)
	}

	s.logger.Info("password changed",
		slog.String("userID", userID),
		slog.String("passwordStrength", user.PasswordStrength),
	)
	return user, nil
}

// UploadAvatar stores an image read from r and points avatarUrl at it. The
// type is sniffed from the content; anything but png, jpeg, gif or webp,
// and anything over MaxAvatarBytes, is rejected.
func (s *ProfileService) UploadAvatar(ctx context.Context, userID string, r io.Reader) (*model.User, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxAvatarBytes+1))
	if err != nil {
		return nil, fmt.Errorf("service/profile: reading avatar: %w", err)
	}
	if len(data) == 0 {
		return nil, apperror.ValidationFailed("avatar", "Avatar file is empty")
	}
	if len(data) > MaxAvatarBytes {
		return nil, apperror.ValidationFailed("avatar", "Avatar must be 2 MB or smaller")
	}

	contentType := http.DetectContentType(data)
	if !avatarTypes[contentType] {
		return nil, apperror.ValidationFailed("avatar", "Avatar must be a PNG, JPEG, GIF or WebP image")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.NotFoundMessage("User not found")
		}
		return nil, fmt.Errorf("service/profile: loading %s: %w", userID, err)
	}

	url, err := s.avatars.Put(ctx, userID, bytes.NewReader(data), int64(len(data)), contentType)
	if err != nil {
		return nil, apperror.Unavailable("Could not store the avatar. Try again later.", err)
	}

	user.AvatarURL = url
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("service/profile: saving avatar url: %w", err)
	}

	s.logger.Info("avatar uploaded",
		slog.String("userID", userID),
		slog.String("contentType", contentType),
		slog.Int("bytes", len(data)),
	)
	return user, nil
}

// ListUsers returns every account whose username, email or full name
// contains query (case-insensitive). Only a signed-in admin may call it.
func (s *ProfileService) ListUsers(ctx context.Context, query string) ([]model.User, error) {
	me, err := s.session.RequireUser(ctx)
	if err != nil {
		return nil, err
	}
	if !s.isAdmin(me.Email) {
		return nil, apperror.Forbidden("Admin access required")
	}

	all, err := s.users.List(ctx, repository.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("service/profile: listing users: %w", err)
	}

	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return all, nil
	}

	matched := make([]model.User, 0, len(all))
	for _, u := range all {
		if strings.Contains(strings.ToLower(u.Username), q) ||
			strings.Contains(strings.ToLower(u.Email), q) ||
			strings.Contains(strings.ToLower(u.FullName), q) {
			matched = append(matched, u)
		}
	}
	return matched, nil
}
