package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/password-analyzer/internal/apperror"
	"github.com/sakif/password-analyzer/internal/model"
	"github.com/sakif/password-analyzer/internal/repository"
)

const (
	settingTheme    = "theme"
	settingLanguage = "language"
)

// SettingsService keeps per-user preferences as key/value rows in the
// namespace "settings:<user id>".
type SettingsService struct {
	kv     repository.KVRepository
	logger *slog.Logger
}

func NewSettingsService(kv repository.KVRepository, logger *slog.Logger) *SettingsService {
	return &SettingsService{kv: kv, logger: logger}
}

func settingsNamespace(userID string) string {
	return "settings:" + userID
}

// Get returns the user's settings, falling back to the defaults for
// anything never set or no longer valid.
func (s *SettingsService) Get(ctx context.Context, userID string) (model.Settings, error) {
	rows, err := s.kv.List(ctx, settingsNamespace(userID))
	if err != nil {
		return model.Settings{}, fmt.Errorf("service/settings: loading %s: %w", userID, err)
	}

	settings := model.DefaultSettings()
	for _, row := range rows {
		switch row.Key {
		case settingTheme:
			if t := model.Theme(row.Value); model.ValidTheme(t) {
				settings.Theme = t
			}
		case settingLanguage:
			if l := model.Language(row.Value); model.ValidLanguage(l) {
				settings.Language = l
			}
		}
	}
	return settings, nil
}

// Update writes the non-nil fields of upd and returns the resulting
// settings.
func (s *SettingsService) Update(ctx context.Context, userID string, upd model.SettingsUpdate) (model.Settings, error) {
	if upd.Theme != nil && !model.ValidTheme(*upd.Theme) {
		return model.Settings{}, apperror.ValidationFailed("theme",
			fmt.Sprintf("Unknown theme %q. Choose one of: %s", *upd.Theme, joinValues(model.Themes)))
	}
	if upd.Language != nil && !model.ValidLanguage(*upd.Language) {
		return model.Settings{}, apperror.ValidationFailed("language",
			fmt.Sprintf("Unknown language %q. Choose one of: %s", *upd.Language, joinValues(model.Languages)))
	}

	ns := settingsNamespace(userID)
	if upd.Theme != nil {
		if err := s.kv.Set(ctx, ns, settingTheme, string(*upd.Theme)); err != nil {
			return model.Settings{}, fmt.Errorf("service/settings: saving theme: %w", err)
		}
	}
	if upd.Language != nil {
		if err := s.kv.Set(ctx, ns, settingLanguage, string(*upd.Language)); err != nil {
			return model.Settings{}, fmt.Errorf("service/settings: saving language: %w", err)
		}
	}

	s.logger.Debug("settings updated", slog.String("userID", userID))
	return s.Get(ctx, userID)
}

func joinValues[T ~string](vals []T) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
