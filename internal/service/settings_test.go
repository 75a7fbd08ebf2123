package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/password-analyzer/internal/apperror"
	"github.com/sakif/password-analyzer/internal/model"
)

func TestSettings_Defaults(t *testing.T) {
	env := newTestEnv(t)

	got, err := env.settings.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, model.DefaultSettings(), got)
}

func TestSettings_PartialUpdate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	got, err := env.settings.Update(ctx, "u1", model.SettingsUpdate{Theme: ptr(model.ThemeGreen)})
	require.NoError(t, err)
	assert.Equal(t, model.Settings{Theme: model.ThemeGreen, Language: model.LanguageEnglish}, got)

	got, err = env.settings.Update(ctx, "u1", model.SettingsUpdate{Language: ptr(model.LanguageFrench)})
	require.NoError(t, err)
	assert.Equal(t, model.Settings{Theme: model.ThemeGreen, Language: model.LanguageFrench}, got)

	// other users are unaffected
	other, err := env.settings.Get(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, model.DefaultSettings(), other)
}

func TestSettings_Invalid(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.settings.Update(ctx, "u1", model.SettingsUpdate{Theme: ptr(model.Theme("purple"))})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = env.settings.Update(ctx, "u1", model.SettingsUpdate{Language: ptr(model.Language("de"))})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestSettings_IgnoresCorruptRows(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.kv.Set(ctx, "settings:u1", "theme", "neon"))

	got, err := env.settings.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, model.ThemeDefault, got.Theme)
}
