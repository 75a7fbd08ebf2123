package model

// Theme is the colour scheme picked in settings.
type Theme string

const (
	ThemeDefault Theme = "default"
	ThemeBlue    Theme = "blue"
	ThemeGreen   Theme = "green"
	ThemeRed     Theme = "red"
	ThemeOrange  Theme = "orange"
)

// Themes lists every theme in display order.
var Themes = []Theme{ThemeDefault, ThemeBlue, ThemeGreen, ThemeRed, ThemeOrange}

// Language is the interface language.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageFrench  Language = "fr"
)

var Languages = []Language{LanguageEnglish, LanguageFrench}

// Settings are the per-user preferences.
type Settings struct {
	Theme    Theme    `json:"theme"`
	Language Language `json:"language"`
}

// DefaultSettings is what a user sees before changing anything.
func DefaultSettings() Settings {
	return Settings{Theme: ThemeDefault, Language: LanguageEnglish}
}

// SettingsUpdate is a partial settings change; nil fields are kept.
type SettingsUpdate struct {
	Theme    *Theme
	Language *Language
}

// ValidTheme reports whether t is one of Themes.
func ValidTheme(t Theme) bool {
	for _, v := range Themes {
		if v == t {
			return true
		}
	}
	return false
}

// ValidLanguage reports whether l is one of Languages.
func ValidLanguage(l Language) bool {
	for _, v := range Languages {
		if v == l {
			return true
		}
	}
	return false
}
