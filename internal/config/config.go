// Package config loads settings from the environment, optionally seeded
// from a .env file.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/sakif/password-analyzer/internal/xdg"
)

// Config holds all application configuration.
type Config struct {
	DataDir  string
	LogLevel slog.Level

	Session   SessionConfig
	Login     LoginConfig
	GitHub    GitHubConfig
	Mail      MailConfig
	Redis     RedisConfig
	MinIO     MinIOConfig
	Simulator SimulatorConfig
	Chat      ChatConfig

	// AdminEmails may list every account (admin users).
	AdminEmails []string
}

// SessionConfig controls login sessions.
type SessionConfig struct {
	Secret string // HMAC key; generated into DataDir when empty
	TTL    time.Duration
}

// LoginConfig holds the failed-login throttle.
type LoginConfig struct {
	MaxAttempts int
	Window      time.Duration
}

// GitHubConfig enables GitHub sign-in when ClientID is set.
type GitHubConfig struct {
	ClientID string
}

// MailConfig selects the mail transport: SMTP when SMTPHost is set, else
// Resend when ResendAPIKey is set, else the log.
type MailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	ResendAPIKey string
	FromName     string
	FromAddress  string
	AppBaseURL   string
}

// RedisConfig moves rate limit counters to Redis when URL is set.
type RedisConfig struct {
	URL string
}

// MinIOConfig moves avatar storage to MinIO/S3 when Endpoint is set.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	PublicURL string
}

// SimulatorConfig is the crack simulation latency.
type SimulatorConfig struct {
	Duration time.Duration
	Tick     time.Duration
}

// ChatConfig holds the bot reply delay.
type ChatConfig struct {
	ReplyDelay time.Duration
}

// Load reads the environment. envFile, when non-empty, must exist and is
// loaded first; otherwise a .env in the config directory is loaded if
// present. Variables already set in the process environment win over both.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("config: loading %s: %w", envFile, err)
		}
	} else if dir, err := xdg.ConfigDir(); err == nil {
		path := filepath.Join(dir, ".env")
		if _, statErr := os.Stat(path); statErr == nil {
			if err := godotenv.Load(path); err != nil {
				return nil, fmt.Errorf("config: loading %s: %w", path, err)
			}
		}
	}

	dataDir := getEnv("DATA_DIR", "")
	if dataDir == "" {
		d, err := xdg.DataDir()
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		dataDir = d
	}

	level, err := ParseLevel(getEnv("LOG_LEVEL", "warn"))
	if err != nil {
		return nil, err
	}

	return &Config{
		DataDir:  dataDir,
		LogLevel: level,
		Session: SessionConfig{
			Secret: getEnv("SESSION_SECRET", ""),
			TTL:    getEnvAsDuration("SESSION_TTL", 7*24*time.Hour),
		},
		Login: LoginConfig{
			MaxAttempts: getEnvAsInt("LOGIN_MAX_ATTEMPTS", 5),
			Window:      getEnvAsDuration("LOGIN_WINDOW", 15*time.Minute),
		},
		GitHub: GitHubConfig{
			ClientID: getEnv("GITHUB_CLIENT_ID", ""),
		},
		Mail: MailConfig{
			SMTPHost:     getEnv("SMTP_HOST", ""),
			SMTPPort:     getEnvAsInt("SMTP_PORT", 587),
			SMTPUsername: getEnv("SMTP_USERNAME", ""),
			SMTPPassword: getEnv("SMTP_PASSWORD", ""),
			ResendAPIKey: getEnv("RESEND_API_KEY", ""),
			FromName:     getEnv("MAIL_FROM_NAME", "Password Analyzer"),
			FromAddress:  getEnv("MAIL_FROM_ADDRESS", "no-reply@password-analyzer.local"),
			AppBaseURL:   getEnv("APP_BASE_URL", "http://localhost:5173"),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", ""),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", "avatars"),
			UseSSL:    getEnvAsBool("MINIO_USE_SSL", false),
			PublicURL: getEnv("AVATAR_PUBLIC_URL", ""),
		},
		Simulator: SimulatorConfig{
			Duration: getEnvAsDuration("CRACK_DURATION", 3*time.Second),
			Tick:     getEnvAsDuration("CRACK_TICK", 200*time.Millisecond),
		},
		Chat: ChatConfig{
			ReplyDelay: getEnvAsDuration("CHAT_REPLY_DELAY", time.Second),
		},
		AdminEmails: getEnvAsList("ADMIN_EMAILS"),
	}, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	if c.DataDir == "" {
		errs = append(errs, errors.New("data directory is required"))
	}
	if c.Session.Secret != "" && len(c.Session.Secret) < 16 {
		errs = append(errs, errors.New("SESSION_SECRET must be at least 16 characters"))
	}
	if c.Session.TTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if c.Login.MaxAttempts <= 0 {
		errs = append(errs, errors.New("LOGIN_MAX_ATTEMPTS must be positive"))
	}
	if c.Login.Window <= 0 {
		errs = append(errs, errors.New("LOGIN_WINDOW must be positive"))
	}
	if c.Simulator.Duration < 0 || c.Simulator.Tick < 0 {
		errs = append(errs, errors.New("CRACK_DURATION and CRACK_TICK must not be negative"))
	}
	if c.Chat.ReplyDelay < 0 {
		errs = append(errs, errors.New("CHAT_REPLY_DELAY must not be negative"))
	}
	if c.Mail.SMTPHost != "" && (c.Mail.SMTPPort <= 0 || c.Mail.SMTPPort > 65535) {
		errs = append(errs, fmt.Errorf("SMTP_PORT %d out of range", c.Mail.SMTPPort))
	}
	if c.MinIO.Endpoint != "" && (c.MinIO.AccessKey == "" || c.MinIO.SecretKey == "") {
		errs = append(errs, errors.New("MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required with MINIO_ENDPOINT"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// IsAdmin reports whether email is listed in AdminEmails.
func (c *Config) IsAdmin(email string) bool {
	for _, a := range c.AdminEmails {
		if strings.EqualFold(a, email) {
			return true
		}
	}
	return false
}

const secretFile = "session.key"

// EnsureSessionSecret fills Session.Secret from DataDir/session.key,
// creating the file with a random key on first use. A secret from the
// environment is left alone.
func (c *Config) EnsureSessionSecret() error {
	if c.Session.Secret != "" {
		return nil
	}

	path := filepath.Join(c.DataDir, secretFile)
	data, err := os.ReadFile(path)
	if err == nil {
		c.Session.Secret = strings.TrimSpace(string(data))
		if len(c.Session.Secret) < 16 {
			return fmt.Errorf("config: %s is too short; delete it to regenerate", path)
		}
		return nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("config: reading %s: %w", path, err)
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Errorf("config: generating session secret: %w", err)
	}
	secret := hex.EncodeToString(buf)

	if err := xdg.EnsureDir(c.DataDir); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := os.WriteFile(path, []byte(secret+"\n"), 0o600); err != nil {
		return fmt.Errorf("config: writing %s: %w", path, err)
	}

	c.Session.Secret = secret
	return nil
}

// ParseLevel maps debug, info, warn and error onto slog levels.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("config: invalid log level %q (want debug, info, warn or error)", s)
	}
	return level, nil
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvAsList splits a comma separated value, dropping blanks.
func getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
