package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"path/filepath"

	"github.com/redis/go-redis/v9"

	"github.com/sakif/password-analyzer/internal/apperror"
	"github.com/sakif/password-analyzer/internal/auth"
	"github.com/sakif/password-analyzer/internal/config"
	"github.com/sakif/password-analyzer/internal/cracker"
	"github.com/sakif/password-analyzer/internal/mail"
	"github.com/sakif/password-analyzer/internal/ratelimit"
	"github.com/sakif/password-analyzer/internal/repository/sqlite"
	"github.com/sakif/password-analyzer/internal/service"
	"github.com/sakif/password-analyzer/internal/storage"
	"github.com/sakif/password-analyzer/internal/xdg"
)

const dbFile = "password-analyzer.db"

// App is the wired application: every service over one SQLite database
// and whichever optional collaborators the configuration enables.
type App struct {
	Config *config.Config
	Logger *slog.Logger

	Session  *service.Session
	Auth     *service.AuthService
	Profile  *service.ProfileService
	Settings *service.SettingsService
	Chat     *service.ChatService
	Analyzer *service.AnalyzerService

	db    *sqlite.DB
	redis *redis.Client
}

// NewApp builds the dependency graph. It creates the data directory and
// session secret on first run and seeds the demo account into an empty
// database.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if err := xdg.EnsureDir(cfg.DataDir); err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	if err := cfg.EnsureSessionSecret(); err != nil {
		return nil, err
	}

	db, err := sqlite.New(filepath.Join(cfg.DataDir, dbFile))
	if err != nil {
		return nil, fmt.Errorf("app: opening database: %w", err)
	}
	app := &App{Config: cfg, Logger: logger, db: db}

	if err := app.wire(ctx); err != nil {
		_ = app.Close()
		return nil, err
	}
	return app, nil
}

func (a *App) wire(ctx context.Context) error {
	cfg, logger := a.Config, a.Logger
	users, kv := a.db.Users(), a.db.KV()

	tokens, err := auth.NewTokenService(cfg.Session.Secret, cfg.Session.TTL)
	if err != nil {
		return fmt.Errorf("app: %w", err)
	}
	passwords := auth.NewPasswordService()
	a.Session = service.NewSession(kv, users, tokens, logger)

	limiterStore, err := a.limiterStore(ctx)
	if err != nil {
		return err
	}
	limiter := ratelimit.New(limiterStore, ratelimit.Config{
		MaxAttempts: cfg.Login.MaxAttempts,
		Window:      cfg.Login.Window,
	})

	mailer := mail.NewMailer(mailTransport(cfg.Mail, logger), mail.Config{
		FromName:    cfg.Mail.FromName,
		FromAddress: cfg.Mail.FromAddress,
		AppBaseURL:  cfg.Mail.AppBaseURL,
	})

	avatars, err := avatarStore(cfg, logger)
	if err != nil {
		return err
	}

	var github service.GitHubSignIn
	if cfg.GitHub.ClientID != "" {
		github = auth.NewGitHubProvider(cfg.GitHub.ClientID)
	}

	sim := cracker.New(cracker.Config{
		Duration: cfg.Simulator.Duration,
		Tick:     cfg.Simulator.Tick,
	}, rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())))

	a.Auth = service.NewAuthService(users, passwords, a.Session, limiter, mailer, github, logger)
	a.Profile = service.NewProfileService(users, passwords, a.Session, avatars, cfg.IsAdmin, logger)
	a.Settings = service.NewSettingsService(kv, logger)
	a.Chat = service.NewChatService(a.db.Messages(), cfg.Chat.ReplyDelay, logger)
	a.Analyzer = service.NewAnalyzerService(sim, a.Session, logger)

	return a.Auth.SeedDemo(ctx)
}

// limiterStore keeps counters in Redis when REDIS_URL is set, otherwise in
// the local database.
func (a *App) limiterStore(ctx context.Context) (ratelimit.Store, error) {
	if a.Config.Redis.URL == "" {
		return ratelimit.NewKVStore(a.db.KV()), nil
	}

	client, err := ratelimit.NewRedisClient(a.Config.Redis.URL)
	if err != nil {
		return nil, apperror.ValidationFailed("REDIS_URL", err.Error())
	}
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, apperror.Unavailable("Redis is unreachable. Check REDIS_URL.", err)
	}

	a.redis = client
	a.Logger.Debug("login throttling uses redis")
	return ratelimit.NewRedisStore(client, ""), nil
}

func mailTransport(cfg config.MailConfig, logger *slog.Logger) mail.Transport {
	switch {
	case cfg.SMTPHost != "":
		return mail.NewSMTPTransport(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)
	case cfg.ResendAPIKey != "":
		return mail.NewResendTransport(cfg.ResendAPIKey)
	default:
		return mail.NewLogTransport(logger)
	}
}

func avatarStore(cfg *config.Config, logger *slog.Logger) (storage.AvatarStore, error) {
	if cfg.MinIO.Endpoint == "" {
		return storage.NewFileStore(cfg.DataDir), nil
	}

	store, err := storage.NewMinIOStore(storage.MinIOConfig{
		Endpoint:  cfg.MinIO.Endpoint,
		AccessKey: cfg.MinIO.AccessKey,
		SecretKey: cfg.MinIO.SecretKey,
		Bucket:    cfg.MinIO.Bucket,
		UseSSL:    cfg.MinIO.UseSSL,
		PublicURL: cfg.MinIO.PublicURL,
	}, logger)
	if err != nil {
		return nil, apperror.ValidationFailed("MINIO_ENDPOINT", err.Error())
	}
	return store, nil
}

// Close releases the database and the Redis connection.
func (a *App) Close() error {
	var errs []error
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	return errors.Join(errs...)
}
