// Package repository declares the storage interfaces the services depend
// on. The sqlite subpackage implements all of them; service tests use
// in-memory fakes.
package repository

import (
	"context"

	"github.com/sakif/password-analyzer/internal/model"
)

type ListOptions struct {
	Limit  int
	Offset int
}

// UserRepository stores accounts. Emails are unique (case-insensitive) and
// so are non-zero GitHub ids. Lookups that find nothing return an error
// wrapping apperror.ErrNotFound; uniqueness violations wrap
// apperror.ErrConflict.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByGitHubID(ctx context.Context, githubID int64) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	List(ctx context.Context, opts ListOptions) ([]model.User, error)
	Count(ctx context.Context) (int, error)
}

// KVRepository is the local key-value store: sessions, settings and rate
// limit counters all live here under their own namespace. Get of a missing
// key returns an error wrapping apperror.ErrNotFound.
type KVRepository interface {
	Get(ctx context.Context, namespace, key string) (string, error)
	Set(ctx context.Context, namespace, key, value string) error
	Delete(ctx context.Context, namespace, key string) error
	List(ctx context.Context, namespace string) ([]model.KV, error)
}

// MessageRepository stores chat history.
type MessageRepository interface {
	Create(ctx context.Context, msg *model.Message) error
	// ListByChannel returns the newest opts.Limit messages of channel,
	// oldest first.
	ListByChannel(ctx context.Context, channel model.Channel, opts ListOptions) ([]model.Message, error)
}
