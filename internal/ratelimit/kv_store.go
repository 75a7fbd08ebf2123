package ratelimit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sakif/password-analyzer/internal/apperror"
	"github.com/sakif/password-analyzer/internal/repository"
)

const kvNamespace = "ratelimit"

// KVStore keeps counters in the local key-value table so a budget carries
// over between separate CLI invocations. Expired windows are treated as
// absent and overwritten on the next Incr.
type KVStore struct {
	kv  repository.KVRepository
	now func() time.Time
}

// NewKVStore returns a KVStore over kv.
func NewKVStore(kv repository.KVRepository) *KVStore {
	return &KVStore{kv: kv, now: time.Now}
}

type window struct {
	Count     int       `json:"count"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s *KVStore) load(ctx context.Context, key string) (window, error) {
	raw, err := s.kv.Get(ctx, kvNamespace, key)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return window{}, nil
		}
		return window{}, err
	}

	var w window
	if err := json.Unmarshal([]byte(raw), &w); err != nil {
		// A corrupt row is treated as no window.
		return window{}, nil
	}
	if !s.now().Before(w.ExpiresAt) {
		return window{}, nil
	}
	return w, nil
}

func (s *KVStore) Incr(ctx context.Context, key string, ttl time.Duration) (int, error) {
	w, err := s.load(ctx, key)
	if err != nil {
		return 0, err
	}
	if w.Count == 0 {
		w.ExpiresAt = s.now().Add(ttl)
	}
	w.Count++

	raw, err := json.Marshal(w)
	if err != nil {
		return 0, fmt.Errorf("encoding window: %w", err)
	}
	if err := s.kv.Set(ctx, kvNamespace, key, string(raw)); err != nil {
		return 0, err
	}
	return w.Count, nil
}

func (s *KVStore) Get(ctx context.Context, key string) (int, time.Duration, error) {
	w, err := s.load(ctx, key)
	if err != nil {
		return 0, 0, err
	}
	if w.Count == 0 {
		return 0, 0, nil
	}
	return w.Count, w.ExpiresAt.Sub(s.now()), nil
}

func (s *KVStore) Reset(ctx context.Context, key string) error {
	return s.kv.Delete(ctx, kvNamespace, key)
}
