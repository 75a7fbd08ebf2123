package model

import "time"

// KV is one row of the local key-value store. Namespaces keep unrelated
// callers (session, settings, rate limits) from colliding on keys.
type KV struct {
	Namespace string
	Key       string
	Value     string
	UpdatedAt time.Time
}
