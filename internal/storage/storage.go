// Package storage keeps uploaded avatar images.
package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
)

// AvatarStore persists an avatar image and returns the URL it can be read
// back from.
type AvatarStore interface {
	Put(ctx context.Context, userID string, r io.Reader, size int64, contentType string) (string, error)
}

var extensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ObjectName is the key an avatar is stored under: one object per user,
// overwritten on every upload.
func ObjectName(userID, contentType string) (string, error) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", fmt.Errorf("storage: content type %q: %w", contentType, err)
	}
	ext, ok := extensions[mediaType]
	if !ok {
		return "", fmt.Errorf("storage: unsupported content type %q", mediaType)
	}
	return "avatars/" + userID + ext, nil
}
