package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOConfig locates the bucket avatars go to.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// PublicURL is prefixed to object names to build avatar URLs. Defaults
	// to <scheme>://<endpoint>/<bucket>.
	PublicURL string
}

// MinIOStore writes avatars to an S3 compatible bucket.
type MinIOStore struct {
	client    *minio.Client
	bucket    string
	publicURL string
	logger    *slog.Logger
}

var _ AvatarStore = (*MinIOStore)(nil)

func NewMinIOStore(cfg MinIOConfig, logger *slog.Logger) (*MinIOStore, error) {
	opts := &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	}

	client, err := minio.New(cfg.Endpoint, opts)
	if err != nil {
		return nil, fmt.Errorf("storage: minio client: %w", err)
	}

	publicURL := cfg.PublicURL
	if publicURL == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		publicURL = fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket)
	}

	return &MinIOStore{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
		logger:    logger,
	}, nil
}

func (s *MinIOStore) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("storage: checking bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}

	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("storage: creating bucket %s: %w", s.bucket, err)
	}
	s.logger.Info("created avatar bucket", slog.String("bucket", s.bucket))
	return nil
}

func (s *MinIOStore) Put(ctx context.Context, userID string, r io.Reader, size int64, contentType string) (string, error) {
	name, err := ObjectName(userID, contentType)
	if err != nil {
		return "", err
	}
	if err := s.ensureBucket(ctx); err != nil {
		return "", err
	}

	info, err := s.client.PutObject(ctx, s.bucket, name, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("storage: uploading %s: %w", name, err)
	}

	s.logger.Debug("avatar uploaded",
		slog.String("object", name),
		slog.Int64("size", info.Size),
	)

	return s.publicURL + "/" + name, nil
}
