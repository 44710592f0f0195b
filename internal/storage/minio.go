package storage

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"path"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"docsvc/internal/config"
)

// minioStorage implements Storage against an S3-compatible backend (MinIO,
// AWS S3). Locations are object keys under the documents/ prefix. Selected
// with STORAGE_BACKEND=s3; the disk backend remains the default.
type minioStorage struct {
	client *minio.Client
	bucket string
}

// NewMinIO creates an S3-compatible storage client backed by MinIO.
// It validates connectivity and ensures the bucket exists.
func NewMinIO(cfg config.StorageConfig) (Storage, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("minio credentials are required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("minio bucket is required")
	}

	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	ms := &minioStorage{client: cli, bucket: cfg.Bucket}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := cli.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := cli.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}

	return ms, nil
}

// Write uploads the payload under documents/<name> and returns the key.
func (m *minioStorage) Write(ctx context.Context, name string, data []byte) (string, error) {
	key := path.Join("documents", name)
	_, err := m.client.PutObject(ctx, m.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/octet-stream"})
	if err != nil {
		return "", err
	}
	return key, nil
}

// Stat returns the object size. A missing object is reported as
// fs.ErrNotExist so callers can tell "already gone" from real failures.
func (m *minioStorage) Stat(ctx context.Context, location string) (int64, error) {
	st, err := m.client.StatObject(ctx, m.bucket, location, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return 0, fmt.Errorf("stat %s: %w", location, fs.ErrNotExist)
		}
		return 0, err
	}
	return st.Size, nil
}

// Remove deletes the object by key.
func (m *minioStorage) Remove(ctx context.Context, location string) error {
	return m.client.RemoveObject(ctx, m.bucket, location, minio.RemoveObjectOptions{})
}
