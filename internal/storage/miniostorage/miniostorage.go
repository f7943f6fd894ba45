// Package miniostorage provides structure to work with minio-storage
package miniostorage

import (
	"context"
	"errors"
	"io"
	"path"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/wb-go/wbf/config"
)

type MinioImageStorage struct {
	bucket string
	prefix string
	client *minio.Client
}

func NewMinioClient(cfg *config.Config, bucket, prefix string) (*MinioImageStorage, error) {
	if bucket == "" {
		return nil, errors.New("bucket name is empty")
	}

	addr := cfg.GetString("MINIO_ENDPOINT")
	user := cfg.GetString("MINIO_USER")
	pass := cfg.GetString("MINIO_PASS")
	secure := cfg.GetString("MINIO_SECURE") == "true"

	if addr == "" {
		return nil, errors.New("MINIO_ENDPOINT is not set")
	}

	// подключаемся к минио - создаем клиента
	strg, err := minio.New(addr, &minio.Options{
		Creds:  credentials.NewStaticV4(user, pass, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, err
	}

	return &MinioImageStorage{bucket: bucket, prefix: prefix, client: strg}, nil
}

// Prepare creates the bucket if it does not exist yet.
func (s *MinioImageStorage) Prepare(ctx context.Context) error {
	return ensureBucket(ctx, s.client, s.bucket)
}

func (s *MinioImageStorage) Put(ctx context.Context, key string, size int64, contentType string, r io.Reader) error {
	if r == nil {
		return errors.New("nil reader passed to storage.Put")
	}

	if _, err := s.client.PutObject(ctx, s.bucket, s.objectKey(key), r, size, minio.PutObjectOptions{
		ContentType: contentType,
	}); err != nil {
		return err
	}

	return nil
}

func (s *MinioImageStorage) Locate(key string) string {
	return "minio://" + s.bucket + "/" + s.objectKey(key)
}

func (s *MinioImageStorage) objectKey(key string) string {
	if s.prefix == "" {
		return key
	}
	return path.Join(s.prefix, key)
}

func ensureBucket(ctx context.Context, client *minio.Client, bucket string) error {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return err
	}

	if exists {
		return nil
	}

	return client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{})
}
