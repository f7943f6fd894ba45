// Package storage picks the output backend: a local folder or a minio bucket
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/UnendingLoop/BatchWatermark/internal/storage/localstorage"
	"github.com/UnendingLoop/BatchWatermark/internal/storage/miniostorage"
	"github.com/spf13/afero"
	"github.com/wb-go/wbf/config"
	"github.com/wb-go/wbf/zlog"
)

const minioScheme = "minio://"

// ImageStorage - контракт для записи результатов
type ImageStorage interface {
	Prepare(ctx context.Context) error
	Put(ctx context.Context, key string, size int64, contentType string, r io.Reader) error
	Locate(key string) string
}

// ParseMinioURL splits minio://bucket/some/prefix into bucket and prefix.
func ParseMinioURL(output string) (bucket, prefix string, ok bool) {
	rest, found := strings.CutPrefix(output, minioScheme)
	if !found {
		return "", "", false
	}

	bucket, prefix, _ = strings.Cut(rest, "/")
	return bucket, strings.Trim(prefix, "/"), true
}

// NewImgStorage returns a local folder storage for plain paths and a minio storage for minio:// outputs.
// The minio connection is retried attempts times with delay between tries, every try is logged to logger.
func NewImgStorage(cfg *config.Config, fs afero.Fs, output string, attempts int, delay time.Duration, logger zlog.Zerolog) (ImageStorage, error) {
	bucket, prefix, ok := ParseMinioURL(output)
	if !ok {
		return localstorage.New(fs, output), nil
	}
	if bucket == "" {
		return nil, fmt.Errorf("no bucket in output %q", output)
	}

	var lastErr error
	for i := 0; i < max(attempts, 1); i++ {
		logger.Info().Str("bucket", bucket).Msgf("Connecting to IMG-storage (try #%d)...", i+1)
		client, err := miniostorage.NewMinioClient(cfg, bucket, prefix)
		if err == nil {
			logger.Info().Str("bucket", bucket).Msg("Successfully connected IMG-storage!")
			return client, nil
		}
		lastErr = err
		logger.Warn().Err(err).Msgf("Failed to init connection to IMG-storage, next retry in %v...", delay)
		time.Sleep(delay)
	}

	return nil, fmt.Errorf("out of retries connecting to IMG-storage: %w", lastErr)
}
