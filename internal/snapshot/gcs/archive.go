// Package gcs implements snapshot.Archive on Google Cloud Storage.
package gcs

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/storage"

	"github.com/fullstack/catalog-sync/internal/snapshot"
)

// Config captures the parameters required to archive into GCS.
type Config struct {
	Bucket string
	Prefix string
}

// Archive uploads catalog payloads to a configured bucket.
type Archive struct {
	client *storage.Client
	bucket string
	prefix string
}

// New wraps an existing storage client.
func New(client *storage.Client, cfg Config) (*Archive, error) {
	if client == nil {
		return nil, fmt.Errorf("storage client is required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("snapshot.bucket is required")
	}
	return &Archive{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

// Put uploads the payload and returns a gs:// URI.
func (a *Archive) Put(ctx context.Context, fetchedAt time.Time, payload []byte) (string, error) {
	key := snapshot.Key(a.prefix, fetchedAt)
	writer := a.client.Bucket(a.bucket).Object(key).NewWriter(ctx)
	writer.ContentType = "application/json"
	if _, err := writer.Write(payload); err != nil {
		closeErr := writer.Close()
		if closeErr != nil {
			return "", fmt.Errorf("write snapshot object: %w (close writer: %v)", err, closeErr)
		}
		return "", fmt.Errorf("write snapshot object: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close snapshot writer: %w", err)
	}
	return fmt.Sprintf("gs://%s/%s", a.bucket, key), nil
}
