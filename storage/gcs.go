package storage

import (
	"context"
	"fmt"
	"log"

	"cloud.google.com/go/storage"
)

// GCS publishes audio files to a public Google Cloud Storage bucket
type GCS struct {
	client *storage.Client
	bucket string
}

// NewGCS creates a publisher for the given bucket using application
// default credentials
func NewGCS(ctx context.Context, bucket string) (*GCS, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &GCS{client: client, bucket: bucket}, nil
}

// Publish uploads the audio and returns its public URL
func (g *GCS) Publish(ctx context.Context, name string, audio []byte) (string, error) {
	w := g.client.Bucket(g.bucket).Object(name).NewWriter(ctx)
	w.ContentType = "audio/mpeg"

	if _, err := w.Write(audio); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to upload audio file: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to upload audio file: %w", err)
	}

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", g.bucket, name), nil
}

// Delete removes an audio file. Best effort: failures are logged and
// swallowed, never propagated.
func (g *GCS) Delete(ctx context.Context, name string) error {
	if err := g.client.Bucket(g.bucket).Object(name).Delete(ctx); err != nil {
		log.Printf("⚠️ Failed to delete audio file %s: %v", name, err)
	}
	return nil
}
