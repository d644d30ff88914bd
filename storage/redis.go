package storage

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis stores audio bytes in Redis with a TTL and hands out URLs under
// this server's /audio route. Used when no storage bucket is
// configured; audio only needs to outlive the call.
type Redis struct {
	client  *redis.Client
	baseURL string
	ttl     time.Duration
}

// NewRedis creates a Redis-backed publisher. Errors when Redis is
// unreachable so the caller can fall back to in-memory serving.
func NewRedis(addr, password, baseURL string, ttl time.Duration) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis unavailable: %w", err)
	}

	return &Redis{client: client, baseURL: baseURL, ttl: ttl}, nil
}

// Publish stores the audio and returns the URL this server serves it at
func (r *Redis) Publish(ctx context.Context, name string, audio []byte) (string, error) {
	if err := r.client.Set(ctx, "audio:"+name, audio, r.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to store audio: %w", err)
	}
	return r.baseURL + "/audio/" + name, nil
}

// Fetch returns stored audio bytes for the /audio route
func (r *Redis) Fetch(ctx context.Context, name string) ([]byte, error) {
	data, err := r.client.Get(ctx, "audio:"+name).Bytes()
	if err != nil {
		return nil, fmt.Errorf("audio not found: %w", err)
	}
	return data, nil
}

// Delete removes stored audio. Best effort, never propagated.
func (r *Redis) Delete(ctx context.Context, name string) error {
	if err := r.client.Del(ctx, "audio:"+name).Err(); err != nil {
		log.Printf("⚠️ Failed to delete audio %s: %v", name, err)
	}
	return nil
}

// Close releases the Redis connection
func (r *Redis) Close() error {
	return r.client.Close()
}
