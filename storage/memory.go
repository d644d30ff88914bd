package storage

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Memory keeps audio in the process heap, served under /audio. Last
// resort when neither a bucket nor Redis is configured; entries expire
// on access past their TTL.
type Memory struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	baseURL string
	ttl     time.Duration
	now     func() time.Time
}

type memoryEntry struct {
	audio    []byte
	storedAt time.Time
}

// NewMemory creates an in-memory publisher
func NewMemory(baseURL string, ttl time.Duration) *Memory {
	return &Memory{
		entries: make(map[string]memoryEntry),
		baseURL: baseURL,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Publish stores the audio and returns the URL this server serves it at
func (m *Memory) Publish(_ context.Context, name string, audio []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Drop expired entries while we hold the lock
	cutoff := m.now().Add(-m.ttl)
	for k, e := range m.entries {
		if e.storedAt.Before(cutoff) {
			delete(m.entries, k)
		}
	}

	m.entries[name] = memoryEntry{audio: audio, storedAt: m.now()}
	return m.baseURL + "/audio/" + name, nil
}

// Fetch returns stored audio bytes for the /audio route
func (m *Memory) Fetch(_ context.Context, name string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[name]
	if !ok || e.storedAt.Before(m.now().Add(-m.ttl)) {
		return nil, fmt.Errorf("audio not found: %s", name)
	}
	return e.audio, nil
}

// Delete removes stored audio. Never fails.
func (m *Memory) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, name)
	return nil
}
