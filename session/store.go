package session

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store manages all call sessions. Mutations are mutex-guarded; the
// telephony side serializes webhooks per call, but nothing stops two
// different calls from arriving in parallel.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	systemPrompt string
	timeout      time.Duration
	now          func() time.Time

	redis *redis.Client // optional metadata mirror, nil when unreachable
}

// Option configures a Store
type Option func(*Store)

// WithClock injects the time source, used by tests to control sweeps
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithRedis attaches a Redis client for best-effort session metadata
// mirroring. A ping failure disables the mirror rather than failing.
func WithRedis(addr, password string, timeout time.Duration) Option {
	return func(s *Store) {
		client := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       0,
		})

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := client.Ping(ctx).Err(); err != nil {
			log.Printf("⚠️ Redis unavailable, session mirroring disabled: %v", err)
			return
		}
		s.redis = client
	}
}

// NewStore creates a session store seeding every session with systemPrompt
func NewStore(systemPrompt string, timeout time.Duration, opts ...Option) *Store {
	s := &Store{
		sessions:     make(map[string]*Session),
		systemPrompt: systemPrompt,
		timeout:      timeout,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create starts a session for callSID, overwriting any prior session for
// the same id, and seeds the single system turn
func (s *Store) Create(callSID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sessions[callSID] = &Session{
		CallSID:      callSID,
		Turns:        []Turn{{Role: RoleSystem, Text: s.systemPrompt, At: now}},
		LastActivity: now,
	}
	s.mirror(callSID, now)
}

// Get returns the session for callSID; absence is not an error
func (s *Store) Get(callSID string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[callSID]
	return sess, ok
}

// AppendUser records a caller utterance. No-op when the session is
// absent; callers create sessions explicitly before appending.
func (s *Store) AppendUser(callSID, text string) {
	s.append(callSID, RoleUser, text)
}

// AppendAssistant records a spoken reply. No-op when the session is absent.
func (s *Store) AppendAssistant(callSID, text string) {
	s.append(callSID, RoleAssistant, text)
}

func (s *Store) append(callSID, role, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[callSID]
	if !ok {
		return
	}
	now := s.now()
	sess.Turns = append(sess.Turns, Turn{Role: role, Text: text, At: now})
	sess.LastActivity = now
	s.mirror(callSID, now)
}

// History returns the ordered conversation turns for handoff to the
// generation collaborator. Empty when the session is absent.
func (s *Store) History(callSID string) []Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[callSID]
	if !ok {
		return nil
	}
	out := make([]Turn, len(sess.Turns))
	copy(out, sess.Turns)
	return out
}

// ResetKeepSystem truncates a session to its system turn only, or to
// empty when no system turn existed
func (s *Store) ResetKeepSystem(callSID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[callSID]
	if !ok {
		return
	}
	kept := sess.Turns[:0:0]
	for _, t := range sess.Turns {
		if t.Role == RoleSystem {
			kept = append(kept, t)
			break
		}
	}
	sess.Turns = kept
	sess.LastActivity = s.now()
}

// Sweep removes every session inactive for longer than maxAge.
// Sweep(0) evicts all sessions whose last activity is not in the
// future. Sweeping an already-evicted session is a no-op.
func (s *Store) Sweep(maxAge time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-maxAge)
	for callSID, sess := range s.sessions {
		if !sess.LastActivity.After(cutoff) {
			delete(s.sessions, callSID)
			s.unmirror(callSID)
		}
	}
}

// Evict tears down a single call's state immediately, regardless of
// age. Idempotent: evicting a missing callSID is a no-op.
func (s *Store) Evict(callSID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[callSID]; !ok {
		return
	}
	delete(s.sessions, callSID)
	s.unmirror(callSID)
}

// Len returns the number of live sessions
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Shutdown closes the Redis mirror if one is attached
func (s *Store) Shutdown() {
	if s.redis != nil {
		_ = s.redis.Close()
	}
}

// mirror writes session metadata to Redis. Best effort: errors are
// ignored, the in-memory map is authoritative. Callers hold s.mu.
func (s *Store) mirror(callSID string, activity time.Time) {
	if s.redis == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	s.redis.HSet(ctx, "session:"+callSID, map[string]interface{}{
		"last_activity": activity.Format(time.RFC3339),
		"status":        "active",
	})
	s.redis.SAdd(ctx, "active_sessions", callSID)
	s.redis.Expire(ctx, "session:"+callSID, s.timeout)
}

func (s *Store) unmirror(callSID string) {
	if s.redis == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	s.redis.Del(ctx, "session:"+callSID)
	s.redis.SRem(ctx, "active_sessions", callSID)
}
