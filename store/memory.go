package store

import (
	"context"
	"sort"
	"sync"
	"time"

	admitgate "github.com/corvusdev/admitgate"
)

// entry is one WindowLog member: a millisecond score and the member
// string that gave it uniqueness.
type entry struct {
	score  int64
	member string
}

type windowSet struct {
	entries  []entry
	expireAt time.Time
}

// MemoryStore is a single-process implementation of admitgate.Store. It
// keeps one sorted slice of entries per key, guarded by a mutex, and
// mirrors the EvaluateWindow contract exactly: RedisStore and
// MemoryStore are interchangeable behind admitgate.Store.
//
// Suitable for local development, single-replica deployments, and
// tests; it does not provide the cross-process atomicity a distributed
// deployment requires (see P2 in the design notes).
type MemoryStore struct {
	mu      sync.Mutex
	strings map[string]string
	windows map[string]*windowSet
}

// NewMemory creates an empty MemoryStore. ctx governs the lifetime of
// the background goroutine that reclaims expired WindowLogs;
// cleanupInterval of zero disables that goroutine.
func NewMemory(ctx context.Context, cleanupInterval time.Duration) *MemoryStore {
	s := &MemoryStore{
		strings: make(map[string]string),
		windows: make(map[string]*windowSet),
	}
	if cleanupInterval > 0 {
		go s.runCleanup(ctx, cleanupInterval)
	}
	return s
}

// Set stores a raw ConfigRecord value, for tests and local seeding; it
// is not part of admitgate.Store, since writing ConfigRecords is an
// external collaborator's job in production (seeding/admin tooling).
func (s *MemoryStore) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.strings[key] = value
}

// Get reads a single string value.
func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.strings[key]
	return v, ok, nil
}

// EvaluateWindow implements the same atomic prune+count+insert+expire
// sequence as RedisStore's Lua script, serialized here by the mutex
// instead of by the store's command processor.
func (s *MemoryStore) EvaluateWindow(_ context.Context, key string, windowStartMs, nowMs int64, points int64, member string, ttl time.Duration) (int64, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ws, ok := s.windows[key]
	if !ok {
		ws = &windowSet{}
		s.windows[key] = ws
	}

	kept := ws.entries[:0]
	for _, e := range ws.entries {
		if e.score > windowStartMs {
			kept = append(kept, e)
		}
	}
	ws.entries = kept

	count := int64(len(ws.entries))

	if count < points {
		ws.entries = append(ws.entries, entry{score: nowMs, member: member})
		sort.Slice(ws.entries, func(i, j int) bool { return ws.entries[i].score < ws.entries[j].score })
		ws.expireAt = time.Now().Add(ttl)
	}

	if len(ws.entries) == 0 {
		return count, nowMs, nil
	}
	return count, ws.entries[0].score, nil
}

// Ping always succeeds; MemoryStore has no external connection.
func (s *MemoryStore) Ping(_ context.Context) error { return nil }

// Close is a no-op; the cleanup goroutine stops via ctx cancellation.
func (s *MemoryStore) Close() error { return nil }

// runCleanup periodically reclaims WindowLogs whose TTL has lapsed,
// mirroring the store's own expiry mechanism so long-idle keys don't
// accumulate in memory.
func (s *MemoryStore) runCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.mu.Lock()
			now := time.Now()
			for key, ws := range s.windows {
				if !ws.expireAt.IsZero() && now.After(ws.expireAt) {
					delete(s.windows, key)
				}
			}
			s.mu.Unlock()
		case <-ctx.Done():
			return
		}
	}
}

var _ admitgate.Store = (*MemoryStore)(nil)
