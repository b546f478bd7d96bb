package store

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStore_GetMissing(t *testing.T) {
	s := NewMemory(context.Background(), 0)
	_, found, err := s.Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if found {
		t.Error("Get() found = true, want false for unseeded key")
	}
}

func TestMemoryStore_SetThenGet(t *testing.T) {
	s := NewMemory(context.Background(), 0)
	s.Set("rateLimitConfig:acme", `{"rules":[]}`)

	v, found, err := s.Get(context.Background(), "rateLimitConfig:acme")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !found || v != `{"rules":[]}` {
		t.Errorf("Get() = (%q, %v), want seeded value", v, found)
	}
}

func TestMemoryStore_EvaluateWindow_AdmitsUnderLimit(t *testing.T) {
	s := NewMemory(context.Background(), 0)
	ctx := context.Background()

	count, _, err := s.EvaluateWindow(ctx, "k", 0, 1000, 3, "m1", time.Minute)
	if err != nil {
		t.Fatalf("EvaluateWindow() error = %v", err)
	}
	if count != 0 {
		t.Errorf("first EvaluateWindow count = %d, want 0", count)
	}

	count, _, err = s.EvaluateWindow(ctx, "k", 0, 1500, 3, "m2", time.Minute)
	if err != nil {
		t.Fatalf("EvaluateWindow() error = %v", err)
	}
	if count != 1 {
		t.Errorf("second EvaluateWindow count = %d, want 1", count)
	}
}

func TestMemoryStore_EvaluateWindow_PrunesExpiredEntries(t *testing.T) {
	s := NewMemory(context.Background(), 0)
	ctx := context.Background()

	if _, _, err := s.EvaluateWindow(ctx, "k", 0, 1000, 1, "m1", time.Minute); err != nil {
		t.Fatalf("EvaluateWindow() error = %v", err)
	}

	// windowStart of 5000 prunes the entry scored at 1000.
	count, oldest, err := s.EvaluateWindow(ctx, "k", 5000, 6000, 1, "m2", time.Minute)
	if err != nil {
		t.Fatalf("EvaluateWindow() error = %v", err)
	}
	if count != 0 {
		t.Errorf("count after prune = %d, want 0", count)
	}
	if oldest != 6000 {
		t.Errorf("oldest after prune+insert = %d, want 6000", oldest)
	}
}

func TestMemoryStore_EvaluateWindow_DoesNotInsertWhenAtLimit(t *testing.T) {
	s := NewMemory(context.Background(), 0)
	ctx := context.Background()

	if _, _, err := s.EvaluateWindow(ctx, "k", 0, 1000, 1, "m1", time.Minute); err != nil {
		t.Fatalf("EvaluateWindow() error = %v", err)
	}

	count, _, err := s.EvaluateWindow(ctx, "k", 0, 1100, 1, "m2", time.Minute)
	if err != nil {
		t.Fatalf("EvaluateWindow() error = %v", err)
	}
	if count != 1 {
		t.Errorf("count at limit = %d, want 1 (m2 not inserted)", count)
	}

	count, _, err = s.EvaluateWindow(ctx, "k", 0, 1200, 1, "m3", time.Minute)
	if err != nil {
		t.Fatalf("EvaluateWindow() error = %v", err)
	}
	if count != 1 {
		t.Errorf("count still at limit = %d, want 1", count)
	}
}

func TestMemoryStore_PingAlwaysNil(t *testing.T) {
	s := NewMemory(context.Background(), 0)
	if err := s.Ping(context.Background()); err != nil {
		t.Errorf("Ping() = %v, want nil", err)
	}
}

func TestMemoryStore_CleanupReclaimsExpiredWindow(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := NewMemory(ctx, 10*time.Millisecond)
	if _, _, err := s.EvaluateWindow(ctx, "k", 0, 0, 1, "m1", time.Millisecond); err != nil {
		t.Fatalf("EvaluateWindow() error = %v", err)
	}

	deadline := time.Now().Add(200 * time.Millisecond)
	for time.Now().Before(deadline) {
		s.mu.Lock()
		_, exists := s.windows["k"]
		s.mu.Unlock()
		if !exists {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Error("expected background cleanup to reclaim expired window")
}
