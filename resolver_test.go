package admitgate_test

import (
	"context"
	"errors"
	"testing"
	"time"

	admitgate "github.com/corvusdev/admitgate"
	"github.com/corvusdev/admitgate/store"
)

type fakeRecorder struct {
	calls []string
}

func (f *fakeRecorder) ObserveRoundTrip(operation string, _ time.Duration) {
	f.calls = append(f.calls, operation)
}

func TestResolver_PerIdentifierConfig(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory(ctx, 0)
	st.Set("rateLimitConfig:acme", `{"rules":[{"points":10,"duration":60}]}`)

	r := admitgate.NewResolver(st)
	rules, err := r.Resolve(ctx, "acme")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(rules) != 1 || rules[0].Points != 10 || rules[0].Duration != 60 {
		t.Fatalf("Resolve() = %+v, want one 10/60 rule", rules)
	}
}

func TestResolver_FallsBackToDefault(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory(ctx, 0)
	st.Set("rateLimitConfig:default", `{"rules":[{"points":5,"duration":30}]}`)

	r := admitgate.NewResolver(st)
	rules, err := r.Resolve(ctx, "no-such-app")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(rules) != 1 || rules[0].Points != 5 {
		t.Fatalf("Resolve() = %+v, want default rule", rules)
	}
}

func TestResolver_MissingBothReturnsErrConfigMissing(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory(ctx, 0)

	r := admitgate.NewResolver(st)
	_, err := r.Resolve(ctx, "no-such-app")
	if !errors.Is(err, admitgate.ErrConfigMissing) {
		t.Fatalf("Resolve() error = %v, want ErrConfigMissing", err)
	}
}

func TestResolver_MalformedJSON(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory(ctx, 0)
	st.Set("rateLimitConfig:acme", `not json`)

	r := admitgate.NewResolver(st)
	_, err := r.Resolve(ctx, "acme")
	if !errors.Is(err, admitgate.ErrConfigMalformed) {
		t.Fatalf("Resolve() error = %v, want ErrConfigMalformed", err)
	}
}

func TestResolver_InvalidRules(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory(ctx, 0)
	st.Set("rateLimitConfig:acme", `{"rules":[]}`)

	r := admitgate.NewResolver(st)
	_, err := r.Resolve(ctx, "acme")
	if !errors.Is(err, admitgate.ErrConfigInvalid) {
		t.Fatalf("Resolve() error = %v, want ErrConfigInvalid", err)
	}
}

func TestResolver_RecordsRoundTripsPerGet(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory(ctx, 0)
	st.Set("rateLimitConfig:default", `{"rules":[{"points":5,"duration":30}]}`)

	rec := &fakeRecorder{}
	r := admitgate.NewResolver(st, admitgate.WithMetrics(rec))
	if _, err := r.Resolve(ctx, "no-such-app"); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	// One miss against the per-identifier key, one hit against default.
	if len(rec.calls) != 2 || rec.calls[0] != "get" || rec.calls[1] != "get" {
		t.Fatalf("recorded calls = %v, want two \"get\" observations", rec.calls)
	}
}

func TestResolver_IdentifierNormalization(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory(ctx, 0)
	st.Set("rateLimitConfig:acme", `{"rules":[{"points":1,"duration":1}]}`)

	r := admitgate.NewResolver(st)
	rules, err := r.Resolve(ctx, "ACME")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(rules) != 1 {
		t.Fatalf("Resolve() = %+v, want one rule via normalized lookup", rules)
	}
}
