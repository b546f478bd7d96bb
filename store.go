package admitgate

import (
	"context"
	"time"
)

// Store is the contract over the shared key-value backend. It is the
// only component that knows the backend's wire dialect; connection
// pooling and transport retry are hidden behind it. Implementations
// return transport, timeout, and protocol errors as they are; Resolver
// and Accountant wrap every such error in StoreError.
//
// Implementations: store.RedisStore (distributed, production) and
// store.MemoryStore (single-process, tests and local development).
//
// Why EvaluateWindow instead of a generic script executor: an earlier
// draft of this interface had a single EvaluateScript(script string, keys,
// args []string) (interface{}, error) method, mirroring how a raw Lua
// caller would shape it. That signature was rejected: it pushes
// scripting concerns (argument encoding, result-shape assertions) onto
// every caller, and it doesn't type-check against MemoryStore at all,
// since MemoryStore has no script engine to run against. EvaluateWindow
// instead names the one atomic operation the domain needs and lets
// each backend implement it however fits — a Lua script for Redis, a
// mutex-guarded slice for MemoryStore — which is also how this
// interface's predecessor shaped its own Store (Increment/TakeToken
// methods, not a generic command executor).
type Store interface {
	// Get reads a single string value. found is false when the key does
	// not exist; it is not an error.
	Get(ctx context.Context, key string) (value string, found bool, err error)

	// EvaluateWindow is the atomic sliding-window primitive: prune every
	// WindowLog entry with score in [0, windowStartMs], count what
	// remains, and — iff that count is below points — insert one entry
	// scored at nowMs under member and refresh the key's TTL. The whole
	// sequence executes as one atomic unit with respect to every other
	// concurrent caller sharing key; it must never decompose into
	// separate round-trips, or concurrent admissions on different
	// replicas can exceed points.
	//
	// Returns the pre-admission count and the lowest remaining score
	// (nowMs if the log is empty after the prune).
	EvaluateWindow(ctx context.Context, key string, windowStartMs, nowMs int64, points int64, member string, ttl time.Duration) (count int64, oldestMs int64, err error)

	// Ping is a liveness probe used by health collaborators.
	Ping(ctx context.Context) error

	// Close releases resources during process teardown.
	Close() error
}
