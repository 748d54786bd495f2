package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrBackendUnavailable marks a store failure that the Manager recovers from by downgrading.
var ErrBackendUnavailable = errors.New("rate limit: backend unavailable")

// Backend identifies a window store implementation. Lower values have higher priority.
type Backend int32

const (
	BackendRedis Backend = iota
	BackendDatabase
	BackendMemory
)

// String returns the storage type name reported by health checks.
func (b Backend) String() string {
	switch b {
	case BackendRedis:
		return "redis"
	case BackendDatabase:
		return "database"
	case BackendMemory:
		return "memory"
	default:
		return fmt.Sprintf("backend(%d)", int32(b))
	}
}

// Policy is the trailing-window quota applied to every client key.
type Policy struct {
	Requests int
	Window   time.Duration
}

// cutoff returns the oldest timestamp still inside the window ending at now.
// Entries strictly older than the cutoff are expired.
func (p Policy) cutoff(now float64) float64 {
	return now - p.Window.Seconds()
}

// WindowStore admits or rejects a request for key at now.
//
// When fewer than Policy.Requests unexpired entries exist, the store records an
// entry at now and returns true. Otherwise it returns false and records nothing.
// Operational failures are returned wrapped with ErrBackendUnavailable.
type WindowStore interface {
	Allow(ctx context.Context, key string, now time.Time) (bool, error)
	Backend() Backend
}

// Pinger is implemented by stores that can report liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// unixSeconds converts t into floating point seconds since the epoch.
func unixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

// unavailable wraps err so callers can match ErrBackendUnavailable.
func unavailable(backend Backend, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrBackendUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrBackendUnavailable, backend, err)
}
