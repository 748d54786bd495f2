package ratelimit

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// ProbeState is the reachability of an external store as reported by /health.
type ProbeState int

const (
	ProbeNotAvailable ProbeState = iota
	ProbeConnected
	ProbeDisconnected
)

func (s ProbeState) String() string {
	switch s {
	case ProbeConnected:
		return "connected"
	case ProbeDisconnected:
		return "disconnected"
	default:
		return "not_available"
	}
}

// ProbeResult holds one round of liveness checks.
type ProbeResult struct {
	Redis    ProbeState
	Database ProbeState
}

// Status is the limiter state reported by health checks.
type Status struct {
	Selected Backend
	Redis    ProbeState
	Database ProbeState
}

// Probe pings the external stores concurrently.
type Probe struct {
	redis    Pinger
	database Pinger
	timeout  time.Duration
}

// NewProbe constructs a Probe. A nil pinger reports ProbeNotAvailable.
func NewProbe(redis, database Pinger, timeout time.Duration) *Probe {
	if timeout <= 0 {
		timeout = DefaultBackendTimeout
	}
	return &Probe{redis: redis, database: database, timeout: timeout}
}

// Check pings each configured store once.
func (p *Probe) Check(ctx context.Context) ProbeResult {
	if ctx == nil {
		ctx = context.Background()
	}
	var result ProbeResult
	var g errgroup.Group
	g.Go(func() error {
		result.Redis = p.ping(ctx, p.redis)
		return nil
	})
	g.Go(func() error {
		result.Database = p.ping(ctx, p.database)
		return nil
	})
	_ = g.Wait()
	return result
}

func (p *Probe) ping(ctx context.Context, pinger Pinger) ProbeState {
	if pinger == nil {
		return ProbeNotAvailable
	}
	pingCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if errPing := pinger.Ping(pingCtx); errPing != nil {
		return ProbeDisconnected
	}
	return ProbeConnected
}
