package ratelimit

import (
	"context"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"
)

// DefaultBackendTimeout bounds a single store call before it counts as unavailable.
const DefaultBackendTimeout = 500 * time.Millisecond

// minSweepInterval keeps the memory janitor from spinning on tiny windows.
const minSweepInterval = time.Second

// Option configures a Manager.
type Option func(*Manager)

// WithRedis registers the shared Redis store.
func WithRedis(store WindowStore) Option {
	return func(m *Manager) { m.stores[BackendRedis] = store }
}

// WithDatabase registers the relational store.
func WithDatabase(store WindowStore) Option {
	return func(m *Manager) { m.stores[BackendDatabase] = store }
}

// WithTimeout sets the per-call store timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(m *Manager) {
		if timeout > 0 {
			m.timeout = timeout
		}
	}
}

// WithClock overrides the time source.
func WithClock(nowFn func() time.Time) Option {
	return func(m *Manager) {
		if nowFn != nil {
			m.nowFn = nowFn
		}
	}
}

// WithRepromoteInterval enables periodic re-probing of higher-priority stores.
// Zero keeps the selection monotonic for the life of the process.
func WithRepromoteInterval(interval time.Duration) Option {
	return func(m *Manager) {
		if interval > 0 {
			m.repromoteInterval = interval
		}
	}
}

// Manager selects a window store and downgrades along Redis, Database, Memory on failure.
type Manager struct {
	policy            Policy
	stores            [BackendMemory + 1]WindowStore
	memory            *MemoryStore
	selected          atomic.Int32
	timeout           time.Duration
	repromoteInterval time.Duration
	nowFn             func() time.Time
	probe             *Probe
}

// NewManager constructs a Manager. The memory store is always present; the
// initial selection is the highest-priority registered store until
// SelectInitial probes them.
func NewManager(policy Policy, opts ...Option) *Manager {
	memory := NewMemoryStore(policy)
	m := &Manager{
		policy:  policy,
		memory:  memory,
		timeout: DefaultBackendTimeout,
		nowFn:   time.Now,
	}
	m.stores[BackendMemory] = memory
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	m.probe = NewProbe(pingerOf(m.stores[BackendRedis]), pingerOf(m.stores[BackendDatabase]), m.timeout)
	m.selected.Store(int32(m.next(BackendRedis - 1)))
	return m
}

// Policy returns the quota applied by every store.
func (m *Manager) Policy() Policy { return m.policy }

// Selected returns the store currently serving requests.
func (m *Manager) Selected() Backend { return Backend(m.selected.Load()) }

// SelectInitial probes registered stores and selects the first live one in priority order.
func (m *Manager) SelectInitial(ctx context.Context) Backend {
	result := m.probe.Check(ctx)
	chosen := BackendMemory
	switch {
	case result.Redis == ProbeConnected:
		chosen = BackendRedis
	case result.Database == ProbeConnected:
		chosen = BackendDatabase
	}
	m.selected.Store(int32(chosen))
	log.WithFields(log.Fields{
		"backend":  chosen.String(),
		"redis":    result.Redis.String(),
		"database": result.Database.String(),
	}).Info("rate limit: backend selected")
	return chosen
}

// Allow reports whether a request for key is admitted now. Store failures are
// absorbed by downgrading; the memory store terminates the chain.
func (m *Manager) Allow(ctx context.Context, key string) bool {
	if ctx == nil {
		ctx = context.Background()
	}
	now := m.nowFn()
	for current := m.Selected(); current != BackendMemory; current = m.Selected() {
		allowed, errAllow := m.call(ctx, m.stores[current], key, now)
		if errAllow == nil {
			return allowed
		}
		m.downgrade(current, errAllow)
	}
	allowed, _ := m.memory.Allow(ctx, key, now)
	return allowed
}

// call runs one store check bounded by the backend timeout. Caller
// cancellation is detached so an aborted client request cannot downgrade a
// healthy store.
func (m *Manager) call(ctx context.Context, store WindowStore, key string, now time.Time) (bool, error) {
	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.timeout)
	defer cancel()
	allowed, errAllow := store.Allow(callCtx, key, now)
	if errAllow != nil {
		return false, unavailable(store.Backend(), errAllow)
	}
	return allowed, nil
}

// downgrade moves the selection from the failed store to the next registered
// one. Only the caller that observes from wins the swap, so concurrent
// failures downgrade once.
func (m *Manager) downgrade(from Backend, err error) {
	to := m.next(from)
	if !m.selected.CompareAndSwap(int32(from), int32(to)) {
		return
	}
	log.WithError(err).WithFields(log.Fields{
		"from": from.String(),
		"to":   to.String(),
	}).Warn("rate limit: backend unavailable, falling back")
}

// next returns the first registered store after from.
func (m *Manager) next(from Backend) Backend {
	for b := from + 1; b < BackendMemory; b++ {
		if m.stores[b] != nil {
			return b
		}
	}
	return BackendMemory
}

// Status reports the selected store and live reachability of the external stores.
func (m *Manager) Status(ctx context.Context) Status {
	result := m.probe.Check(ctx)
	return Status{
		Selected: m.Selected(),
		Redis:    result.Redis,
		Database: result.Database,
	}
}

// Start runs background maintenance until ctx is done: the memory janitor and,
// when enabled, re-promotion of recovered stores.
func (m *Manager) Start(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	go m.run(ctx)
}

func (m *Manager) run(ctx context.Context) {
	sweepInterval := m.policy.Window
	if sweepInterval < minSweepInterval {
		sweepInterval = minSweepInterval
	}
	sweep := time.NewTicker(sweepInterval)
	defer sweep.Stop()

	var repromote <-chan time.Time
	if m.repromoteInterval > 0 {
		ticker := time.NewTicker(m.repromoteInterval)
		defer ticker.Stop()
		repromote = ticker.C
		log.Infof("rate limit: re-promotion enabled (interval=%s)", m.repromoteInterval)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-sweep.C:
			if removed := m.memory.Sweep(m.nowFn()); removed > 0 {
				log.Debugf("rate limit: swept %d idle memory keys", removed)
			}
		case <-repromote:
			m.Repromote(ctx)
		}
	}
}

// Repromote selects the highest-priority store above the current one that
// answers a ping. It returns the selection after the attempt.
func (m *Manager) Repromote(ctx context.Context) Backend {
	current := m.Selected()
	for b := BackendRedis; b < current; b++ {
		pinger := pingerOf(m.stores[b])
		if pinger == nil {
			continue
		}
		pingCtx, cancel := context.WithTimeout(ctx, m.timeout)
		errPing := pinger.Ping(pingCtx)
		cancel()
		if errPing != nil {
			continue
		}
		if m.selected.CompareAndSwap(int32(current), int32(b)) {
			log.WithFields(log.Fields{
				"from": current.String(),
				"to":   b.String(),
			}).Info("rate limit: backend recovered, promoting")
		}
		return m.Selected()
	}
	return current
}

func pingerOf(store WindowStore) Pinger {
	if store == nil {
		return nil
	}
	pinger, ok := store.(Pinger)
	if !ok {
		return nil
	}
	return pinger
}
