package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore implements a trailing-window limiter held in process memory.
//
// It never fails and is the terminal fallback of the Manager. State is local to
// the process and is lost on restart.
type MemoryStore struct {
	policy Policy

	mu      sync.Mutex
	entries map[string][]float64
}

// NewMemoryStore constructs a MemoryStore.
func NewMemoryStore(policy Policy) *MemoryStore {
	return &MemoryStore{
		policy:  policy,
		entries: make(map[string][]float64),
	}
}

// Backend reports BackendMemory.
func (s *MemoryStore) Backend() Backend { return BackendMemory }

// Allow checks whether the request should be allowed in the window ending at now.
func (s *MemoryStore) Allow(_ context.Context, key string, now time.Time) (bool, error) {
	ts := unixSeconds(now)
	cutoff := s.policy.cutoff(ts)

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := prune(s.entries[key], cutoff)
	if len(kept) >= s.policy.Requests {
		s.entries[key] = kept
		return false, nil
	}
	s.entries[key] = append(kept, ts)
	return true, nil
}

// Count returns the number of unexpired entries for key at now.
func (s *MemoryStore) Count(key string, now time.Time) int {
	cutoff := s.policy.cutoff(unixSeconds(now))

	s.mu.Lock()
	defer s.mu.Unlock()
	list, ok := s.entries[key]
	if !ok {
		return 0
	}
	kept := prune(list, cutoff)
	s.entries[key] = kept
	return len(kept)
}

// Sweep drops keys whose entries have all expired and returns how many were removed.
func (s *MemoryStore) Sweep(now time.Time) int {
	cutoff := s.policy.cutoff(unixSeconds(now))

	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for key, list := range s.entries {
		kept := prune(list, cutoff)
		if len(kept) == 0 {
			delete(s.entries, key)
			removed++
			continue
		}
		s.entries[key] = kept
	}
	return removed
}

// prune filters list in place, keeping timestamps at or after cutoff.
func prune(list []float64, cutoff float64) []float64 {
	kept := list[:0]
	for _, ts := range list {
		if ts < cutoff {
			continue
		}
		kept = append(kept, ts)
	}
	return kept
}
