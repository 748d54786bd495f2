package history

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultCapacity is the number of generations retained.
const DefaultCapacity = 20

// Entry records one generated page.
type Entry struct {
	ID         string    `json:"id"`
	Prompt     string    `json:"prompt"`
	Model      string    `json:"model"`
	HTMLLength int       `json:"html_length"`
	Timestamp  time.Time `json:"timestamp"`
}

// Store keeps the most recent generations in process memory.
type Store struct {
	mu       sync.RWMutex
	capacity int
	entries  []Entry
	nowFn    func() time.Time
}

// NewStore constructs a Store. capacity <= 0 uses DefaultCapacity.
func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{capacity: capacity, nowFn: time.Now}
}

// Add appends a generation, dropping the oldest entry when full.
func (s *Store) Add(prompt, model string, htmlLength int) Entry {
	entry := Entry{
		ID:         uuid.NewString(),
		Prompt:     prompt,
		Model:      model,
		HTMLLength: htmlLength,
		Timestamp:  s.nowFn().UTC(),
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	if overflow := len(s.entries) - s.capacity; overflow > 0 {
		s.entries = append(s.entries[:0:0], s.entries[overflow:]...)
	}
	return entry
}

// Recent returns up to n entries, oldest first.
func (s *Store) Recent(n int) []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n <= 0 || n > len(s.entries) {
		n = len(s.entries)
	}
	out := make([]Entry, n)
	copy(out, s.entries[len(s.entries)-n:])
	return out
}

// Total returns the number of retained entries.
func (s *Store) Total() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
