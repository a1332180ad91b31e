package history

import (
	"context"
	"slices"
	"sync"

	errs "github.com/matzehuels/loadorder/pkg/errors"
)

// DefaultMemoryCapacity is the number of records a [MemoryStore] keeps
// unless configured otherwise.
const DefaultMemoryCapacity = 1000

// MemoryStore keeps the most recent records in memory. Once full, each new
// record evicts the oldest.
type MemoryStore struct {
	mu       sync.RWMutex
	capacity int
	records  []*Record
	byID     map[string]*Record
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns a store holding at most capacity records. A
// non-positive capacity selects [DefaultMemoryCapacity].
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}
	return &MemoryStore{capacity: capacity, byID: make(map[string]*Record)}
}

func (s *MemoryStore) Save(_ context.Context, r *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.byID[r.ID]; dup {
		return errs.New(errs.ErrCodeInvalidInput, "resolution %q already stored", r.ID)
	}
	if len(s.records) == s.capacity {
		delete(s.byID, s.records[0].ID)
		s.records = slices.Delete(s.records, 0, 1)
	}
	cp := *r
	s.records = append(s.records, &cp)
	s.byID[r.ID] = &cp
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.byID[id]
	if !ok {
		return nil, notFound(id)
	}
	cp := *r
	return &cp, nil
}

func (s *MemoryStore) List(_ context.Context, limit int) ([]*Record, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Record, 0, min(limit, len(s.records)))
	for _, r := range slices.Backward(s.records) {
		if len(out) == limit {
			break
		}
		cp := *r
		out = append(out, &cp)
	}
	return out, nil
}

func (s *MemoryStore) Close(context.Context) error { return nil }
