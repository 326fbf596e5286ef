package fixture

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// MemStore is an in-memory Store for tests and dry runs.
type MemStore struct {
	mu      sync.RWMutex
	records map[Kind]map[string]*Record
}

// Compile-time interface check.
var _ Store = (*MemStore)(nil)

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	s := &MemStore{records: make(map[Kind]map[string]*Record)}
	for _, k := range Kinds {
		s.records[k] = make(map[string]*Record)
	}
	return s
}

// Put stores a copy of r.
func (s *MemStore) Put(r *Record) error {
	if err := r.validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[r.Kind][r.ID]; ok {
		return fmt.Errorf("%w: %s %s", ErrDuplicate, r.Kind, r.ID)
	}
	s.records[r.Kind][r.ID] = cloneRecord(r)
	return nil
}

// Get retrieves a record by kind and ID.
func (s *MemStore) Get(kind Kind, id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[kind][id]
	if !ok {
		return nil, fmt.Errorf("%w: %s %s", ErrNotFound, kind, id)
	}
	return cloneRecord(r), nil
}

// Find retrieves a record by ID across all kinds.
func (s *MemStore) Find(id string) (*Record, error) {
	for _, k := range Kinds {
		r, err := s.Get(k, id)
		switch {
		case err == nil:
			return r, nil
		case !errors.Is(err, ErrNotFound):
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// List returns every record of kind, ordered by ID.
func (s *MemStore) List(kind Kind) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Record, 0, len(s.records[kind]))
	for _, r := range s.records[kind] {
		out = append(out, cloneRecord(r))
	}
	slices.SortFunc(out, func(a, b *Record) int { return strings.Compare(a.ID, b.ID) })
	return out, nil
}

// Delete removes a record.
func (s *MemStore) Delete(kind Kind, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[kind][id]; !ok {
		return fmt.Errorf("%w: %s %s", ErrNotFound, kind, id)
	}
	delete(s.records[kind], id)
	return nil
}

func cloneRecord(r *Record) *Record {
	c := *r
	c.Flags = slices.Clone(r.Flags)
	return &c
}
