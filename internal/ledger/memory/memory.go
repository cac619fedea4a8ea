// Package memory implements the ledger ports with a mutex-guarded
// in-memory collection. It is the default backend and the reference
// for the ledger semantics the other backends must match.
package memory

import (
	"context"
	"sync"

	"ledger/internal/core"
	"ledger/internal/ledger"
)

type Store struct {
	mu     sync.Mutex
	nextID int64
	items  []core.Record
}

var (
	_ ledger.Store   = (*Store)(nil)
	_ ledger.Querier = (*Store)(nil)
)

func New() *Store {
	return &Store{nextID: 1}
}

// NewSeeded creates a store pre-populated with the given records,
// assigning IDs in order. Used by the jsonfile backend at load time.
func NewSeeded(records []core.Record) *Store {
	s := New()
	for i := range records {
		r := records[i]
		if r.ID >= s.nextID {
			s.nextID = r.ID + 1
		} else if r.ID == 0 {
			r.ID = s.nextID
			s.nextID++
		}
		s.items = append(s.items, r)
	}
	return s
}

// Add stores the record and returns the assigned ID.
func (s *Store) Add(_ context.Context, r core.Record) (int64, error) {
	if err := r.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = s.nextID
	s.nextID++
	s.items = append(s.items, r)
	return r.ID, nil
}

// Remove deletes the record with the given ID, reporting whether it
// was present. IDs are never reused after removal.
func (s *Store) Remove(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.items {
		if r.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// Clear empties the collection.
func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	return nil
}

// All returns a snapshot in insertion order.
func (s *Store) All(_ context.Context) ([]core.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot(), nil
}

func (s *Store) ListByCategory(_ context.Context, category string) ([]core.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.FilterByCategory(s.snapshot(), category), nil
}

func (s *Store) ListByMonth(_ context.Context, year, month int) ([]core.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.FilterByMonth(s.snapshot(), year, month), nil
}

func (s *Store) Overview(_ context.Context) (core.Overview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.BuildOverview(s.items), nil
}

func (s *Store) Trend(_ context.Context) ([]core.MonthTotal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.MonthlyTrend(s.items), nil
}

// snapshot copies the backing slice so callers cannot mutate it.
// Callers must hold s.mu.
func (s *Store) snapshot() []core.Record {
	out := make([]core.Record, len(s.items))
	copy(out, s.items)
	return out
}
