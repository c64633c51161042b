package memory

import (
	"context"
	"errors"
	"sync"

	storepkg "civicsim/internal/store"
)

var ErrClosed = errors.New("store closed")

// Store holds the snapshot in process memory. Used by tests and dry runs.
type Store struct {
	mu     sync.RWMutex
	data   []byte
	saves  int
	closed bool
	// FailSaves makes every Save return an error, for exercising non-fatal persistence paths.
	FailSaves bool
}

var _ storepkg.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{}
}

// NewStoreWith returns a store preloaded with raw snapshot bytes.
func NewStoreWith(raw []byte) *Store {
	return &Store{data: append([]byte(nil), raw...)}
}

func (s *Store) Load(_ context.Context) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	if s.data == nil {
		return nil, storepkg.ErrNotFound
	}
	return append([]byte(nil), s.data...), nil
}

func (s *Store) Save(_ context.Context, snapshot []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.FailSaves {
		return errors.New("save failed")
	}
	s.data = append([]byte(nil), snapshot...)
	s.saves++
	return nil
}

// Saves reports how many successful saves have happened.
func (s *Store) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
