// Package memory is an in-process RecordMirror used when no spreadsheet is
// configured and in tests.
package memory

import (
	"context"
	"slices"
	"sync"
)

type Store struct {
	mu     sync.Mutex
	sheets map[string]map[int64][]string
}

func New() *Store {
	return &Store{sheets: make(map[string]map[int64][]string)}
}

func (s *Store) Upsert(_ context.Context, sheet string, id int64, row []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, ok := s.sheets[sheet]
	if !ok {
		rows = make(map[int64][]string)
		s.sheets[sheet] = rows
	}
	rows[id] = slices.Clone(row)
	return nil
}

func (s *Store) Remove(_ context.Context, sheet string, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sheets[sheet], id)
	return nil
}

// Rows returns a copy of the rows of sheet.
func (s *Store) Rows(_ context.Context, sheet string) (map[int64][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int64][]string, len(s.sheets[sheet]))
	for id, row := range s.sheets[sheet] {
		out[id] = slices.Clone(row)
	}
	return out, nil
}
