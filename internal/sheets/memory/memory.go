// Package memory is an in-process TransactionAppender used for dry runs.
package memory

import (
	"context"
	"fmt"
	"sync"

	"ledger/internal/core"
	"ledger/internal/sheets"
)

var _ sheets.TransactionAppender = (*Store)(nil)

// Store keeps exported rows in memory.
type Store struct {
	mu   sync.Mutex
	rows [][]any
	ids  []int64
}

func New() *Store {
	return &Store{}
}

// AppendTransaction records the row and returns a synthetic reference.
func (s *Store) AppendTransaction(_ context.Context, tx core.Transaction) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, sheets.Row(tx))
	s.ids = append(s.ids, tx.ID)
	return fmt.Sprintf("mem:%d", len(s.rows)), nil
}

// Rows returns a copy of every appended row in order.
func (s *Store) Rows() [][]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]any, len(s.rows))
	for i, r := range s.rows {
		out[i] = append([]any(nil), r...)
	}
	return out
}

// IDs returns the transaction ids exported so far.
func (s *Store) IDs() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int64(nil), s.ids...)
}
