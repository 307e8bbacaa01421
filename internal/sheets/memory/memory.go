// Package memory provides an in-process ReceiptWriter for local runs and
// tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"pocketbook/internal/core"
	ports "pocketbook/internal/sheets"
)

type Store struct {
	mu    sync.Mutex
	items []core.Transaction
}

var _ ports.ReceiptWriter = (*Store)(nil)

func New() *Store {
	return &Store{}
}

// AppendReceipt stores the transaction and returns a synthetic row reference.
func (s *Store) AppendReceipt(_ context.Context, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, tx)
	return fmt.Sprintf("mem:%d", len(s.items)), nil
}

// Receipts returns a copy of everything appended so far, in append order.
func (s *Store) Receipts() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.items...)
}
