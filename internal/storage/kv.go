package storage

import (
	"context"
	"errors"
)

// Fixed keys under which the two lists are persisted.
const (
	KeyTransactions    = "KEY_TRANSACTIONS"
	KeyRecommendations = "KEY_RECOMMENDATIONS"
)

var ErrClosed = errors.New("store closed")

// KV is a flat string-valued key-value namespace. Put overwrites any
// previous value for the key.
type KV interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Put(ctx context.Context, key, value string) error
	Close() error
}
