package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// MemoryKV keeps entries in process memory. Nothing survives a restart.
type MemoryKV struct {
	mu      sync.Mutex
	entries map[string]string
	closed  bool
}

var _ KV = (*MemoryKV)(nil)

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{entries: map[string]string{}}
}

// NewMemoryKVFromDir seeds the store from "<key>.json" files in base, e.g.
// base/KEY_RECOMMENDATIONS.json. Missing or empty files are skipped.
func NewMemoryKVFromDir(base string) *MemoryKV {
	kv := NewMemoryKV()
	for _, key := range []string{KeyTransactions, KeyRecommendations} {
		b, err := os.ReadFile(filepath.Join(base, key+".json"))
		if err != nil {
			continue
		}
		if v := strings.TrimSpace(string(b)); v != "" {
			kv.entries[key] = v
		}
	}
	return kv
}

func (m *MemoryKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return "", false, ErrClosed
	}
	v, ok := m.entries[key]
	return v, ok, nil
}

func (m *MemoryKV) Put(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.entries[key] = value
	return nil
}

func (m *MemoryKV) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
