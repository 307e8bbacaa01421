package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"pocketbook/internal/core"
)

// Repository persists the transaction list and the recommendation
// dictionary as two JSON blobs in a KV store. Each save replaces the whole
// blob; there is no versioning or partial write.
type Repository struct {
	kv KV
}

func NewRepository(kv KV) *Repository {
	return &Repository{kv: kv}
}

// SaveTransactions overwrites the persisted transaction list.
func (r *Repository) SaveTransactions(ctx context.Context, txs []core.Transaction) error {
	if txs == nil {
		txs = []core.Transaction{}
	}
	return r.put(ctx, KeyTransactions, txs)
}

// LoadTransactions returns the persisted transaction list. An absent key,
// a read error or malformed JSON all yield an empty list.
func (r *Repository) LoadTransactions(ctx context.Context) []core.Transaction {
	txs, _ := loadList[core.Transaction](ctx, r.kv, KeyTransactions)
	return txs
}

// SaveRecommendationItems overwrites the persisted dictionary.
func (r *Repository) SaveRecommendationItems(ctx context.Context, items []core.RecommendationItem) error {
	if items == nil {
		items = []core.RecommendationItem{}
	}
	return r.put(ctx, KeyRecommendations, items)
}

// LoadRecommendationItems returns the persisted dictionary, or the built-in
// seed dictionary when nothing has been saved yet. Unreadable data yields an
// empty dictionary; the seed is reserved for a store that never had one.
func (r *Repository) LoadRecommendationItems(ctx context.Context) []core.RecommendationItem {
	items, present := loadList[core.RecommendationItem](ctx, r.kv, KeyRecommendations)
	if !present {
		return SeedRecommendations()
	}
	return items
}

// Ping performs a read against the backing store.
func (r *Repository) Ping(ctx context.Context) error {
	if _, _, err := r.kv.Get(ctx, KeyTransactions); err != nil {
		return fmt.Errorf("ping store: %w", err)
	}
	return nil
}

func (r *Repository) Close() error {
	if r.kv != nil {
		return r.kv.Close()
	}
	return nil
}

func (r *Repository) put(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := r.kv.Put(ctx, key, string(b)); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// loadList decodes the JSON array stored under key. present reports whether
// the key existed (or could not be read); the returned slice is never nil.
func loadList[T any](ctx context.Context, kv KV, key string) (items []T, present bool) {
	raw, found, err := kv.Get(ctx, key)
	if err != nil {
		slog.WarnContext(ctx, "Failed to read persisted state, using empty list", "key", key, "error", err)
		return []T{}, true
	}
	if !found {
		return []T{}, false
	}
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		slog.WarnContext(ctx, "Malformed persisted state, using empty list", "key", key, "error", err)
		return []T{}, true
	}
	if items == nil {
		items = []T{}
	}
	return items, true
}

// SeedRecommendations returns the sample dictionary offered on first start:
// common small expense categories plus one income example.
func SeedRecommendations() []core.RecommendationItem {
	seed := []struct {
		name     string
		min, max int64
	}{
		{"커피", 3000, 6000},
		{"점심", 8000, 15000},
		{"교통비", 1500, 3000},
		{"영화 티켓", 15000, 20000},
		{"편의점", 1000, 10000},
		{"저녁 식사", 15000, 30000},
		{"책", 10000, 25000},
		{"음료수", 1000, 2500},
		{"택시", 4800, 50000},
		{"월급", 2000000, 5000000},
	}
	items := make([]core.RecommendationItem, len(seed))
	for i, s := range seed {
		items[i] = core.RecommendationItem{
			ID:       uuid.NewString(),
			Name:     s.name,
			MinPrice: s.min,
			MaxPrice: s.max,
		}
	}
	return items
}
