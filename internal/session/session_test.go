package session

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"pocketbook/internal/core"
	"pocketbook/internal/i18n"
	"pocketbook/internal/log"
	"pocketbook/internal/storage"
)

type fakePublisher struct {
	published []core.Transaction
	err       error
}

func (p *fakePublisher) PublishTransactionRecorded(_ context.Context, tx core.Transaction) error {
	p.published = append(p.published, tx)
	return p.err
}

type brokenStore struct {
	saves int
}

func (b *brokenStore) SaveTransactions(context.Context, []core.Transaction) error {
	b.saves++
	return errors.New("write failed")
}
func (b *brokenStore) LoadTransactions(context.Context) []core.Transaction { return nil }
func (b *brokenStore) SaveRecommendationItems(context.Context, []core.RecommendationItem) error {
	b.saves++
	return errors.New("write failed")
}
func (b *brokenStore) LoadRecommendationItems(context.Context) []core.RecommendationItem {
	return []core.RecommendationItem{}
}

// testClock advances one millisecond per call.
func testClock() func() time.Time {
	t := time.UnixMilli(1_700_000_000_000)
	return func() time.Time {
		t = t.Add(time.Millisecond)
		return t
	}
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newTestSession(t *testing.T, store Store, pub Publisher) *Session {
	t.Helper()
	s, err := New(context.Background(), Options{
		Store:     store,
		Publisher: pub,
		Localizer: i18n.NewLocalizer(i18n.Korean),
		Logger:    log.Discard(),
		Now:       testClock(),
		NewID:     sequentialIDs(),
	})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return s
}

func memoryRepo() *storage.Repository {
	return storage.NewRepository(storage.NewMemoryKV())
}

func press(s *Session, keys ...string) {
	for _, k := range keys {
		s.OnKeypadClick(context.Background(), k)
	}
}

func TestNewRequiresStore(t *testing.T) {
	if _, err := New(context.Background(), Options{}); !errors.Is(err, ErrNoStore) {
		t.Fatalf("expected ErrNoStore, got %v", err)
	}
}

func TestInitialState(t *testing.T) {
	s := newTestSession(t, memoryRepo(), nil)
	st := s.Snapshot()

	if st.Screen != core.ScreenMain || st.DarkTheme || st.Input != "0" || st.TransactionType != core.Expense {
		t.Fatalf("unexpected initial state %+v", st)
	}
	if st.Locale != i18n.Korean {
		t.Fatalf("expected ko locale, got %s", st.Locale)
	}
	if len(st.Transactions) != 0 {
		t.Fatalf("expected no transactions, got %d", len(st.Transactions))
	}
	if len(st.Dictionary) != 10 {
		t.Fatalf("expected seed dictionary, got %d items", len(st.Dictionary))
	}
	if st.RecommendedItems == nil || len(st.RecommendedItems) != 0 {
		t.Fatalf("expected empty recommendations for zero input, got %v", st.RecommendedItems)
	}
}

func TestKeypad(t *testing.T) {
	tests := []struct {
		name      string
		keys      []string
		wantInput string
		wantType  core.TransactionType
	}{
		{"digit replaces zero", []string{"5"}, "5", core.Expense},
		{"digits append", []string{"4", "5", "0", "0"}, "4500", core.Expense},
		{"double zero", []string{"1", "00"}, "100", core.Expense},
		{"triple zero on zero", []string{"000"}, "000", core.Expense},
		{"clear", []string{"9", "9", "C"}, "0", core.Expense},
		{"toggle type keeps input", []string{"7", "+/-"}, "7", core.Income},
		{"toggle twice", []string{"+/-", "+/-"}, "0", core.Expense},
		{"unknown key ignored", []string{"3", "x", "."}, "3", core.Expense},
		{"twelve digits", []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "0", "1", "2"}, "123456789012", core.Expense},
		{"thirteenth rejected", []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "0", "1", "2", "3"}, "123456789012", core.Expense},
		{"overflowing triple zero rejected", []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "0", "000"}, "1234567890", core.Expense},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession(t, memoryRepo(), nil)
			press(s, tt.keys...)
			st := s.Snapshot()
			if st.Input != tt.wantInput {
				t.Errorf("input: expected %q, got %q", tt.wantInput, st.Input)
			}
			if st.TransactionType != tt.wantType {
				t.Errorf("type: expected %s, got %s", tt.wantType, st.TransactionType)
			}
		})
	}
}

func TestAddTransaction(t *testing.T) {
	ctx := context.Background()
	repo := memoryRepo()
	pub := &fakePublisher{}
	s := newTestSession(t, repo, pub)

	press(s, "4", "5", "0", "0")
	s.AddTransaction(ctx, "Coffee")

	st := s.Snapshot()
	if len(st.Transactions) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(st.Transactions))
	}
	tx := st.Transactions[0]
	if tx.Name != "Coffee" || tx.Amount != 4500 || tx.Type != core.Expense {
		t.Fatalf("unexpected transaction %+v", tx)
	}
	if st.Input != "0" || st.TransactionType != core.Expense {
		t.Fatalf("expected input and type reset, got %q %s", st.Input, st.TransactionType)
	}
	if len(pub.published) != 1 || pub.published[0] != tx {
		t.Fatalf("expected transaction published, got %+v", pub.published)
	}

	press(s, "+/-", "3", "0", "0", "0", "000")
	s.AddTransaction(ctx, "Salary")

	st = s.Snapshot()
	if len(st.Transactions) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(st.Transactions))
	}
	if st.Transactions[0].Name != "Salary" || st.Transactions[0].Type != core.Income {
		t.Fatalf("expected newest income first, got %+v", st.Transactions)
	}
	if st.Transactions[0].Timestamp <= st.Transactions[1].Timestamp {
		t.Fatalf("expected descending timestamps, got %+v", st.Transactions)
	}
	if st.Transactions[0].ID == st.Transactions[1].ID {
		t.Fatalf("expected distinct ids, got %+v", st.Transactions)
	}
	if st.Totals.Income != 3000000 || st.Totals.Expense != 4500 || st.Totals.Balance != 3000000-4500 {
		t.Fatalf("unexpected totals %+v", st.Totals)
	}

	persisted := repo.LoadTransactions(ctx)
	if len(persisted) != 2 || persisted[0] != st.Transactions[0] || persisted[1] != st.Transactions[1] {
		t.Fatalf("expected sorted list persisted, got %+v", persisted)
	}
}

func TestAddTransactionZeroAmountIsNoop(t *testing.T) {
	ctx := context.Background()
	pub := &fakePublisher{}
	s := newTestSession(t, memoryRepo(), pub)

	notified := 0
	s.Subscribe(func(State) { notified++ })

	s.AddTransaction(ctx, "Nothing")
	press(s, "000")
	notified = 0
	s.AddTransaction(ctx, "Zeros")

	if n := len(s.Snapshot().Transactions); n != 0 {
		t.Fatalf("expected no transactions, got %d", n)
	}
	if notified != 0 {
		t.Fatalf("expected no notification, got %d", notified)
	}
	if len(pub.published) != 0 {
		t.Fatalf("expected nothing published")
	}
}

func TestStoreAndPublishFailuresAreAbsorbed(t *testing.T) {
	ctx := context.Background()
	store := &brokenStore{}
	pub := &fakePublisher{err: errors.New("broker down")}
	s := newTestSession(t, store, pub)

	press(s, "1", "0")
	s.AddTransaction(ctx, "Bus")
	s.AddDictionaryItem(ctx, core.RecommendationItem{Name: "Bus", MinPrice: 1, MaxPrice: 20})

	st := s.Snapshot()
	if len(st.Transactions) != 1 || len(st.Dictionary) != 1 {
		t.Fatalf("in-memory state must change despite store errors: %+v", st)
	}
	if store.saves != 2 {
		t.Fatalf("expected 2 save attempts, got %d", store.saves)
	}
}

func TestRecommendations(t *testing.T) {
	ctx := context.Background()
	repo := memoryRepo()
	_ = repo.SaveRecommendationItems(ctx, []core.RecommendationItem{
		{ID: "a", Name: "A", MinPrice: 3000, MaxPrice: 6000},
		{ID: "b", Name: "B", MinPrice: 8000, MaxPrice: 15000},
	})
	s := newTestSession(t, repo, nil)

	press(s, "5", "000")
	got := s.Snapshot().RecommendedItems
	if len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("expected [A], got %+v", got)
	}

	press(s, "C")
	if got := s.Snapshot().RecommendedItems; len(got) != 0 {
		t.Fatalf("expected no recommendations after clear, got %+v", got)
	}
}

func TestDictionaryCRUD(t *testing.T) {
	ctx := context.Background()
	repo := memoryRepo()
	_ = repo.SaveRecommendationItems(ctx, []core.RecommendationItem{})
	s := newTestSession(t, repo, nil)

	s.AddDictionaryItem(ctx, core.RecommendationItem{ID: "00000000-0000-0000-0000-000000000000", Name: "Tea", MinPrice: 2000, MaxPrice: 4000})
	s.AddDictionaryItem(ctx, core.RecommendationItem{ID: "keep", Name: "Bus", MinPrice: 1000, MaxPrice: 2000})
	s.AddDictionaryItem(ctx, core.RecommendationItem{Name: "Book", MinPrice: 10000, MaxPrice: 25000})

	dict := s.Snapshot().Dictionary
	if len(dict) != 3 {
		t.Fatalf("expected 3 items, got %d", len(dict))
	}
	if dict[0].ID != "id-1" || dict[1].ID != "keep" || dict[2].ID != "id-2" {
		t.Fatalf("placeholder ids must be replaced, real ids kept: %+v", dict)
	}

	s.UpdateDictionaryItem(ctx, core.RecommendationItem{ID: "keep", Name: "Subway", MinPrice: 1400, MaxPrice: 1800})
	s.UpdateDictionaryItem(ctx, core.RecommendationItem{ID: "missing", Name: "Ghost"})
	dict = s.Snapshot().Dictionary
	if len(dict) != 3 || dict[1].Name != "Subway" {
		t.Fatalf("unexpected dictionary after update: %+v", dict)
	}

	s.DeleteDictionaryItem(ctx, core.RecommendationItem{ID: "unknown"})
	if n := len(s.Snapshot().Dictionary); n != 3 {
		t.Fatalf("deleting unknown id must be a no-op, got %d items", n)
	}

	s.DeleteDictionaryItem(ctx, core.RecommendationItem{ID: "keep"})
	dict = s.Snapshot().Dictionary
	if len(dict) != 2 || dict[0].Name != "Tea" || dict[1].Name != "Book" {
		t.Fatalf("expected order preserved after delete, got %+v", dict)
	}

	persisted := repo.LoadRecommendationItems(ctx)
	if len(persisted) != 2 || persisted[0] != dict[0] || persisted[1] != dict[1] {
		t.Fatalf("expected dictionary persisted, got %+v", persisted)
	}
}

func TestSaveDictionaryItem(t *testing.T) {
	ctx := context.Background()
	repo := memoryRepo()
	_ = repo.SaveRecommendationItems(ctx, []core.RecommendationItem{{ID: "a", Name: "A", MinPrice: 1, MaxPrice: 2}})
	s := newTestSession(t, repo, nil)

	s.SaveDictionaryItem(ctx, core.RecommendationItem{ID: "a", Name: "A2", MinPrice: 1, MaxPrice: 3})
	s.SaveDictionaryItem(ctx, core.RecommendationItem{ID: "b", Name: "B", MinPrice: 5, MaxPrice: 9})
	s.SaveDictionaryItem(ctx, core.RecommendationItem{Name: "C", MinPrice: 10, MaxPrice: 20})

	dict := s.Snapshot().Dictionary
	if len(dict) != 3 {
		t.Fatalf("expected 3 items, got %+v", dict)
	}
	if dict[0].Name != "A2" || dict[1].ID != "b" || dict[2].ID != "id-1" {
		t.Fatalf("unexpected dictionary %+v", dict)
	}
}

func TestNavigateThemeLanguage(t *testing.T) {
	ctx := context.Background()
	lz := i18n.NewLocalizer(i18n.Korean)
	s, err := New(ctx, Options{Store: memoryRepo(), Localizer: lz, Logger: log.Discard()})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}

	s.NavigateTo(ctx, core.ScreenReceipts)
	s.NavigateTo(ctx, core.Screen("SETTINGS"))
	s.ToggleTheme(ctx)
	s.ToggleLanguage(ctx)

	st := s.Snapshot()
	if st.Screen != core.ScreenReceipts {
		t.Fatalf("expected RECEIPTS, got %s", st.Screen)
	}
	if !st.DarkTheme {
		t.Fatalf("expected dark theme")
	}
	if st.Locale != i18n.English || lz.Locale() != i18n.English {
		t.Fatalf("expected locale applied to localizer, got %s / %s", st.Locale, lz.Locale())
	}

	s.ToggleLanguage(ctx)
	if s.Snapshot().Locale != i18n.Korean {
		t.Fatalf("expected locale toggled back to ko")
	}
}

func TestObservers(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, memoryRepo(), nil)

	var order []string
	var last State
	unsubA := s.Subscribe(func(st State) {
		order = append(order, "a")
		last = st
	})
	s.Subscribe(func(State) { order = append(order, "b") })

	press(s, "1")
	if len(order) != 2 || order[0] != "a" || order[1] != "b" {
		t.Fatalf("expected observers in registration order, got %v", order)
	}
	if last.Input != "1" {
		t.Fatalf("expected snapshot with new input, got %q", last.Input)
	}

	press(s, "x")
	if len(order) != 2 {
		t.Fatalf("rejected key must not notify, got %v", order)
	}

	unsubA()
	s.ToggleTheme(ctx)
	if len(order) != 3 || order[2] != "b" {
		t.Fatalf("expected only b after unsubscribe, got %v", order)
	}

	s.Close()
	s.ToggleTheme(ctx)
	if len(order) != 3 {
		t.Fatalf("expected no observers after close, got %v", order)
	}
}

func TestSnapshotIsDetached(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, memoryRepo(), nil)

	st := s.Snapshot()
	st.Dictionary[0].Name = "mutated"
	if s.Snapshot().Dictionary[0].Name == "mutated" {
		t.Fatalf("snapshot must not alias session state")
	}

	s.DeleteDictionaryItem(ctx, st.Dictionary[1])
	if len(st.Dictionary) != 10 {
		t.Fatalf("earlier snapshot must not change, got %d items", len(st.Dictionary))
	}
}
