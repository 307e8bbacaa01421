// Package session owns the observable state of one pocketbook user session:
// current screen, theme, locale, keypad input, transaction type and the two
// persisted lists. Every mutation writes through to the Store and notifies
// subscribers with a fresh State snapshot.
//
// A Session is not safe for concurrent use. Callers that share one across
// goroutines must serialize access.
package session

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"

	"pocketbook/internal/core"
	"pocketbook/internal/i18n"
	"pocketbook/internal/log"
)

// Store persists the transaction list and the recommendation dictionary.
type Store interface {
	SaveTransactions(ctx context.Context, txs []core.Transaction) error
	LoadTransactions(ctx context.Context) []core.Transaction
	SaveRecommendationItems(ctx context.Context, items []core.RecommendationItem) error
	LoadRecommendationItems(ctx context.Context) []core.RecommendationItem
}

// Publisher announces recorded transactions to downstream consumers.
type Publisher interface {
	PublishTransactionRecorded(ctx context.Context, tx core.Transaction) error
}

// Options configures a Session. Store is required.
type Options struct {
	Store     Store
	Publisher Publisher
	Localizer *i18n.Localizer
	Logger    *log.Logger
	Now       func() time.Time
	NewID     func() string
}

// State is an immutable snapshot handed to observers and API clients.
type State struct {
	Screen           core.Screen               `json:"screen"`
	DarkTheme        bool                      `json:"darkTheme"`
	Locale           i18n.Locale               `json:"locale"`
	Input            string                    `json:"input"`
	TransactionType  core.TransactionType      `json:"transactionType"`
	Transactions     []core.Transaction        `json:"transactions"`
	Dictionary       []core.RecommendationItem `json:"dictionary"`
	RecommendedItems []core.RecommendationItem `json:"recommendedItems"`
	Totals           core.Totals               `json:"totals"`
}

var ErrNoStore = errors.New("session: store is required")

type observer struct {
	id int
	fn func(State)
}

type Session struct {
	store     Store
	publisher Publisher
	localizer *i18n.Localizer
	logger    *log.Logger
	now       func() time.Time
	newID     func() string

	screen       core.Screen
	darkTheme    bool
	input        string
	txType       core.TransactionType
	transactions []core.Transaction
	dictionary   []core.RecommendationItem

	observers []observer
	nextObsID int
}

// New builds a session and loads both lists from the store.
func New(ctx context.Context, opts Options) (*Session, error) {
	if opts.Store == nil {
		return nil, ErrNoStore
	}
	s := &Session{
		store:     opts.Store,
		publisher: opts.Publisher,
		localizer: opts.Localizer,
		logger:    opts.Logger,
		now:       opts.Now,
		newID:     opts.NewID,
		screen:    core.ScreenMain,
		input:     core.DefaultInput,
		txType:    core.Expense,
	}
	if s.localizer == nil {
		s.localizer = i18n.NewLocalizer(i18n.Korean)
	}
	if s.logger == nil {
		s.logger = log.New(log.DefaultConfig())
	}
	s.logger = s.logger.WithComponent(log.ComponentSession)
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}

	s.transactions = opts.Store.LoadTransactions(ctx)
	core.SortByTimestampDesc(s.transactions)
	s.dictionary = opts.Store.LoadRecommendationItems(ctx)

	s.logger.InfoContext(ctx, "Session loaded",
		"transactions", len(s.transactions),
		"dictionary_items", len(s.dictionary),
		log.FieldLocale, s.localizer.Locale())
	return s, nil
}

// Subscribe registers fn to receive a snapshot after every state change.
// Observers run synchronously in registration order.
func (s *Session) Subscribe(fn func(State)) (unsubscribe func()) {
	s.nextObsID++
	id := s.nextObsID
	s.observers = append(s.observers, observer{id: id, fn: fn})
	return func() {
		s.observers = slices.DeleteFunc(s.observers, func(o observer) bool { return o.id == id })
	}
}

// Close drops every observer. The store is owned by the caller.
func (s *Session) Close() {
	s.observers = nil
}

// Snapshot returns the current state including derived fields.
func (s *Session) Snapshot() State {
	amount, _ := core.ParseAmount(s.input)
	return State{
		Screen:           s.screen,
		DarkTheme:        s.darkTheme,
		Locale:           s.localizer.Locale(),
		Input:            s.input,
		TransactionType:  s.txType,
		Transactions:     slices.Clone(s.transactions),
		Dictionary:       slices.Clone(s.dictionary),
		RecommendedItems: core.Recommend(s.dictionary, amount),
		Totals:           core.ComputeTotals(s.transactions),
	}
}

// Localizer exposes the text renderer bound to the session locale.
func (s *Session) Localizer() *i18n.Localizer {
	return s.localizer
}

func (s *Session) NavigateTo(ctx context.Context, screen core.Screen) {
	if !screen.IsValid() {
		s.logger.DebugContext(ctx, "Ignoring unknown screen", log.FieldScreen, screen)
		return
	}
	s.screen = screen
	s.notify()
}

func (s *Session) ToggleTheme(ctx context.Context) {
	s.darkTheme = !s.darkTheme
	s.logger.DebugContext(ctx, "Theme toggled", "dark", s.darkTheme)
	s.notify()
}

func (s *Session) ToggleLanguage(ctx context.Context) {
	next := s.localizer.Locale().Other()
	s.localizer.SetLocale(next)
	s.logger.InfoContext(ctx, "Language toggled", log.FieldLocale, next)
	s.notify()
}

// OnKeypadClick applies one keypad press. Rejected or unknown keys change
// nothing and do not notify.
func (s *Session) OnKeypadClick(ctx context.Context, key string) {
	switch key {
	case core.KeyClear:
		s.input = core.DefaultInput
	case core.KeyToggleType:
		s.txType = s.txType.Toggle()
	default:
		next, ok := core.ApplyDigitKey(s.input, key)
		if !ok {
			s.logger.DebugContext(ctx, "Keypad input rejected", "key", key, "input_length", len(s.input))
			return
		}
		s.input = next
	}
	s.notify()
}

// AddTransaction records the keypad amount under name. A zero or unparsable
// amount is a no-op.
func (s *Session) AddTransaction(ctx context.Context, name string) {
	amount, err := core.ParseAmount(s.input)
	if err != nil || amount <= 0 {
		return
	}

	tx := core.Transaction{
		ID:        s.newID(),
		Name:      name,
		Amount:    amount,
		Type:      s.txType,
		Timestamp: s.now().UnixMilli(),
	}
	s.transactions = append([]core.Transaction{tx}, s.transactions...)
	core.SortByTimestampDesc(s.transactions)

	if err := s.store.SaveTransactions(ctx, s.transactions); err != nil {
		s.logger.ErrorContext(ctx, "Failed to persist transactions",
			log.NewFields().WithOperation(log.OpAddTx).WithError(err).ToSlice()...)
	}

	s.input = core.DefaultInput
	s.txType = core.Expense

	s.logger.InfoContext(ctx, "Transaction added",
		log.NewFields().WithTransaction(tx.ID, tx.Name, tx.Amount, string(tx.Type)).ToSlice()...)

	if s.publisher != nil {
		if err := s.publisher.PublishTransactionRecorded(ctx, tx); err != nil {
			s.logger.ErrorContext(ctx, "Failed to publish transaction",
				log.NewFields().WithOperation(log.OpPublish).WithError(err).ToSlice()...)
		}
	}

	s.notify()
}

// AddDictionaryItem appends item, assigning a fresh id when it carries a
// placeholder.
func (s *Session) AddDictionaryItem(ctx context.Context, item core.RecommendationItem) {
	if item.HasPlaceholderID() {
		item.ID = s.newID()
	}
	s.dictionary = append(s.dictionary, item)
	s.saveDictionary(ctx, log.OpAddItem, item.ID)
}

// UpdateDictionaryItem replaces the entry sharing item's id.
func (s *Session) UpdateDictionaryItem(ctx context.Context, item core.RecommendationItem) {
	if i := s.indexOf(item.ID); i >= 0 {
		s.dictionary[i] = item
	}
	s.saveDictionary(ctx, log.OpUpdateItem, item.ID)
}

// DeleteDictionaryItem removes every entry with item's id, keeping the
// order of the rest.
func (s *Session) DeleteDictionaryItem(ctx context.Context, item core.RecommendationItem) {
	s.dictionary = slices.DeleteFunc(s.dictionary, func(r core.RecommendationItem) bool {
		return r.ID == item.ID
	})
	s.saveDictionary(ctx, log.OpDeleteItem, item.ID)
}

// SaveDictionaryItem updates an existing entry or adds a new one.
func (s *Session) SaveDictionaryItem(ctx context.Context, item core.RecommendationItem) {
	if !item.HasPlaceholderID() && s.indexOf(item.ID) >= 0 {
		s.UpdateDictionaryItem(ctx, item)
		return
	}
	s.AddDictionaryItem(ctx, item)
}

func (s *Session) indexOf(id string) int {
	return slices.IndexFunc(s.dictionary, func(r core.RecommendationItem) bool { return r.ID == id })
}

func (s *Session) saveDictionary(ctx context.Context, op, id string) {
	if s.dictionary == nil {
		s.dictionary = []core.RecommendationItem{}
	}
	if err := s.store.SaveRecommendationItems(ctx, s.dictionary); err != nil {
		s.logger.ErrorContext(ctx, "Failed to persist dictionary",
			log.NewFields().WithOperation(op).WithError(err).ToSlice()...)
	}
	s.logger.DebugContext(ctx, "Dictionary changed", log.FieldOperation, op, log.FieldItemID, id)
	s.notify()
}

func (s *Session) notify() {
	if len(s.observers) == 0 {
		return
	}
	snap := s.Snapshot()
	// Copy so an observer may unsubscribe itself.
	for _, o := range slices.Clone(s.observers) {
		o.fn(snap)
	}
}
