package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TransactionType = "INCOME"
	Expense TransactionType = "EXPENSE"
)

const (
	ScreenMain             Screen = "MAIN"
	ScreenReceipts         Screen = "RECEIPTS"
	ScreenDictionaryEditor Screen = "DICTIONARY_EDITOR"
)

type (
	TransactionType string

	// Screen identifies which view the presentation layer should show.
	// MAIN is the hub every other screen returns to.
	Screen string

	Transaction struct {
		ID        string          `json:"id"`
		Name      string          `json:"name"`
		Amount    int64           `json:"amount"` // minor currency units
		Type      TransactionType `json:"type"`
		Timestamp int64           `json:"timestamp"` // epoch milliseconds
	}

	// RecommendationItem is one entry of the recommendation dictionary:
	// a label suggested whenever the entered amount falls in [MinPrice, MaxPrice].
	RecommendationItem struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		MinPrice int64  `json:"minPrice"`
		MaxPrice int64  `json:"maxPrice"`
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidType   = errors.New("invalid transaction type")
	ErrInvalidScreen = errors.New("invalid screen")
	ErrEmptyName     = errors.New("empty name")
)

// IsValid reports whether t is INCOME or EXPENSE.
func (t TransactionType) IsValid() bool {
	return t == Income || t == Expense
}

// Toggle returns the opposite transaction type. Anything that is not
// INCOME toggles to INCOME, so an unset type behaves like EXPENSE.
func (t TransactionType) Toggle() TransactionType {
	if t == Income {
		return Expense
	}
	return Income
}

// IsValid reports whether s is one of the known screens.
func (s Screen) IsValid() bool {
	switch s {
	case ScreenMain, ScreenReceipts, ScreenDictionaryEditor:
		return true
	default:
		return false
	}
}

// ParseScreen converts a client supplied screen name, case-insensitively.
func ParseScreen(v string) (Screen, error) {
	s := Screen(strings.ToUpper(strings.TrimSpace(v)))
	if !s.IsValid() {
		return "", ErrInvalidScreen
	}
	return s, nil
}

// Time returns the transaction timestamp as a time.Time.
func (t Transaction) Time() time.Time {
	return time.UnixMilli(t.Timestamp)
}

func (t Transaction) Validate() error {
	if t.Amount <= 0 {
		return ErrInvalidAmount
	}
	if !t.Type.IsValid() {
		return ErrInvalidType
	}
	return nil
}

// Contains reports whether amount lies in the inclusive price range.
// An inverted range (MinPrice > MaxPrice) never contains anything.
func (r RecommendationItem) Contains(amount int64) bool {
	return amount >= r.MinPrice && amount <= r.MaxPrice
}

// Midpoint is the centre of the price range, using integer division.
func (r RecommendationItem) Midpoint() int64 {
	return (r.MinPrice + r.MaxPrice) / 2
}

// HasPlaceholderID reports whether the item still carries the id the
// dictionary editor assigns to a not-yet-saved entry: empty, or starting
// with "0000" (the nil UUID).
func (r RecommendationItem) HasPlaceholderID() bool {
	return r.ID == "" || strings.HasPrefix(r.ID, "0000")
}
