// Package i18n resolves user-facing text and number formatting for the two
// locales the app ships with.
package i18n

import (
	"strings"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Locale is one of the two supported UI locales.
type Locale string

const (
	Korean  Locale = "ko"
	English Locale = "en"
)

// Message keys resolved through the catalog.
const (
	MsgAppName          = "app_name"
	MsgReceipts         = "receipts_page"
	MsgDictionaryEditor = "dictionary_editor"
	MsgBackToMain       = "back_to_main"
	MsgTotalIncome      = "total_income"
	MsgTotalExpense     = "total_expense"
	MsgBalance          = "balance"
	MsgAddNewItem       = "add_new_item"
	MsgManualAdd        = "manual_add"
	MsgIncome           = "income"
	MsgExpense          = "expense"
)

var tags = map[Locale]language.Tag{
	Korean:  language.Korean,
	English: language.English,
}

var defaultCatalog = newCatalog()

func newCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	set := func(tag language.Tag, key, msg string) {
		// SetString only fails for malformed messages, none of which are below.
		_ = b.SetString(tag, key, msg)
	}

	set(language.Korean, MsgAppName, "가계부")
	set(language.Korean, MsgReceipts, "영수증")
	set(language.Korean, MsgDictionaryEditor, "추천 항목 편집")
	set(language.Korean, MsgBackToMain, "메인으로")
	set(language.Korean, MsgTotalIncome, "총 수입")
	set(language.Korean, MsgTotalExpense, "총 지출")
	set(language.Korean, MsgBalance, "잔액")
	set(language.Korean, MsgAddNewItem, "새 항목 추가")
	set(language.Korean, MsgManualAdd, "직접 입력")
	set(language.Korean, MsgIncome, "수입")
	set(language.Korean, MsgExpense, "지출")

	set(language.English, MsgAppName, "Pocketbook")
	set(language.English, MsgReceipts, "Receipts")
	set(language.English, MsgDictionaryEditor, "Edit recommendations")
	set(language.English, MsgBackToMain, "Back to main")
	set(language.English, MsgTotalIncome, "Total income")
	set(language.English, MsgTotalExpense, "Total expense")
	set(language.English, MsgBalance, "Balance")
	set(language.English, MsgAddNewItem, "Add new item")
	set(language.English, MsgManualAdd, "Manual entry")
	set(language.English, MsgIncome, "Income")
	set(language.English, MsgExpense, "Expense")

	return b
}

// ParseLocale maps a configuration value to a Locale. Unknown values fall
// back to Korean, the app's original default.
func ParseLocale(v string) Locale {
	if strings.EqualFold(strings.TrimSpace(v), string(English)) {
		return English
	}
	return Korean
}

// Other returns the locale that a language toggle switches to.
func (l Locale) Other() Locale {
	if l == Korean {
		return English
	}
	return Korean
}

// Tag returns the language tag for l.
func (l Locale) Tag() language.Tag {
	if t, ok := tags[l]; ok {
		return t
	}
	return language.Korean
}

// Localizer is the resource resolver used when rendering text. Switching
// its locale affects every string resolved afterwards.
type Localizer struct {
	mu      sync.RWMutex
	locale  Locale
	printer *message.Printer
}

// NewLocalizer creates a localizer for the given locale.
func NewLocalizer(l Locale) *Localizer {
	lz := &Localizer{}
	lz.SetLocale(l)
	return lz
}

// SetLocale switches the active locale.
func (lz *Localizer) SetLocale(l Locale) {
	if _, ok := tags[l]; !ok {
		l = Korean
	}
	p := message.NewPrinter(l.Tag(), message.Catalog(defaultCatalog))
	lz.mu.Lock()
	lz.locale = l
	lz.printer = p
	lz.mu.Unlock()
}

// Locale returns the active locale.
func (lz *Localizer) Locale() Locale {
	lz.mu.RLock()
	defer lz.mu.RUnlock()
	return lz.locale
}

// Text resolves a message key in the active locale.
func (lz *Localizer) Text(key string) string {
	lz.mu.RLock()
	defer lz.mu.RUnlock()
	return lz.printer.Sprintf(key)
}

// FormatAmount renders an amount with the locale's digit grouping, e.g.
// 1234567 -> "1,234,567".
func (lz *Localizer) FormatAmount(amount int64) string {
	lz.mu.RLock()
	defer lz.mu.RUnlock()
	return lz.printer.Sprintf("%d", amount)
}

// FormatSigned renders an amount prefixed with "+" for income and "-" for expense.
func (lz *Localizer) FormatSigned(amount int64, income bool) string {
	sign := "-"
	if income {
		sign = "+"
	}
	return sign + lz.FormatAmount(amount)
}
