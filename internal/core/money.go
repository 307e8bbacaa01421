// Package core provides amount parsing and the keypad input rules.
//
// Amounts are whole minor currency units; the keypad never produces a
// decimal separator, so parsing is a plain base-10 integer conversion.
package core

import (
	"strconv"
	"strings"
)

// MaxInputLength is the maximum number of characters the keypad input may hold.
const MaxInputLength = 12

// Keypad keys besides the digits.
const (
	KeyClear      = "C"
	KeyToggleType = "+/-"
	KeyDoubleZero = "00"
	KeyTripleZero = "000"
)

// DefaultInput is the keypad text after start-up, clear, or a recorded transaction.
const DefaultInput = "0"

// ParseAmount converts keypad text into an amount.
//
// Unparsable or negative text yields 0 and ErrInvalidAmount, so callers
// that only care about "is there something to record" can ignore the error.
//
// Examples:
//
//	ParseAmount("4500") -> 4500, nil
//	ParseAmount("0")    -> 0, nil
//	ParseAmount("abc")  -> 0, ErrInvalidAmount
func ParseAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v < 0 {
		return 0, ErrInvalidAmount
	}
	return v, nil
}

// IsDigitKey reports whether key appends to the input: "0".."9", "00" or "000".
func IsDigitKey(key string) bool {
	switch key {
	case KeyDoubleZero, KeyTripleZero:
		return true
	}
	return len(key) == 1 && key[0] >= '0' && key[0] <= '9'
}

// ApplyDigitKey returns the input text after pressing a digit key.
//
// The key replaces the input when it is exactly "0"; otherwise it is
// appended. The press is rejected (ok=false, input unchanged) when the key
// is not a digit key or the result would exceed MaxInputLength.
func ApplyDigitKey(input, key string) (next string, ok bool) {
	if !IsDigitKey(key) {
		return input, false
	}
	if input == DefaultInput {
		next = key
	} else {
		next = input + key
	}
	if len(next) > MaxInputLength {
		return input, false
	}
	return next, true
}
