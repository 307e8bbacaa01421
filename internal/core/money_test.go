package core

import (
	"strings"
	"testing"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"4500", 4500, true},
		{"0", 0, true},
		{"000", 0, true},
		{" 12 ", 12, true},
		{"999999999999", 999999999999, true},
		{"", 0, false},
		{"abc", 0, false},
		{"-5", 0, false},
		{"1.5", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil || got != 0 {
				t.Fatalf("%q expected error and 0, got %d (err=%v)", tc.in, got, err)
			}
		}
	}
}

func TestApplyDigitKey(t *testing.T) {
	cases := []struct {
		input, key string
		want       string
		ok         bool
	}{
		{"0", "5", "5", true},
		{"0", "00", "00", true},
		{"0", "0", "0", true},
		{"5", "000", "5000", true},
		{"12", "3", "123", true},
		{"0", "C", "0", false},
		{"0", "+/-", "0", false},
		{"0", "x", "0", false},
		{strings.Repeat("9", 12), "1", strings.Repeat("9", 12), false},
		{strings.Repeat("9", 10), "000", strings.Repeat("9", 10), false},
		{strings.Repeat("9", 10), "00", strings.Repeat("9", 10) + "00", true},
	}
	for _, tc := range cases {
		got, ok := ApplyDigitKey(tc.input, tc.key)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("ApplyDigitKey(%q, %q) = %q,%v want %q,%v", tc.input, tc.key, got, ok, tc.want, tc.ok)
		}
	}
}

func TestDigitSequencesConcatenate(t *testing.T) {
	input := DefaultInput
	keys := []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "0", "1", "2"}
	for _, k := range keys {
		next, ok := ApplyDigitKey(input, k)
		if !ok {
			t.Fatalf("key %q rejected at %q", k, input)
		}
		input = next
	}
	if input != "123456789012" {
		t.Fatalf("unexpected input %q", input)
	}
	if next, ok := ApplyDigitKey(input, "3"); ok || next != input {
		t.Fatalf("13th digit should be rejected, got %q ok=%v", next, ok)
	}
}
