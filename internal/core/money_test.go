package core

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{"1.004", 100, true},
		{" 2.50 ", 250, true},
		{"-1", 0, false},
		{"0", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
		{"1.٥", 0, false}, // non-ASCII digits
		{"1.٥٥", 0, false},
		{"٣", 0, false},
		{"１２", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestMoneyDecimalRoundTrip(t *testing.T) {
	m := Money{Cents: 123456}
	if got := m.Decimal().String(); got != "1234.56" {
		t.Fatalf("Decimal() = %s, want 1234.56", got)
	}
	if got := MoneyFromDecimal(decimal.RequireFromString("0.125")); got.Cents != 13 {
		t.Fatalf("MoneyFromDecimal(0.125) = %d cents, want 13", got.Cents)
	}
	if got := (Money{Cents: 5}).String(); got != "0.05" {
		t.Fatalf("String() = %q, want 0.05", got)
	}
}

func TestMoneyUnmarshalJSON(t *testing.T) {
	cases := []struct {
		in    string
		cents int64
		ok    bool
	}{
		{`1200`, 120000, true},
		{`85.5`, 8550, true},
		{`"12,34"`, 1234, true},
		{`"abc"`, 0, false},
		{`true`, 0, false},
	}
	for _, tc := range cases {
		var m Money
		err := json.Unmarshal([]byte(tc.in), &m)
		if tc.ok && (err != nil || m.Cents != tc.cents) {
			t.Fatalf("%s expected %d cents, got %d (err=%v)", tc.in, tc.cents, m.Cents, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("%s expected error", tc.in)
		}
	}
}
