package utils

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"25000", "25000"},
		{" 1.5 ", "1.5"},
		{"2,5", "2.5"},
		{"12 500", "12500"},
		{"", "0"},
		{"abc", "0"},
		{"-0.75", "-0.75"},
		{"1e3", "1000"},
		{"1e2000000000", "0"},
		{"-1e2000000000", "0"},
		{"1e-2000000000", "0"},
		{"1000000000000", "0"},
		{"999999999999.99", "999999999999.99"},
		{"0.000000001", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ParseAmount(tt.in)
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("ParseAmount(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewIDUniqueAndOrdered(t *testing.T) {
	seen := make(map[string]bool)
	prev := ""
	for i := 0; i < 1000; i++ {
		id := NewID()
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
		if prev != "" && len(id) == len(prev) && id <= prev {
			t.Fatalf("ids not increasing: %s after %s", id, prev)
		}
		prev = id
	}
}

func TestValidAmount(t *testing.T) {
	tests := []struct {
		in   decimal.Decimal
		want bool
	}{
		{decimal.RequireFromString("25000.50"), true},
		{decimal.RequireFromString("-150"), true},
		{decimal.Zero, true},
		{decimal.New(1, 2000000000), false},
		{decimal.New(1, -2000000000), false},
		{decimal.New(1, 12), false},
		{decimal.RequireFromString("0.00000001"), true},
	}
	for _, tt := range tests {
		if got := ValidAmount(tt.in); got != tt.want {
			t.Errorf("ValidAmount(%s e%d) = %v, want %v", tt.in.Coefficient(), tt.in.Exponent(), got, tt.want)
		}
	}
}
