package report

import (
	"testing"
	"time"
)

func TestParseNumberLocales(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"1.234,56", 1234.56, true},
		{"1,234.56", 1234.56, true},
		{"1234.56", 1234.56, true},
		{"1234,56", 1234.56, true},
		{"1.234.567", 1234567, true},
		{"1,234,567", 1234567, true},
		{"0", 0, true},
		{"", 0, true},
		{"  42 ", 42, true},
		{"abc", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := parseNumber(tt.in)
			if ok != tt.ok {
				t.Fatalf("parseNumber(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Fatalf("parseNumber(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseDateForms(t *testing.T) {
	want := time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   string
	}{
		{"iso", "2025-08-01"},
		{"day first slash", "01/08/2025"},
		{"day first dash", "01-08-2025"},
		{"excel serial", "45870"},
		{"indonesian month", "1 Agustus 2025"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseDate(tt.in)
			if !ok {
				t.Fatalf("parseDate(%q) failed", tt.in)
			}
			if !got.Equal(want) {
				t.Fatalf("parseDate(%q) = %v, want %v", tt.in, got, want)
			}
		})
	}
}

func TestParseDateRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "not a date", "0", "99999999"} {
		if _, ok := parseDate(in); ok {
			t.Fatalf("parseDate(%q) should fail", in)
		}
	}
}
