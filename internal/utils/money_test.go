package utils

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

func TestFormatTHB(t *testing.T) {
	cases := map[string]string{
		"0":        "THB 0.00",
		"12300":    "THB 12,300.00",
		"1234567":  "THB 1,234,567.00",
		"999.5":    "THB 999.50",
		"-200":     "THB -200.00",
		"12300.75": "THB 12,300.75",
	}
	for in, want := range cases {
		if got := FormatTHB(dec(t, in)); got != want {
			t.Fatalf("FormatTHB(%s) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatQuantityDropsIntegralDecimals(t *testing.T) {
	if got := FormatQuantity(dec(t, "2")); got != "2" {
		t.Fatalf("got %q, want 2", got)
	}
	if got := FormatQuantity(dec(t, "2.00")); got != "2" {
		t.Fatalf("got %q, want 2", got)
	}
	if got := FormatQuantity(dec(t, "1.5")); got != "1.5" {
		t.Fatalf("got %q, want 1.5", got)
	}
}

func TestParseAmount(t *testing.T) {
	d, err := ParseAmount(" 12,300.00 ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !d.Equal(dec(t, "12300")) {
		t.Fatalf("got %s, want 12300", d)
	}

	if _, err := ParseAmount("abc"); err == nil {
		t.Fatal("expected error for junk input")
	}
}

func TestIsBlankOrNone(t *testing.T) {
	for _, blank := range []string{"", "  ", "none", "None", "N/A", "na", "-"} {
		if !IsBlankOrNone(blank) {
			t.Fatalf("%q should count as blank", blank)
		}
	}
	if IsBlankOrNone("late check-out") {
		t.Fatal("real content flagged blank")
	}
}

func TestSafeFilenamePart(t *testing.T) {
	if got := SafeFilenamePart("DCT/2024 001"); got != "DCT_2024_001" {
		t.Fatalf("got %q", got)
	}
	if got := SafeFilenamePart(""); got != "NA" {
		t.Fatalf("empty input should map to NA, got %q", got)
	}
}
