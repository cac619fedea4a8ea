package http

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestParseYearMonth(t *testing.T) {
	now := time.Now()

	r := httptest.NewRequest("GET", "/ui/expenses?year=2025&month=3", nil)
	year, month := parseYearMonth(r)
	if year != 2025 || month != 3 {
		t.Fatalf("parseYearMonth = %d, %d", year, month)
	}

	r = httptest.NewRequest("GET", "/ui/expenses", nil)
	year, month = parseYearMonth(r)
	if year != now.Year() || month != int(now.Month()) {
		t.Fatalf("defaults = %d, %d", year, month)
	}

	r = httptest.NewRequest("GET", "/ui/expenses?year=2025&month=13", nil)
	_, month = parseYearMonth(r)
	if month != int(now.Month()) {
		t.Fatalf("out-of-range month must fall back, got %d", month)
	}
}

func TestParseDate(t *testing.T) {
	d, err := parseDate("2026-08-15")
	if err != nil {
		t.Fatalf("parseDate: %v", err)
	}
	if d.Year() != 2026 || d.Month() != 8 || d.Day() != 15 {
		t.Fatalf("parsed %v", d)
	}

	if _, err := parseDate("15/08/2026"); err == nil {
		t.Fatalf("expected error for wrong format")
	}
}

func TestParseID(t *testing.T) {
	if id, err := parseID(" 42 "); err != nil || id != 42 {
		t.Fatalf("parseID(42) = %d, %v", id, err)
	}
	for _, raw := range []string{"", "abc", "0", "-3"} {
		if _, err := parseID(raw); err == nil {
			t.Fatalf("parseID(%q) must fail", raw)
		}
	}
}

func TestFormatEuros(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{0, "€0,00"},
		{5, "€0,05"},
		{1250, "€12,50"},
		{123456, "€1234,56"},
		{-999, "-€9,99"},
	}
	for _, tc := range cases {
		if got := formatEuros(tc.cents); got != tc.want {
			t.Fatalf("formatEuros(%d) = %q, want %q", tc.cents, got, tc.want)
		}
	}
}

func TestSanitizeInput(t *testing.T) {
	if got := sanitizeInput("  hello\x00world  "); got != "helloworld" {
		t.Fatalf("sanitizeInput = %q", got)
	}
	if got := sanitizeInput("line1\nline2"); got != "line1\nline2" {
		t.Fatalf("newlines must survive, got %q", got)
	}
}

func TestGenerateRequestID(t *testing.T) {
	a, b := generateRequestID(), generateRequestID()
	if a == b {
		t.Fatalf("request IDs must be unique: %q", a)
	}
	if len(a) < 8 {
		t.Fatalf("request ID too short: %q", a)
	}
}

func TestExtractClientIP(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "203.0.113.7:1234"
	r.Header.Set("X-Forwarded-For", "198.51.100.1")
	// Untrusted peer: forwarded header ignored.
	if ip := extractClientIP(r); ip != "203.0.113.7" {
		t.Fatalf("extractClientIP = %q", ip)
	}

	r.RemoteAddr = "127.0.0.1:1234"
	// Trusted proxy: first forwarded hop wins.
	if ip := extractClientIP(r); ip != "198.51.100.1" {
		t.Fatalf("extractClientIP behind proxy = %q", ip)
	}
}
