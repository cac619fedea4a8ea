package core

import "testing"

func rec(id int64, y, m, d int, cat string, cents int64) Record {
	return Record{
		ID:          id,
		Date:        NewDate(y, m, d),
		Category:    cat,
		Description: "test record",
		Amount:      Money{Cents: cents},
	}
}

func TestGrandTotal(t *testing.T) {
	records := []Record{
		rec(1, 2026, 1, 10, "Food", 1250),
		rec(2, 2026, 1, 11, "Transport", 500),
	}
	if got := GrandTotal(records); got.Cents != 1750 {
		t.Fatalf("expected 1750, got %d", got.Cents)
	}
	if got := GrandTotal(nil); got.Cents != 0 {
		t.Fatalf("expected 0 for empty ledger, got %d", got.Cents)
	}
}

func TestTotalsByCategorySumToGrandTotal(t *testing.T) {
	records := []Record{
		rec(1, 2026, 1, 10, "Food", 1250),
		rec(2, 2026, 1, 11, "Transport", 500),
		rec(3, 2026, 2, 1, "Food", 750),
	}
	totals := TotalsByCategory(records)
	if len(totals) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(totals))
	}
	// Descending by total: Food (2000) before Transport (500)
	if totals[0].Category != "Food" || totals[0].Total.Cents != 2000 || totals[0].Count != 2 {
		t.Fatalf("unexpected first row: %+v", totals[0])
	}
	if totals[0].Average.Cents != 1000 {
		t.Fatalf("expected average 1000, got %d", totals[0].Average.Cents)
	}
	if totals[1].Category != "Transport" || totals[1].Total.Cents != 500 {
		t.Fatalf("unexpected second row: %+v", totals[1])
	}

	var sum int64
	for _, ct := range totals {
		sum += ct.Total.Cents
	}
	if sum != GrandTotal(records).Cents {
		t.Fatalf("category totals %d do not sum to grand total %d", sum, GrandTotal(records).Cents)
	}
}

func TestFilterByCategory(t *testing.T) {
	records := []Record{
		rec(1, 2026, 1, 10, "Food", 1250),
		rec(2, 2026, 1, 11, "Transport", 500),
		rec(3, 2026, 2, 1, "Food", 750),
	}
	food := FilterByCategory(records, "Food")
	if len(food) != 2 {
		t.Fatalf("expected 2 food records, got %d", len(food))
	}
	for _, r := range food {
		if r.Category != "Food" {
			t.Fatalf("unexpected record %+v", r)
		}
	}
	if got := FilterByCategory(records, "Rent"); got != nil {
		t.Fatalf("expected no records, got %v", got)
	}
}

func TestFilterByMonth(t *testing.T) {
	records := []Record{
		rec(1, 2026, 1, 10, "Food", 1250),
		rec(2, 2026, 1, 31, "Transport", 500),
		rec(3, 2026, 2, 1, "Food", 750),
		rec(4, 2025, 1, 15, "Food", 100),
	}
	jan := FilterByMonth(records, 2026, 1)
	if len(jan) != 2 || jan[0].ID != 1 || jan[1].ID != 2 {
		t.Fatalf("unexpected january records: %+v", jan)
	}
}

func TestMonthlyTrendChronological(t *testing.T) {
	records := []Record{
		rec(1, 2026, 2, 1, "Food", 300),
		rec(2, 2025, 12, 24, "Gifts", 2000),
		rec(3, 2026, 1, 10, "Food", 1250),
		rec(4, 2026, 1, 20, "Transport", 500),
	}
	trend := MonthlyTrend(records)
	want := []MonthTotal{
		{Year: 2025, Month: 12, Total: Money{Cents: 2000}},
		{Year: 2026, Month: 1, Total: Money{Cents: 1750}},
		{Year: 2026, Month: 2, Total: Money{Cents: 300}},
	}
	if len(trend) != len(want) {
		t.Fatalf("expected %d months, got %d", len(want), len(trend))
	}
	for i := range want {
		if trend[i] != want[i] {
			t.Fatalf("month %d: expected %+v, got %+v", i, want[i], trend[i])
		}
	}
}

func TestCumulativeTrend(t *testing.T) {
	records := []Record{
		rec(1, 2026, 1, 20, "Transport", 500),
		rec(2, 2026, 1, 10, "Food", 1250),
	}
	trend := CumulativeTrend(records)
	if len(trend) != 2 {
		t.Fatalf("expected 2 points, got %d", len(trend))
	}
	if trend[0].Date != NewDate(2026, 1, 10) || trend[0].Running.Cents != 1250 {
		t.Fatalf("unexpected first point: %+v", trend[0])
	}
	if trend[1].Running.Cents != 1750 {
		t.Fatalf("expected running total 1750, got %d", trend[1].Running.Cents)
	}
}

func TestSummarize(t *testing.T) {
	records := []Record{
		rec(1, 2026, 1, 10, "Food", 1250),
		rec(2, 2026, 1, 11, "Transport", 500),
	}
	s := Summarize(records)
	if s.Count != 2 || s.Total.Cents != 1750 || s.Average.Cents != 875 || s.Max.Cents != 1250 {
		t.Fatalf("unexpected stats: %+v", s)
	}
	empty := Summarize(nil)
	if empty != (Stats{}) {
		t.Fatalf("expected zero stats for empty ledger, got %+v", empty)
	}
}
