package core

import "sort"

// CategoryTotal is an aggregate for one category.
type CategoryTotal struct {
	Category string
	Total    Money
	Count    int
	Average  Money
}

// MonthTotal is the summed amount for one calendar month.
type MonthTotal struct {
	Year  int
	Month int // 1-12
	Total Money
}

// TrendPoint is one step of the cumulative spending trend.
type TrendPoint struct {
	Date    Date
	Running Money
}

// Stats is the summary metrics row: record count, grand total,
// average per record and the single highest amount.
type Stats struct {
	Count   int
	Total   Money
	Average Money
	Max     Money
}

// Overview bundles the summary metrics with the per-category breakdown.
type Overview struct {
	Stats      Stats
	ByCategory []CategoryTotal
}

// FilterByCategory returns the records whose category matches exactly.
func FilterByCategory(records []Record, category string) []Record {
	var out []Record
	for _, r := range records {
		if r.Category == category {
			out = append(out, r)
		}
	}
	return out
}

// FilterByMonth returns the records whose date falls in the given
// calendar month.
func FilterByMonth(records []Record, year, month int) []Record {
	var out []Record
	for _, r := range records {
		if r.Date.Year() == year && r.Date.Month() == month {
			out = append(out, r)
		}
	}
	return out
}

// GrandTotal sums all amounts.
func GrandTotal(records []Record) Money {
	var cents int64
	for _, r := range records {
		cents += r.Amount.Cents
	}
	return Money{Cents: cents}
}

// TotalsByCategory groups records by category and sums amounts,
// descending by total. Categories with no records are absent.
func TotalsByCategory(records []Record) []CategoryTotal {
	sums := make(map[string]*CategoryTotal)
	for _, r := range records {
		ct, ok := sums[r.Category]
		if !ok {
			ct = &CategoryTotal{Category: r.Category}
			sums[r.Category] = ct
		}
		ct.Total.Cents += r.Amount.Cents
		ct.Count++
	}
	out := make([]CategoryTotal, 0, len(sums))
	for _, ct := range sums {
		ct.Average = Money{Cents: ct.Total.Cents / int64(ct.Count)}
		out = append(out, *ct)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total.Cents != out[j].Total.Cents {
			return out[i].Total.Cents > out[j].Total.Cents
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// MonthlyTrend returns per-month totals in chronological order.
func MonthlyTrend(records []Record) []MonthTotal {
	type ym struct{ year, month int }
	sums := make(map[ym]int64)
	for _, r := range records {
		sums[ym{r.Date.Year(), r.Date.Month()}] += r.Amount.Cents
	}
	out := make([]MonthTotal, 0, len(sums))
	for k, cents := range sums {
		out = append(out, MonthTotal{Year: k.year, Month: k.month, Total: Money{Cents: cents}})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out
}

// CumulativeTrend returns the running total in date order. Records on
// the same date keep their relative insertion order.
func CumulativeTrend(records []Record) []TrendPoint {
	sorted := make([]Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date.Time)
	})
	out := make([]TrendPoint, 0, len(sorted))
	var running int64
	for _, r := range sorted {
		running += r.Amount.Cents
		out = append(out, TrendPoint{Date: r.Date, Running: Money{Cents: running}})
	}
	return out
}

// Summarize computes count, total, average and max over the records.
// An empty input yields the zero Stats.
func Summarize(records []Record) Stats {
	var s Stats
	for _, r := range records {
		s.Count++
		s.Total.Cents += r.Amount.Cents
		if r.Amount.Cents > s.Max.Cents {
			s.Max = r.Amount
		}
	}
	if s.Count > 0 {
		s.Average = Money{Cents: s.Total.Cents / int64(s.Count)}
	}
	return s
}

// BuildOverview computes the full overview: stats plus category breakdown.
func BuildOverview(records []Record) Overview {
	return Overview{
		Stats:      Summarize(records),
		ByCategory: TotalsByCategory(records),
	}
}
