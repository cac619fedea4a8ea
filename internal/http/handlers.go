package http

import (
	"fmt"
	"net/http"
	"time"

	"ledger/internal/core"
	"ledger/internal/log"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if s.templates == nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Templates not loaded")
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	now := time.Now()
	data := struct {
		Today string
		Year  int
		Month int
	}{
		Today: now.Format("2006-01-02"),
		Year:  now.Year(),
		Month: int(now.Month()),
	}

	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Index template execution failed", log.FieldError, err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

type expenseRow struct {
	ID          int64
	Date        string
	Category    string
	Description string
	Amount      string
}

// handleExpensesPartial renders the expense table. Optional query
// parameters narrow the listing: ?category=Food or ?year=2026&month=8.
func (s *Server) handleExpensesPartial(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		MethodNotAllowedError("GET").Write(w)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	filter := recordFilter{}
	if cat := sanitizeInput(r.URL.Query().Get("category")); cat != "" {
		filter.category = core.CanonicalCategory(cat)
	} else if r.URL.Query().Get("year") != "" || r.URL.Query().Get("month") != "" {
		filter.year, filter.month = parseYearMonth(r)
	}

	items, err := s.listRecords(r.Context(), filter)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "List expenses error", log.FieldError, err)
		_, _ = w.Write([]byte(`<div class="placeholder">Could not load expenses</div>`))
		return
	}

	data := struct {
		Filter string
		Rows   []expenseRow
		Count  int
		Total  string
	}{
		Filter: filterLabel(filter),
		Count:  len(items),
		Total:  formatEuros(core.GrandTotal(items).Cents),
	}
	// Newest entries first in the table.
	for i := len(items) - 1; i >= 0; i-- {
		e := items[i]
		data.Rows = append(data.Rows, expenseRow{
			ID:          e.ID,
			Date:        e.Date.Format("2006-01-02"),
			Category:    e.Category,
			Description: e.Description,
			Amount:      formatEuros(e.Amount.Cents),
		})
	}

	if s.templates == nil {
		_, _ = fmt.Fprintf(w, `<div class="placeholder">%d expenses, total %s</div>`, data.Count, data.Total)
		return
	}
	if err := s.templates.ExecuteTemplate(w, "expenses.html", data); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Expenses template failed", log.FieldError, err)
		_, _ = w.Write([]byte(`<div class="placeholder">Could not render expenses</div>`))
	}
}

func filterLabel(f recordFilter) string {
	switch {
	case f.category != "":
		return f.category
	case f.year != 0:
		return fmt.Sprintf("%04d-%02d", f.year, f.month)
	default:
		return "All"
	}
}

type categoryRow struct {
	Name    string
	Amount  string
	Average string
	Count   int
	Width   int
}

type trendRow struct {
	Label  string
	Amount string
}

// handleAnalyticsPartial renders summary stats, the per-category
// breakdown and the monthly trend.
func (s *Server) handleAnalyticsPartial(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		MethodNotAllowedError("GET").Write(w)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	ctx := r.Context()

	ov, err := s.getOverview(ctx)
	if err != nil {
		log.FromContext(ctx).ErrorContext(ctx, "Overview error", log.FieldError, err)
		_, _ = w.Write([]byte(`<section id="analytics"><div class="placeholder">Could not load analytics</div></section>`))
		return
	}

	trend, err := s.getTrend(ctx)
	if err != nil {
		log.FromContext(ctx).ErrorContext(ctx, "Trend error", log.FieldError, err)
		trend = nil
	}

	var maxCents int64
	for _, ct := range ov.ByCategory {
		if ct.Total.Cents > maxCents {
			maxCents = ct.Total.Cents
		}
	}

	data := struct {
		Count      int
		Total      string
		Average    string
		Max        string
		Rows       []categoryRow
		Trend      []trendRow
		Cumulative []trendRow
	}{
		Count:   ov.Stats.Count,
		Total:   formatEuros(ov.Stats.Total.Cents),
		Average: formatEuros(ov.Stats.Average.Cents),
		Max:     formatEuros(ov.Stats.Max.Cents),
	}
	for _, ct := range ov.ByCategory {
		width := 0
		if maxCents > 0 && ct.Total.Cents > 0 {
			width = int((ct.Total.Cents*100 + maxCents/2) / maxCents)
			if width > 0 && width < 2 {
				width = 2
			}
			if width > 100 {
				width = 100
			}
		}
		data.Rows = append(data.Rows, categoryRow{
			Name:    ct.Category,
			Amount:  formatEuros(ct.Total.Cents),
			Average: formatEuros(ct.Average.Cents),
			Count:   ct.Count,
			Width:   width,
		})
	}
	for _, mt := range trend {
		data.Trend = append(data.Trend, trendRow{
			Label:  fmt.Sprintf("%04d-%02d", mt.Year, mt.Month),
			Amount: formatEuros(mt.Total.Cents),
		})
	}

	// Running total over the most recent entries, date order.
	if records, err := s.listRecords(ctx, recordFilter{}); err == nil {
		points := core.CumulativeTrend(records)
		const maxPoints = 10
		if len(points) > maxPoints {
			points = points[len(points)-maxPoints:]
		}
		for _, p := range points {
			data.Cumulative = append(data.Cumulative, trendRow{
				Label:  p.Date.Format("2006-01-02"),
				Amount: formatEuros(p.Running.Cents),
			})
		}
	} else {
		log.FromContext(ctx).ErrorContext(ctx, "Cumulative trend error", log.FieldError, err)
	}

	if s.templates == nil {
		_, _ = fmt.Fprintf(w, `<section id="analytics"><div class="placeholder">Total: %s (%d records)</div></section>`, data.Total, data.Count)
		return
	}
	if err := s.templates.ExecuteTemplate(w, "analytics.html", data); err != nil {
		log.FromContext(ctx).ErrorContext(ctx, "Analytics template failed", log.FieldError, err)
		_, _ = w.Write([]byte(`<section id="analytics"><div class="placeholder">Could not render analytics</div></section>`))
	}
}
