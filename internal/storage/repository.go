// Package storage provides the SQLite-backed ledger. The schema is
// managed by embedded golang-migrate migrations; records carry export
// bookkeeping used by the async export worker.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"ledger/internal/core"
	"ledger/internal/ledger"

	_ "modernc.org/sqlite"
)

const dateLayout = "2006-01-02"

// Export states for a record.
const (
	ExportPending  = "pending"
	ExportDone     = "exported"
	ExportError    = "error"
	ExportDisabled = "disabled"
)

type SQLiteRepository struct {
	db *sql.DB
}

var (
	_ ledger.Store   = (*SQLiteRepository)(nil)
	_ ledger.Querier = (*SQLiteRepository)(nil)
)

// PendingExport identifies a record waiting to be exported.
type PendingExport struct {
	ID        int64
	Attempts  int64
	CreatedAt time.Time
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Add implements ledger.Store.
func (r *SQLiteRepository) Add(ctx context.Context, rec core.Record) (int64, error) {
	if err := rec.Validate(); err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (date, category, description, amount_cents)
		 VALUES (?, ?, ?, ?)`,
		rec.Date.Format(dateLayout), rec.Category, rec.Description, rec.Amount.Cents)
	if err != nil {
		return 0, fmt.Errorf("insert expense: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved to SQLite",
		"id", id,
		"category", rec.Category,
		"amount_cents", rec.Amount.Cents,
		"date", rec.Date.Format(dateLayout))

	return id, nil
}

// Remove implements ledger.Store. Returns false without error when the
// ID is unknown.
func (r *SQLiteRepository) Remove(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// Clear implements ledger.Store.
func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM expenses`); err != nil {
		return fmt.Errorf("clear expenses: %w", err)
	}
	slog.InfoContext(ctx, "Ledger cleared")
	return nil
}

// All implements ledger.Store: insertion order is id order, AUTOINCREMENT
// guarantees IDs are never reused.
func (r *SQLiteRepository) All(ctx context.Context) ([]core.Record, error) {
	return r.queryRecords(ctx,
		`SELECT id, date, category, description, amount_cents
		 FROM expenses ORDER BY id ASC`)
}

// ListByCategory implements ledger.Querier.
func (r *SQLiteRepository) ListByCategory(ctx context.Context, category string) ([]core.Record, error) {
	return r.queryRecords(ctx,
		`SELECT id, date, category, description, amount_cents
		 FROM expenses WHERE category = ? ORDER BY id ASC`, category)
}

// ListByMonth implements ledger.Querier.
func (r *SQLiteRepository) ListByMonth(ctx context.Context, year, month int) ([]core.Record, error) {
	return r.queryRecords(ctx,
		`SELECT id, date, category, description, amount_cents
		 FROM expenses
		 WHERE substr(date, 1, 4) = ? AND substr(date, 6, 2) = ?
		 ORDER BY id ASC`,
		fmt.Sprintf("%04d", year), fmt.Sprintf("%02d", month))
}

// Overview implements ledger.Querier, pushing the aggregation into SQL.
func (r *SQLiteRepository) Overview(ctx context.Context) (core.Overview, error) {
	var ov core.Overview

	row := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(amount_cents), 0), COALESCE(MAX(amount_cents), 0)
		 FROM expenses`)
	var count, total, max int64
	if err := row.Scan(&count, &total, &max); err != nil {
		return ov, fmt.Errorf("summary stats: %w", err)
	}
	ov.Stats = core.Stats{
		Count: int(count),
		Total: core.Money{Cents: total},
		Max:   core.Money{Cents: max},
	}
	if count > 0 {
		ov.Stats.Average = core.Money{Cents: total / count}
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT category, SUM(amount_cents), COUNT(*)
		 FROM expenses
		 GROUP BY category
		 ORDER BY SUM(amount_cents) DESC, category ASC`)
	if err != nil {
		return ov, fmt.Errorf("category sums: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var ct core.CategoryTotal
		var sum, n int64
		if err := rows.Scan(&ct.Category, &sum, &n); err != nil {
			return ov, fmt.Errorf("scan category sum: %w", err)
		}
		ct.Total = core.Money{Cents: sum}
		ct.Count = int(n)
		ct.Average = core.Money{Cents: sum / n}
		ov.ByCategory = append(ov.ByCategory, ct)
	}
	if err := rows.Err(); err != nil {
		return ov, fmt.Errorf("iterate category sums: %w", err)
	}
	return ov, nil
}

// Trend implements ledger.Querier.
func (r *SQLiteRepository) Trend(ctx context.Context) ([]core.MonthTotal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT CAST(substr(date, 1, 4) AS INTEGER),
		        CAST(substr(date, 6, 2) AS INTEGER),
		        SUM(amount_cents)
		 FROM expenses
		 GROUP BY 1, 2
		 ORDER BY 1, 2`)
	if err != nil {
		return nil, fmt.Errorf("monthly trend: %w", err)
	}
	defer rows.Close()

	var out []core.MonthTotal
	for rows.Next() {
		var mt core.MonthTotal
		var cents int64
		if err := rows.Scan(&mt.Year, &mt.Month, &cents); err != nil {
			return nil, fmt.Errorf("scan month total: %w", err)
		}
		mt.Total = core.Money{Cents: cents}
		out = append(out, mt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate month totals: %w", err)
	}
	return out, nil
}

// GetRecord retrieves a single record by ID.
func (r *SQLiteRepository) GetRecord(ctx context.Context, id int64) (core.Record, error) {
	records, err := r.queryRecords(ctx,
		`SELECT id, date, category, description, amount_cents
		 FROM expenses WHERE id = ?`, id)
	if err != nil {
		return core.Record{}, err
	}
	if len(records) == 0 {
		return core.Record{}, sql.ErrNoRows
	}
	return records[0], nil
}

// PendingExports returns up to limit records waiting for export, oldest
// first.
func (r *SQLiteRepository) PendingExports(ctx context.Context, limit int) ([]PendingExport, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, export_attempts, created_at
		 FROM expenses
		 WHERE export_state = ?
		 ORDER BY id ASC
		 LIMIT ?`, ExportPending, limit)
	if err != nil {
		return nil, fmt.Errorf("pending exports: %w", err)
	}
	defer rows.Close()

	var out []PendingExport
	for rows.Next() {
		var p PendingExport
		if err := rows.Scan(&p.ID, &p.Attempts, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan pending export: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending exports: %w", err)
	}
	return out, nil
}

// MarkExported marks a record as successfully exported.
func (r *SQLiteRepository) MarkExported(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET export_state = ? WHERE id = ?`, ExportDone, id); err != nil {
		return fmt.Errorf("mark exported: %w", err)
	}
	slog.InfoContext(ctx, "Record marked as exported", "id", id)
	return nil
}

// MarkExportError records a failed export attempt.
func (r *SQLiteRepository) MarkExportError(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE expenses
		 SET export_state = ?, export_attempts = export_attempts + 1
		 WHERE id = ?`, ExportError, id); err != nil {
		return fmt.Errorf("mark export error: %w", err)
	}
	slog.WarnContext(ctx, "Record marked with export error", "id", id)
	return nil
}

// RetryErroredExports flips errored records back to pending so the
// worker's sweep picks them up again.
func (r *SQLiteRepository) RetryErroredExports(ctx context.Context, maxAttempts int64) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE expenses
		 SET export_state = ?
		 WHERE export_state = ? AND export_attempts < ?`,
		ExportPending, ExportError, maxAttempts)
	if err != nil {
		return 0, fmt.Errorf("retry errored exports: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) queryRecords(ctx context.Context, query string, args ...any) ([]core.Record, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	var out []core.Record
	for rows.Next() {
		var rec core.Record
		var date string
		if err := rows.Scan(&rec.ID, &date, &rec.Category, &rec.Description, &rec.Amount.Cents); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		d, err := time.Parse(dateLayout, date)
		if err != nil {
			return nil, fmt.Errorf("parse expense date %q: %w", date, err)
		}
		rec.Date = core.Date{Time: d}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return out, nil
}
