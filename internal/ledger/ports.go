// Package ledger defines the ports every expense store backend
// implements. The memory, jsonfile and sqlite backends all satisfy
// Store and Querier; the HTTP layer depends only on these interfaces.
package ledger

import (
	"context"

	"ledger/internal/core"
)

type (
	// Store holds the ordered collection of expense records.
	Store interface {
		// Add validates the record, assigns a fresh unique ID and
		// appends it in insertion order. Returns the assigned ID.
		Add(ctx context.Context, r core.Record) (int64, error)

		// Remove deletes the record with the given ID if present.
		// Returns false (and no error) when the ID is unknown.
		Remove(ctx context.Context, id int64) (bool, error)

		// Clear empties the collection unconditionally.
		Clear(ctx context.Context) error

		// All returns a snapshot of the records in insertion order.
		All(ctx context.Context) ([]core.Record, error)
	}

	// Querier answers the derived views over the current ledger state.
	Querier interface {
		// ListByCategory returns the records matching the exact category.
		ListByCategory(ctx context.Context, category string) ([]core.Record, error)

		// ListByMonth returns the records dated within the given month.
		ListByMonth(ctx context.Context, year, month int) ([]core.Record, error)

		// Overview returns summary stats and the per-category breakdown.
		Overview(ctx context.Context) (core.Overview, error)

		// Trend returns per-month totals in chronological order.
		Trend(ctx context.Context) ([]core.MonthTotal, error)
	}
)
