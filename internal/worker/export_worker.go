// Package worker exports ledger records to the configured target.
// It is driven two ways: AMQP change events for low latency, and a
// periodic sweep over pending rows that catches anything the queue
// missed.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"ledger/internal/amqp"
	"ledger/internal/core"
	"ledger/internal/storage"
)

// Storage is the bookkeeping surface the worker needs from the SQLite
// repository.
type Storage interface {
	GetRecord(ctx context.Context, id int64) (core.Record, error)
	PendingExports(ctx context.Context, limit int) ([]storage.PendingExport, error)
	MarkExported(ctx context.Context, id int64) error
	MarkExportError(ctx context.Context, id int64) error
	RetryErroredExports(ctx context.Context, maxAttempts int64) (int64, error)
}

// Exporter appends one record to the export target.
type Exporter interface {
	AppendRecord(ctx context.Context, r core.Record) error
}

// ExportWorker moves records from local storage to the export target.
type ExportWorker struct {
	storage     Storage
	exporter    Exporter
	batchSize   int
	maxAttempts int64
}

func NewExportWorker(storage Storage, exporter Exporter, batchSize int) *ExportWorker {
	return &ExportWorker{
		storage:     storage,
		exporter:    exporter,
		batchSize:   batchSize,
		maxAttempts: 5,
	}
}

// HandleEvent processes a single ledger change event from AMQP.
func (w *ExportWorker) HandleEvent(ctx context.Context, event *amqp.RecordEvent) error {
	switch event.Kind {
	case amqp.EventRecordCreated:
		return w.exportRecord(ctx, event.ID)
	case amqp.EventRecordDeleted, amqp.EventLedgerCleared:
		// The export target is an append-only mirror; deletions stay
		// local. Acknowledge so the event is not redelivered.
		slog.InfoContext(ctx, "Skipping non-export event", "kind", event.Kind, "id", event.ID)
		return nil
	default:
		return fmt.Errorf("unexpected event kind %q", event.Kind)
	}
}

// exportRecord loads the record and appends it to the target, updating
// the export bookkeeping either way.
func (w *ExportWorker) exportRecord(ctx context.Context, id int64) error {
	record, err := w.storage.GetRecord(ctx, id)
	if err != nil {
		// The record may have been deleted since the event was queued;
		// nothing left to export.
		slog.WarnContext(ctx, "Record not found for export", "id", id, "error", err)
		return nil
	}

	if err := w.exporter.AppendRecord(ctx, record); err != nil {
		if markErr := w.storage.MarkExportError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark export error", "id", id, "error", markErr)
		}
		return fmt.Errorf("export record %d: %w", id, err)
	}

	if err := w.storage.MarkExported(ctx, id); err != nil {
		return fmt.Errorf("mark record %d exported: %w", id, err)
	}

	slog.InfoContext(ctx, "Record exported",
		"id", id,
		"category", record.Category,
		"amount_cents", record.Amount.Cents)
	return nil
}

// SweepPending exports up to batchSize pending records and requeues
// errored ones under the attempt limit. Returns how many records were
// exported successfully.
func (w *ExportWorker) SweepPending(ctx context.Context) (int, error) {
	retried, err := w.storage.RetryErroredExports(ctx, w.maxAttempts)
	if err != nil {
		return 0, fmt.Errorf("retry errored exports: %w", err)
	}
	if retried > 0 {
		slog.InfoContext(ctx, "Requeued errored exports", "count", retried)
	}

	pending, err := w.storage.PendingExports(ctx, w.batchSize)
	if err != nil {
		return 0, fmt.Errorf("list pending exports: %w", err)
	}

	exported := 0
	for _, p := range pending {
		if err := w.exportRecord(ctx, p.ID); err != nil {
			slog.ErrorContext(ctx, "Sweep export failed", "id", p.ID, "error", err)
			continue
		}
		exported++
	}

	if len(pending) > 0 {
		slog.InfoContext(ctx, "Export sweep completed",
			"pending", len(pending),
			"exported", exported)
	}
	return exported, nil
}
